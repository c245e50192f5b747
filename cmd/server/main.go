package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/corestore/commerce-backend/app/config"
	"github.com/corestore/commerce-backend/app/server"
	"github.com/corestore/commerce-backend/db"
)

var migrateOnly = flag.Bool("migrate-only", false, "run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if *migrateOnly {
		log.Println("migrations completed; exiting as requested")
		return
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(conn, cfg.RequestTimeout),
		// handler timeouts come from the router middleware; these bound
		// slow clients
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)

	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
