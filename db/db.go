package db

import (
	"fmt"
	"log"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// register the postgres database driver and file source for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corestore/commerce-backend/app/config"
	"github.com/corestore/commerce-backend/models"
)

// Connect opens the pool, applies pool limits, and brings the schema up to
// date: SQL migrations when MIGRATIONS=1, GORM AutoMigrate otherwise (dev
// convenience). TranslateError is on so unique-constraint violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func Connect(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
		if err == nil {
			break
		}
		log.Println("retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if cfg.RunMigrations {
		if err := runSQLMigrations(cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates/updates every table the repositories touch.
func AutoMigrate(db *gorm.DB) error {
	toMigrate := []any{
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Quotation{},
		&models.QuotationItem{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func runSQLMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
