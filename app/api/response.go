package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corestore/commerce-backend/models"
)

// Envelope is the JSON shape of every response: status is "success" or
// "error", message carries the error text, data the payload.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: "success", Data: data})
}

func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Status: "error", Message: msg})
}

// Error maps a domain error kind onto its HTTP status. Anything that is
// not a models.Error is an infrastructure failure and stays a generic 500
// so internals never leak to the client.
func Error(w http.ResponseWriter, err error) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		Fail(w, statusFor(domainErr.Kind), domainErr.Message)
		return
	}
	Fail(w, http.StatusInternalServerError, "internal server error")
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(env)
	if err != nil {
		// best-effort error response; avoid writing partial JSON
		http.Error(w, `{"status":"error","message":"encode error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
