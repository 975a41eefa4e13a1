package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// StatusFor maps a service error onto the HTTP status it should be reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, football.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, football.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, football.ErrIllegalState),
		errors.Is(err, football.ErrDuplicateMember),
		errors.Is(err, store.ErrStaleMatch),
		errors.Is(err, store.ErrInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports err as a JSON body. Unexpected errors are logged and
// their message is not exposed.
func WriteError(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	body := ErrorResponse{Error: err.Error()}

	var verr *football.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}

	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		body.Error = "internal server error"
	} else {
		slog.Warn(msg, "status", status, "error", err)
	}
	WriteJSON(w, status, body)
}
