package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/logger"
)

// AppError represents a handler failure with an HTTP status attached.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// FromDomain maps a service-layer error onto an AppError with the right
// status code. NotFound and Forbidden stay distinct: a missing row is 404
// and an ownership/role denial is 403, never merged.
func FromDomain(err error) *AppError {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return &AppError{Error: err, Message: err.Error(), Code: http.StatusNotFound}
	case errors.Is(err, apperror.ErrForbidden):
		return &AppError{Error: err, Message: err.Error(), Code: http.StatusForbidden}
	case errors.Is(err, apperror.ErrValidation):
		return &AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	case errors.Is(err, apperror.ErrConflict):
		return &AppError{Error: err, Message: err.Error(), Code: http.StatusConflict}
	case errors.Is(err, apperror.ErrPartial):
		return &AppError{Error: err, Message: err.Error(), Code: http.StatusUnprocessableEntity}
	default:
		return &AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
}

// Error is a middleware that converts handler errors into JSON error
// responses and recovers from panics.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					writeError(w, http.StatusInternalServerError, "Internal Server Error", "")
				}
			}()

			err := next(w, r)
			if err != nil {
				if err.Code >= http.StatusInternalServerError {
					log.Error(err.Error, err.Message)
				}
				var field string
				var appErr *apperror.AppError
				if errors.As(err.Error, &appErr) {
					field = appErr.Field
				}
				writeError(w, err.Code, err.Message, field)
			}
		})
	}
}

func writeError(w http.ResponseWriter, code int, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]interface{}{
		"error":  http.StatusText(code),
		"detail": message,
	}
	if field != "" {
		body["field"] = field
	}
	_ = json.NewEncoder(w).Encode(body)
}
