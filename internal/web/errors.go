package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/engine"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: msg, Details: details}})
}

// writeError maps service errors to status codes and the error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *booking.ValidationError
	var vErrs validator.ValidationErrors
	var ae *engine.AllocationError
	switch {
	case errors.As(err, &ve):
		writeErrorBody(w, http.StatusBadRequest, CodeInvalidInput, ve.Error(), map[string]string{"field": ve.Field})
	case errors.As(err, &vErrs):
		details := make([]fieldError, 0, len(vErrs))
		for _, fe := range vErrs {
			details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		writeErrorBody(w, http.StatusBadRequest, CodeInvalidInput, "invalid request", details)
	case errors.As(err, &ae):
		writeErrorBody(w, http.StatusConflict, engine.Code, ae.Error(), map[string]any{
			"reason":    ae.Reason,
			"guests":    ae.Guests,
			"tableSize": ae.TableSize,
		})
	case errors.Is(err, restaurants.ErrNotFound), errors.Is(err, reservations.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, reservations.ErrVersionConflict):
		writeErrorBody(w, http.StatusConflict, CodeConflict, err.Error(), nil)
	default:
		s.Log.Error("web:request:failed",
			"component", "web",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		writeErrorBody(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorBody(w, http.StatusBadRequest, CodeInvalidInput, msg, nil)
}

func unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeErrorBody(w, http.StatusUnauthorized, CodeUnauthorized, "login required", nil)
}
