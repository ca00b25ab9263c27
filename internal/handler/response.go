package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AKT74/shareulbi-backend/internal/service"
)

const maxJSONBody = 1 << 20 // 1MB

type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, messageResponse{Message: message, Data: data})
}

// writeError maps a service error to its HTTP status. Only classified errors
// expose their message; everything else is logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(service.KindOf(err))

	if status >= 500 {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}

	writeJSON(w, status, errorResponse{Message: service.MessageOf(err)})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: "request body too large"})
		case errors.Is(err, io.EOF):
			badRequest(w, "request body is required")
		default:
			badRequest(w, "invalid JSON body")
		}
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
