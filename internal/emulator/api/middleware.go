// Package api exposes the emulator's HTTP surface. Routes, payloads and
// error bodies mirror the sevDesk v1 API closely enough that clients cannot
// tell the difference for the endpoints implemented here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevsync-dev/sevsync/internal/emulator/store"
)

// AuthMiddleware validates the API token. sevDesk expects the bare token in
// the Authorization header, without a Bearer prefix.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
				return
			}

			if header != token {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid API token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorResponse is the error envelope returned on failures.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error code and message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// writeStoreError maps store errors onto HTTP statuses: unknown records are
// 404, rule violations are 400, everything else is 500.
func writeStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	var ruleErr *store.RuleError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", notFoundMessage)
	case errors.As(err, &ruleErr):
		writeJSONError(w, http.StatusBadRequest, "validation_error", ruleErr.Msg)
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// writeObjects writes a response with the standard {"objects": ...} envelope.
func writeObjects(w http.ResponseWriter, status int, objects interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"objects": objects})
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryInt parses an optional integer query parameter, returning 0 when
// absent or invalid.
func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}
