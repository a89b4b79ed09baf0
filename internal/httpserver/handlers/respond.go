package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// failure is how a service error is shown to a client.
type failure struct {
	Status  int
	Code    string
	Message string
}

// describe maps a service error to its HTTP status and user-facing message.
// The cause of an OperationError is never part of the message.
func describe(err error) failure {
	var opErr *domain.OperationError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return failure{http.StatusUnauthorized, "unauthenticated", "User not authenticated"}
	case errors.Is(err, domain.ErrInvalidInput):
		return failure{http.StatusBadRequest, "invalid_input", "Title and URL are required"}
	case errors.Is(err, domain.ErrNotFound):
		return failure{http.StatusNotFound, "not_found", "Bookmark not found"}
	case errors.Is(err, domain.ErrForbidden):
		return failure{http.StatusForbidden, "forbidden", "Unauthorized"}
	case errors.As(err, &opErr):
		msg := "Failed to load bookmarks"
		switch opErr.Op {
		case domain.OpAdd:
			msg = "Failed to add bookmark"
		case domain.OpDelete:
			msg = "Failed to delete bookmark"
		}
		return failure{http.StatusInternalServerError, "operation_failed", msg}
	default:
		return failure{http.StatusInternalServerError, "internal", "Internal error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	f := describe(err)
	writeJSON(w, f.Status, errorResponse{Error: f.Message, Code: f.Code})
}

func writeBadRequest(w http.ResponseWriter, code, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: code})
}
