package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/chromalabel/internal/domain/imagestore"
	"github.com/rpggio/chromalabel/internal/domain/result"
)

// errInvalidBody indicates a request body that could not be decoded.
var errInvalidBody = errors.New("invalid request body")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, imagestore.ErrMissingDirectory):
		return http.StatusBadRequest
	case errors.Is(err, imagestore.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, imagestore.ErrInvalidName),
		errors.Is(err, result.ErrInvalidParticipant),
		errors.Is(err, result.ErrInvalidInput),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text sent to clients. Internal errors are not exposed.
func messageFor(err error) string {
	switch {
	case errors.Is(err, imagestore.ErrMissingDirectory):
		return "Image folders not found. Please upload images first. (" + err.Error() + ")"
	case errors.Is(err, imagestore.ErrImageNotFound):
		return "Image not found"
	case statusFor(err) == http.StatusBadRequest:
		return err.Error()
	default:
		return "internal server error"
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: messageFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
