package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

// errorResponse is the standard error envelope for all API endpoints.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal_error"

	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput), apperrors.Is(err, apperrors.ErrInvalidID):
		status = http.StatusBadRequest
		kind = "validation_error"
	case apperrors.Is(err, apperrors.ErrNotFound),
		apperrors.Is(err, apperrors.ErrChannelNotFound),
		apperrors.Is(err, apperrors.ErrUserNotFound),
		apperrors.Is(err, apperrors.ErrLinkNotFound):
		status = http.StatusNotFound
		kind = "not_found"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}

	s.writeJSON(w, status, errorResponse{Error: kind, Message: err.Error()})
}
