package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

type profileResponse struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	DigestFrequency    string   `json:"digestFrequency"`
	Subscriptions      []string `json:"subscriptions"`
	EmailNotifications bool     `json:"emailNotifications"`
}

type updateProfileRequest struct {
	Username           *string  `json:"username"`
	DigestFrequency    *string  `json:"digestFrequency"`
	Subscriptions      []string `json:"subscriptions"`
	EmailNotifications *bool    `json:"emailNotifications"`
}

func toProfileResponse(user domain.User) profileResponse {
	subs := user.Subscriptions
	if subs == nil {
		subs = []string{}
	}

	return profileResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		DigestFrequency:    string(user.DigestFrequency),
		Subscriptions:      subs,
		EmailNotifications: user.EmailNotifications,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.database.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toProfileResponse(*user))
}

// handleUpdateProfile applies a partial profile update: absent fields keep
// their current values, a present subscriptions array replaces the list.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.database.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}

	if req.DigestFrequency != nil {
		frequency := domain.DigestFrequency(*req.DigestFrequency)
		if !frequency.Valid() {
			s.writeError(w, fmt.Errorf("%w: unknown digest frequency %q", apperrors.ErrInvalidInput, *req.DigestFrequency))
			return
		}

		user.DigestFrequency = frequency
	}

	if req.Subscriptions != nil {
		user.Subscriptions = req.Subscriptions
	}

	if req.EmailNotifications != nil {
		user.EmailNotifications = *req.EmailNotifications
	}

	if err := s.database.UpdateUserProfile(r.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toProfileResponse(*user))
}
