package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

type createChannelRequest struct {
	Name string `json:"name"`
}

type channelResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toChannelResponse(channel domain.Channel) channelResponse {
	return channelResponse{
		ID:        channel.ID,
		Name:      channel.Name,
		CreatorID: channel.CreatorID,
		CreatedAt: channel.CreatedAt,
	}
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	userID := actingUser(r)
	if userID == "" {
		s.writeError(w, fmt.Errorf("%w: missing X-User-ID", apperrors.ErrInvalidInput))
		return
	}

	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeError(w, fmt.Errorf("%w: channel name is required", apperrors.ErrInvalidInput))
		return
	}

	channel, err := s.database.CreateChannel(r.Context(), req.Name, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toChannelResponse(*channel))
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.database.ListChannels(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]channelResponse, 0, len(channels))
	for _, channel := range channels {
		out = append(out, toChannelResponse(channel))
	}

	s.writeJSON(w, http.StatusOK, out)
}
