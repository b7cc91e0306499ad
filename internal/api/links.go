package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
)

type createLinkRequest struct {
	URL string `json:"url"`
}

type reactionResponse struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"userId"`
}

type linkResponse struct {
	ID        string             `json:"id"`
	ChannelID string             `json:"channelId"`
	AuthorID  string             `json:"authorId"`
	URL       string             `json:"url"`
	CreatedAt time.Time          `json:"createdAt"`
	Reactions []reactionResponse `json:"reactions"`
	Preview   *domain.Preview    `json:"preview,omitempty"`
}

func toLinkResponse(link domain.Link) linkResponse {
	reactions := make([]reactionResponse, 0, len(link.Reactions))
	for _, reaction := range link.Reactions {
		reactions = append(reactions, reactionResponse{Emoji: reaction.Emoji, UserID: reaction.UserID})
	}

	return linkResponse{
		ID:        link.ID,
		ChannelID: link.ChannelID,
		AuthorID:  link.AuthorID,
		URL:       link.URL,
		CreatedAt: link.CreatedAt,
		Reactions: reactions,
		Preview:   link.Preview,
	}
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	userID := actingUser(r)
	if userID == "" {
		s.writeError(w, fmt.Errorf("%w: missing X-User-ID", apperrors.ErrInvalidInput))
		return
	}

	channelID := chi.URLParam(r, "channelID")

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
		return
	}

	if _, err := url.ParseRequestURI(req.URL); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid url", apperrors.ErrInvalidInput))
		return
	}

	// Existence check so a bad channel id fails the request, not the insert.
	channel, err := s.database.GetChannel(r.Context(), channelID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	link, err := s.database.CreateLink(r.Context(), channel.ID, userID, req.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.LinksCreated.WithLabelValues(channel.Name).Inc()

	if s.onLinkCreated != nil {
		s.onLinkCreated(*link)
	}

	s.writeJSON(w, http.StatusCreated, toLinkResponse(*link))
}

func (s *Server) handleListChannelLinks(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	links, err := s.database.ListChannelLinks(r.Context(), channelID, defaultListLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]linkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, toLinkResponse(link))
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.database.DeleteLink(r.Context(), chi.URLParam(r, "linkID")); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddReaction(w http.ResponseWriter, r *http.Request) {
	userID := actingUser(r)
	if userID == "" {
		s.writeError(w, fmt.Errorf("%w: missing X-User-ID", apperrors.ErrInvalidInput))
		return
	}

	if err := s.database.AddReaction(r.Context(), chi.URLParam(r, "linkID"), userID, chi.URLParam(r, "emoji")); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRemoveReaction(w http.ResponseWriter, r *http.Request) {
	userID := actingUser(r)
	if userID == "" {
		s.writeError(w, fmt.Errorf("%w: missing X-User-ID", apperrors.ErrInvalidInput))
		return
	}

	if err := s.database.RemoveReaction(r.Context(), chi.URLParam(r, "linkID"), userID, chi.URLParam(r, "emoji")); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
