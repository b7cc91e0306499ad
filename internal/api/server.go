// Package api exposes the link-sharing HTTP surface: channels, links,
// reactions and user profiles.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	defaultListLimit  = 50
)

// Store is the slice of storage the API handlers use.
type Store interface {
	CreateChannel(ctx context.Context, name, creatorID string) (*domain.Channel, error)
	GetChannel(ctx context.Context, channelID string) (*domain.Channel, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	CreateLink(ctx context.Context, channelID, authorID, url string) (*domain.Link, error)
	ListChannelLinks(ctx context.Context, channelID string, limit int) ([]domain.Link, error)
	DeleteLink(ctx context.Context, linkID string) error
	AddReaction(ctx context.Context, linkID, userID, emoji string) error
	RemoveReaction(ctx context.Context, linkID, userID, emoji string) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, user *domain.User) error
}

// LinkCreatedHook is invoked after a link row is written, to trigger the
// preview pipeline. It must not block the request.
type LinkCreatedHook func(link domain.Link)

// Server is the API HTTP server.
type Server struct {
	router        chi.Router
	database      Store
	port          int
	onLinkCreated LinkCreatedHook
	logger        *zerolog.Logger
}

// NewServer builds the router and wires handlers.
func NewServer(database Store, port int, onLinkCreated LinkCreatedHook, logger *zerolog.Logger) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		database:      database,
		port:          port,
		onLinkCreated: onLinkCreated,
		logger:        logger,
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(requestLogger(logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/channels", s.handleCreateChannel)
		r.Get("/channels", s.handleListChannels)
		r.Post("/channels/{channelID}/links", s.handleCreateLink)
		r.Get("/channels/{channelID}/links", s.handleListChannelLinks)
		r.Delete("/links/{linkID}", s.handleDeleteLink)
		r.Put("/links/{linkID}/reactions/{emoji}", s.handleAddReaction)
		r.Delete("/links/{linkID}/reactions/{emoji}", s.handleRemoveReaction)
		r.Get("/users/{userID}/profile", s.handleGetProfile)
		r.Put("/users/{userID}/profile", s.handleUpdateProfile)
	})

	return s
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server error: %w", err)
	}

	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// actingUser extracts the acting user id. Authentication itself lives in
// front of this service; the header is the integration seam.
func actingUser(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
