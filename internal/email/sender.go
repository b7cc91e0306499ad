// Package email wraps the transactional email provider's HTTP API behind a
// fixed message shape.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

const (
	sendPath           = "/v3/mail/send"
	defaultSendTimeout = 15 * time.Second
	maxErrorBodyBytes  = 2048
)

// Config configures the provider client.
type Config struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// Sender delivers HTML email through the provider. It never retries; retry
// policy, if any, belongs to the caller.
type Sender struct {
	cfg    Config
	client *http.Client
}

// NewSender creates a Sender.
func NewSender(cfg Config) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Sender{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type message struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// Send delivers one HTML email. Any provider-side failure (rejected address,
// auth failure, network error) surfaces as ErrEmailDelivery wrapping the
// cause.
func (s *Sender) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	payload, err := json.Marshal(message{
		Personalizations: []personalization{{To: []address{{Email: toAddress, Name: toName}}}},
		From:             address{Email: s.cfg.FromAddress, Name: s.cfg.FromName},
		Subject:          subject,
		Content:          []content{{Type: "text/html", Value: htmlBody}},
	})
	if err != nil {
		return fmt.Errorf("%w: marshal message: %w", apperrors.ErrEmailDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", apperrors.ErrEmailDelivery, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrEmailDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return fmt.Errorf("%w: provider status %d: %s", apperrors.ErrEmailDelivery, resp.StatusCode, body)
	}

	return nil
}
