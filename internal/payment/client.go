package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// SessionCreator defines the outbound call to the payment provider's
// hosted-checkout API. The broker negotiates payment-method sets on top
// of it.
type SessionCreator interface {
	// CreateSession opens a hosted checkout session with the provider.
	CreateSession(ctx context.Context, req *SessionRequest) (*ProviderSession, error)
}

// SessionRequest is the provider-facing session payload.
type SessionRequest struct {
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	PaymentMethods []string          `json:"payment_methods"`
	SuccessURL     string            `json:"success_url"`
	CancelURL      string            `json:"cancel_url"`
	Locale         string            `json:"locale,omitempty"`
	LineItem       LineItem          `json:"line_item"`
	Customer       Customer          `json:"customer"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// LineItem is the single aggregate line presented on the hosted page.
type LineItem struct {
	Name        string `json:"name"`
	AmountMinor int64  `json:"amount_minor"`
	Quantity    int    `json:"quantity"`
}

// Customer identifies the buyer to the provider. Email is omitted when it
// does not look like a real, deliverable address.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ProviderSession is the provider's view of a created session.
type ProviderSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProviderError is a non-2xx response from the provider.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
}

// IsTimeout reports whether the error is a provider call that ran out of
// time rather than an explicit rejection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ClientConfig holds configuration for the provider HTTP client.
type ClientConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// httpClient implements SessionCreator over the provider's HTTPS API with
// bearer-token auth.
type httpClient struct {
	config ClientConfig
	client *http.Client
	logger zerolog.Logger
}

// NewClient creates a new payment provider client.
func NewClient(config ClientConfig, logger zerolog.Logger) (SessionCreator, error) {
	if config.BaseURL == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("payment provider base URL and secret key are required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &httpClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "payment-client").Logger(),
	}, nil
}

// CreateSession opens a hosted checkout session. A non-2xx response is
// returned as *ProviderError with the textual body attached.
func (c *httpClient) CreateSession(ctx context.Context, req *SessionRequest) (*ProviderSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	url := c.config.BaseURL + "/v1/checkout/sessions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	c.logger.Debug().
		Int64("amount_minor", req.AmountMinor).
		Strs("payment_methods", req.PaymentMethods).
		Msg("creating checkout session")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Msg("provider call failed")
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	// Provider error bodies are short and textual; cap the read anyway.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("provider rejected session")
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var session ProviderSession
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("provider response missing session id or url")
	}

	c.logger.Info().
		Str("session_id", session.ID).
		Msg("checkout session created")

	return &session, nil
}
