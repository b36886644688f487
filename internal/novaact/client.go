// File: internal/novaact/client.go
// Package novaact is the HTTP client for the Nova Act browser-automation
// service. The service itself is opaque: it drives a real browser and accepts
// natural-language instructions. This package only speaks its narrow session
// API — open, act, close — and enforces the explicit ActResult contract on
// everything it returns.
package novaact

import (
	"bytes"
	"context"
	encodingjson "encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
	"github.com/xkilldash9x/nova-bridge/internal/config"
)

// maxErrorBodyBytes caps how much of an error response body is read for the
// error message.
const maxErrorBodyBytes = 8 << 10

// Factory opens Nova Act sessions over HTTP. It implements
// schemas.SessionFactory.
type Factory struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

var _ schemas.SessionFactory = (*Factory)(nil)

// NewFactory builds a Factory from the nova config section.
func NewFactory(cfg config.NovaConfig, logger *zap.Logger) *Factory {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Factory{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("novaact"),
	}
}

// openRequest is the wire payload for session creation.
type openRequest struct {
	StartingURL    string `json:"starting_url"`
	Headless       bool   `json:"headless"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type openResponse struct {
	SessionID string `json:"session_id"`
}

// actRequest is the wire payload for one instruction.
type actRequest struct {
	Instruction string                  `json:"instruction"`
	Schema      encodingjson.RawMessage `json:"schema,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Open creates one scoped automation session. The credential is passed
// explicitly per call; the factory holds no global credential state.
func (f *Factory) Open(ctx context.Context, opts schemas.OpenOptions) (schemas.AutomationSession, error) {
	payload := openRequest{
		StartingURL: opts.StartingURL,
		Headless:    opts.Headless,
	}
	if opts.Timeout > 0 {
		payload.TimeoutSeconds = int(opts.Timeout / time.Second)
	}

	var resp openResponse
	if err := f.do(ctx, http.MethodPost, "/sessions", opts.APIKey, payload, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &schemas.SerializationError{Reason: "session open response missing session_id"}
	}

	f.logger.Debug("Automation session opened",
		zap.String("session_id", resp.SessionID),
		zap.String("starting_url", opts.StartingURL),
		zap.Bool("headless", opts.Headless),
	)
	return &session{factory: f, id: resp.SessionID, apiKey: opts.APIKey}, nil
}

// session is one live Nova Act browser session. It implements
// schemas.AutomationSession.
type session struct {
	factory *Factory
	id      string
	apiKey  string
}

var _ schemas.AutomationSession = (*session)(nil)

func (s *session) ID() string { return s.id }

// Act issues one natural-language instruction, optionally constrained by a
// structured-output schema, and decodes the response into the ActResult
// contract. A payload that does not satisfy the contract is a
// SerializationError, not a silently stringified result.
func (s *session) Act(ctx context.Context, instruction string, schema encodingjson.RawMessage) (*schemas.ActResult, error) {
	payload := actRequest{Instruction: instruction, Schema: schema}

	var result schemas.ActResult
	path := fmt.Sprintf("/sessions/%s/act", s.id)
	if err := s.factory.do(ctx, http.MethodPost, path, s.apiKey, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close releases the remote session and its browser.
func (s *session) Close(ctx context.Context) error {
	path := fmt.Sprintf("/sessions/%s", s.id)
	if err := s.factory.do(ctx, http.MethodDelete, path, s.apiKey, nil, nil); err != nil {
		return fmt.Errorf("failed to close session %s: %w", s.id, err)
	}
	s.factory.logger.Debug("Automation session closed", zap.String("session_id", s.id))
	return nil
}

// do executes one HTTP exchange against the service. A non-2xx status becomes
// an error carrying the service's message; an undecodable 2xx body is a
// SerializationError.
func (f *Factory) do(ctx context.Context, method, path, apiKey string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("nova act request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return f.serviceError(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read nova act response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &schemas.SerializationError{Reason: fmt.Sprintf("undecodable %s response", path), Err: err}
	}
	return nil
}

// serviceError extracts the service's error message from a non-2xx response.
func (f *Factory) serviceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var svcErr errorResponse
	if err := json.Unmarshal(raw, &svcErr); err == nil && svcErr.Error != "" {
		return fmt.Errorf("nova act: %s (status %d)", svcErr.Error, resp.StatusCode)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("nova act: %s (status %d)", msg, resp.StatusCode)
}
