// Package api is the typed client for the FitCoach REST API. Every client
// surface (the session shell and the MCP server's remote mode) goes
// through it so retry policy and error mapping live in one place.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/session"
	"github.com/google/uuid"
)

const (
	// RequestTimeout bounds each attempt.
	RequestTimeout = 30 * time.Second
	// MaxAttempts includes the first try.
	MaxAttempts = 3
)

// Errors returned for non-2xx responses. ErrNotFound and ErrConflict are the
// shared model errors so callers need not care which backend they talk to.
var (
	ErrUnauthorized = errors.New("session expired, please log in again")
	ErrForbidden    = errors.New("you do not have permission to do that")
	ErrNotFound     = models.ErrNotFound
	ErrConflict     = models.ErrConflict
	ErrBadRequest   = models.ErrInvalid
	ErrServer       = errors.New("server error, please try again later")
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	// Message is the server's {"error": ...} text, if any.
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.kind }

func statusKind(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// TokenSource supplies the bearer token. authstate.Store satisfies it.
type TokenSource interface {
	Token() string
}

// Client calls the FitCoach REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *slog.Logger
	// backoff is the wait before the second attempt; it doubles after that.
	backoff time.Duration
}

// Compile-time check: Client can drive a workout session.
var _ session.Backend = (*Client)(nil)

// NewClient creates a client for baseURL. tokens may be nil for
// unauthenticated use.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: RequestTimeout},
		tokens:     tokens,
		log:        logger,
		backoff:    time.Second,
	}
}

// do sends a request and decodes a JSON response into out. Transport errors
// and 5xx responses are retried with exponential backoff; 4xx responses and
// context cancellation are returned immediately.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range MaxAttempts {
		if attempt > 0 {
			wait := c.backoff << uint(attempt-1)
			c.log.Warn("retrying request", "method", method, "path", path, "attempt", attempt+1, "wait", wait, "error", lastErr)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
			case <-t.C:
			}
		}

		retry, err := c.attempt(ctx, method, u, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
	}
	return fmt.Errorf("%s %s: after %d attempts: %w", method, path, MaxAttempts, lastErr)
}

// attempt performs one round trip. It reports whether a failure is retryable.
func (c *Client) attempt(ctx context.Context, method, u string, body []byte, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("reading body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return resp.StatusCode >= 500, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    e.Error,
			kind:       statusKind(resp.StatusCode),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
	}
	return false, nil
}

func assignmentPath(id uuid.UUID, action string) string {
	p := "/api/v1/assignments/" + id.String()
	if action != "" {
		p += "/" + action
	}
	return p
}

// ListAssignments returns a client's assignments, newest first.
func (c *Client) ListAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error) {
	params := url.Values{}
	params.Set("client_id", clientID.String())

	var out []models.AssignmentSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/assignments", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAssignment returns an assignment with its exercises and logged sets.
func (c *Client) FetchAssignment(ctx context.Context, id uuid.UUID) (*models.AssignmentDetail, error) {
	var out models.AssignmentDetail
	if err := c.do(ctx, http.MethodGet, assignmentPath(id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartAssignment moves a pending assignment to in_progress.
func (c *Client) StartAssignment(ctx context.Context, id uuid.UUID) (*models.StartResult, error) {
	var out models.StartResult
	if err := c.do(ctx, http.MethodPost, assignmentPath(id, "start"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogSet records one completed set.
func (c *Client) LogSet(ctx context.Context, id uuid.UUID, entry models.SetEntry) (*models.SetRecord, error) {
	var out models.SetRecord
	if err := c.do(ctx, http.MethodPost, assignmentPath(id, "logs"), nil, entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteAssignment marks an assignment completed.
func (c *Client) CompleteAssignment(ctx context.Context, id uuid.UUID) (*models.CompletionResult, error) {
	var out models.CompletionResult
	if err := c.do(ctx, http.MethodPost, assignmentPath(id, "complete"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SkipAssignment marks an assignment skipped.
func (c *Client) SkipAssignment(ctx context.Context, id uuid.UUID) (*models.SkipResult, error) {
	var out models.SkipResult
	if err := c.do(ctx, http.MethodPost, assignmentPath(id, "skip"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the caller's identity as the server resolves it.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	var out models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
