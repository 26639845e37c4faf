package http

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

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
)

// DefaultTimeout bounds a single request when no client is injected.
const DefaultTimeout = 30 * time.Second

// ErrNoBaseURL is returned by New when the base URL is empty.
var ErrNoBaseURL = errors.New("base URL is required")

// Transport implements ports.Transport over the remote store's HTTP/JSON API.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.httpClient.Timeout = d
		}
	}
}

// WithToken sets the bearer credential sent on every request.
func WithToken(token string) Option {
	return func(t *Transport) {
		t.token = token
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithHooks registers observability hooks; OnRequest fires after every call.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Transport) {
		t.hooks = hooks
	}
}

// New creates a transport rooted at baseURL.
func New(baseURL string, opts ...Option) (*Transport, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	t := &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Do sends req and returns the raw 2xx body.
// Every other outcome is reported as *domain.RemoteError.
func (t *Transport) Do(ctx context.Context, req ports.Request) (*ports.Response, error) {
	start := time.Now()
	resp, err := t.do(ctx, req)

	event := &domain.RequestEvent{
		EventBase: domain.EventBase{Timestamp: start},
		Method:    req.Method,
		Route:     req.Route,
		Duration:  time.Since(start),
		Err:       err,
	}
	var remote *domain.RemoteError
	switch {
	case resp != nil:
		event.Status = resp.Status
	case errors.As(err, &remote):
		event.Status = remote.Status
	}
	t.hooks.EmitRequest(ctx, event)

	return resp, err
}

func (t *Transport) do(ctx context.Context, req ports.Request) (*ports.Response, error) {
	endpoint := t.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &domain.RemoteError{Message: "encode request body: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, &domain.RemoteError{Message: "build request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.token)
	}

	t.logger.Debug("remote request", "method", req.Method, "path", req.Path)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.Warn("remote store unreachable", "method", req.Method, "path", req.Path, "error", err)
		return nil, &domain.RemoteError{Message: err.Error(), Err: err}
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &domain.RemoteError{Status: httpResp.StatusCode, Message: "read response body", Err: err}
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &ports.Response{Status: httpResp.StatusCode, Body: respBytes}, nil
	}

	remote := decodeError(httpResp.StatusCode, respBytes)
	t.logger.Debug("remote request failed", "method", req.Method, "path", req.Path, "status", remote.Status, "error", remote.Message)
	return nil, remote
}

// errorBody covers the shapes the store uses for failures.
type errorBody struct {
	Error   any `json:"error"`
	Message any `json:"message"`
	Details any `json:"details"`
	Detail  any `json:"detail"`
}

func decodeError(status int, body []byte) *domain.RemoteError {
	remote := &domain.RemoteError{Status: status}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		remote.Message = firstString(eb.Message, eb.Error)
		remote.Detail = eb.Details
		if remote.Detail == nil {
			remote.Detail = eb.Detail
		}
		if remote.Detail == nil {
			// Structured error objects carry their own detail
			if _, isObject := eb.Error.(map[string]any); isObject {
				remote.Detail = eb.Error
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		remote.Message = text
	}

	if remote.Message == "" {
		remote.Message = http.StatusText(status)
	}
	return remote
}

func firstString(values ...any) string {
	for _, v := range values {
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case map[string]any:
			if msg, ok := s["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return ""
}
