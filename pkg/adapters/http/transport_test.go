package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	httpAdapter "github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/http"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_SendsJSONWithBearer(t *testing.T) {
	var got struct {
		method, path, query, auth, contentType string
		body                                   map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"c1"}`))
	}))
	defer srv.Close()

	tr, err := httpAdapter.New(srv.URL+"/api/", httpAdapter.WithToken("secret"))
	require.NoError(t, err)

	resp, err := tr.Do(context.Background(), ports.Request{
		Method: http.MethodPost,
		Path:   "Content",
		Query:  url.Values{"direction": {"outgoing"}},
		Body:   map[string]any{"title": "Hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"id":"c1"}`, string(resp.Body))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/Content", got.path)
	assert.Equal(t, "direction=outgoing", got.query)
	assert.Equal(t, "Bearer secret", got.auth)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "Hello", got.body["title"])
}

func TestTransport_NormalisesErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetail  bool
	}{
		{"error field", 400, `{"error":"title is required","details":{"field":"title"}}`, "title is required", true},
		{"message field", 409, `{"message":"slug taken"}`, "slug taken", false},
		{"nested error object", 422, `{"error":{"message":"bad filter","code":"E_FILTER"}}`, "bad filter", true},
		{"plain text", 502, "upstream down", "upstream down", false},
		{"empty body", 404, "", "Not Found", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr, err := httpAdapter.New(srv.URL)
			require.NoError(t, err)

			_, err = tr.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "Content/x"})
			var remote *domain.RemoteError
			require.True(t, errors.As(err, &remote), "got %T", err)
			assert.Equal(t, tt.status, remote.Status)
			assert.Equal(t, tt.wantMessage, remote.Message)
			assert.Equal(t, tt.wantDetail, remote.Detail != nil)
			assert.ErrorIs(t, err, domain.ErrRemote)
		})
	}
}

func TestTransport_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr, err := httpAdapter.New(srv.URL)
	require.NoError(t, err)

	resp, err := tr.Do(context.Background(), ports.Request{Method: http.MethodDelete, Path: "Content/c1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestTransport_UnreachableIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	var events []*domain.RequestEvent
	tr, err := httpAdapter.New(addr, httpAdapter.WithHooks(domain.LifecycleHooks{
		OnRequest: func(_ context.Context, e *domain.RequestEvent) { events = append(events, e) },
	}))
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "Content", Route: "{entity}"})
	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, 0, remote.Status)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, events, 1)
	assert.Equal(t, "{entity}", events[0].Route)
	assert.Equal(t, 0, events[0].Status)
	assert.Error(t, events[0].Err)
}

func TestTransport_LocalFailuresAreRemoteErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { hits++ }))
	defer srv.Close()
	tr, err := httpAdapter.New(srv.URL)
	require.NoError(t, err)

	cases := map[string]ports.Request{
		"unencodable body": {Method: http.MethodPost, Path: "Content", Body: map[string]any{"ch": make(chan int)}},
		"invalid method":   {Method: "BAD METHOD", Path: "Content"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tr.Do(context.Background(), req)
			var remote *domain.RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, 0, remote.Status)
			assert.Error(t, remote.Err)
			assert.ErrorIs(t, err, domain.ErrRemote)
		})
	}
	assert.Zero(t, hits)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := httpAdapter.New("")
	assert.ErrorIs(t, err, httpAdapter.ErrNoBaseURL)

	_, err = httpAdapter.New("not a url")
	assert.Error(t, err)
}
