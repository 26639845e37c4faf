package ports

import (
	"context"
	"net/url"
)

// Request is one call against the remote store's generic HTTP surface.
type Request struct {
	Method string
	// Path is relative to the store's base URL, e.g. "Content/abc/relationships/HAS_BLOCK".
	Path string
	// Route is the low-cardinality template of Path, used for metrics labels.
	Route string
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is a successful (2xx) reply. Body is empty for 204.
type Response struct {
	Status int
	Body   []byte
}

// Transport executes requests against the remote store.
// Implementations must return a *domain.RemoteError for every non-2xx status
// and for failures that produce no response at all.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }
