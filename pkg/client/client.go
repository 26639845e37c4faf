package client

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
)

// Client performs entity, query and relationship calls against the remote store.
type Client struct {
	transport ports.Transport
	registry  *registry.Registry
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRegistry replaces the default entity catalog.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Client) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client over transport.
func New(transport ports.Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		registry:  registry.Default(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the catalog the client validates against.
func (c *Client) Registry() *registry.Registry { return c.registry }

// join escapes each segment and joins them with "/".
func join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
