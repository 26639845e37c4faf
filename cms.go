package cms

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	httpAdapter "github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/http"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/blockstore"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/compose"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/revision"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/workflow"
)

// CMS bundles the services of the content domain layer around one client.
type CMS struct {
	Client    *client.Client
	Workflow  *workflow.Engine
	Blocks    *blockstore.Store
	Revisions *revision.Service
	Compose   *compose.Composer
}

type settings struct {
	transport ports.Transport
	token     string
	timeout   time.Duration
	registry  *registry.Registry
	locker    ports.Locker
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	policy    workflow.MultipleStatePolicy
}

// Option configures New.
type Option func(*settings)

// WithTransport bypasses the default HTTP transport. The base URL given to
// New is ignored.
func WithTransport(t ports.Transport) Option {
	return func(s *settings) { s.transport = t }
}

// WithToken sets the bearer credential of the default transport.
func WithToken(token string) Option {
	return func(s *settings) { s.token = token }
}

// WithTimeout bounds each request of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithRegistry replaces the default entity catalog.
func WithRegistry(r *registry.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithLocker serialises multi-step mutations of the same content item.
func WithLocker(l ports.Locker) Option {
	return func(s *settings) { s.locker = l }
}

// WithLifecycleHooks registers observability hooks on every service.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(s *settings) { s.hooks = s.hooks.Merge(h) }
}

// WithLogger sets the structured logger shared by every service.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMultipleStatePolicy decides how content carrying several workflow
// states is read.
func WithMultipleStatePolicy(p workflow.MultipleStatePolicy) Option {
	return func(s *settings) { s.policy = p }
}

// New wires the services against the store at baseURL.
func New(baseURL string, opts ...Option) (*CMS, error) {
	s := settings{logger: logging.NewNop(), registry: registry.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	if s.transport == nil {
		t, err := httpAdapter.New(baseURL,
			httpAdapter.WithToken(s.token),
			httpAdapter.WithTimeout(s.timeout),
			httpAdapter.WithLogger(s.logger),
			httpAdapter.WithHooks(s.hooks),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport: %w", err)
		}
		s.transport = t
	}

	c := client.New(s.transport, client.WithRegistry(s.registry), client.WithLogger(s.logger))
	blocks := blockstore.New(c,
		blockstore.WithLocker(s.locker),
		blockstore.WithHooks(s.hooks),
		blockstore.WithLogger(s.logger),
	)

	return &CMS{
		Client: c,
		Workflow: workflow.NewEngine(c,
			workflow.WithPolicy(s.policy),
			workflow.WithLocker(s.locker),
			workflow.WithHooks(s.hooks),
			workflow.WithLogger(s.logger),
		),
		Blocks: blocks,
		Revisions: revision.NewService(c, blocks,
			revision.WithLocker(s.locker),
			revision.WithHooks(s.hooks),
			revision.WithLogger(s.logger),
		),
		Compose: compose.New(c, compose.WithLogger(s.logger)),
	}, nil
}
