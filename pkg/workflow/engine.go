package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
)

// ErrMultipleStates is returned when a content item carries more than one
// HAS_STATE edge and the engine is configured to reject that.
var ErrMultipleStates = errors.New("content has more than one workflow state")

// MultipleStatePolicy decides how a content item with several HAS_STATE
// edges is read.
type MultipleStatePolicy int

const (
	// RejectMultiple treats the item as corrupt and fails with ErrMultipleStates.
	RejectMultiple MultipleStatePolicy = iota
	// FirstWins takes the first edge the store returns as authoritative.
	// A transition then replaces every edge, repairing the item.
	FirstWins
)

// TransitionResult describes an applied transition.
type TransitionResult struct {
	ContentID  string
	From       *domain.WorkflowState
	To         domain.WorkflowState
	AssignedAt time.Time
	// Published is set when the transition stamped publishedAt.
	Published bool
}

// Engine applies workflow transitions to stored content.
type Engine struct {
	client *client.Client
	policy MultipleStatePolicy
	locker ports.Locker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy selects how multiple HAS_STATE edges are handled.
func WithPolicy(p MultipleStatePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLocker serialises transitions of the same content item.
func WithLocker(l ports.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = e.hooks.Merge(h) }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates an engine backed by c.
func NewEngine(c *client.Client, opts ...Option) *Engine {
	e := &Engine{
		client: c,
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// States lists the stored catalog ordered by position.
func (e *Engine) States(ctx context.Context) ([]domain.WorkflowState, error) {
	states, err := client.ListAs[domain.WorkflowState](ctx, e.client, domain.EntityWorkflowState, client.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load workflow states: %w", err)
	}
	return Sorted(states), nil
}

// EnsureStates creates every state of catalog whose slug is not stored yet
// and returns the resulting stored catalog.
func (e *Engine) EnsureStates(ctx context.Context, catalog []domain.WorkflowState) ([]domain.WorkflowState, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	stored, err := e.States(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range catalog {
		if _, ok := Find(stored, s.Slug); ok {
			continue
		}
		if _, err := e.client.Create(ctx, domain.EntityWorkflowState, s); err != nil {
			return nil, fmt.Errorf("create state %s: %w", s.Slug, err)
		}
		e.logger.Info("workflow state created", "slug", s.Slug)
	}
	return e.States(ctx)
}

// CurrentState returns the state of contentID, or nil when it has none.
func (e *Engine) CurrentState(ctx context.Context, contentID string) (*domain.WorkflowState, error) {
	edges, err := e.stateEdges(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return e.current(contentID, edges)
}

// Allowed returns where contentID may move from its current state.
func (e *Engine) Allowed(ctx context.Context, contentID string) (Allowed, error) {
	current, err := e.CurrentState(ctx, contentID)
	if err != nil {
		return Allowed{}, err
	}
	states, err := e.States(ctx)
	if err != nil {
		return Allowed{}, err
	}
	slug := ""
	if current != nil {
		slug = current.Slug
	}
	return AllowedTransitions(slug, states)
}

// TransitionState moves contentID to the state with id (or slug)
// newState. Content without a state accepts any target. Reaching the
// published state stamps Content.publishedAt.
//
// The steps are not transactional: a failure after the old edges are
// removed leaves the item without a state, which the next transition repairs.
func (e *Engine) TransitionState(ctx context.Context, contentID, newState, actor string) (*TransitionResult, error) {
	var result *TransitionResult
	err := ports.WithLock(ctx, e.locker, "workflow:"+contentID, ports.DefaultLockTTL, func() error {
		var err error
		result, err = e.transition(ctx, contentID, newState, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) transition(ctx context.Context, contentID, newState, actor string) (*TransitionResult, error) {
	states, err := e.States(ctx)
	if err != nil {
		return nil, err
	}
	target, ok := resolve(states, newState)
	if !ok {
		return nil, &TransitionError{Kind: TargetNotFound, To: newState}
	}

	edges, err := e.stateEdges(ctx, contentID)
	if err != nil {
		return nil, err
	}
	current, err := e.current(contentID, edges)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if err := ValidateTransition(current.Slug, target.Slug, states); err != nil {
			return nil, err
		}
	}

	content, err := e.client.Mutable(ctx, domain.EntityContent, contentID)
	if err != nil {
		return nil, err
	}

	for _, edge := range edges {
		if err := e.client.DeleteRelationship(ctx, domain.EntityContent, contentID, domain.RelHasState, edge.Target.ID()); err != nil {
			return nil, fmt.Errorf("remove previous state: %w", err)
		}
	}

	now := e.clock().UTC()
	props := map[string]any{"assignedAt": now}
	if actor != "" {
		props["assignedBy"] = actor
	}
	if _, err := e.client.CreateRelationship(ctx, domain.EntityContent, contentID, domain.RelHasState, target.ID, props); err != nil {
		return nil, fmt.Errorf("assign state: %w", err)
	}

	result := &TransitionResult{ContentID: contentID, From: current, To: target, AssignedAt: now}
	if target.Slug == domain.PublishedSlug {
		if _, err := e.client.PatchRecord(ctx, domain.EntityContent, content, map[string]any{"publishedAt": now}); err != nil {
			return nil, fmt.Errorf("stamp publishedAt: %w", err)
		}
		result.Published = true
	}

	from := ""
	if current != nil {
		from = current.Slug
	}
	e.hooks.EmitTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: now},
		ContentID: contentID,
		From:      from,
		To:        target.Slug,
	})
	e.logger.Info("workflow transition", "content_id", contentID, "from", from, "to", target.Slug, "actor", actor)
	return result, nil
}

func (e *Engine) stateEdges(ctx context.Context, contentID string) ([]domain.Relationship, error) {
	edges, err := e.client.GetRelationships(ctx, domain.EntityContent, contentID, domain.RelHasState, domain.Outgoing, domain.EntityWorkflowState)
	if err != nil {
		return nil, fmt.Errorf("read workflow state: %w", err)
	}
	return edges, nil
}

func (e *Engine) current(contentID string, edges []domain.Relationship) (*domain.WorkflowState, error) {
	switch {
	case len(edges) == 0:
		return nil, nil
	case len(edges) > 1 && e.policy == RejectMultiple:
		return nil, fmt.Errorf("%w: %s has %d", ErrMultipleStates, contentID, len(edges))
	case len(edges) > 1:
		e.logger.Warn("multiple workflow states, using the first", "content_id", contentID, "count", len(edges))
	}
	return client.Decode[domain.WorkflowState](edges[0].Target)
}

func resolve(states []domain.WorkflowState, idOrSlug string) (domain.WorkflowState, bool) {
	for _, s := range states {
		if s.ID == idOrSlug {
			return s, true
		}
	}
	return Find(states, idOrSlug)
}
