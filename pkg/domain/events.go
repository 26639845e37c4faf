package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRemoteRequest   EventType = "remote_request"
	EventStateTransition EventType = "state_transition"
	EventBlocksSaved     EventType = "blocks_saved"
	EventRevisionCreated EventType = "revision_created"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RequestEvent describes one completed call to the remote store.
type RequestEvent struct {
	EventBase
	Method   string        `json:"method"`
	Route    string        `json:"route"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// TransitionEvent describes a workflow state change of a content item.
// From is empty for the initial assignment.
type TransitionEvent struct {
	EventBase
	ContentID string `json:"content_id"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
}

// ContentEvent describes a block save or a revision snapshot.
type ContentEvent struct {
	EventBase
	ContentID  string `json:"content_id"`
	BlockCount int    `json:"block_count"`
	Revision   int    `json:"revision,omitempty"`
}

// LifecycleHooks defines callbacks for observability. Nil callbacks are skipped.
type LifecycleHooks struct {
	OnRequest         func(context.Context, *RequestEvent)
	OnTransition      func(context.Context, *TransitionEvent)
	OnBlocksSaved     func(context.Context, *ContentEvent)
	OnRevisionCreated func(context.Context, *ContentEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRequest:         chain(h.OnRequest, other.OnRequest),
		OnTransition:      chain(h.OnTransition, other.OnTransition),
		OnBlocksSaved:     chain(h.OnBlocksSaved, other.OnBlocksSaved),
		OnRevisionCreated: chain(h.OnRevisionCreated, other.OnRevisionCreated),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// Emit helpers tolerate unset callbacks.

func (h LifecycleHooks) EmitRequest(ctx context.Context, e *RequestEvent) {
	if h.OnRequest != nil {
		e.Type = EventRemoteRequest
		h.OnRequest(ctx, e)
	}
}

func (h LifecycleHooks) EmitTransition(ctx context.Context, e *TransitionEvent) {
	if h.OnTransition != nil {
		e.Type = EventStateTransition
		h.OnTransition(ctx, e)
	}
}

func (h LifecycleHooks) EmitBlocksSaved(ctx context.Context, e *ContentEvent) {
	if h.OnBlocksSaved != nil {
		e.Type = EventBlocksSaved
		h.OnBlocksSaved(ctx, e)
	}
}

func (h LifecycleHooks) EmitRevisionCreated(ctx context.Context, e *ContentEvent) {
	if h.OnRevisionCreated != nil {
		e.Type = EventRevisionCreated
		h.OnRevisionCreated(ctx, e)
	}
}
