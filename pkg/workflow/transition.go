package workflow

import (
	"errors"
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
)

// ErrInvalidTransition matches every *TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionErrorKind classifies a rejected transition.
type TransitionErrorKind int

const (
	SourceNotFound TransitionErrorKind = iota + 1
	TargetNotFound
	NotAllowed
)

func (k TransitionErrorKind) String() string {
	switch k {
	case SourceNotFound:
		return "source state not found"
	case TargetNotFound:
		return "target state not found"
	case NotAllowed:
		return "transition not allowed"
	}
	return "unknown"
}

// TransitionError explains why a transition was rejected.
type TransitionError struct {
	Kind TransitionErrorKind
	From string
	To   string
	// FromName and ToName are the display names, set when the states exist.
	FromName string
	ToName   string
}

func (e *TransitionError) Error() string {
	switch e.Kind {
	case SourceNotFound:
		return fmt.Sprintf("%s: '%s'", e.Kind, e.From)
	case TargetNotFound:
		return fmt.Sprintf("%s: '%s'", e.Kind, e.To)
	}
	return fmt.Sprintf("%s: cannot move from '%s' to '%s'", e.Kind, e.FromName, e.ToName)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidateTransition checks that to is in the allowed list of from.
func ValidateTransition(from, to string, states []domain.WorkflowState) error {
	source, ok := Find(states, from)
	if !ok {
		return &TransitionError{Kind: SourceNotFound, From: from, To: to}
	}
	target, ok := Find(states, to)
	if !ok {
		return &TransitionError{Kind: TargetNotFound, From: from, To: to, FromName: source.Name}
	}
	if !source.Allows(to) {
		return &TransitionError{Kind: NotAllowed, From: from, To: to, FromName: source.Name, ToName: target.Name}
	}
	return nil
}

// Allowed lists where a content item may go from its current state.
type Allowed struct {
	// Current is nil when the item has no state yet.
	Current *domain.WorkflowState
	Targets []domain.WorkflowState
}

// IsSelectable reports whether slug may be chosen. The current state itself
// always is; whether to offer it is up to the caller.
func (a Allowed) IsSelectable(slug string) bool {
	if a.Current != nil && a.Current.Slug == slug {
		return true
	}
	for _, t := range a.Targets {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

// Options returns the current state (if any) followed by the targets.
func (a Allowed) Options() []domain.WorkflowState {
	var out []domain.WorkflowState
	if a.Current != nil {
		out = append(out, *a.Current)
	}
	return append(out, a.Targets...)
}

// AllowedTransitions resolves the allowed list of current against states.
// An empty current means the item has no state yet, so every state is a
// target. Allowed slugs missing from the catalog are skipped.
func AllowedTransitions(current string, states []domain.WorkflowState) (Allowed, error) {
	if current == "" {
		return Allowed{Targets: Sorted(states)}, nil
	}
	source, ok := Find(states, current)
	if !ok {
		return Allowed{}, &TransitionError{Kind: SourceNotFound, From: current}
	}
	allowed := Allowed{Current: &source}
	for _, slug := range source.AllowedTransitions {
		if s, ok := Find(states, slug); ok {
			allowed.Targets = append(allowed.Targets, s)
		}
	}
	return allowed, nil
}
