package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. Concrete errors match these with errors.Is.
var (
	// ErrInvalid marks data rejected by a schema, local or remote-bound.
	ErrInvalid = errors.New("schema violation")
	// ErrRemote marks failures reported by, or on the way to, the remote store.
	ErrRemote = errors.New("remote store error")
	// ErrNotFound marks a 404 from the remote store.
	ErrNotFound = errors.New("not found")
	// ErrPolicy marks operations refused by a local policy.
	ErrPolicy = errors.New("policy violation")
)

// SchemaError reports records that failed validation.
// Err is usually a *schema.AggregateError.
type SchemaError struct {
	Subject string
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Subject, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrInvalid }

// RemoteError is the single structured form of every non-success response.
// Status is 0 when the request never produced a response.
type RemoteError struct {
	Status  int
	Message string
	Detail  any
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote store unreachable: %s", e.Message)
	}
	return fmt.Sprintf("remote store returned %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// PolicyError reports a mutation refused before any remote call.
type PolicyError struct {
	Entity string
	ID     string
	Reason string
}

func (e *PolicyError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *PolicyError) Is(target error) bool { return target == ErrPolicy }

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
