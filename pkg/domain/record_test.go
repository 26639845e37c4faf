package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord_FromStruct(t *testing.T) {
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec, err := domain.ToRecord(domain.Content{
		Title:       "Hello",
		Slug:        "hello",
		ContentType: domain.ContentArticle,
		PublishedAt: &published,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", rec.String("title"))
	assert.Equal(t, "ARTICLE", rec["contentType"])
	assert.Equal(t, "2024-05-01T10:00:00Z", rec["publishedAt"])
	assert.NotContains(t, rec, "excerpt")
	assert.NotContains(t, rec, "id")
	assert.False(t, rec.IsSystem())
}

func TestToRecord_RejectsNonObjects(t *testing.T) {
	_, err := domain.ToRecord([]string{"a"})
	assert.Error(t, err)

	rec, err := domain.ToRecord(nil)
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestRecord_Accessors(t *testing.T) {
	rec := domain.Record{"id": "c1", "position": float64(3), "isSystem": true}

	assert.Equal(t, "c1", rec.ID())
	n, ok := rec.Int("position")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = rec.Int("missing")
	assert.False(t, ok)
	assert.True(t, rec.IsSystem())

	stripped := rec.Without(domain.SystemFields...)
	assert.NotContains(t, stripped, "id")
	assert.Contains(t, rec, "id", "Without must not mutate the receiver")
}

func TestRemoteError_Taxonomy(t *testing.T) {
	notFound := &domain.RemoteError{Status: http.StatusNotFound, Message: "no such entity"}
	wrapped := fmt.Errorf("get content: %w", notFound)

	assert.ErrorIs(t, wrapped, domain.ErrRemote)
	assert.ErrorIs(t, wrapped, domain.ErrNotFound)
	assert.True(t, domain.IsNotFound(wrapped))
	assert.Contains(t, notFound.Error(), "404")

	var re *domain.RemoteError
	require.True(t, errors.As(wrapped, &re))
	assert.Equal(t, http.StatusNotFound, re.Status)

	serverErr := &domain.RemoteError{Status: 500, Message: "boom"}
	assert.NotErrorIs(t, serverErr, domain.ErrNotFound)

	unreachable := &domain.RemoteError{Message: "dial tcp: refused"}
	assert.Contains(t, unreachable.Error(), "unreachable")
}

func TestPolicyAndSchemaErrors(t *testing.T) {
	pe := &domain.PolicyError{Entity: "WorkflowState", ID: "s1", Reason: "system entities cannot be modified"}
	assert.ErrorIs(t, pe, domain.ErrPolicy)
	assert.Equal(t, "WorkflowState s1: system entities cannot be modified", pe.Error())

	inner := errors.New("field \"title\": required")
	se := &domain.SchemaError{Subject: "Content create payload", Err: inner}
	assert.ErrorIs(t, se, domain.ErrInvalid)
	assert.ErrorIs(t, se, inner)
}

func TestParseDirection(t *testing.T) {
	d, err := domain.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, domain.Outgoing, d)

	d, err = domain.ParseDirection("incoming")
	require.NoError(t, err)
	assert.Equal(t, domain.Incoming, d)

	_, err = domain.ParseDirection("sideways")
	assert.Error(t, err)
}

func TestWorkflowState_Allows(t *testing.T) {
	s := domain.WorkflowState{Slug: "draft", AllowedTransitions: []string{"in-review"}}
	assert.True(t, s.Allows("in-review"))
	assert.False(t, s.Allows("published"))
}
