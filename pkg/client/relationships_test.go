package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRelationship(t *testing.T) {
	tr := respond(201, `{"relationship":{"type":"AUTHORED_BY","properties":{"role":"PRIMARY"}},"target":`+author+`}`)
	c := client.New(tr)

	edge, err := c.CreateRelationship(context.Background(), domain.EntityContent, "c1", domain.RelAuthoredBy, "a1",
		map[string]any{"role": domain.RolePrimary})
	require.NoError(t, err)
	assert.Equal(t, domain.RelAuthoredBy, edge.Type)
	assert.Equal(t, "PRIMARY", edge.Properties["role"])
	assert.Equal(t, "a1", edge.Target.ID())

	sent := tr.last(t)
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, "Content/c1/relationships/AUTHORED_BY", sent.Path)
	assert.Equal(t, "Content/{id}/relationships/AUTHORED_BY", sent.Route)
}

func TestCreateRelationship_NoContentEchoesEdge(t *testing.T) {
	c := client.New(respond(204, ""))
	edge, err := c.CreateRelationship(context.Background(), domain.EntityContent, "c1", domain.RelHasRevision, "r1", nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", edge.Target.ID())
	assert.Empty(t, edge.Properties)
}

func TestCreateRelationship_Rejections(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		source, rel string
		props       any
		unknown     bool
	}{
		"bad property value":  {source: domain.EntityContent, rel: domain.RelAuthoredBy, props: map[string]any{"role": "OWNER"}},
		"missing property":    {source: domain.EntityContent, rel: domain.RelAuthoredBy},
		"undeclared property": {source: domain.EntityContent, rel: domain.RelHasBlock, props: map[string]any{"weight": 1}},
		"wrong source entity": {source: domain.EntityAuthor, rel: domain.RelAuthoredBy, props: map[string]any{"role": "PRIMARY"}},
		"unknown type":        {source: domain.EntityContent, rel: "LIKES", unknown: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tr := respond(201, "")
			_, err := client.New(tr).CreateRelationship(ctx, tc.source, "x", tc.rel, "y", tc.props)
			require.Error(t, err)
			if !tc.unknown {
				assert.ErrorIs(t, err, domain.ErrInvalid)
			}
			assert.Empty(t, tr.calls)
		})
	}
}

func TestGetRelationships(t *testing.T) {
	tr := respond(200, `[{"relationship":{"type":"AUTHORED_BY","properties":{"role":"EDITOR"}},"target":`+author+`}]`)
	c := client.New(tr)

	edges, err := c.GetRelationships(context.Background(), domain.EntityContent, "c1", domain.RelAuthoredBy, "", domain.EntityAuthor)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "EDITOR", edges[0].Properties["role"])
	assert.Equal(t, "Ada", edges[0].Target.String("name"))
	assert.Equal(t, "outgoing", tr.last(t).Query.Get("direction"))
}

func TestGetRelationships_ValidatesTargets(t *testing.T) {
	c := client.New(respond(200, `[{"relationship":{"type":"AUTHORED_BY","properties":{"role":"EDITOR"}},"target":{"id":"a1"}}]`))
	_, err := c.GetRelationships(context.Background(), domain.EntityContent, "c1", domain.RelAuthoredBy, domain.Outgoing, domain.EntityAuthor)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	edges, err := c.GetRelationships(context.Background(), domain.EntityContent, "c1", domain.RelAuthoredBy, domain.Outgoing, "")
	require.NoError(t, err, "without a hint targets pass through")
	assert.Equal(t, "a1", edges[0].Target.ID())
}

func TestGetRelationships_WrongSide(t *testing.T) {
	tr := respond(200, "[]")
	c := client.New(tr)

	_, err := c.GetRelationships(context.Background(), domain.EntityAuthor, "a1", domain.RelAuthoredBy, domain.Outgoing, "")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = c.GetRelationships(context.Background(), domain.EntityAuthor, "a1", domain.RelAuthoredBy, "sideways", "")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = c.GetRelationships(context.Background(), domain.EntityAuthor, "a1", domain.RelAuthoredBy, domain.Incoming, domain.EntityMedia)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, tr.calls)

	edges, err := c.GetRelationships(context.Background(), domain.EntityAuthor, "a1", domain.RelAuthoredBy, domain.Incoming, domain.EntityContent)
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.Equal(t, "incoming", tr.last(t).Query.Get("direction"))
}

func TestGetRelationships_SelfReferentialBothWays(t *testing.T) {
	cat := `{"id":"k2","name":"News","slug":"news","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	c := client.New(respond(200, `[{"relationship":{"type":"CATEGORY_PARENT","properties":{}},"target":`+cat+`}]`))

	edges, err := c.GetRelationships(context.Background(), domain.EntityCategory, "k1", domain.RelCategoryParent, domain.Both, domain.EntityCategory)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "news", edges[0].Target.String("slug"))
}

func TestUpdateAndDeleteRelationship(t *testing.T) {
	tr := respond(200, `{"relationship":{"type":"HAS_BLOCK","properties":{}},"target":{"id":"b1"}}`)
	c := client.New(tr)

	_, err := c.UpdateRelationship(context.Background(), domain.EntityContent, "c1", domain.RelHasMedia, "m1", map[string]any{"caption": 3})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, tr.calls)

	tr.body = `{"relationship":{"type":"HAS_MEDIA","properties":{"caption":"Hero","position":1}},"target":{"id":"m1","filename":"a.png","url":"u","mimeType":"image/png","size":1,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}}`
	edge, err := c.UpdateRelationship(context.Background(), domain.EntityContent, "c1", domain.RelHasMedia, "m1", map[string]any{"caption": "Hero"})
	require.NoError(t, err)
	assert.Equal(t, "Hero", edge.Properties["caption"])
	assert.Equal(t, http.MethodPatch, tr.last(t).Method)

	tr.status, tr.body = 204, ""
	require.NoError(t, c.DeleteRelationship(context.Background(), domain.EntityContent, "c1", domain.RelHasMedia, "m1"))
	sent := tr.last(t)
	assert.Equal(t, http.MethodDelete, sent.Method)
	assert.Equal(t, "m1", sent.Query.Get("targetId"))
}

func TestRelationship_WrongTypeInResponse(t *testing.T) {
	c := client.New(respond(200, `{"relationship":{"type":"HAS_BLOCK","properties":{}},"target":{"id":"m1"}}`))
	_, err := c.UpdateRelationship(context.Background(), domain.EntityContent, "c1", domain.RelHasMedia, "m1", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
