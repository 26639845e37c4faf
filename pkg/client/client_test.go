package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers every request with the same status and body and records
// what was sent. When stored is set, GET requests are answered with it instead.
type scripted struct {
	mu     sync.Mutex
	status int
	body   string
	stored string
	err    error
	calls  []ports.Request
}

func (s *scripted) Do(_ context.Context, req ports.Request) (*ports.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.stored != "" && req.Method == http.MethodGet {
		return &ports.Response{Status: http.StatusOK, Body: []byte(s.stored)}, nil
	}
	return &ports.Response{Status: s.status, Body: []byte(s.body)}, nil
}

func (s *scripted) methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Method)
	}
	return out
}

func (s *scripted) last(t *testing.T) ports.Request {
	t.Helper()
	require.NotEmpty(t, s.calls)
	return s.calls[len(s.calls)-1]
}

func respond(status int, body string) *scripted { return &scripted{status: status, body: body} }

const author = `{"id":"a1","name":"Ada","email":"ada@example.com","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`

func TestList_RawArray(t *testing.T) {
	tr := respond(200, "["+author+"]")
	c := client.New(tr)

	res, err := c.ListWithPagination(context.Background(), domain.EntityAuthor, client.ListOptions{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "a1", res.Records[0].ID())
	assert.Equal(t, client.Pagination{Limit: 10, Offset: 20, Total: 1}, res.Pagination)

	req := tr.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "Author", req.Path)
	assert.Equal(t, "10", req.Query.Get("limit"))
	assert.Equal(t, "20", req.Query.Get("offset"))
}

func TestList_RawArrayWithoutWindow(t *testing.T) {
	c := client.New(respond(200, "["+author+","+author+"]"))

	res, err := c.ListWithPagination(context.Background(), domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, client.Pagination{Limit: 2, Offset: 0, Total: 2}, res.Pagination)
}

func TestList_Envelope(t *testing.T) {
	c := client.New(respond(200, `{"data":[`+author+`],"pagination":{"limit":1,"offset":0,"total":7}}`))

	res, err := c.ListWithPagination(context.Background(), domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 7, res.Pagination.Total)

	recs, err := c.List(context.Background(), domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestList_ShapesNormaliseAlike(t *testing.T) {
	ctx := context.Background()
	raw, err := client.New(respond(200, "["+author+"]")).List(ctx, domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)
	wrapped, err := client.New(respond(200, `{"data":[`+author+`],"pagination":{"limit":10,"offset":0,"total":1}}`)).
		List(ctx, domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, raw, wrapped)
}

func TestList_EmptyShapes(t *testing.T) {
	for _, body := range []string{"[]", `{"data":[]}`, ""} {
		c := client.New(respond(200, body))
		recs, err := c.List(context.Background(), domain.EntityAuthor, client.ListOptions{})
		require.NoError(t, err, body)
		assert.Empty(t, recs, body)
		assert.NotNil(t, recs, body)
	}
}

func TestList_RejectsUnknownShape(t *testing.T) {
	c := client.New(respond(200, `{"items":[]}`))
	_, err := c.List(context.Background(), domain.EntityAuthor, client.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestList_ValidatesEveryRecord(t *testing.T) {
	c := client.New(respond(200, `[`+author+`,{"id":"a2","name":"Bob"}]`))
	_, err := c.List(context.Background(), domain.EntityAuthor, client.ListOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Contains(t, err.Error(), "item 1")
}

func TestList_UnknownEntity(t *testing.T) {
	tr := respond(200, "[]")
	_, err := client.New(tr).List(context.Background(), "Widget", client.ListOptions{})
	require.Error(t, err)
	assert.Empty(t, tr.calls)
}

func TestGet_BareAndWrapped(t *testing.T) {
	for _, body := range []string{author, `{"data":` + author + `}`} {
		c := client.New(respond(200, body))
		rec, err := c.Get(context.Background(), domain.EntityAuthor, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", rec.String("name"))
	}
}

func TestGet_EscapesPath(t *testing.T) {
	tr := respond(200, author)
	_, err := client.New(tr).Get(context.Background(), domain.EntityAuthor, "a/1 x")
	require.NoError(t, err)
	assert.Equal(t, "Author/a%2F1%20x", tr.last(t).Path)
	assert.Equal(t, "Author/{id}", tr.last(t).Route)
}

func TestGet_RemoteErrorsPassThrough(t *testing.T) {
	tr := &scripted{err: &domain.RemoteError{Status: 404, Message: "no such node"}}
	_, err := client.New(tr).Get(context.Background(), domain.EntityAuthor, "missing")

	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 404, remote.Status)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreate_StripsSystemFieldsAndValidates(t *testing.T) {
	tr := respond(201, author)
	c := client.New(tr)

	rec, err := c.Create(context.Background(), domain.EntityAuthor, domain.Record{
		"id":    "client-chosen",
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID())

	sent := tr.last(t)
	assert.Equal(t, http.MethodPost, sent.Method)
	body := sent.Body.(domain.Record)
	assert.NotContains(t, body, "id")
	assert.Equal(t, "Ada", body["name"])
}

func TestCreate_TypedStruct(t *testing.T) {
	tr := respond(201, `{"id":"c1","title":"Hello","slug":"hello","contentType":"ARTICLE","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`)
	c := client.New(tr)

	rec, err := c.Create(context.Background(), domain.EntityContent, domain.Content{
		Title: "Hello", Slug: "hello", ContentType: domain.ContentArticle,
	})
	require.NoError(t, err)

	typed, err := client.Decode[domain.Content](rec)
	require.NoError(t, err)
	assert.Equal(t, "c1", typed.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), typed.CreatedAt)
	assert.Nil(t, typed.PublishedAt)
}

func TestCreate_InvalidPayloadNeverLeaves(t *testing.T) {
	tr := respond(201, author)
	c := client.New(tr)

	_, err := c.Create(context.Background(), domain.EntityAuthor, domain.Record{"name": "Ada", "shoeSize": 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "shoeSize")
	assert.Empty(t, tr.calls)
}

func TestCreate_InvalidResponse(t *testing.T) {
	c := client.New(respond(201, `{"id":"a1","name":"Ada"}`))
	_, err := c.Create(context.Background(), domain.EntityAuthor, domain.Record{"name": "Ada", "email": "e"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestUpdateAndPatch(t *testing.T) {
	tr := respond(200, author)
	c := client.New(tr)

	_, err := c.Update(context.Background(), domain.EntityAuthor, "a1", domain.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, tr.last(t).Method)

	_, err = c.Update(context.Background(), domain.EntityAuthor, "a1", domain.Record{"name": "Ada"})
	assert.ErrorIs(t, err, domain.ErrInvalid, "full replace needs every required field")

	_, err = c.Patch(context.Background(), domain.EntityAuthor, "a1", domain.Record{"bio": "hi"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, tr.last(t).Method)
	assert.Equal(t, domain.Record{"bio": "hi"}, tr.last(t).Body)

	_, err = c.Patch(context.Background(), domain.EntityAuthor, "a1", domain.Record{"bio": 3})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Equal(t, []string{http.MethodGet, http.MethodPut, http.MethodGet, http.MethodPatch}, tr.methods(),
		"each mutation reads the record first; invalid payloads send nothing")
}

func TestDelete_NoContent(t *testing.T) {
	tr := respond(204, "")
	tr.stored = author
	require.NoError(t, client.New(tr).Delete(context.Background(), domain.EntityAuthor, "a1"))
	assert.Equal(t, []string{http.MethodGet, http.MethodDelete}, tr.methods())
	assert.Equal(t, "Author/a1", tr.last(t).Path)
}

func TestDelete_MissingRecord(t *testing.T) {
	tr := &scripted{err: &domain.RemoteError{Status: 404, Message: "no such node"}}
	err := client.New(tr).Delete(context.Background(), domain.EntityAuthor, "a1")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, []string{http.MethodGet}, tr.methods())
}

func TestSystemGuard_NoNetworkCall(t *testing.T) {
	system := domain.Record{"id": "s1", "name": "Draft", "isSystem": true}
	ctx := context.Background()

	cases := map[string]func(c *client.Client) error{
		"update record": func(c *client.Client) error {
			_, err := c.UpdateRecord(ctx, domain.EntityWorkflowState, system, domain.Record{"name": "x"})
			return err
		},
		"patch record": func(c *client.Client) error {
			_, err := c.PatchRecord(ctx, domain.EntityWorkflowState, system, domain.Record{"name": "x"})
			return err
		},
		"delete record": func(c *client.Client) error {
			return c.DeleteRecord(ctx, domain.EntityWorkflowState, system)
		},
		"patch setting flag": func(c *client.Client) error {
			_, err := c.Patch(ctx, domain.EntityWorkflowState, "w1", domain.Record{"isSystem": true})
			return err
		},
		"update setting flag": func(c *client.Client) error {
			_, err := c.Update(ctx, domain.EntityAuthor, "a1", domain.Author{Name: "Ada", Email: "e", IsSystem: true})
			return err
		},
	}

	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			tr := respond(200, author)
			err := call(client.New(tr))

			var policy *domain.PolicyError
			require.ErrorAs(t, err, &policy)
			assert.ErrorIs(t, err, domain.ErrPolicy)
			assert.Empty(t, tr.calls)
		})
	}
}

func TestSystemGuard_StoredSystemRecord(t *testing.T) {
	stored := `{"id":"c1","title":"Home","slug":"home","contentType":"PAGE","isSystem":true,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	ctx := context.Background()

	cases := map[string]func(c *client.Client) error{
		"update": func(c *client.Client) error {
			_, err := c.Update(ctx, domain.EntityContent, "c1", domain.Record{"title": "Hacked", "slug": "home", "contentType": "PAGE"})
			return err
		},
		"patch": func(c *client.Client) error {
			_, err := c.Patch(ctx, domain.EntityContent, "c1", domain.Record{"title": "Hacked"})
			return err
		},
		"delete": func(c *client.Client) error {
			return c.Delete(ctx, domain.EntityContent, "c1")
		},
		"mutable": func(c *client.Client) error {
			_, err := c.Mutable(ctx, domain.EntityContent, "c1")
			return err
		},
	}

	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			tr := respond(200, stored)
			err := call(client.New(tr))

			assert.ErrorIs(t, err, domain.ErrPolicy)
			assert.Equal(t, []string{http.MethodGet}, tr.methods(), "only the read is sent")
		})
	}
}

func TestSystemGuard_AllowsOrdinaryRecords(t *testing.T) {
	tr := respond(204, "")
	err := client.New(tr).DeleteRecord(context.Background(), domain.EntityAuthor, domain.Record{"id": "a1"})
	require.NoError(t, err)
	assert.Equal(t, "Author/a1", tr.last(t).Path)
}

func TestQuery_ValidatesAndPosts(t *testing.T) {
	tr := respond(200, `{"data":[{"id":"c1","title":"T"}],"pagination":{"limit":5,"offset":0,"total":1}}`)
	c := client.New(tr)

	q := query.New(domain.EntityContent).
		Where(query.Eq("slug", "hello")).
		Select("title").
		Limit(5).
		Query()
	res, err := c.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	sent := tr.last(t)
	assert.Equal(t, "Content/query", sent.Path)
	raw, err := json.Marshal(sent.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entity":"Content","where":{"field":"slug","op":"eq","value":"hello"},"select":["title"],"limit":5}`, string(raw))

	_, err = c.Query(context.Background(), query.New(domain.EntityContent).Where(query.Eq("nope", 1)).Query())
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Len(t, tr.calls, 1)
}

func TestQuery_UnprojectedResultsAreValidated(t *testing.T) {
	c := client.New(respond(200, `[{"id":"c1","title":"T"}]`))
	_, err := c.Query(context.Background(), query.New(domain.EntityContent).Query())
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestQuery_ProjectionsAreValidatedOnSelectedFields(t *testing.T) {
	q := query.New(domain.EntityContent).Select("title").Query()

	_, err := client.New(respond(200, `[{"id":"c1","title":"T"}]`)).Query(context.Background(), q)
	require.NoError(t, err, "unselected required fields may be absent")

	_, err = client.New(respond(200, `[{"id":"c1","title":5}]`)).Query(context.Background(), q)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestTypedHelpers(t *testing.T) {
	c := client.New(respond(200, "["+author+"]"))
	authors, err := client.ListAs[domain.Author](context.Background(), c, domain.EntityAuthor, client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "ada@example.com", authors[0].Email)

	c = client.New(respond(200, author))
	a, err := client.GetAs[domain.Author](context.Background(), c, domain.EntityAuthor, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Name)
}

func TestTransportErrorIsReturnedUnchanged(t *testing.T) {
	boom := &domain.RemoteError{Message: "connection refused"}
	_, err := client.New(&scripted{err: boom}).Create(context.Background(), domain.EntityAuthor, domain.Record{"name": "a", "email": "b"})
	assert.True(t, errors.Is(err, boom))
}
