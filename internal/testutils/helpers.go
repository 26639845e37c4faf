package testutils

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/fakestore"
	httpAdapter "github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/http"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// SetupStore starts an in-memory remote store behind httptest and returns it
// together with a client talking to it over real HTTP.
// The server is closed when the test ends.
func SetupStore(t *testing.T, opts ...fakestore.Option) (*fakestore.Store, *client.Client) {
	t.Helper()

	store := fakestore.New(append([]fakestore.Option{fakestore.WithToken(testToken)}, opts...)...)
	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	tr, err := httpAdapter.New(srv.URL, httpAdapter.WithToken(testToken))
	require.NoError(t, err, "Failed to create transport")

	return store, client.New(tr)
}

// CountingTransport records how many requests reach the wrapped transport.
type CountingTransport struct {
	Next  ports.Transport
	calls atomic.Int64
}

// Do forwards req and counts it.
func (c *CountingTransport) Do(ctx context.Context, req ports.Request) (*ports.Response, error) {
	c.calls.Add(1)
	return c.Next.Do(ctx, req)
}

// Calls returns the number of forwarded requests.
func (c *CountingTransport) Calls() int64 { return c.calls.Load() }

// Seed inserts rec into store and fails the test on error.
func Seed(t *testing.T, store *fakestore.Store, entity string, rec any) string {
	t.Helper()
	stored, err := store.Seed(entity, rec)
	require.NoError(t, err, "Failed to seed %s", entity)
	return stored.ID()
}

// Link inserts an edge into store and fails the test on error.
func Link(t *testing.T, store *fakestore.Store, relType, sourceID, targetID string, props map[string]any) {
	t.Helper()
	require.NoError(t, store.Link(relType, sourceID, targetID, props), "Failed to link %s", relType)
}
