package cli

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/fakestore"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/workflow"
)

// DevStoreOptions configures ServeDevStore.
type DevStoreOptions struct {
	Addr     string
	Token    string
	Envelope bool
	// Seed creates the built-in workflow states on start.
	Seed bool
}

// NewDevStore builds the in-memory store served by ServeDevStore.
func NewDevStore(opts DevStoreOptions, logger *slog.Logger) (*fakestore.Store, error) {
	store := fakestore.New(
		fakestore.WithToken(opts.Token),
		fakestore.WithEnvelope(opts.Envelope),
		fakestore.WithLogger(logger),
	)
	if opts.Seed {
		for _, s := range workflow.DefaultStates() {
			if _, err := store.Seed(domain.EntityWorkflowState, s); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

// ServeDevStore runs an in-memory store speaking the remote HTTP surface
// until ctx ends.
func ServeDevStore(ctx context.Context, opts DevStoreOptions, logger *slog.Logger) error {
	store, err := NewDevStore(opts, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: opts.Addr, Handler: store.Handler(), ReadHeaderTimeout: 5 * time.Second}
	return serve(ctx, srv, logger)
}
