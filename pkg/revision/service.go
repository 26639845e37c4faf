package revision

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/blockstore"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
)

// Service records and restores revisions of content items.
type Service struct {
	client *client.Client
	blocks *blockstore.Store
	locker ports.Locker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocker serialises revision numbering of the same content item.
func WithLocker(l ports.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Service) { s.hooks = s.hooks.Merge(h) }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a revision service. blocks is used to capture and
// restore block lists.
func NewService(c *client.Client, blocks *blockstore.Store, opts ...Option) *Service {
	s := &Service{client: c, blocks: blocks, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the revisions of contentID, newest first.
func (s *Service) List(ctx context.Context, contentID string) ([]domain.ContentRevision, error) {
	edges, err := s.client.GetRelationships(ctx, domain.EntityContent, contentID, domain.RelHasRevision, domain.Outgoing, domain.EntityContentRevision)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	revs := make([]domain.ContentRevision, 0, len(edges))
	for _, edge := range edges {
		rev, err := client.Decode[domain.ContentRevision](edge.Target)
		if err != nil {
			return nil, err
		}
		revs = append(revs, *rev)
	}
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].RevisionNumber > revs[j].RevisionNumber })
	return revs, nil
}

// Current returns the revision flagged current, or nil when there is none.
// Should several carry the flag, the highest number wins.
func (s *Service) Current(ctx context.Context, contentID string) (*domain.ContentRevision, error) {
	revs, err := s.List(ctx, contentID)
	if err != nil {
		return nil, err
	}
	for i := range revs {
		if revs[i].IsCurrent {
			return &revs[i], nil
		}
	}
	return nil, nil
}

// Get fetches one revision by id.
func (s *Service) Get(ctx context.Context, revisionID string) (*domain.ContentRevision, error) {
	return client.GetAs[domain.ContentRevision](ctx, s.client, domain.EntityContentRevision, revisionID)
}

// Create records blocks as the new current revision of contentID. Every
// earlier revision loses its current flag first.
func (s *Service) Create(ctx context.Context, contentID, title string, blocks []document.Block, message, actor string) (*domain.ContentRevision, error) {
	snap, err := Snapshot(blocks)
	if err != nil {
		return nil, err
	}

	var created *domain.ContentRevision
	err = ports.WithLock(ctx, s.locker, "revisions:"+contentID, ports.DefaultLockTTL, func() error {
		existing, err := s.List(ctx, contentID)
		if err != nil {
			return err
		}

		next := 1
		for _, r := range existing {
			if r.RevisionNumber >= next {
				next = r.RevisionNumber + 1
			}
		}
		for _, r := range existing {
			if !r.IsCurrent {
				continue
			}
			if _, err := s.client.Patch(ctx, domain.EntityContentRevision, r.ID, map[string]any{"isCurrent": false}); err != nil {
				return fmt.Errorf("clear current flag of revision %d: %w", r.RevisionNumber, err)
			}
		}

		rec, err := s.client.Create(ctx, domain.EntityContentRevision, domain.ContentRevision{
			RevisionNumber: next,
			Title:          title,
			Blocks:         snap,
			ChangeMessage:  message,
			IsCurrent:      true,
			CreatedBy:      actor,
		})
		if err != nil {
			return fmt.Errorf("create revision: %w", err)
		}
		if _, err := s.client.CreateRelationship(ctx, domain.EntityContent, contentID, domain.RelHasRevision, rec.ID(), nil); err != nil {
			return fmt.Errorf("link revision: %w", err)
		}

		created, err = client.Decode[domain.ContentRevision](rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hooks.EmitRevisionCreated(ctx, &domain.ContentEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now()},
		ContentID:  contentID,
		BlockCount: len(snap),
		Revision:   created.RevisionNumber,
	})
	s.logger.Info("revision created", "content_id", contentID, "revision", created.RevisionNumber, "blocks", len(snap))
	return created, nil
}

// Capture snapshots the stored title and blocks of contentID.
func (s *Service) Capture(ctx context.Context, contentID, message, actor string) (*domain.ContentRevision, error) {
	content, err := client.GetAs[domain.Content](ctx, s.client, domain.EntityContent, contentID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.LoadBlocks(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, contentID, content.Title, blocks, message, actor)
}

// Restore rewrites the blocks and title of contentID from revisionID and
// records the result as a new revision. The steps are not transactional;
// a failure leaves whatever was written so far, and rerunning converges.
func (s *Service) Restore(ctx context.Context, contentID, revisionID, actor string) (*domain.ContentRevision, error) {
	revs, err := s.List(ctx, contentID)
	if err != nil {
		return nil, err
	}
	var source *domain.ContentRevision
	for i := range revs {
		if revs[i].ID == revisionID {
			source = &revs[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("revision %s of content %s: %w", revisionID, contentID, domain.ErrNotFound)
	}

	blocks, err := document.FromSnapshot(source.Blocks)
	if err != nil {
		return nil, fmt.Errorf("thaw revision %d: %w", source.RevisionNumber, err)
	}
	content, err := s.client.Mutable(ctx, domain.EntityContent, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.blocks.SaveBlocks(ctx, contentID, blocks); err != nil {
		return nil, fmt.Errorf("restore blocks: %w", err)
	}
	if _, err := s.client.PatchRecord(ctx, domain.EntityContent, content, map[string]any{"title": source.Title}); err != nil {
		return nil, fmt.Errorf("restore title: %w", err)
	}

	message := fmt.Sprintf("Restored from revision %d", source.RevisionNumber)
	return s.Create(ctx, contentID, source.Title, blocks, message, actor)
}

// Compare diffs two stored revisions.
func (s *Service) Compare(ctx context.Context, fromID, toID string) (Diff, error) {
	a, err := s.Get(ctx, fromID)
	if err != nil {
		return Diff{}, err
	}
	b, err := s.Get(ctx, toID)
	if err != nil {
		return Diff{}, err
	}
	return CompareRevisions(a, b), nil
}
