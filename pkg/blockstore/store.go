// Package blockstore persists documents as ContentBlock entities linked to
// their content item by HAS_BLOCK edges carrying the block position.
package blockstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
)

// Store saves and loads the block list of content items.
type Store struct {
	client *client.Client
	locker ports.Locker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLocker serialises saves of the same content item.
func WithLocker(l ports.Locker) Option {
	return func(s *Store) { s.locker = l }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Store) { s.hooks = s.hooks.Merge(h) }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a block store backed by c.
func New(c *client.Client, opts ...Option) *Store {
	s := &Store{client: c, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces the block list of contentID with the blocks of doc.
func (s *Store) Save(ctx context.Context, contentID string, doc document.Node) ([]document.Block, error) {
	blocks := document.DocumentToBlocks(doc)
	if err := s.SaveBlocks(ctx, contentID, blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// SaveBlocks deletes every block of contentID and recreates it from blocks.
//
// The sequence is not transactional. A failure part way leaves a partial
// list; calling SaveBlocks again with the same input converges, since
// removal tolerates blocks that are already gone.
func (s *Store) SaveBlocks(ctx context.Context, contentID string, blocks []document.Block) error {
	return ports.WithLock(ctx, s.locker, "blocks:"+contentID, ports.DefaultLockTTL, func() error {
		if err := s.clear(ctx, contentID); err != nil {
			return err
		}
		for _, b := range blocks {
			if err := s.add(ctx, contentID, b); err != nil {
				return err
			}
		}
		s.hooks.EmitBlocksSaved(ctx, &domain.ContentEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now()},
			ContentID:  contentID,
			BlockCount: len(blocks),
		})
		s.logger.Info("blocks saved", "content_id", contentID, "count", len(blocks))
		return nil
	})
}

func (s *Store) clear(ctx context.Context, contentID string) error {
	edges, err := s.client.GetRelationships(ctx, domain.EntityContent, contentID, domain.RelHasBlock, domain.Outgoing, "")
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}
	for _, edge := range edges {
		id := edge.Target.ID()
		if err := s.client.DeleteRelationship(ctx, domain.EntityContent, contentID, domain.RelHasBlock, id); err != nil && !domain.IsNotFound(err) {
			return fmt.Errorf("unlink block %s: %w", id, err)
		}
		if err := s.client.DeleteRecord(ctx, domain.EntityContentBlock, edge.Target); err != nil && !domain.IsNotFound(err) {
			return fmt.Errorf("delete block %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) add(ctx context.Context, contentID string, b document.Block) error {
	cb, err := document.ToContentBlock(b)
	if err != nil {
		return err
	}
	created, err := s.client.Create(ctx, domain.EntityContentBlock, cb)
	if err != nil {
		return fmt.Errorf("create block %d: %w", b.Position, err)
	}
	_, err = s.client.CreateRelationship(ctx, domain.EntityContent, contentID, domain.RelHasBlock, created.ID(),
		map[string]any{"position": b.Position})
	if err != nil {
		return fmt.Errorf("link block %d: %w", b.Position, err)
	}
	return nil
}

// LoadBlocks returns the typed blocks of contentID ordered by the edge
// position, falling back to the block's own position.
func (s *Store) LoadBlocks(ctx context.Context, contentID string) ([]document.Block, error) {
	edges, err := s.client.GetRelationships(ctx, domain.EntityContent, contentID, domain.RelHasBlock, domain.Outgoing, domain.EntityContentBlock)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	cbs := make([]domain.ContentBlock, 0, len(edges))
	for _, edge := range edges {
		cb, err := client.Decode[domain.ContentBlock](edge.Target)
		if err != nil {
			return nil, err
		}
		if pos, ok := edge.Properties.Int("position"); ok {
			cb.Position = pos
		}
		cbs = append(cbs, *cb)
	}
	sort.SliceStable(cbs, func(i, j int) bool { return cbs[i].Position < cbs[j].Position })
	return document.FromContentBlocks(cbs)
}

// Load returns the document of contentID.
func (s *Store) Load(ctx context.Context, contentID string) (document.Node, error) {
	blocks, err := s.LoadBlocks(ctx, contentID)
	if err != nil {
		return document.Node{}, err
	}
	return document.BlocksToDocument(blocks), nil
}
