// Package compose assembles read models that span several entities: page
// and category trees, breadcrumbs, page sections and bylines.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/client"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// ErrCycle is returned when a parent chain loops back on itself.
var ErrCycle = errors.New("parent cycle")

// DefaultConcurrency bounds sibling fetches per tree level.
const DefaultConcurrency = 8

// Composer reads composite structures through a client.
type Composer struct {
	client      *client.Client
	concurrency int
	logger      *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithConcurrency sets how many siblings are fetched at once. Values below
// one fall back to DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Composer.
func New(c *client.Client, opts ...Option) *Composer {
	comp := &Composer{client: c, concurrency: DefaultConcurrency, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(comp)
	}
	return comp
}

// Tree is one node of a hierarchy together with its ordered children.
// Position is the edge position linking the node to its parent.
type Tree[T any] struct {
	Item     T          `json:"item"`
	Position int        `json:"position"`
	Children []*Tree[T] `json:"children,omitempty"`
}

// Size counts the nodes of the tree.
func (t *Tree[T]) Size() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, child := range t.Children {
		n += child.Size()
	}
	return n
}

// hierarchy describes a self-referential parent edge. Children point at
// their parent, so a node's children are its incoming edges.
type hierarchy struct {
	entity string
	rel    string
}

var (
	pages      = hierarchy{entity: domain.EntityPage, rel: domain.RelPageParent}
	categories = hierarchy{entity: domain.EntityCategory, rel: domain.RelCategoryParent}
)

// PageTree loads pageID and its descendants. depth limits how many levels
// below the root are fetched; a negative depth means no limit.
func (c *Composer) PageTree(ctx context.Context, pageID string, depth int) (*Tree[domain.Page], error) {
	return buildTree[domain.Page](ctx, c, pages, pageID, depth)
}

// CategoryTree loads categoryID and its descendants. depth behaves as in
// PageTree.
func (c *Composer) CategoryTree(ctx context.Context, categoryID string, depth int) (*Tree[domain.Category], error) {
	return buildTree[domain.Category](ctx, c, categories, categoryID, depth)
}

func buildTree[T any](ctx context.Context, c *Composer, h hierarchy, rootID string, depth int) (*Tree[T], error) {
	item, err := client.GetAs[T](ctx, c.client, h.entity, rootID)
	if err != nil {
		return nil, err
	}
	root := &Tree[T]{Item: *item}
	if err := expand(ctx, c, h, root, rootID, depth, map[string]bool{rootID: true}); err != nil {
		return nil, err
	}
	c.logger.Debug("tree composed", "entity", h.entity, "root", rootID, "nodes", root.Size())
	return root, nil
}

// expand attaches the children of node and recurses into them. Parents are
// always resolved before their children; siblings are fetched concurrently.
// path holds the ids from the root down to node.
func expand[T any](ctx context.Context, c *Composer, h hierarchy, node *Tree[T], id string, depth int, path map[string]bool) error {
	if depth == 0 {
		return nil
	}
	edges, err := c.client.GetRelationships(ctx, h.entity, id, h.rel, domain.Incoming, h.entity)
	if err != nil {
		return fmt.Errorf("children of %s %s: %w", h.entity, id, err)
	}

	children := make([]*Tree[T], len(edges))
	ids := make([]string, len(edges))
	for i, edge := range edges {
		childID := edge.Target.ID()
		if path[childID] {
			return fmt.Errorf("%s %s: %w", h.entity, childID, ErrCycle)
		}
		item, err := client.Decode[T](edge.Target)
		if err != nil {
			return err
		}
		children[i] = &Tree[T]{Item: *item, Position: edgePosition(edge)}
		ids[i] = childID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range children {
		i := i
		g.Go(func() error {
			branch := make(map[string]bool, len(path)+1)
			for k := range path {
				branch[k] = true
			}
			branch[ids[i]] = true
			return expand(gctx, c, h, children[i], ids[i], depth-1, branch)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(children, func(i, j int) bool { return children[i].Position < children[j].Position })
	node.Children = children
	return nil
}

// Ancestry returns the chain of pages from the root down to pageID,
// pageID included. A page with several parents follows the first edge.
func (c *Composer) Ancestry(ctx context.Context, pageID string) ([]domain.Page, error) {
	page, err := client.GetAs[domain.Page](ctx, c.client, domain.EntityPage, pageID)
	if err != nil {
		return nil, err
	}
	chain := []domain.Page{*page}
	seen := map[string]bool{pageID: true}

	for id := pageID; ; {
		edges, err := c.client.GetRelationships(ctx, domain.EntityPage, id, domain.RelPageParent, domain.Outgoing, domain.EntityPage)
		if err != nil {
			return nil, fmt.Errorf("parent of page %s: %w", id, err)
		}
		if len(edges) == 0 {
			break
		}
		parentID := edges[0].Target.ID()
		if seen[parentID] {
			return nil, fmt.Errorf("page %s: %w", parentID, ErrCycle)
		}
		seen[parentID] = true

		parent, err := client.Decode[domain.Page](edges[0].Target)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *parent)
		id = parentID
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Sections returns the sections of pageID ordered by their position field.
func (c *Composer) Sections(ctx context.Context, pageID string) ([]domain.PageSection, error) {
	edges, err := c.client.GetRelationships(ctx, domain.EntityPage, pageID, domain.RelPageHasSection, domain.Outgoing, domain.EntityPageSection)
	if err != nil {
		return nil, fmt.Errorf("sections of page %s: %w", pageID, err)
	}
	sections := make([]domain.PageSection, 0, len(edges))
	for _, edge := range edges {
		s, err := client.Decode[domain.PageSection](edge.Target)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })
	return sections, nil
}

// PrimaryAuthor returns the author linked to contentID with role PRIMARY,
// or nil when there is none.
func (c *Composer) PrimaryAuthor(ctx context.Context, contentID string) (*domain.Author, error) {
	edges, err := c.client.GetRelationships(ctx, domain.EntityContent, contentID, domain.RelAuthoredBy, domain.Outgoing, domain.EntityAuthor)
	if err != nil {
		return nil, fmt.Errorf("authors of content %s: %w", contentID, err)
	}
	for _, edge := range edges {
		if role, _ := edge.Properties["role"].(string); domain.AuthorRole(role) == domain.RolePrimary {
			return client.Decode[domain.Author](edge.Target)
		}
	}
	return nil, nil
}

func edgePosition(edge domain.Relationship) int {
	switch v := edge.Properties["position"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}
