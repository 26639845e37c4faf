// Package fakestore is an in-memory implementation of the remote graph
// store's HTTP surface. It is schema-less like the real thing and backs the
// end-to-end tests and the devstore command.
package fakestore

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/google/uuid"
)

type edge struct {
	Type     string
	SourceID string
	TargetID string
	Props    domain.Record
}

// Store holds nodes and edges. All methods are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nodes  map[string]domain.Record // id -> record
	kinds  map[string]string        // id -> entity
	order  []string                 // insertion order of ids
	edges  []*edge
	calls  atomic.Int64
	faults map[string]int

	envelope bool
	token    string
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithEnvelope makes list responses use the {data, pagination} shape
// instead of a raw array.
func WithEnvelope(enabled bool) Option {
	return func(s *Store) { s.envelope = enabled }
}

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Store) { s.token = token }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:  make(map[string]domain.Record),
		kinds:  make(map[string]string),
		faults: make(map[string]int),
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Requests returns the number of HTTP requests served so far.
func (s *Store) Requests() int64 { return s.calls.Load() }

// FailNext makes the next n requests whose route matches pattern (for example
// "POST Content") fail with a 500.
func (s *Store) FailNext(pattern string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[pattern] = n
}

// Seed inserts rec as an entity node. Missing system fields are filled in.
// The stored record is returned.
func (s *Store) Seed(entity string, rec any) (domain.Record, error) {
	r, err := domain.ToRecord(rec)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(entity, r).Clone(), nil
}

// Link inserts an edge between two existing nodes.
func (s *Store) Link(relType, sourceID, targetID string, props map[string]any) error {
	p, err := domain.ToRecord(props)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.link(relType, sourceID, targetID, p)
	return err
}

// Node returns a copy of the node with id, or nil.
func (s *Store) Node(id string) domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		return n.Clone()
	}
	return nil
}

// Count returns the number of nodes of entity.
func (s *Store) Count(entity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.all(entity))
}

// Edges returns the number of relType edges leaving sourceID.
func (s *Store) Edges(relType, sourceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.edges {
		if e.Type == relType && e.SourceID == sourceID {
			n++
		}
	}
	return n
}

func (s *Store) now() string {
	return s.clock().UTC().Format(time.RFC3339Nano)
}

func (s *Store) insert(entity string, rec domain.Record) domain.Record {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()
	rec[domain.FieldID] = id
	if _, ok := rec[domain.FieldCreatedAt]; !ok {
		rec[domain.FieldCreatedAt] = now
	}
	if _, ok := rec[domain.FieldUpdatedAt]; !ok {
		rec[domain.FieldUpdatedAt] = now
	}
	if _, exists := s.nodes[id]; !exists {
		s.order = append(s.order, id)
	}
	s.nodes[id] = rec
	s.kinds[id] = entity
	return rec
}

// all returns the nodes of entity in insertion order.
func (s *Store) all(entity string) []domain.Record {
	var out []domain.Record
	for _, id := range s.order {
		if s.kinds[id] == entity {
			out = append(out, s.nodes[id])
		}
	}
	return out
}

func (s *Store) get(entity, id string) (domain.Record, bool) {
	rec, ok := s.nodes[id]
	if !ok || s.kinds[id] != entity {
		return nil, false
	}
	return rec, true
}

func (s *Store) remove(id string) {
	delete(s.nodes, id)
	delete(s.kinds, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.SourceID != id && e.TargetID != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
}

func (s *Store) link(relType, sourceID, targetID string, props domain.Record) (*edge, error) {
	if _, ok := s.nodes[sourceID]; !ok {
		return nil, fmt.Errorf("%w: source %s", errMissing, sourceID)
	}
	if _, ok := s.nodes[targetID]; !ok {
		return nil, fmt.Errorf("%w: target %s", errMissing, targetID)
	}
	if s.findEdge(relType, sourceID, targetID) != nil {
		return nil, fmt.Errorf("%w: %s %s->%s", errDuplicate, relType, sourceID, targetID)
	}
	if props == nil {
		props = domain.Record{}
	}
	e := &edge{Type: relType, SourceID: sourceID, TargetID: targetID, Props: props}
	s.edges = append(s.edges, e)
	return e, nil
}

func (s *Store) findEdge(relType, sourceID, targetID string) *edge {
	for _, e := range s.edges {
		if e.Type == relType && e.SourceID == sourceID && e.TargetID == targetID {
			return e
		}
	}
	return nil
}

func (s *Store) unlink(relType, sourceID, targetID string) bool {
	for i, e := range s.edges {
		if e.Type == relType && e.SourceID == sourceID && e.TargetID == targetID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return true
		}
	}
	return false
}

type neighbour struct {
	edge *edge
	node domain.Record
}

// neighbours walks relType edges from id in direction dir, in insertion order.
func (s *Store) neighbours(id, relType string, dir domain.Direction) []neighbour {
	var out []neighbour
	for _, e := range s.edges {
		if e.Type != relType {
			continue
		}
		if (dir == domain.Outgoing || dir == domain.Both) && e.SourceID == id {
			out = append(out, neighbour{edge: e, node: s.nodes[e.TargetID]})
			continue
		}
		if (dir == domain.Incoming || dir == domain.Both) && e.TargetID == id {
			out = append(out, neighbour{edge: e, node: s.nodes[e.SourceID]})
		}
	}
	return out
}

// fault consumes one injected failure for route, if any.
func (s *Store) fault(route string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.faults[route]; n > 0 {
		s.faults[route] = n - 1
		return true
	}
	return false
}

// entities returns the entity names currently holding nodes.
func (s *Store) entities() []string {
	seen := map[string]bool{}
	for _, k := range s.kinds {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
