package query

import (
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
)

// Builder manages the query construction.
type Builder struct {
	query   Query
	filters []Filter
}

// New starts a query over entity.
func New(entity string) *Builder {
	return &Builder{query: Query{Entity: entity}}
}

// Where adds a filter. Repeated calls are combined with AND.
func (b *Builder) Where(f Filter) *Builder {
	if f != nil {
		b.filters = append(b.filters, f)
	}
	return b
}

// Select restricts the returned fields.
func (b *Builder) Select(fields ...string) *Builder {
	b.query.Select = append(b.query.Select, fields...)
	return b
}

// OrderBy appends a sort key.
func (b *Builder) OrderBy(field string, dir SortDirection) *Builder {
	b.query.OrderBy = append(b.query.OrderBy, Order{Field: field, Direction: dir})
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.query.Limit = &n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.query.Offset = &n
	return b
}

// Traverse appends traversal steps from the root result set.
func (b *Builder) Traverse(steps ...*StepBuilder) *Builder {
	for _, s := range steps {
		b.query.Traverse = append(b.query.Traverse, s.Step())
	}
	return b
}

// Query returns the assembled query without validating it.
func (b *Builder) Query() *Query {
	q := b.query
	q.Where = combine(b.filters)
	return &q
}

// Build assembles the query and validates it against reg.
func (b *Builder) Build(reg *registry.Registry) (*Query, error) {
	q := b.Query()
	if err := q.Validate(reg); err != nil {
		return nil, err
	}
	return q, nil
}

// StepBuilder manages the construction of one traversal step.
type StepBuilder struct {
	step    Step
	filters []Filter
	edge    []Filter
	then    []*StepBuilder
}

// Follow starts a step over relationship in direction dir.
func Follow(relationship string, dir domain.Direction) *StepBuilder {
	return &StepBuilder{step: Step{Relationship: relationship, Direction: dir}}
}

// Out follows edges from source to target.
func Out(relationship string) *StepBuilder { return Follow(relationship, domain.Outgoing) }

// Incoming follows edges from target to source.
func Incoming(relationship string) *StepBuilder { return Follow(relationship, domain.Incoming) }

// Both follows edges in either direction.
func Both(relationship string) *StepBuilder { return Follow(relationship, domain.Both) }

// Where filters on the far-end node. Repeated calls are combined with AND.
func (s *StepBuilder) Where(f Filter) *StepBuilder {
	if f != nil {
		s.filters = append(s.filters, f)
	}
	return s
}

// WhereEdge filters on edge properties. Repeated calls are combined with AND.
func (s *StepBuilder) WhereEdge(f Filter) *StepBuilder {
	if f != nil {
		s.edge = append(s.edge, f)
	}
	return s
}

// Then nests steps that continue from this step's far-end nodes.
func (s *StepBuilder) Then(steps ...*StepBuilder) *StepBuilder {
	s.then = append(s.then, steps...)
	return s
}

// IncludeOption configures inline inclusion.
type IncludeOption func(*Include)

// As names the key the included nodes are returned under.
func As(name string) IncludeOption {
	return func(i *Include) { i.As = name }
}

func IncludeLimit(n int) IncludeOption {
	return func(i *Include) { i.Limit = &n }
}

func IncludeOffset(n int) IncludeOption {
	return func(i *Include) { i.Offset = &n }
}

func IncludeOrder(field string, dir SortDirection) IncludeOption {
	return func(i *Include) { i.OrderBy = append(i.OrderBy, Order{Field: field, Direction: dir}) }
}

// Include returns the far-end nodes inline.
func (s *StepBuilder) Include(opts ...IncludeOption) *StepBuilder {
	inc := &Include{}
	for _, opt := range opts {
		opt(inc)
	}
	s.step.Include = inc
	return s
}

// Step assembles the step and its nested steps.
func (s *StepBuilder) Step() *Step {
	step := s.step
	step.Where = combine(s.filters)
	step.EdgeWhere = combine(s.edge)
	step.Steps = nil
	for _, child := range s.then {
		step.Steps = append(step.Steps, child.Step())
	}
	return &step
}

func combine(filters []Filter) Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return And(append([]Filter(nil), filters...))
}
