package query

import (
	"fmt"
	"reflect"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
)

// Validate type-checks q against reg, top-down. Every problem found is
// reported in a single *domain.SchemaError. An unknown root entity is
// returned as a registry.ErrUnknownEntity error.
func (q *Query) Validate(reg *registry.Registry) error {
	def, err := reg.Entity(q.Entity)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	v := &validator{reg: reg}
	v.filter("where", q.Where, def.Fields)
	v.fields("select", q.Select, def.Fields)
	v.orders("orderBy", q.OrderBy, def.Fields)
	v.paging("", q.Limit, q.Offset)
	for i, step := range q.Traverse {
		v.step(fmt.Sprintf("traverse[%d]", i), step, q.Entity)
	}

	if len(v.errs) > 0 {
		return &domain.SchemaError{
			Subject: "query on " + q.Entity,
			Err:     &schema.AggregateError{Errors: v.errs},
		}
	}
	return nil
}

type validator struct {
	reg  *registry.Registry
	errs []error
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, &schema.ValidationError{Key: path, Reason: fmt.Sprintf(format, args...)})
}

func (v *validator) step(path string, s *Step, from string) {
	if s == nil {
		v.fail(path, "nil traversal step")
		return
	}

	def, err := v.reg.Relationship(s.Relationship)
	if err != nil {
		v.errs = append(v.errs, fmt.Errorf("%s: %w", path, err))
		return
	}

	dir, err := domain.ParseDirection(string(s.Direction))
	if err != nil {
		v.fail(path+".direction", "%v", err)
		return
	}

	ends := def.Ends(from, dir)
	if len(ends) == 0 {
		v.fail(path, "%s does not connect %s in direction %s", s.Relationship, from, dir)
		return
	}
	target, err := v.reg.Entity(ends[0])
	if err != nil {
		v.errs = append(v.errs, fmt.Errorf("%s: %w", path, err))
		return
	}

	v.filter(path+".edgeWhere", s.EdgeWhere, def.Properties)
	v.filter(path+".where", s.Where, target.Fields)

	if s.Include != nil {
		v.paging(path+".include.", s.Include.Limit, s.Include.Offset)
		v.orders(path+".include.orderBy", s.Include.OrderBy, target.Fields)
	}

	for i, child := range s.Steps {
		v.step(fmt.Sprintf("%s.traverse[%d]", path, i), child, target.Name)
	}
}

func (v *validator) paging(prefix string, limit, offset *int) {
	if limit != nil && *limit < 0 {
		v.fail(prefix+"limit", "must be >= 0, got %d", *limit)
	}
	if offset != nil && *offset < 0 {
		v.fail(prefix+"offset", "must be >= 0, got %d", *offset)
	}
}

func (v *validator) fields(path string, fields []string, s schema.Schema) {
	for _, f := range fields {
		if !s.Has(f) {
			v.fail(path, "unknown field %q", f)
		}
	}
}

func (v *validator) orders(path string, orders []Order, s schema.Schema) {
	for _, o := range orders {
		if !s.Has(o.Field) {
			v.fail(path, "unknown field %q", o.Field)
			continue
		}
		if o.Direction != Asc && o.Direction != Desc {
			v.fail(path, "invalid sort direction %q for %s", o.Direction, o.Field)
		}
	}
}

func (v *validator) filter(path string, f Filter, s schema.Schema) {
	switch node := f.(type) {
	case nil:
	case Predicate:
		v.predicate(path, node, s)
	case *Predicate:
		v.predicate(path, *node, s)
	case And:
		v.children(path+".and", node, s)
	case Or:
		v.children(path+".or", node, s)
	default:
		v.fail(path, "unsupported filter node %T", f)
	}
}

func (v *validator) children(path string, children []Filter, s schema.Schema) {
	if len(children) == 0 {
		v.fail(path, "combinator needs at least one operand")
		return
	}
	for i, child := range children {
		v.filter(fmt.Sprintf("%s[%d]", path, i), child, s)
	}
}

func (v *validator) predicate(path string, p Predicate, s schema.Schema) {
	path = path + "." + p.Field
	declared, ok := s[p.Field]
	if !ok {
		v.fail(path, "unknown field %q", p.Field)
		return
	}
	if !p.Op.valid() {
		v.fail(path, "unknown operator %q", p.Op)
		return
	}
	typ := schema.Unwrap(declared)

	switch p.Op {
	case OpEq, OpNeq:
		// A null operand tests for absence
		if p.Value == nil {
			return
		}
		v.operand(path, typ, p.Value)
	case OpGt, OpGte, OpLt, OpLte:
		if !orderable(typ) {
			v.fail(path, "operator %s does not apply to %s", p.Op, typ.Name())
			return
		}
		v.operand(path, typ, p.Value)
	case OpIn, OpNotIn:
		rv := reflect.ValueOf(p.Value)
		if p.Value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			v.fail(path, "operator %s expects a list, got %T", p.Op, p.Value)
			return
		}
		for i := 0; i < rv.Len(); i++ {
			v.operand(fmt.Sprintf("%s[%d]", path, i), typ, rv.Index(i).Interface())
		}
	case OpContains:
		switch t := typ.(type) {
		case *schema.StringType:
			v.operand(path, t, p.Value)
		case *schema.SliceType:
			v.operand(path, t.Elem(), p.Value)
		default:
			v.fail(path, "operator contains does not apply to %s", typ.Name())
		}
	}
}

func (v *validator) operand(path string, typ schema.Type, value any) {
	if err := typ.Validate(value); err != nil {
		v.fail(path, "%v", err)
	}
}

func orderable(t schema.Type) bool {
	switch t.(type) {
	case *schema.IntType, *schema.IntRangeType, *schema.FloatType, *schema.TimeType, *schema.StringType:
		return true
	}
	return false
}
