package fakestore

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/query"
)

// evaluate runs q over the nodes of entity. A traversal step without an
// include acts as an existence filter; with an include the matching far
// nodes are attached under the include alias.
func (s *Store) evaluate(entity string, q *query.Query) []domain.Record {
	type hit struct {
		rec      domain.Record
		included map[string]any
	}
	var hits []hit
	for _, rec := range s.all(entity) {
		if !match(rec, q.Where) {
			continue
		}
		included := map[string]any{}
		if !s.traverse(rec, q.Traverse, included) {
			continue
		}
		hits = append(hits, hit{rec: rec, included: included})
	}

	out := make([]domain.Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	includes := make(map[string]map[string]any, len(hits))
	for _, h := range hits {
		includes[h.rec.ID()] = h.included
	}
	for i := len(q.OrderBy) - 1; i >= 0; i-- {
		sortBy(out, q.OrderBy[i])
	}

	for i, rec := range out {
		view := rec.Clone()
		if len(q.Select) > 0 {
			view = project(rec, q.Select)
		}
		for alias, v := range includes[rec.ID()] {
			view[alias] = v
		}
		out[i] = view
	}
	return out
}

// traverse reports whether rec satisfies every step. Included far nodes are
// collected into included under their alias.
func (s *Store) traverse(rec domain.Record, steps []*query.Step, included map[string]any) bool {
	for _, step := range steps {
		dir, err := domain.ParseDirection(string(step.Direction))
		if err != nil {
			return false
		}
		var hits []domain.Record
		for _, n := range s.neighbours(rec.ID(), step.Relationship, dir) {
			if !match(n.edge.Props, step.EdgeWhere) || !match(n.node, step.Where) {
				continue
			}
			nested := map[string]any{}
			if !s.traverse(n.node, step.Steps, nested) {
				continue
			}
			far := n.node.Clone()
			for alias, v := range nested {
				far[alias] = v
			}
			hits = append(hits, far)
		}

		if step.Include == nil {
			if len(hits) == 0 {
				return false
			}
			continue
		}
		inc := step.Include
		for i := len(inc.OrderBy) - 1; i >= 0; i-- {
			sortBy(hits, inc.OrderBy[i])
		}
		limit, offset := -1, 0
		if inc.Limit != nil {
			limit = *inc.Limit
		}
		if inc.Offset != nil {
			offset = *inc.Offset
		}
		alias := inc.As
		if alias == "" {
			alias = step.Relationship
		}
		included[alias] = paginate(hits, limit, offset)
	}
	return true
}

func match(rec domain.Record, f query.Filter) bool {
	switch f := f.(type) {
	case nil:
		return true
	case query.And:
		for _, c := range f {
			if !match(rec, c) {
				return false
			}
		}
		return true
	case query.Or:
		for _, c := range f {
			if match(rec, c) {
				return true
			}
		}
		return false
	case query.Predicate:
		return predicate(rec[f.Field], f.Op, f.Value)
	case *query.Predicate:
		return predicate(rec[f.Field], f.Op, f.Value)
	}
	return false
}

func predicate(actual any, op query.Op, want any) bool {
	switch op {
	case query.OpEq:
		return equal(actual, want)
	case query.OpNeq:
		return !equal(actual, want)
	case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		c, ok := compare(actual, want)
		if !ok {
			return false
		}
		switch op {
		case query.OpGt:
			return c > 0
		case query.OpGte:
			return c >= 0
		case query.OpLt:
			return c < 0
		default:
			return c <= 0
		}
	case query.OpIn, query.OpNotIn:
		list, _ := want.([]any)
		found := false
		for _, v := range list {
			if equal(actual, v) {
				found = true
				break
			}
		}
		return found == (op == query.OpIn)
	case query.OpContains:
		switch a := actual.(type) {
		case string:
			s, ok := want.(string)
			return ok && strings.Contains(a, s)
		case []any:
			for _, v := range a {
				if equal(v, want) {
					return true
				}
			}
		}
	}
	return false
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// compare orders numbers numerically and everything else by its string
// form, which sorts RFC3339 timestamps chronologically.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}

func sortBy(records []domain.Record, o query.Order) {
	desc := o.Direction == query.Desc
	sort.SliceStable(records, func(i, j int) bool {
		c, ok := compare(records[i][o.Field], records[j][o.Field])
		if !ok {
			// missing values sort last
			return records[i][o.Field] != nil && records[j][o.Field] == nil
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func project(rec domain.Record, fields []string) domain.Record {
	out := domain.Record{domain.FieldID: rec[domain.FieldID]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// matchesParams applies plain query parameters as string equality filters.
func matchesParams(rec domain.Record, params url.Values) bool {
	for k, vals := range params {
		if k == "limit" || k == "offset" {
			continue
		}
		if fmt.Sprint(rec[k]) != vals[0] {
			return false
		}
	}
	return true
}
