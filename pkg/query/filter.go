package query

import (
	"encoding/json"
	"fmt"
)

// Op is a predicate operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNeq      Op = "neq"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpIn       Op = "in"
	OpNotIn    Op = "nin"
	OpContains Op = "contains"
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn, OpContains:
		return true
	}
	return false
}

// Filter is a node of the filter tree: a Predicate, an And or an Or.
type Filter interface {
	filter()
}

// Predicate compares one field with a value.
type Predicate struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// And matches when every child matches.
type And []Filter

// Or matches when at least one child matches.
type Or []Filter

func (Predicate) filter() {}
func (And) filter()       {}
func (Or) filter()        {}

func (a And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Filter{"and": []Filter(a)})
}

func (o Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Filter{"or": []Filter(o)})
}

func Eq(field string, value any) Predicate  { return Predicate{Field: field, Op: OpEq, Value: value} }
func Neq(field string, value any) Predicate { return Predicate{Field: field, Op: OpNeq, Value: value} }
func Gt(field string, value any) Predicate  { return Predicate{Field: field, Op: OpGt, Value: value} }
func Gte(field string, value any) Predicate { return Predicate{Field: field, Op: OpGte, Value: value} }
func Lt(field string, value any) Predicate  { return Predicate{Field: field, Op: OpLt, Value: value} }
func Lte(field string, value any) Predicate { return Predicate{Field: field, Op: OpLte, Value: value} }

// In matches when the field equals any of values.
func In(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpIn, Value: values}
}

// NotIn matches when the field equals none of values.
func NotIn(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpNotIn, Value: values}
}

// Contains matches substrings of string fields and elements of list fields.
func Contains(field string, value any) Predicate {
	return Predicate{Field: field, Op: OpContains, Value: value}
}

// AllOf combines filters with AND.
func AllOf(filters ...Filter) And { return And(filters) }

// AnyOf combines filters with OR.
func AnyOf(filters ...Filter) Or { return Or(filters) }

// DecodeFilter parses the wire form of a filter tree.
func DecodeFilter(data []byte) (Filter, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("filter must be an object: %w", err)
	}

	if raw, ok := probe["and"]; ok {
		children, err := decodeChildren(raw)
		return And(children), err
	}
	if raw, ok := probe["or"]; ok {
		children, err := decodeChildren(raw)
		return Or(children), err
	}

	var p Predicate
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid predicate: %w", err)
	}
	return p, nil
}

func decodeChildren(raw json.RawMessage) ([]Filter, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("combinator expects a list: %w", err)
	}
	children := make([]Filter, 0, len(items))
	for i, item := range items {
		child, err := DecodeFilter(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if child != nil {
			children = append(children, child)
		}
	}
	return children, nil
}
