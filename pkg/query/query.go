package query

import (
	"encoding/json"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
)

// SortDirection orders results.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Order sorts by one field.
type Order struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Query is the wire form of a graph query against one entity type.
type Query struct {
	Entity   string   `json:"entity"`
	Where    Filter   `json:"where,omitempty"`
	Select   []string `json:"select,omitempty"`
	OrderBy  []Order  `json:"orderBy,omitempty"`
	Limit    *int     `json:"limit,omitempty"`
	Offset   *int     `json:"offset,omitempty"`
	Traverse []*Step  `json:"traverse,omitempty"`
}

// Step follows one relationship type from the current result set.
// Steps nest without a depth bound.
type Step struct {
	Relationship string           `json:"relationship"`
	Direction    domain.Direction `json:"direction"`
	// Where filters the nodes at the far end of the edge.
	Where Filter `json:"where,omitempty"`
	// EdgeWhere filters on the edge's own properties.
	EdgeWhere Filter   `json:"edgeWhere,omitempty"`
	Steps     []*Step  `json:"traverse,omitempty"`
	Include   *Include `json:"include,omitempty"`
}

// Include returns the related nodes inline instead of only filtering by them.
type Include struct {
	As      string  `json:"as,omitempty"`
	Limit   *int    `json:"limit,omitempty"`
	Offset  *int    `json:"offset,omitempty"`
	OrderBy []Order `json:"orderBy,omitempty"`
}

type queryWire struct {
	Entity   string          `json:"entity"`
	Where    json.RawMessage `json:"where,omitempty"`
	Select   []string        `json:"select,omitempty"`
	OrderBy  []Order         `json:"orderBy,omitempty"`
	Limit    *int            `json:"limit,omitempty"`
	Offset   *int            `json:"offset,omitempty"`
	Traverse []*Step         `json:"traverse,omitempty"`
}

func (q *Query) UnmarshalJSON(data []byte) error {
	var w queryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	where, err := DecodeFilter(w.Where)
	if err != nil {
		return err
	}
	*q = Query{
		Entity:   w.Entity,
		Where:    where,
		Select:   w.Select,
		OrderBy:  w.OrderBy,
		Limit:    w.Limit,
		Offset:   w.Offset,
		Traverse: w.Traverse,
	}
	return nil
}

type stepWire struct {
	Relationship string           `json:"relationship"`
	Direction    domain.Direction `json:"direction"`
	Where        json.RawMessage  `json:"where,omitempty"`
	EdgeWhere    json.RawMessage  `json:"edgeWhere,omitempty"`
	Steps        []*Step          `json:"traverse,omitempty"`
	Include      *Include         `json:"include,omitempty"`
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var w stepWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	where, err := DecodeFilter(w.Where)
	if err != nil {
		return err
	}
	edgeWhere, err := DecodeFilter(w.EdgeWhere)
	if err != nil {
		return err
	}
	*s = Step{
		Relationship: w.Relationship,
		Direction:    w.Direction,
		Where:        where,
		EdgeWhere:    edgeWhere,
		Steps:        w.Steps,
		Include:      w.Include,
	}
	return nil
}

// Depth returns the longest traversal chain in q.
func (q *Query) Depth() int {
	return depth(q.Traverse)
}

func depth(steps []*Step) int {
	deepest := 0
	for _, s := range steps {
		if d := 1 + depth(s.Steps); d > deepest {
			deepest = d
		}
	}
	return deepest
}
