package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/query"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
)

// Query validates q against the registry and runs it on the store.
// Records are returned as the store shaped them; traversal includes appear
// under their alias and are not validated. A projection is checked against
// the selected fields only.
func (c *Client) Query(ctx context.Context, q *query.Query) (*ListResult, error) {
	if err := q.Validate(c.registry); err != nil {
		return nil, err
	}
	def, err := c.registry.Entity(q.Entity)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   join(q.Entity, "query"),
		Route:  q.Entity + "/query",
		Body:   q,
	})
	if err != nil {
		return nil, err
	}

	limit, offset := 0, 0
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.Offset != nil {
		offset = *q.Offset
	}
	res, err := parseList(resp, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(q.Select) == 0 {
		err = validateAll(def, res.Records)
	} else {
		err = validateProjected(def, res.Records, q.Select)
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("query executed", "entity", q.Entity, "depth", q.Depth(), "count", len(res.Records))
	return res, nil
}

func validateProjected(def *registry.EntityDef, records []domain.Record, fields []string) error {
	for i, rec := range records {
		if err := def.ValidateProjection(rec, fields); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
