package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
)

// ListOptions narrows a list call. Zero values are omitted from the request.
type ListOptions struct {
	Limit  int
	Offset int
	// Params are passed through verbatim, e.g. slug=hello.
	Params url.Values
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	for k, vals := range o.Params {
		v[k] = append([]string(nil), vals...)
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	return v
}

// List returns the records of entity. The pagination envelope, if any, is dropped.
func (c *Client) List(ctx context.Context, entity string, opts ListOptions) ([]domain.Record, error) {
	res, err := c.ListWithPagination(ctx, entity, opts)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ListWithPagination returns the records of entity and the window they cover.
// Both response shapes, a raw array or {data, pagination}, are accepted.
func (c *Client) ListWithPagination(ctx context.Context, entity string, opts ListOptions) (*ListResult, error) {
	def, err := c.registry.Entity(entity)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   join(entity),
		Route:  entity,
		Query:  opts.values(),
	})
	if err != nil {
		return nil, err
	}

	res, err := parseList(resp, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	if err := validateAll(def, res.Records); err != nil {
		return nil, err
	}
	c.logger.Debug("listed records", "entity", entity, "count", len(res.Records), "total", res.Pagination.Total)
	return res, nil
}

// Get fetches one record. A missing record is a *domain.RemoteError with
// status 404; see domain.IsNotFound.
func (c *Client) Get(ctx context.Context, entity, id string) (domain.Record, error) {
	def, err := c.registry.Entity(entity)
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   join(entity, id),
		Route:  entity + "/{id}",
	})
	if err != nil {
		return nil, err
	}
	return c.record(def, resp)
}

// Create validates data against the entity's create shape and posts it.
// data may be a domain.Record, a map or a typed entity struct. Store-assigned
// fields are stripped before validation.
func (c *Client) Create(ctx context.Context, entity string, data any) (domain.Record, error) {
	def, err := c.registry.Entity(entity)
	if err != nil {
		return nil, err
	}
	payload, err := c.payload(entity, data)
	if err != nil {
		return nil, err
	}
	if err := def.ValidateCreate(payload); err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   join(entity),
		Route:  entity,
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	rec, err := c.record(def, resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("created record", "entity", entity, "id", rec.ID())
	return rec, nil
}

// Update replaces a record. The payload is validated like a create, then the
// stored record is read so a system entity is refused before the PUT.
func (c *Client) Update(ctx context.Context, entity, id string, data any) (domain.Record, error) {
	def, payload, err := c.replacement(entity, id, data)
	if err != nil {
		return nil, err
	}
	if _, err := c.Mutable(ctx, entity, id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, def, http.MethodPut, id, payload)
}

// Patch applies a partial update. Only the fields present are validated.
// Like Update it reads the stored record first and refuses system entities.
func (c *Client) Patch(ctx context.Context, entity, id string, data any) (domain.Record, error) {
	def, payload, err := c.partial(entity, id, data)
	if err != nil {
		return nil, err
	}
	if _, err := c.Mutable(ctx, entity, id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, def, http.MethodPatch, id, payload)
}

// Delete removes a record by id after reading it to refuse system entities.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	if _, err := c.Mutable(ctx, entity, id); err != nil {
		return err
	}
	return c.remove(ctx, entity, id)
}

// Mutable fetches entity id and fails with a *domain.PolicyError when it is a
// system entity. Services call it before the first write of a multi-step change.
func (c *Client) Mutable(ctx context.Context, entity, id string) (domain.Record, error) {
	current, err := c.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	if err := guard(entity, id, current, nil); err != nil {
		return nil, err
	}
	return current, nil
}

// UpdateRecord replaces current, refusing system entities before any call.
func (c *Client) UpdateRecord(ctx context.Context, entity string, current domain.Record, data any) (domain.Record, error) {
	if err := guard(entity, current.ID(), current, nil); err != nil {
		return nil, err
	}
	def, payload, err := c.replacement(entity, current.ID(), data)
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, def, http.MethodPut, current.ID(), payload)
}

// PatchRecord patches current, refusing system entities before any call.
func (c *Client) PatchRecord(ctx context.Context, entity string, current domain.Record, data any) (domain.Record, error) {
	if err := guard(entity, current.ID(), current, nil); err != nil {
		return nil, err
	}
	def, payload, err := c.partial(entity, current.ID(), data)
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, def, http.MethodPatch, current.ID(), payload)
}

// DeleteRecord deletes current, refusing system entities before any call.
func (c *Client) DeleteRecord(ctx context.Context, entity string, current domain.Record) error {
	if err := guard(entity, current.ID(), current, nil); err != nil {
		return err
	}
	return c.remove(ctx, entity, current.ID())
}

// GetAs fetches one record and decodes it into T.
func GetAs[T any](ctx context.Context, c *Client, entity, id string) (*T, error) {
	rec, err := c.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	return Decode[T](rec)
}

// ListAs lists entity and decodes every record into T.
func ListAs[T any](ctx context.Context, c *Client, entity string, opts ListOptions) ([]T, error) {
	recs, err := c.List(ctx, entity, opts)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](recs)
}

func (c *Client) replacement(entity, id string, data any) (*registry.EntityDef, domain.Record, error) {
	def, err := c.registry.Entity(entity)
	if err != nil {
		return nil, nil, err
	}
	payload, err := c.payload(entity, data)
	if err != nil {
		return nil, nil, err
	}
	if err := guard(entity, id, nil, payload); err != nil {
		return nil, nil, err
	}
	if err := def.ValidateCreate(payload); err != nil {
		return nil, nil, err
	}
	return def, payload, nil
}

func (c *Client) partial(entity, id string, data any) (*registry.EntityDef, domain.Record, error) {
	def, err := c.registry.Entity(entity)
	if err != nil {
		return nil, nil, err
	}
	payload, err := c.payload(entity, data)
	if err != nil {
		return nil, nil, err
	}
	if err := guard(entity, id, nil, payload); err != nil {
		return nil, nil, err
	}
	if err := def.ValidatePatch(payload); err != nil {
		return nil, nil, err
	}
	return def, payload, nil
}

func (c *Client) remove(ctx context.Context, entity, id string) error {
	if _, err := c.registry.Entity(entity); err != nil {
		return err
	}
	_, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodDelete,
		Path:   join(entity, id),
		Route:  entity + "/{id}",
	})
	if err != nil {
		return err
	}
	c.logger.Debug("deleted record", "entity", entity, "id", id)
	return nil
}

func (c *Client) mutate(ctx context.Context, def *registry.EntityDef, method, id string, payload domain.Record) (domain.Record, error) {
	resp, err := c.transport.Do(ctx, ports.Request{
		Method: method,
		Path:   join(def.Name, id),
		Route:  def.Name + "/{id}",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	rec, err := c.record(def, resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("updated record", "entity", def.Name, "id", id, "method", method)
	return rec, nil
}

func (c *Client) payload(entity string, data any) (domain.Record, error) {
	rec, err := domain.ToRecord(data)
	if err != nil {
		return nil, &domain.SchemaError{Subject: entity + " payload", Err: err}
	}
	return rec.Without(domain.SystemFields...), nil
}

func (c *Client) record(def *registry.EntityDef, resp *ports.Response) (domain.Record, error) {
	rec, err := parseRecord(resp)
	if err != nil {
		return nil, err
	}
	if err := def.ValidateFull(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func validateAll(def *registry.EntityDef, records []domain.Record) error {
	for i, rec := range records {
		if err := def.ValidateFull(rec); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// guard refuses mutations of system entities. Either the current record or
// the outgoing payload may carry the flag.
func guard(entity, id string, current, payload domain.Record) error {
	if current.IsSystem() {
		return &domain.PolicyError{Entity: entity, ID: id, Reason: "system entities cannot be modified"}
	}
	if payload.IsSystem() {
		return &domain.PolicyError{Entity: entity, ID: id, Reason: "cannot mark an entity as system"}
	}
	return nil
}
