package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
)

const relRoute = "/{id}/relationships/"

type edgeWire struct {
	Relationship struct {
		Type       string        `json:"type"`
		Properties domain.Record `json:"properties"`
	} `json:"relationship"`
	Target domain.Record `json:"target"`
}

type edgeWrite struct {
	TargetID   string        `json:"targetId"`
	Properties domain.Record `json:"properties,omitempty"`
}

// CreateRelationship links source (of sourceEntity) to target with relType.
// props may be nil, a map or a struct; it is validated against the
// relationship's property schema.
func (c *Client) CreateRelationship(ctx context.Context, sourceEntity, sourceID, relType, targetID string, props any) (*domain.Relationship, error) {
	def, err := c.edgeDef(sourceEntity, relType)
	if err != nil {
		return nil, err
	}
	properties, err := domain.ToRecord(props)
	if err != nil {
		return nil, &domain.SchemaError{Subject: relType + " properties", Err: err}
	}
	if err := def.ValidateProperties(properties); err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   join(sourceEntity, sourceID, "relationships", relType),
		Route:  sourceEntity + relRoute + relType,
		Body:   edgeWrite{TargetID: targetID, Properties: properties},
	})
	if err != nil {
		return nil, err
	}
	edge, err := c.edge(def, resp, targetID, properties)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("linked", "rel", relType, "source", sourceID, "target", targetID)
	return edge, nil
}

// GetRelationships lists relType edges touching the given node. dir selects
// the side the node is on; "" means outgoing. When targetHint names an entity
// every target is validated against it, otherwise targets pass through as the
// store returned them.
func (c *Client) GetRelationships(ctx context.Context, entity, id, relType string, dir domain.Direction, targetHint string) ([]domain.Relationship, error) {
	if _, err := c.registry.Entity(entity); err != nil {
		return nil, err
	}
	def, err := c.registry.Relationship(relType)
	if err != nil {
		return nil, err
	}
	dir, err = domain.ParseDirection(string(dir))
	if err != nil {
		return nil, &domain.SchemaError{Subject: relType + " lookup", Err: err}
	}
	ends := def.Ends(entity, dir)
	if len(ends) == 0 {
		return nil, &domain.SchemaError{
			Subject: relType + " lookup",
			Err:     fmt.Errorf("%s is not on the %s side of %s", entity, dir, relType),
		}
	}

	var far *registry.EntityDef
	if targetHint != "" {
		if !slices.Contains(ends, targetHint) {
			return nil, &domain.SchemaError{
				Subject: relType + " lookup",
				Err:     fmt.Errorf("%s edges from %s never end at %s", relType, entity, targetHint),
			}
		}
		if far, err = c.registry.Entity(targetHint); err != nil {
			return nil, err
		}
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   join(entity, id, "relationships", relType),
		Route:  entity + relRoute + relType,
		Query:  url.Values{"direction": {string(dir)}},
	})
	if err != nil {
		return nil, err
	}

	var wire []edgeWire
	if body := bytes.TrimSpace(resp.Body); len(body) > 0 {
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, malformed(resp, "relationship list", err)
		}
	}

	out := make([]domain.Relationship, 0, len(wire))
	for i, w := range wire {
		edge, err := c.fromWire(def, far, w)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, *edge)
	}
	return out, nil
}

// UpdateRelationship patches the properties of the edge to targetID.
func (c *Client) UpdateRelationship(ctx context.Context, sourceEntity, sourceID, relType, targetID string, props any) (*domain.Relationship, error) {
	def, err := c.edgeDef(sourceEntity, relType)
	if err != nil {
		return nil, err
	}
	properties, err := domain.ToRecord(props)
	if err != nil {
		return nil, &domain.SchemaError{Subject: relType + " properties", Err: err}
	}
	if err := def.ValidatePropertiesPatch(properties); err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPatch,
		Path:   join(sourceEntity, sourceID, "relationships", relType),
		Route:  sourceEntity + relRoute + relType,
		Body:   edgeWrite{TargetID: targetID, Properties: properties},
	})
	if err != nil {
		return nil, err
	}
	return c.edge(def, resp, targetID, properties)
}

// DeleteRelationship removes the relType edge from source to targetID.
func (c *Client) DeleteRelationship(ctx context.Context, sourceEntity, sourceID, relType, targetID string) error {
	if _, err := c.edgeDef(sourceEntity, relType); err != nil {
		return err
	}
	_, err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodDelete,
		Path:   join(sourceEntity, sourceID, "relationships", relType),
		Route:  sourceEntity + relRoute + relType,
		Query:  url.Values{"targetId": {targetID}},
	})
	if err != nil {
		return err
	}
	c.logger.Debug("unlinked", "rel", relType, "source", sourceID, "target", targetID)
	return nil
}

// edgeDef resolves relType and checks that writes start from its source entity.
func (c *Client) edgeDef(sourceEntity, relType string) (*registry.RelationshipDef, error) {
	def, err := c.registry.Relationship(relType)
	if err != nil {
		return nil, err
	}
	if def.Source != sourceEntity {
		return nil, &domain.SchemaError{
			Subject: relType + " edge",
			Err:     fmt.Errorf("edges start at %s, not %s", def.Source, sourceEntity),
		}
	}
	return def, nil
}

// edge parses a write response. Stores that answer 204 get the edge echoed back.
func (c *Client) edge(def *registry.RelationshipDef, resp *ports.Response, targetID string, props domain.Record) (*domain.Relationship, error) {
	far, _ := c.registry.Entity(def.Target)
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return &domain.Relationship{
			Type:       def.Name,
			Properties: props,
			Target:     domain.Record{domain.FieldID: targetID},
		}, nil
	}
	var w edgeWire
	if err := json.Unmarshal(resp.Body, &w); err != nil {
		return nil, malformed(resp, "relationship", err)
	}
	if w.Target == nil {
		w.Target = domain.Record{domain.FieldID: targetID}
		far = nil
	}
	return c.fromWire(def, far, w)
}

func (c *Client) fromWire(def *registry.RelationshipDef, far *registry.EntityDef, w edgeWire) (*domain.Relationship, error) {
	if w.Relationship.Type != "" && w.Relationship.Type != def.Name {
		return nil, &domain.SchemaError{
			Subject: def.Name + " edge",
			Err:     fmt.Errorf("store returned a %s edge", w.Relationship.Type),
		}
	}
	props := w.Relationship.Properties
	if props == nil {
		props = domain.Record{}
	}
	if err := def.ValidateStored(props); err != nil {
		return nil, err
	}
	if far != nil {
		if err := far.ValidateFull(w.Target); err != nil {
			return nil, err
		}
	}
	return &domain.Relationship{Type: def.Name, Properties: props, Target: w.Target}, nil
}
