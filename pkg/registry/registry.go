package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
)

var (
	// ErrUnknownEntity is returned when an entity name is not registered.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownRelationship is returned when a relationship type is not registered.
	ErrUnknownRelationship = errors.New("unknown relationship")
)

// Registry holds the entity and relationship definitions the client validates against.
// Safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	entities      map[string]*EntityDef
	relationships map[string]*RelationshipDef
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		entities:      make(map[string]*EntityDef),
		relationships: make(map[string]*RelationshipDef),
	}
}

// RegisterEntity adds an entity definition.
// If an entity with the same name exists, it is overwritten.
func (r *Registry) RegisterEntity(def *EntityDef) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("entity definition requires a name")
	}
	if def.Fields == nil {
		return fmt.Errorf("entity %s: fields are required", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[def.Name] = def
	return nil
}

// RegisterRelationship adds a relationship definition.
// Both endpoint entities must already be registered.
func (r *Registry) RegisterRelationship(def *RelationshipDef) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("relationship definition requires a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, end := range []string{def.Source, def.Target} {
		if _, ok := r.entities[end]; !ok {
			return fmt.Errorf("relationship %s: %w: %q", def.Name, ErrUnknownEntity, end)
		}
	}
	if def.Properties == nil {
		def.Properties = schema.Schema{}
	}
	r.relationships[def.Name] = def
	return nil
}

// ExtendEntity adds fields to a registered entity. The definition is
// replaced, not mutated, so lookups made earlier keep their shape. Fields
// already declared cannot be redefined.
func (r *Registry) ExtendEntity(name string, fields schema.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.entities[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	for _, f := range fields.Fields() {
		if def.Fields.Has(f) {
			return fmt.Errorf("entity %s: field %q is already declared", name, f)
		}
	}
	r.entities[name] = &EntityDef{Name: def.Name, Fields: def.Fields.Extend(fields), Rules: def.Rules}
	return nil
}

// Entity looks up an entity definition by name.
func (r *Registry) Entity(name string) (*EntityDef, error) {
	r.mu.RLock()
	def, ok := r.entities[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return def, nil
}

// Relationship looks up a relationship definition by type name.
func (r *Registry) Relationship(name string) (*RelationshipDef, error) {
	r.mu.RLock()
	def, ok := r.relationships[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelationship, name)
	}
	return def, nil
}

// Entities returns the registered entity names, sorted.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relationships returns the registered relationship names, sorted.
func (r *Registry) Relationships() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.relationships))
	for name := range r.relationships {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustRegister panics on registration errors. Intended for static catalogs.
func (r *Registry) MustRegister(entities []*EntityDef, relationships []*RelationshipDef) *Registry {
	for _, e := range entities {
		if err := r.RegisterEntity(e); err != nil {
			panic(err)
		}
	}
	for _, rel := range relationships {
		if err := r.RegisterRelationship(rel); err != nil {
			panic(err)
		}
	}
	return r
}

// Rule is a cross-field check applied after per-field validation.
type Rule func(rec domain.Record) error

// EntityDef describes one entity type. Fields is the full shape, including
// the store-assigned id and timestamps.
type EntityDef struct {
	Name   string
	Fields schema.Schema
	Rules  []Rule
}

// CreateSchema is the full shape minus the store-assigned fields.
func (d *EntityDef) CreateSchema() schema.Schema {
	return d.Fields.Omit(domain.SystemFields...)
}

// FieldType returns the declared type of field, unwrapped of optional markers.
func (d *EntityDef) FieldType(field string) (schema.Type, bool) {
	t, ok := d.Fields[field]
	if !ok {
		return nil, false
	}
	return schema.Unwrap(t), true
}

// ValidateFull checks a record returned by the store. Undeclared fields are tolerated.
func (d *EntityDef) ValidateFull(rec domain.Record) error {
	return d.wrap("record", d.withRules(schema.Validate(d.Fields, rec), rec))
}

// ValidateProjection checks a record projected to fields. Each selected field
// is optional since the store may omit nulls; rules are not applied.
func (d *EntityDef) ValidateProjection(rec domain.Record, fields []string) error {
	return d.wrap("projection", schema.Validate(d.Fields.Pick(fields...).Partial(), rec))
}

// ValidateCreate checks a create or full-replace payload.
func (d *EntityDef) ValidateCreate(rec domain.Record) error {
	return d.wrap("create payload", d.withRules(schema.ValidateStrict(d.CreateSchema(), rec), rec))
}

// ValidatePatch checks a partial update payload. Rules are not applied since
// the record is incomplete.
func (d *EntityDef) ValidatePatch(rec domain.Record) error {
	return d.wrap("patch payload", schema.ValidateStrict(d.CreateSchema().Partial(), rec))
}

func (d *EntityDef) withRules(err error, rec domain.Record) error {
	errs := schema.ValidationErrors(err)
	if err != nil && errs == nil {
		return err
	}
	for _, rule := range d.Rules {
		if rerr := rule(rec); rerr != nil {
			errs = append(errs, rerr)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &schema.AggregateError{Errors: errs}
}

func (d *EntityDef) wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.SchemaError{Subject: d.Name + " " + what, Err: err}
}

// RelationshipDef describes a typed edge between two entity types.
type RelationshipDef struct {
	Name       string
	Source     string
	Target     string
	Properties schema.Schema
}

// ValidateProperties checks the full property set of a new edge.
func (d *RelationshipDef) ValidateProperties(props domain.Record) error {
	if err := schema.ValidateStrict(d.Properties, props); err != nil {
		return &domain.SchemaError{Subject: d.Name + " properties", Err: err}
	}
	return nil
}

// ValidateStored checks properties read back from the store. Undeclared
// properties are tolerated.
func (d *RelationshipDef) ValidateStored(props domain.Record) error {
	if err := schema.Validate(d.Properties, props); err != nil {
		return &domain.SchemaError{Subject: d.Name + " properties", Err: err}
	}
	return nil
}

// ValidatePropertiesPatch checks a partial property update.
func (d *RelationshipDef) ValidatePropertiesPatch(props domain.Record) error {
	if err := schema.ValidateStrict(d.Properties.Partial(), props); err != nil {
		return &domain.SchemaError{Subject: d.Name + " properties", Err: err}
	}
	return nil
}

// Ends returns the entity types at the far end of the edge when walked from
// the from entity in direction dir. An empty result means from cannot be on
// the starting side.
func (d *RelationshipDef) Ends(from string, dir domain.Direction) []string {
	var out []string
	if (dir == domain.Outgoing || dir == domain.Both) && d.Source == from {
		out = append(out, d.Target)
	}
	if (dir == domain.Incoming || dir == domain.Both) && d.Target == from {
		if len(out) == 0 || out[0] != d.Source {
			out = append(out, d.Source)
		}
	}
	return out
}
