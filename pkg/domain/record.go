package domain

import (
	"encoding/json"
	"fmt"
)

// System fields are assigned by the remote store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldIsSystem  = "isSystem"
)

// SystemFields lists the store-assigned fields stripped from create payloads.
var SystemFields = []string{FieldID, FieldCreatedAt, FieldUpdatedAt}

// Entity names known to the default registry.
const (
	EntityContent         = "Content"
	EntityAuthor          = "Author"
	EntityCategory        = "Category"
	EntityMedia           = "Media"
	EntityContentBlock    = "ContentBlock"
	EntityContentRevision = "ContentRevision"
	EntityWorkflowState   = "WorkflowState"
	EntityLayout          = "Layout"
	EntityLayoutPlacement = "LayoutPlacement"
	EntityBlock           = "Block"
	EntityPage            = "Page"
	EntityPageSection     = "PageSection"
)

// Record is an entity as the store sees it: an open attribute map.
type Record map[string]any

// ID returns the store-assigned identifier, or "".
func (r Record) ID() string { return r.String(FieldID) }

// String returns the string value at key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer value at key. JSON numbers decode as float64.
func (r Record) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// IsSystem reports whether the record is protected from mutation.
func (r Record) IsSystem() bool {
	b, _ := r[FieldIsSystem].(bool)
	return b
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Without returns a copy with the given keys removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// ToRecord normalises v into a Record by a JSON round trip.
// Maps, Records and tagged structs are all accepted, and values come back in
// their JSON-decoded form (numbers as float64, times as RFC3339 strings).
func ToRecord(v any) (Record, error) {
	if v == nil {
		return Record{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}
