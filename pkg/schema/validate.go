package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"title": String(), "position": Int(), "excerpt": Optional(String())}
type Schema map[string]Type

// Fields returns the declared field names in sorted order.
func (s Schema) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether field is declared.
func (s Schema) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Omit returns a copy of the schema without the given fields.
func (s Schema) Omit(fields ...string) Schema {
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// Pick returns a copy of the schema holding only the given fields.
// Names the schema does not declare are skipped.
func (s Schema) Pick(fields ...string) Schema {
	out := make(Schema, len(fields))
	for _, f := range fields {
		if t, ok := s[f]; ok {
			out[f] = t
		}
	}
	return out
}

// Extend returns a copy of the schema with other's fields added.
// Fields in other override fields in s.
func (s Schema) Extend(other Schema) Schema {
	out := make(Schema, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Partial returns a copy of the schema where every field is optional.
func (s Schema) Partial() Schema {
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = Optional(v)
	}
	return out
}

// Validate checks if data conforms to the schema.
// Fields not declared in the schema are ignored.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}
	return aggregate(validateDeclared(schema, data))
}

// ValidateStrict is Validate plus rejection of fields the schema does not declare.
func ValidateStrict(schema Schema, data map[string]any) error {
	errs := validateDeclared(schema, data)
	extra := make([]string, 0)
	for key := range data {
		if _, ok := schema[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		errs = append(errs, &ValidationError{
			Key:    key,
			Reason: "not defined in schema",
			Value:  data[key],
		})
	}
	return aggregate(errs)
}

func validateDeclared(schema Schema, data map[string]any) []error {
	var errs []error

	// Sorted so error lists are stable across runs
	for _, fieldName := range schema.Fields() {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		// Validate the value against the type
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}
	return errs
}

func aggregate(errs []error) error {
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error unless declared optional.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		// No fields to validate
		return nil
	}

	var errs []error

	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			// Field not defined in schema
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "not defined in schema",
				Value:  nil,
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	return aggregate(errs)
}
