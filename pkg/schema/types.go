package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	_, err := toInt(value)
	return err
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return 0, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}

// IntRangeType validates integers within an inclusive range.
type IntRangeType struct {
	min, max int64
}

func (t *IntRangeType) Name() string { return fmt.Sprintf("int(%d..%d)", t.min, t.max) }

func (t *IntRangeType) Validate(value any) error {
	n, err := toInt(value)
	if err != nil {
		return err
	}
	if n < t.min || n > t.max {
		return fmt.Errorf("expected int between %d and %d, got %d", t.min, t.max, n)
	}
	return nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// TimeType validates timestamps: time.Time values or RFC3339 strings.
type TimeType struct{}

func (t *TimeType) Name() string { return "time" }

func (t *TimeType) Validate(value any) error {
	switch v := value.(type) {
	case time.Time:
		return nil
	case *time.Time:
		if v == nil {
			return fmt.Errorf("expected time, got nil")
		}
		return nil
	case string:
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return fmt.Errorf("expected RFC3339 timestamp, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected time, got %T", value)
	}
}

// EnumType validates strings drawn from a fixed set.
type EnumType struct {
	values []string
}

func (t *EnumType) Name() string { return "enum(" + strings.Join(t.values, "|") + ")" }

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, v := range t.values {
		if v == s {
			return nil
		}
	}
	return fmt.Errorf("expected one of [%s], got %q", strings.Join(t.values, ", "), s)
}

// Values returns the allowed values in declaration order.
func (t *EnumType) Values() []string {
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

// MapType validates open key/value objects.
type MapType struct{}

func (t *MapType) Name() string { return "map" }

func (t *MapType) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected map, got nil")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("expected map, got %T", value)
	}
	return nil
}

// ObjectType validates a nested object against its own schema.
type ObjectType struct {
	fields Schema
}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return Validate(t.fields, m)
}

// Fields returns the nested schema.
func (t *ObjectType) Fields() Schema { return t.fields }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected slice, got nil")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

// OptionalType marks a field that may be absent.
// A present value must still satisfy the wrapped type.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error { return t.inner.Validate(value) }

// NullableType accepts an explicit null in addition to the wrapped type.
type NullableType struct {
	inner Type
}

func (t *NullableType) Name() string { return t.inner.Name() + "|null" }

func (t *NullableType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// IntRange creates an integer validator bounded by [min, max].
func IntRange(min, max int64) Type { return &IntRangeType{min: min, max: max} }

// NonNegativeInt accepts integers >= 0.
func NonNegativeInt() Type { return IntRange(0, int64(^uint64(0)>>1)) }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Time creates a timestamp validator.
func Time() Type { return &TimeType{} }

// Enum creates a validator for a closed set of string values.
func Enum(values ...string) Type { return &EnumType{values: values} }

// Map creates an open object validator.
func Map() Type { return &MapType{} }

// Object creates a nested object validator.
func Object(fields Schema) Type { return &ObjectType{fields: fields} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Optional marks t as not required. Wrapping twice is a no-op.
func Optional(t Type) Type {
	if IsOptional(t) {
		return t
	}
	return &OptionalType{inner: t}
}

// Nullable allows an explicit null value for t.
func Nullable(t Type) Type { return &NullableType{inner: t} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// IsOptional reports whether t may be absent.
func IsOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}

// Unwrap strips Optional and Nullable wrappers.
func Unwrap(t Type) Type {
	for {
		switch w := t.(type) {
		case *OptionalType:
			t = w.inner
		case *NullableType:
			t = w.inner
		default:
			return t
		}
	}
}

// ParseType converts a string type name to a Type.
// Supports "string", "int", "float", "bool", "time", "map", "[elem]",
// "enum(A|B)", "int(1..6)", a trailing "?" for optional and a "|null" suffix.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if strings.HasSuffix(typeStr, "?") {
		inner, err := ParseType(strings.TrimSuffix(typeStr, "?"))
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}

	if strings.HasSuffix(typeStr, "|null") {
		inner, err := ParseType(strings.TrimSuffix(typeStr, "|null"))
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	}

	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemTypeStr := typeStr[1 : len(typeStr)-1]
		elemType, err := ParseType(elemTypeStr)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if strings.HasPrefix(typeStr, "enum(") && strings.HasSuffix(typeStr, ")") {
		body := typeStr[len("enum(") : len(typeStr)-1]
		if body == "" {
			return nil, fmt.Errorf("enum without values")
		}
		return Enum(strings.Split(body, "|")...), nil
	}

	if strings.HasPrefix(typeStr, "int(") && strings.HasSuffix(typeStr, ")") {
		bounds := strings.SplitN(typeStr[len("int("):len(typeStr)-1], "..", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		lo, err := strconv.ParseInt(bounds[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lower bound in %s: %w", typeStr, err)
		}
		hi, err := strconv.ParseInt(bounds[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid upper bound in %s: %w", typeStr, err)
		}
		return IntRange(lo, hi), nil
	}

	// Handle built-in types
	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "time":
		return Time(), nil
	case "map", "object":
		return Map(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"title": "string", "position": "int", "excerpt": "string?"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	keys := make([]string, 0, len(typeMap))
	for key := range typeMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		t, err := ParseType(typeMap[key])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
