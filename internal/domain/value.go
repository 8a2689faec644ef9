package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a sealed JSON value stored in a column cell. Only Null, String,
// Number, Bool and Composite implement it.
type Value interface {
	value()
}

// Null is an explicit JSON null.
type Null struct{}

func (Null) value() {}

// String is a JSON string.
type String string

func (String) value() {}

// Number is a JSON number.
type Number float64

func (Number) value() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) value() {}

// Composite holds a JSON array or object in canonical form (compact, object
// keys sorted). Two composites are equal when their canonical text is equal.
type Composite string

func (Composite) value() {}

// ParseValue decodes raw JSON into a Value. Empty input decodes to Null.
func ParseValue(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Null{}, nil
	}

	var decoded any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("domain.ParseValue: %w: %w", ErrInvalidInput, err)
	}

	return FromAny(decoded)
}

// FromAny converts a decoded JSON tree into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("domain.FromAny: number %q: %w", t, ErrInvalidInput)
		}
		return Number(f), nil
	case map[string]any, []any:
		// encoding/json writes map keys sorted, which gives the canonical form.
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("domain.FromAny: %w", err)
		}
		return Composite(b), nil
	default:
		return nil, fmt.Errorf("domain.FromAny: unsupported type %T: %w", v, ErrInvalidInput)
	}
}

// MarshalValue encodes a Value as JSON. A nil Value encodes as null.
func MarshalValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(t))
	case Number:
		return json.Marshal(float64(t))
	case Bool:
		return json.Marshal(bool(t))
	case Composite:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("domain.MarshalValue: unsupported type %T", v)
	}
}

// ValueToAny converts a Value back into a plain JSON tree, suitable for
// map[string]any details columns.
func ValueToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(t)
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	case Composite:
		var out any
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return string(t)
		}
		return out
	default:
		return nil
	}
}

// Equal reports strict equality: both values must be the same variant with
// the same content. There is no coercion between variants, so String("1")
// never equals Number(1) and String("Done") never equals String("done").
// A nil Value is treated as Null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	return a == b
}

// JSONValue adapts a Value for encoding/json struct fields.
type JSONValue struct {
	Value
}

// MarshalJSON implements json.Marshaler.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	return MarshalValue(v.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *JSONValue) UnmarshalJSON(b []byte) error {
	parsed, err := ParseValue(b)
	if err != nil {
		return err
	}
	v.Value = parsed
	return nil
}
