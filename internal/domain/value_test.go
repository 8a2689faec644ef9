package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/domain"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want domain.Value
	}{
		{name: "string", raw: `"Done"`, want: domain.String("Done")},
		{name: "number", raw: `42`, want: domain.Number(42)},
		{name: "fraction", raw: `1.5`, want: domain.Number(1.5)},
		{name: "bool", raw: `true`, want: domain.Bool(true)},
		{name: "null", raw: `null`, want: domain.Null{}},
		{name: "empty", raw: ``, want: domain.Null{}},
		{name: "object keys are canonicalised", raw: `{"b": 1, "a": "x"}`, want: domain.Composite(`{"a":"x","b":1}`)},
		{name: "array", raw: `[1, "two"]`, want: domain.Composite(`[1,"two"]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseValue([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := domain.ParseValue([]byte(`{"a":`))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b domain.Value
		want bool
	}{
		{"same string", domain.String("Done"), domain.String("Done"), true},
		{"case differs", domain.String("Done"), domain.String("done"), false},
		{"string vs number", domain.String("1"), domain.Number(1), false},
		{"bool vs string", domain.Bool(true), domain.String("true"), false},
		{"numbers", domain.Number(3), domain.Number(3), true},
		{"null vs nil", domain.Null{}, nil, true},
		{"null vs empty string", domain.Null{}, domain.String(""), false},
		{"composites", domain.Composite(`{"a":1}`), domain.Composite(`{"a":1}`), true},
		{"composite vs string", domain.Composite(`"x"`), domain.String("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.Equal(tt.a, tt.b))
		})
	}
}

func TestMarshalValue_RoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	for _, v := range []domain.Value{
		domain.String("hello"),
		domain.Number(7),
		domain.Bool(false),
		domain.Null{},
		domain.Composite(`{"a":[1,2]}`),
	} {
		raw, err := domain.MarshalValue(v)
		require.NoError(t, err)

		back, err := domain.ParseValue(raw)
		require.NoError(t, err)
		assert.True(t, domain.Equal(v, back), "value %#v did not survive encoding", v)
	}
}

func TestValueToAny(t *testing.T) {
	t.Parallel()

	assert.Nil(t, domain.ValueToAny(nil))
	assert.Equal(t, "x", domain.ValueToAny(domain.String("x")))
	assert.Equal(t, map[string]any{"a": float64(1)}, domain.ValueToAny(domain.Composite(`{"a":1}`)))
}
