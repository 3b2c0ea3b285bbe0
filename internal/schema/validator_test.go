package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidator(t *testing.T, raw string) *Validator {
	t.Helper()
	def, err := Parse("test.yaml", []byte(raw))
	require.NoError(t, err)
	v, err := Compile(def)
	require.NoError(t, err)
	return v
}

func requireFieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve.Fields
}

func TestValidate_AgeExceedsMaximum(t *testing.T) {
	v := mustValidator(t, "age:\n  type: int\n  ge: 0\n  le: 120\n")

	out, err := v.Validate(map[string]any{"age": float64(150)})
	assert.Nil(t, out)
	fields := requireFieldErrors(t, err)
	assert.Equal(t, []FieldError{{Field: "age", Reason: "exceeds maximum 120"}}, fields)
}

func TestValidate_EnumDefaultFilled(t *testing.T) {
	v := mustValidator(t, "status:\n  type: str\n  enum: [active, inactive]\n  default: active\n")

	out, err := v.Validate(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "active"}, out)
}

func TestValidate_EnumRejectsUnknownLiteral(t *testing.T) {
	v := mustValidator(t, "f:\n  enum: [a, b]\n")

	_, err := v.Validate(map[string]any{"f": "c"})
	fields := requireFieldErrors(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "f", fields[0].Field)
	assert.Equal(t, "must be one of: a, b", fields[0].Reason)

	out, err := v.Validate(map[string]any{"f": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", out["f"])
}

func TestValidate_NumericEnumMatchesAcrossTypes(t *testing.T) {
	v := mustValidator(t, "level:\n  type: int\n  enum: [1, 2, 3]\n")

	_, err := v.Validate(map[string]any{"level": float64(2)})
	assert.NoError(t, err)
	_, err = v.Validate(map[string]any{"level": 2})
	assert.NoError(t, err)
	_, err = v.Validate(map[string]any{"level": "2"})
	assert.Error(t, err)
	_, err = v.Validate(map[string]any{"level": true})
	assert.Error(t, err)
}

func TestValidate_InclusiveBounds(t *testing.T) {
	v := mustValidator(t, "f:\n  type: int\n  ge: 0\n  le: 10\n")

	tests := []struct {
		value  any
		reason string
	}{
		{value: float64(11), reason: "exceeds maximum 10"},
		{value: float64(10)},
		{value: float64(0)},
		{value: float64(-1), reason: "below minimum 0"},
	}
	for _, tt := range tests {
		_, err := v.Validate(map[string]any{"f": tt.value})
		if tt.reason == "" {
			assert.NoError(t, err, "value %v", tt.value)
			continue
		}
		fields := requireFieldErrors(t, err)
		assert.Equal(t, []FieldError{{Field: "f", Reason: tt.reason}}, fields, "value %v", tt.value)
	}
}

func TestValidate_Types(t *testing.T) {
	v := mustValidator(t, `
s: {type: str}
i: {type: int}
f: {type: float}
b: {type: bool}
l: {type: list}
m: {type: dict}
`)

	t.Run("valid values are normalised", func(t *testing.T) {
		out, err := v.Validate(map[string]any{
			"s": "x",
			"i": float64(3),
			"f": 2,
			"b": false,
			"l": []any{1, 2},
			"m": map[string]any{"k": "v"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), out["i"])
		assert.Equal(t, float64(2), out["f"])
		assert.Equal(t, false, out["b"])
	})

	t.Run("wrong types are all reported", func(t *testing.T) {
		_, err := v.Validate(map[string]any{
			"s": 1,
			"i": 1.5,
			"f": "1.5",
			"b": "true",
			"l": "a,b",
			"m": []any{},
		})
		fields := requireFieldErrors(t, err)
		assert.Equal(t, []FieldError{
			{Field: "s", Reason: "expected string"},
			{Field: "i", Reason: "expected integer"},
			{Field: "f", Reason: "expected float"},
			{Field: "b", Reason: "expected boolean"},
			{Field: "l", Reason: "expected list"},
			{Field: "m", Reason: "expected mapping"},
		}, fields)
	})

	t.Run("bool is not an integer", func(t *testing.T) {
		_, err := v.Validate(map[string]any{"s": "x", "i": true, "f": 1.0, "b": true, "l": []any{}, "m": map[string]any{}})
		fields := requireFieldErrors(t, err)
		assert.Equal(t, []FieldError{{Field: "i", Reason: "expected integer"}}, fields)
	})
}

func TestValidate_StringLength(t *testing.T) {
	v := mustValidator(t, "code:\n  type: str\n  min_length: 2\n  max_length: 4\n")

	_, err := v.Validate(map[string]any{"code": "a"})
	assert.Equal(t, []FieldError{{Field: "code", Reason: "shorter than min_length 2"}}, requireFieldErrors(t, err))

	_, err = v.Validate(map[string]any{"code": "abcde"})
	assert.Equal(t, []FieldError{{Field: "code", Reason: "longer than max_length 4"}}, requireFieldErrors(t, err))

	// Length counts characters, not bytes.
	_, err = v.Validate(map[string]any{"code": "äöü"})
	assert.NoError(t, err)
}

func TestValidate_ListLength(t *testing.T) {
	v := mustValidator(t, "tags:\n  type: list\n  max_length: 2\n")

	_, err := v.Validate(map[string]any{"tags": []any{"a", "b", "c"}})
	assert.Equal(t, []FieldError{{Field: "tags", Reason: "longer than max_length 2"}}, requireFieldErrors(t, err))
}

func TestValidate_RequiredAndPassThrough(t *testing.T) {
	v := mustValidator(t, "name:\n  type: str\n")

	_, err := v.Validate(map[string]any{"other": 1})
	assert.Equal(t, []FieldError{{Field: "name", Reason: reasonRequired}}, requireFieldErrors(t, err))

	out, err := v.Validate(map[string]any{"name": "n", "other": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "n", "other": 1}, out)
}

func TestValidate_NullDefaultMakesFieldNullable(t *testing.T) {
	v := mustValidator(t, "note:\n  type: str\n  default: null\n")

	out, err := v.Validate(map[string]any{"note": nil})
	require.NoError(t, err)
	assert.Nil(t, out["note"])

	out, err = v.Validate(map[string]any{})
	require.NoError(t, err)
	v2, ok := out["note"]
	assert.True(t, ok)
	assert.Nil(t, v2)
}

func TestValidate_UnknownTypeFallsBackToString(t *testing.T) {
	v := mustValidator(t, "id:\n  type: uuid\n")

	_, err := v.Validate(map[string]any{"id": "7d1c"})
	assert.NoError(t, err)
	_, err = v.Validate(map[string]any{"id": 7})
	assert.Equal(t, []FieldError{{Field: "id", Reason: "expected string"}}, requireFieldErrors(t, err))
}

func TestValidate_DoesNotMutateInputOrDefaults(t *testing.T) {
	v := mustValidator(t, "meta:\n  type: dict\n  default: {source: api}\n")

	in := map[string]any{}
	out, err := v.Validate(in)
	require.NoError(t, err)
	assert.Empty(t, in)

	out["meta"].(map[string]any)["source"] = "changed"
	out2, err := v.Validate(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "api"}, out2["meta"])
}

func TestValidate_IntegerDefaultIsInt64(t *testing.T) {
	v := mustValidator(t, "qty:\n  type: int\n  default: 1\n")

	out, err := v.Validate(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out["qty"])
}

func TestValidate_JSONNumbers(t *testing.T) {
	v := mustValidator(t, "id:\n  type: int\nprice:\n  type: float\n  le: 100\nlevel:\n  enum: [1, 2]\n")

	out, err := v.Validate(map[string]any{
		"id":    json.Number("9007199254740993"),
		"price": json.Number("19.5"),
		"level": json.Number("2"),
		"extra": json.Number("12345678901234567890"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), out["id"], "no precision lost above 2^53")
	assert.Equal(t, 19.5, out["price"])
	assert.Equal(t, json.Number("2"), out["level"])
	assert.Equal(t, json.Number("12345678901234567890"), out["extra"])

	_, err = v.Validate(map[string]any{"id": json.Number("1.5"), "price": json.Number("120"), "level": json.Number("3")})
	assert.Equal(t, []FieldError{
		{Field: "id", Reason: "expected integer"},
		{Field: "price", Reason: "exceeds maximum 100"},
		{Field: "level", Reason: "must be one of: 1, 2"},
	}, requireFieldErrors(t, err))

	out, err = v.Validate(map[string]any{"id": json.Number("1e3"), "price": json.Number("1"), "level": json.Number("1")})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), out["id"])
}

func TestCompile_RejectsContradictoryBounds(t *testing.T) {
	tests := map[string]string{
		"ge above le":          "n:\n  type: int\n  ge: 5\n  le: 1\n",
		"min_length above max": "s:\n  min_length: 5\n  max_length: 1\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			def, err := Parse("c.yaml", []byte(raw))
			require.NoError(t, err)
			v, err := Compile(def)
			assert.Nil(t, v)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestCompile_IsDeterministic(t *testing.T) {
	raw := "a:\n  type: int\n  le: 3\nb:\n  enum: [x]\n"
	def, err := Parse("d.yaml", []byte(raw))
	require.NoError(t, err)

	v1, err := Compile(def)
	require.NoError(t, err)
	v2, err := Compile(def)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, "d.yaml", v1.Name())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Schema: "s.yaml", Fields: []FieldError{
		{Field: "a", Reason: "field required"},
		{Field: "b", Reason: "expected string"},
	}}
	assert.Equal(t, `document does not match schema "s.yaml": a: field required; b: expected string`, err.Error())
}
