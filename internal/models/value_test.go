package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONRoundTrip_String(t *testing.T) {
	v := StringValue("hello world")

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"hello world"`, string(data))

	var parsed Value
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.False(t, parsed.IsStructured)
	assert.Equal(t, "hello world", parsed.Str)
}

func TestValueJSONRoundTrip_Structured(t *testing.T) {
	v := StructuredValue(map[string]any{"answer": 42.0, "ok": true})

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var parsed Value
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.IsStructured)
	assert.True(t, v.Equal(parsed))
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"identical strings", StringValue("abc"), StringValue("abc"), true},
		{"whitespace trimmed", StringValue("  abc\n"), StringValue("abc"), true},
		{"different strings", StringValue("abc"), StringValue("abd"), false},
		{"string vs structured", StringValue("1"), StructuredValue(1), false},
		{
			"structured deep equal",
			StructuredValue(map[string]any{"a": []any{1, 2}}),
			StructuredValue(map[string]any{"a": []any{1.0, 2.0}}),
			true,
		},
		{
			"structured not equal",
			StructuredValue(map[string]any{"a": 1}),
			StructuredValue(map[string]any{"a": 2}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "plain", StringValue("plain").Text())
	assert.JSONEq(t, `{"k":"v"}`, StructuredValue(map[string]any{"k": "v"}).Text())
}

func TestValueAsStructured(t *testing.T) {
	parsed, ok := StringValue(`{"x": 1}`).AsStructured()
	require.True(t, ok)
	assert.Contains(t, parsed.(map[string]any), "x")

	_, ok = StringValue("not json").AsStructured()
	assert.False(t, ok)
}
