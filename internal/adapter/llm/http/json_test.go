package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"surrounding whitespace", "\n  {\"a\": 1}  \n", `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with preamble", "Here you go:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var v payload
	require.NoError(t, DecodeStrict("test", `{"name": "ok"}`, &v))
	assert.Equal(t, "ok", v.Name)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var v payload
	err := DecodeStrict("test", `{"name": "ok", "extra": 1}`, &v)
	require.Error(t, err)
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, ErrTypeSchemaViolation, typed.Type)
	assert.Equal(t, "test", typed.Provider)
}

func TestDecodeStrictRejectsNonJSON(t *testing.T) {
	var v map[string]interface{}
	err := DecodeStrict("test", "not json at all", &v)
	require.Error(t, err)
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, ErrTypeSchemaViolation, typed.Type)
}
