package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {"name": {"type": "string", "minLength": 1}}
}`

func TestJSON_Valid(t *testing.T) {
	require.NoError(t, JSON("test-valid", testSchema, []byte(`{"name":"algebra"}`)))
}

func TestJSON_MissingRequired(t *testing.T) {
	err := JSON("test-missing", testSchema, []byte(`{}`))
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "test-missing", verr.Schema)
}

func TestJSON_Malformed(t *testing.T) {
	err := JSON("test-malformed", testSchema, []byte(`{"name":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestValue_WrongType(t *testing.T) {
	err := Value("test-type", testSchema, map[string]any{"name": 3.0})
	assert.Error(t, err)
}

func TestCompile_BadDefinition(t *testing.T) {
	err := JSON("test-bad-def", `{"type": 12}`, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile schema")
}
