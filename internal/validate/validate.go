// Package validate checks JSON documents against embedded JSON Schemas.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Error reports a document that does not conform to its schema.
type Error struct {
	Schema string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Schema, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// JSON validates raw JSON against the named schema definition.
// The definition is compiled once per name and cached.
func JSON(name, definition string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &Error{Schema: name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return Value(name, definition, parsed)
}

// Value validates an already decoded value (maps, slices, float64, string,
// bool, nil) against the named schema definition.
func Value(name, definition string, v any) error {
	compiled, err := compiled(name, definition)
	if err != nil {
		return &Error{Schema: name, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := compiled.Validate(v); err != nil {
		return &Error{Schema: name, Err: err}
	}
	return nil
}

// compiled returns a cached compiled schema or compiles and caches it.
func compiled(name, definition string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not raw bytes.
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(definition))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, s)
	return s, nil
}
