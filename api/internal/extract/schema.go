package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// shapeSchema accepts a top-level object carrying exactly one of
// "sections" or "items", each a list of objects. "header" is not constrained.
var shapeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"sections": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
		"items": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
	"oneOf": []any{
		map[string]any{"required": []any{"sections"}, "not": map[string]any{"required": []any{"items"}}},
		map[string]any{"required": []any{"items"}, "not": map[string]any{"required": []any{"sections"}}},
	},
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("shape.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("shape.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func mustCompileShape() *jsonschema.Schema {
	s, err := compileSchema(shapeSchema)
	if err != nil {
		panic(err)
	}
	return s
}
