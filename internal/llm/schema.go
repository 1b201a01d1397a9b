package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResumeJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate.
func BuildResumeJSONSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string"} }
	strList := func() map[string]any {
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	}

	job := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":       str(),
			"company":     str(),
			"location":    str(),
			"start_date":  str(),
			"end_date":    str(),
			"description": str(),
			"is_current":  map[string]any{"type": "boolean"},
		},
	}
	degree := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"degree":          str(),
			"institution":     str(),
			"location":        str(),
			"graduation_date": str(),
			"gpa":             str(),
			"honors":          str(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":            map[string]any{"type": "string", "minLength": 1},
			"email":           str(),
			"phone":           str(),
			"address":         str(),
			"linkedin":        str(),
			"website":         str(),
			"title":           str(),
			"summary":         str(),
			"summary_bullets": strList(),
			"experience":      map[string]any{"type": "array", "items": job},
			"education":       map[string]any{"type": "array", "items": degree},
			"skills":          strList(),
			"certifications":  strList(),
			"confidence":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
