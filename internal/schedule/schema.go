package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrShape is returned when a decoded document does not match the schedule shape.
var ErrShape = errors.New("schedule shape mismatch")

var nullableString = []string{"string", "null"}

// Schema is the JSON schema a ParsedSchedule document must satisfy.
// Only shape is checked here; calendar and clock semantics belong to Normalize.
var Schema = map[string]any{
	"type":     "object",
	"required": []string{"shifts"},
	"properties": map[string]any{
		"employeeName": map[string]any{"type": nullableString},
		"error":        map[string]any{"type": nullableString},
		"shifts": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"date", "weekday", "startTime", "endTime"},
				"properties": map[string]any{
					"date":      map[string]any{"type": "string"},
					"weekday":   map[string]any{"type": "string"},
					"startTime": map[string]any{"type": nullableString},
					"endTime":   map[string]any{"type": nullableString},
					"duration":  map[string]any{"type": nullableString},
					"notes":     map[string]any{"type": nullableString},
					"type":      map[string]any{"type": nullableString},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(Schema)
		if err != nil {
			compileErr = fmt.Errorf("failed to serialize schedule schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schedule.json", bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("failed to load schedule schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("schedule.json")
	})
	return compiled, compileErr
}

// Validate checks that raw JSON has the ParsedSchedule shape: an object whose
// shifts field is an array of entries that each carry date, weekday,
// startTime and endTime.
func Validate(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrShape, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrShape, err)
	}
	return nil
}
