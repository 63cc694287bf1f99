package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/test-plan-v1.json
var planSchemaJSON string

var (
	schemaOnce sync.Once
	planSchema *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("test-plan-v1.json",
			strings.NewReader(planSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		planSchema, schemaErr = compiler.Compile("test-plan-v1.json")
	})
	return planSchema, schemaErr
}

// Validate checks a raw JSON plan document against the embedded schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}
	return nil
}
