package server

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/calculate.json
var calculateSchemaJSON []byte

var calculateSchema = mustCompileSchema(calculateSchemaJSON)

func mustCompileSchema(data []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("failed to compile embedded request schema: %v", err))
	}
	return schema
}

// validatePayload checks a JSON request body against the calculation schema.
func validatePayload(body []byte) error {
	result, err := calculateSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("payload validation failed: %s", strings.Join(errs, "; "))
}
