package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is returned when the configuration does not match the
// embedded JSON schema.
var ErrSchemaViolation = errors.New("configuration does not match schema")

// Schema is the JSON schema of the configuration document.
//
//go:embed schema.json
var Schema string

//nolint:gochecknoglobals // Compiled once from the embedded document.
var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(Schema))
})

// ValidateSchema checks cfg against Schema and reports every violation.
func ValidateSchema(cfg *Config) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}
