package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SubmissionSequenceSchema describes the value kept in the durable slot: an
// array of flat objects whose values are all strings, each carrying the
// derived source and submittedAt fields.
const SubmissionSequenceSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["source", "submittedAt"],
		"properties": {
			"id":          {"type": "string"},
			"source":      {"type": "string"},
			"submittedAt": {"type": "string", "format": "date-time"}
		},
		"additionalProperties": {"type": "string"}
	}
}`

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema document.
func Compile(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateBytes checks raw JSON against the schema. Malformed JSON and schema
// violations both return an error listing what failed.
func (s *Schema) ValidateBytes(raw []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document does not match schema: %s", strings.Join(errs, "; "))
	}
	return nil
}
