// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"registration-pipeline/internal/common/validation"
	formvalidation "registration-pipeline/internal/form/validation"
	"registration-pipeline/internal/models"
)

var schema = validation.MustCompile(registrySchema)

// LoadRegistry reads a field registry file. An empty path yields the
// built-in registration fields.
func LoadRegistry(path string) (*FormRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*FormRegistry, error) {
	if err := schema.ValidateBytes(data); err != nil {
		return nil, fmt.Errorf("invalid field registry: %w", err)
	}
	var reg FormRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Default describes the built-in name and email fields.
func Default() *FormRegistry {
	specs := formvalidation.DefaultFieldSpecs()
	reg := &FormRegistry{Version: "builtin", Fields: make([]FieldDef, 0, len(specs))}
	for _, s := range specs {
		def := FieldDef{
			Name:      s.Name,
			Label:     s.Label,
			Required:  s.Required,
			MinLength: s.MinLength,
		}
		if s.Pattern != nil {
			def.Pattern = s.Pattern.String()
		}
		reg.Fields = append(reg.Fields, def)
	}
	return reg
}

// FieldSpecs compiles the definitions into engine rules, in file order.
func (r *FormRegistry) FieldSpecs() ([]models.FieldSpec, error) {
	specs := make([]models.FieldSpec, 0, len(r.Fields))
	for _, def := range r.Fields {
		spec := models.FieldSpec{
			Name:     def.Name,
			Label:    def.Label,
			Required: def.Required,
		}
		if def.MinLength != nil {
			spec.MinLength = models.IntPtr(*def.MinLength)
		}
		if def.Pattern != "" {
			re, err := regexp.Compile(def.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid pattern: %w", def.Name, err)
			}
			spec.Pattern = re
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Engine builds a validation engine for the registry's fields.
func (r *FormRegistry) Engine() (*formvalidation.Engine, error) {
	specs, err := r.FieldSpecs()
	if err != nil {
		return nil, err
	}
	return formvalidation.NewEngine(specs)
}
