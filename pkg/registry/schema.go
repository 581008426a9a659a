// pkg/registry/schema.go
package registry

type FormRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Fields      []FieldDef `json:"fields"`
}

type FieldDef struct {
	Name      string `json:"name"`
	Label     string `json:"label,omitempty"`
	Required  bool   `json:"required"`
	MinLength *int   `json:"minLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// registrySchema is checked before the file is decoded.
const registrySchema = `{
  "type": "object",
  "required": ["fields"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "required": {"type": "boolean"},
          "minLength": {"type": "integer", "minimum": 0},
          "pattern": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  }
}`
