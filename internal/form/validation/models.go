package validation

import (
	"regexp"
	"sort"

	"registration-pipeline/internal/models"
)

// Failure reasons.
const (
	ReasonRequired        = "required"
	ReasonTooShort        = "too short"
	ReasonPatternMismatch = "pattern mismatch"
)

// FieldOutcome is the tagged per-field result: Valid, or Invalid with a reason.
type FieldOutcome struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Result holds an outcome for every field that has a spec.
type Result struct {
	Fields map[string]FieldOutcome `json:"fields"`
}

// Valid reports whether every evaluated field is valid.
func (r Result) Valid() bool {
	for _, o := range r.Fields {
		if !o.Valid {
			return false
		}
	}
	return true
}

// Invalid returns the names of invalid fields, sorted.
func (r Result) Invalid() []string {
	var names []string
	for name, o := range r.Fields {
		if !o.Valid {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Outcome returns the outcome for name and whether the field was evaluated.
func (r Result) Outcome(name string) (FieldOutcome, bool) {
	o, ok := r.Fields[name]
	return o, ok
}

// Reasons maps each invalid field to its reason.
func (r Result) Reasons() map[string]string {
	out := make(map[string]string)
	for name, o := range r.Fields {
		if !o.Valid {
			out[name] = o.Reason
		}
	}
	return out
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s'-]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// DefaultFieldSpecs returns the registration form's built-in rules.
func DefaultFieldSpecs() []models.FieldSpec {
	return []models.FieldSpec{
		{
			Name:      "name",
			Label:     "name",
			Required:  true,
			MinLength: models.IntPtr(2),
			Pattern:   namePattern,
		},
		{
			Name:     "email",
			Label:    "email address",
			Required: true,
			Pattern:  emailPattern,
		},
	}
}
