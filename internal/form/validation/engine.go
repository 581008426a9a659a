// Package validation evaluates form snapshots against per-field rules.
// Evaluation is pure: no logging, no I/O, same input gives the same result.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"registration-pipeline/internal/models"
)

// Engine applies a fixed set of FieldSpecs.
type Engine struct {
	specs []models.FieldSpec
	index map[string]int
}

// NewEngine builds an engine. Field names must be non-empty and unique.
func NewEngine(specs []models.FieldSpec) (*Engine, error) {
	e := &Engine{
		specs: make([]models.FieldSpec, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("field spec %d has no name", i)
		}
		if _, dup := e.index[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate field spec %q", spec.Name)
		}
		if spec.MinLength != nil && *spec.MinLength < 0 {
			return nil, fmt.Errorf("field spec %q has negative minLength", spec.Name)
		}
		e.specs[i] = spec
		e.index[spec.Name] = i
	}
	return e, nil
}

// NewDefaultEngine returns an engine over DefaultFieldSpecs.
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultFieldSpecs())
	if err != nil {
		panic(err)
	}
	return e
}

// Specs returns the field specs in declaration order.
func (e *Engine) Specs() []models.FieldSpec {
	out := make([]models.FieldSpec, len(e.specs))
	copy(out, e.specs)
	return out
}

// Spec returns the spec for name.
func (e *Engine) Spec(name string) (models.FieldSpec, bool) {
	i, ok := e.index[name]
	if !ok {
		return models.FieldSpec{}, false
	}
	return e.specs[i], true
}

// Evaluate checks every specced field of snapshot. Missing fields are treated
// as empty; snapshot fields without a spec are not part of the result.
func (e *Engine) Evaluate(snapshot models.FormSnapshot) Result {
	result := Result{Fields: make(map[string]FieldOutcome, len(e.specs))}
	for _, spec := range e.specs {
		result.Fields[spec.Name] = evaluate(spec, snapshot[spec.Name])
	}
	return result
}

// EvaluateField applies the rules of one field. Fields without a spec are valid.
func (e *Engine) EvaluateField(name, value string) FieldOutcome {
	spec, ok := e.Spec(name)
	if !ok {
		return FieldOutcome{Valid: true}
	}
	return evaluate(spec, value)
}

func evaluate(spec models.FieldSpec, value string) FieldOutcome {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" && spec.Required {
		return invalid(spec, ReasonRequired)
	}

	if spec.MinLength != nil && utf8.RuneCountInString(trimmed) < *spec.MinLength {
		return invalid(spec, ReasonTooShort)
	}

	// Patterns only apply to values that were actually entered.
	if trimmed != "" && spec.Pattern != nil && !spec.Pattern.MatchString(trimmed) {
		return invalid(spec, ReasonPatternMismatch)
	}

	return FieldOutcome{Valid: true}
}

func invalid(spec models.FieldSpec, reason string) FieldOutcome {
	return FieldOutcome{
		Valid:   false,
		Reason:  reason,
		Message: message(spec, reason),
	}
}

func message(spec models.FieldSpec, reason string) string {
	label := spec.Label
	if label == "" {
		label = spec.Name
	}
	switch reason {
	case ReasonRequired:
		return fmt.Sprintf("Please enter your %s", label)
	case ReasonTooShort:
		return fmt.Sprintf("Your %s must be at least %d characters", label, *spec.MinLength)
	case ReasonPatternMismatch:
		return fmt.Sprintf("Please enter a valid %s", label)
	}
	return fmt.Sprintf("Invalid %s", label)
}
