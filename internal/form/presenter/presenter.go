// Package presenter maps validation outcomes onto per-field error annotations.
package presenter

import (
	"html"
	"sort"
	"strings"
	"sync"

	"registration-pipeline/internal/form/validation"

	"github.com/microcosm-cc/bluemonday"
)

// FieldWidget is the UI element that owns one field's error slot.
type FieldWidget interface {
	Name() string
	SetError(message string)
	ClearError()
}

// Presenter tracks which fields are annotated. Show is idempotent and Clear is
// a no-op for fields that carry no annotation.
type Presenter struct {
	mu          sync.Mutex
	engine      *validation.Engine
	widgets     map[string]FieldWidget
	annotations map[string]string
	policy      *bluemonday.Policy
}

// New creates a presenter. engine may be nil when only Show/Clear/Apply are used.
func New(engine *validation.Engine, widgets ...FieldWidget) *Presenter {
	p := &Presenter{
		engine:      engine,
		widgets:     make(map[string]FieldWidget, len(widgets)),
		annotations: make(map[string]string),
		policy:      bluemonday.StrictPolicy(),
	}
	for _, w := range widgets {
		p.widgets[w.Name()] = w
	}
	return p
}

// Attach registers or replaces the widget for its field.
func (p *Presenter) Attach(w FieldWidget) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.widgets[w.Name()] = w
	if msg, ok := p.annotations[w.Name()]; ok {
		w.SetError(msg)
	}
}

// Show marks field as errored with message.
func (p *Presenter) Show(field, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.show(field, message)
}

func (p *Presenter) show(field, message string) {
	clean := plainText(p.policy, message)
	if current, ok := p.annotations[field]; ok && current == clean {
		return
	}
	p.annotations[field] = clean
	if w, ok := p.widgets[field]; ok {
		w.SetError(clean)
	}
}

// plainText strips markup; entities the policy escapes are decoded again since
// widgets render text, not HTML.
func plainText(policy *bluemonday.Policy, message string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(message)))
}

// Clear removes the annotation from field.
func (p *Presenter) Clear(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clear(field)
}

func (p *Presenter) clear(field string) {
	if _, ok := p.annotations[field]; !ok {
		return
	}
	delete(p.annotations, field)
	if w, ok := p.widgets[field]; ok {
		w.ClearError()
	}
}

// Apply shows every invalid field of result and clears every valid one.
func (p *Presenter) Apply(result validation.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, outcome := range result.Fields {
		p.applyOutcome(name, outcome)
	}
}

func (p *Presenter) applyOutcome(name string, outcome validation.FieldOutcome) {
	if outcome.Valid {
		p.clear(name)
		return
	}
	p.show(name, outcome.Message)
}

// OnFieldBlur validates a field when it loses focus.
func (p *Presenter) OnFieldBlur(name, value string) validation.FieldOutcome {
	outcome := p.engine.EvaluateField(name, value)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyOutcome(name, outcome)
	return outcome
}

// OnFieldInput re-validates while typing, but only a field that is already
// annotated, so the user is not nagged before the first blur.
func (p *Presenter) OnFieldInput(name, value string) validation.FieldOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, annotated := p.annotations[name]; !annotated {
		return validation.FieldOutcome{Valid: true}
	}
	outcome := p.engine.EvaluateField(name, value)
	p.applyOutcome(name, outcome)
	return outcome
}

// Annotation returns the message shown on field.
func (p *Presenter) Annotation(field string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg, ok := p.annotations[field]
	return msg, ok
}

// Annotations returns a copy of all current annotations.
func (p *Presenter) Annotations() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.annotations))
	for k, v := range p.annotations {
		out[k] = v
	}
	return out
}

// Errored returns the annotated field names, sorted.
func (p *Presenter) Errored() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.annotations))
	for k := range p.annotations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
