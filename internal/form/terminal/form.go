package terminal

import (
	"context"
	"errors"
	"fmt"

	"registration-pipeline/internal/form/presenter"
	"registration-pipeline/internal/models"
)

// Form prompts for every configured field. Each answer goes through the
// presenter's blur handler, so an invalid value is annotated and re-asked.
type Form struct {
	driver    PromptDriver
	presenter *presenter.Presenter
	specs     []models.FieldSpec
	widgets   []*Widget
}

// NewForm builds one widget per spec and attaches it to p.
func NewForm(driver PromptDriver, p *presenter.Presenter, specs []models.FieldSpec) *Form {
	f := &Form{driver: driver, presenter: p, specs: specs}
	for _, spec := range specs {
		w := NewWidget(spec.Name, spec.Label)
		p.Attach(w)
		f.widgets = append(f.widgets, w)
	}
	return f
}

// Widgets returns the field widgets in prompt order.
func (f *Form) Widgets() []*Widget {
	return f.widgets
}

// Collect prompts for each field and returns the captured snapshot. Values in
// initial are offered as defaults.
func (f *Form) Collect(ctx context.Context, initial models.FormSnapshot) (models.FormSnapshot, error) {
	if len(f.specs) == 0 {
		return nil, ErrNoFields
	}

	snapshot := initial.Clone()
	for _, spec := range f.specs {
		name := spec.Name
		value, err := f.driver.Input(ctx, InputConfig{
			Message: promptMessage(spec),
			Default: initial[name],
			Validator: func(v string) error {
				outcome := f.presenter.OnFieldBlur(name, v)
				if !outcome.Valid {
					return errors.New(outcome.Message)
				}
				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		snapshot[name] = value
	}
	return snapshot, nil
}

// ConfirmSubmit asks whether to send the collected snapshot.
func (f *Form) ConfirmSubmit(ctx context.Context) (bool, error) {
	return f.driver.Confirm(ctx, ConfirmConfig{
		Message: "Submit registration?",
		Default: true,
	})
}

func promptMessage(spec models.FieldSpec) string {
	label := spec.Label
	if label == "" {
		label = spec.Name
	}
	if spec.Required {
		return fmt.Sprintf("Your %s:", label)
	}
	return fmt.Sprintf("Your %s (optional):", label)
}
