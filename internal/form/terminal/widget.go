package terminal

import (
	"fmt"
	"io"
	"sync"
)

// Widget is the terminal error slot for one field. It holds the annotation
// set by the presenter; the View prints it.
type Widget struct {
	mu      sync.Mutex
	name    string
	label   string
	message string
	errored bool
}

func NewWidget(name, label string) *Widget {
	if label == "" {
		label = name
	}
	return &Widget{name: name, label: label}
}

func (w *Widget) Name() string { return w.name }

func (w *Widget) Label() string { return w.label }

func (w *Widget) SetError(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errored = true
	w.message = message
}

func (w *Widget) ClearError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errored = false
	w.message = ""
}

// Error returns the current annotation and whether the field is errored.
func (w *Widget) Error() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message, w.errored
}

// Render writes the annotation line, or nothing when the field is clean.
func (w *Widget) Render(out io.Writer) {
	msg, errored := w.Error()
	if !errored {
		return
	}
	fmt.Fprintf(out, "  ✗ %s: %s\n", w.label, msg)
}
