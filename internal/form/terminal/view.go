package terminal

import (
	"fmt"
	"io"
	"sync"
)

const (
	busyText      = "Submitting your registration..."
	submittedText = "Thank you! Your registration has been received."
	rejectedText  = "Please correct the highlighted fields:"
)

// View prints the form-level state changes of a submission.
type View struct {
	mu      sync.Mutex
	out     io.Writer
	widgets map[string]*Widget
	busy    bool
}

func NewView(out io.Writer, widgets ...*Widget) *View {
	v := &View{out: out, widgets: make(map[string]*Widget, len(widgets))}
	for _, w := range widgets {
		v.widgets[w.Name()] = w
	}
	return v
}

func (v *View) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if busy && !v.busy {
		fmt.Fprintln(v.out, busyText)
	}
	v.busy = busy
}

// Busy reports whether the busy indicator is showing.
func (v *View) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *View) ShowSubmitted() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, submittedText)
}

func (v *View) ShowRejected(fields []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, rejectedText)
	for _, name := range fields {
		if w, ok := v.widgets[name]; ok {
			w.Render(v.out)
			continue
		}
		fmt.Fprintf(v.out, "  ✗ %s\n", name)
	}
}
