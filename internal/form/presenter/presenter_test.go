package presenter

import (
	"testing"

	"registration-pipeline/internal/form/validation"
	"registration-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Widget Implementation
// ==========================

type recordingWidget struct {
	name     string
	errored  bool
	message  string
	setCalls int
	clrCalls int
}

func newWidget(name string) *recordingWidget {
	return &recordingWidget{name: name}
}

func (w *recordingWidget) Name() string { return w.name }

func (w *recordingWidget) SetError(message string) {
	w.errored = true
	w.message = message
	w.setCalls++
}

func (w *recordingWidget) ClearError() {
	w.errored = false
	w.message = ""
	w.clrCalls++
}

// ==========================
// Show / Clear
// ==========================

func TestPresenter_ShowIsIdempotent(t *testing.T) {
	name := newWidget("name")
	p := New(validation.NewDefaultEngine(), name)

	p.Show("name", "Please enter your name")
	once := p.Annotations()

	p.Show("name", "Please enter your name")
	twice := p.Annotations()

	assert.Equal(t, once, twice)
	assert.Len(t, twice, 1)
	assert.True(t, name.errored)
	assert.Equal(t, 1, name.setCalls, "second identical show does not add an annotation")
}

func TestPresenter_ShowReplacesMessage(t *testing.T) {
	email := newWidget("email")
	p := New(nil, email)

	p.Show("email", "Please enter your email address")
	p.Show("email", "Please enter a valid email address")

	msg, ok := p.Annotation("email")
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid email address", msg)
	assert.Equal(t, msg, email.message)
}

func TestPresenter_ClearIsNoOpWithoutAnnotation(t *testing.T) {
	name := newWidget("name")
	p := New(nil, name)

	p.Clear("name")
	assert.Equal(t, 0, name.clrCalls)

	p.Show("name", "x")
	p.Clear("name")
	p.Clear("name")
	assert.Equal(t, 1, name.clrCalls)
	assert.False(t, name.errored)
	assert.Empty(t, p.Annotations())
}

func TestPresenter_SanitizesMessages(t *testing.T) {
	name := newWidget("name")
	p := New(nil, name)

	p.Show("name", `<script>alert(1)</script>Please enter your <b>name</b>`)
	assert.Equal(t, "Please enter your name", name.message)
}

func TestPresenter_UnknownFieldIsTracked(t *testing.T) {
	p := New(nil)
	p.Show("phone", "bad phone")

	msg, ok := p.Annotation("phone")
	assert.True(t, ok)
	assert.Equal(t, "bad phone", msg)

	phone := newWidget("phone")
	p.Attach(phone)
	assert.True(t, phone.errored, "attaching a widget replays its annotation")
}

// ==========================
// Apply
// ==========================

func TestPresenter_Apply(t *testing.T) {
	engine := validation.NewDefaultEngine()
	name, email := newWidget("name"), newWidget("email")
	p := New(engine, name, email)

	p.Show("email", "stale")
	p.Apply(engine.Evaluate(models.FormSnapshot{"name": "J", "email": "jo@x.com"}))

	assert.Equal(t, []string{"name"}, p.Errored())
	assert.True(t, name.errored)
	assert.False(t, email.errored)
}

// ==========================
// Blur / Input
// ==========================

func TestPresenter_OnFieldBlur(t *testing.T) {
	name := newWidget("name")
	p := New(validation.NewDefaultEngine(), name)

	outcome := p.OnFieldBlur("name", "J")
	assert.False(t, outcome.Valid)
	assert.True(t, name.errored)

	outcome = p.OnFieldBlur("name", "Jo")
	assert.True(t, outcome.Valid)
	assert.False(t, name.errored)
}

func TestPresenter_OnFieldInput(t *testing.T) {
	email := newWidget("email")
	p := New(validation.NewDefaultEngine(), email)

	// Not annotated yet: typing an incomplete value does not show an error.
	p.OnFieldInput("email", "jo@")
	assert.False(t, email.errored)

	p.OnFieldBlur("email", "jo@")
	require.True(t, email.errored)

	p.OnFieldInput("email", "jo@x")
	assert.True(t, email.errored, "still invalid while typing")

	p.OnFieldInput("email", "jo@x.com")
	assert.False(t, email.errored, "error clears as soon as the value is valid")
	assert.Empty(t, p.Errored())
}
