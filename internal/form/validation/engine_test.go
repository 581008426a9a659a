package validation

import (
	"regexp"
	"testing"

	"registration-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createValidSnapshot() models.FormSnapshot {
	return models.FormSnapshot{
		"name":    "Jo",
		"email":   "jo@x.com",
		"company": "",
		"message": "Looking forward to it",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestEngine_Evaluate(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name        string
		snapshot    models.FormSnapshot
		wantValid   bool
		wantInvalid []string
		wantReasons map[string]string
	}{
		{
			name:      "minimal valid registration",
			snapshot:  models.FormSnapshot{"name": "Jo", "email": "jo@x.com"},
			wantValid: true,
		},
		{
			name:        "name too short",
			snapshot:    models.FormSnapshot{"name": "J", "email": "jo@x.com"},
			wantInvalid: []string{"name"},
			wantReasons: map[string]string{"name": ReasonTooShort},
		},
		{
			name:        "malformed email",
			snapshot:    models.FormSnapshot{"name": "Jo", "email": "not-an-email"},
			wantInvalid: []string{"email"},
			wantReasons: map[string]string{"email": ReasonPatternMismatch},
		},
		{
			name:        "both missing",
			snapshot:    models.FormSnapshot{},
			wantInvalid: []string{"email", "name"},
			wantReasons: map[string]string{"name": ReasonRequired, "email": ReasonRequired},
		},
		{
			name:        "whitespace only name counts as empty",
			snapshot:    models.FormSnapshot{"name": "   ", "email": "jo@x.com"},
			wantInvalid: []string{"name"},
			wantReasons: map[string]string{"name": ReasonRequired},
		},
		{
			name:        "name with digits",
			snapshot:    models.FormSnapshot{"name": "R2D2", "email": "r2@x.com"},
			wantInvalid: []string{"name"},
			wantReasons: map[string]string{"name": ReasonPatternMismatch},
		},
		{
			name:      "name with apostrophe hyphen and spaces",
			snapshot:  models.FormSnapshot{"name": "  Mary-Jane O'Neil ", "email": "mj@example.org"},
			wantValid: true,
		},
		{
			name:      "optional passthrough fields are untouched",
			snapshot:  createValidSnapshot(),
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.snapshot)
			assert.Equal(t, tt.wantValid, result.Valid())
			assert.Equal(t, tt.wantInvalid, result.Invalid())
			if tt.wantReasons != nil {
				assert.Equal(t, tt.wantReasons, result.Reasons())
			}
			_, evaluated := result.Outcome("company")
			assert.False(t, evaluated, "fields without a spec are not evaluated")
		})
	}
}

func TestEngine_NameRule(t *testing.T) {
	engine := NewDefaultEngine()

	// Any name shorter than two characters is invalid regardless of other fields.
	for _, name := range []string{"", "J", " J ", "é"} {
		for _, email := range []string{"jo@x.com", "bad", ""} {
			result := engine.Evaluate(models.FormSnapshot{"name": name, "email": email})
			outcome, ok := result.Outcome("name")
			require.True(t, ok)
			assert.False(t, outcome.Valid, "name=%q email=%q", name, email)
			assert.NotEmpty(t, outcome.Message)
		}
	}
}

func TestEngine_EmailRule(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		email string
		valid bool
	}{
		{"jo@x.com", true},
		{"first.last+tag@sub.example.co.uk", true},
		{"not-an-email", false},
		{"jo@x", false},
		{"@x.com", false},
		{"jo@.com", false},
		{"j o@x.com", false},
		{"jo@@x.com", false},
		{"jo@x .com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			outcome := engine.EvaluateField("email", tt.email)
			assert.Equal(t, tt.valid, outcome.Valid)
		})
	}
}

func TestEngine_EvaluateField(t *testing.T) {
	engine := NewDefaultEngine()

	assert.True(t, engine.EvaluateField("name", "Jo").Valid)

	outcome := engine.EvaluateField("name", "J")
	assert.False(t, outcome.Valid)
	assert.Equal(t, ReasonTooShort, outcome.Reason)
	assert.Equal(t, "Your name must be at least 2 characters", outcome.Message)

	outcome = engine.EvaluateField("email", "")
	assert.Equal(t, ReasonRequired, outcome.Reason)
	assert.Equal(t, "Please enter your email address", outcome.Message)

	assert.True(t, engine.EvaluateField("company", "anything").Valid, "unspecced field is valid")
}

func TestEngine_CustomSpecs(t *testing.T) {
	engine, err := NewEngine([]models.FieldSpec{
		{Name: "phone", Pattern: regexp.MustCompile(`^\+?[0-9 ]{7,}$`)},
		{Name: "company", MinLength: models.IntPtr(3)},
	})
	require.NoError(t, err)

	result := engine.Evaluate(models.FormSnapshot{})
	assert.Equal(t, map[string]string{"company": ReasonTooShort}, result.Reasons(),
		"empty optional values skip the pattern but not minLength")

	assert.False(t, engine.EvaluateField("company", "").Valid)
	assert.False(t, engine.EvaluateField("company", "   ").Valid)
	assert.True(t, engine.EvaluateField("phone", "").Valid)
	assert.True(t, engine.EvaluateField("company", "Acme").Valid)

	result = engine.Evaluate(models.FormSnapshot{"phone": "abc", "company": "AB"})
	assert.Equal(t, map[string]string{
		"phone":   ReasonPatternMismatch,
		"company": ReasonTooShort,
	}, result.Reasons())
}

func TestEngine_IsDeterministic(t *testing.T) {
	engine := NewDefaultEngine()
	snapshot := models.FormSnapshot{"name": "J", "email": "x"}

	first := engine.Evaluate(snapshot)
	second := engine.Evaluate(snapshot)
	assert.Equal(t, first, second)
	assert.Equal(t, models.FormSnapshot{"name": "J", "email": "x"}, snapshot, "input is not mutated")
}

func TestNewEngine_RejectsBadSpecs(t *testing.T) {
	_, err := NewEngine([]models.FieldSpec{{Name: "name"}, {Name: "name"}})
	assert.Error(t, err)

	_, err = NewEngine([]models.FieldSpec{{Name: ""}})
	assert.Error(t, err)

	_, err = NewEngine([]models.FieldSpec{{Name: "x", MinLength: models.IntPtr(-1)}})
	assert.Error(t, err)
}
