package submission

import (
	"context"
	"time"

	"registration-pipeline/internal/form/validation"
	"registration-pipeline/internal/models"
)

// Outcome is the result of one Submit call.
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeSucceeded
	OutcomeSucceededWithLocalFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSucceededWithLocalFallback:
		return "succeeded_local_fallback"
	default:
		return "unknown"
	}
}

// Accepted reports whether the submission was recorded.
func (o Outcome) Accepted() bool {
	return o == OutcomeSucceeded || o == OutcomeSucceededWithLocalFallback
}

// State is the form's position in the submit lifecycle.
type State int32

const (
	StateReady State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Annotator shows validation outcomes next to their fields.
type Annotator interface {
	Apply(result validation.Result)
}

// Recorder persists accepted submissions. Append must not fail the caller.
type Recorder interface {
	Append(ctx context.Context, record models.SubmissionRecord)
}

// View receives the form-level presentation changes.
type View interface {
	SetBusy(busy bool)
	ShowSubmitted()
	ShowRejected(fields []string)
}

type Options struct {
	// SourceURL is stamped on every record as its source.
	SourceURL string
	// Now defaults to time.Now.
	Now func() time.Time
	// OnStateChange, when set, observes every transition.
	OnStateChange func(from, to State)
}

type nopView struct{}

func (nopView) SetBusy(bool)          {}
func (nopView) ShowSubmitted()        {}
func (nopView) ShowRejected([]string) {}
