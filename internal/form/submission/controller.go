// Package submission orchestrates one form submission: validate, attempt the
// remote send, always persist locally, then present the outcome.
package submission

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	apperrors "registration-pipeline/internal/common/errors"
	"registration-pipeline/internal/common/logger"
	"registration-pipeline/internal/common/metrics"
	"registration-pipeline/internal/common/observability"
	"registration-pipeline/internal/form/remote"
	"registration-pipeline/internal/form/validation"
	"registration-pipeline/internal/models"
)

type Controller struct {
	engine    *validation.Engine
	annotator Annotator
	recorder  Recorder
	sender    remote.Sender
	view      View
	options   Options
	obs       *observability.Observability
	logger    logger.Logger
	errs      *apperrors.ErrorHandler

	busy  atomic.Bool
	state atomic.Int32
}

func NewController(
	engine *validation.Engine,
	annotator Annotator,
	recorder Recorder,
	sender remote.Sender,
	view View,
	options Options,
	log logger.Logger,
) *Controller {
	if view == nil {
		view = nopView{}
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	l := log.WithFields(map[string]interface{}{"component": "submission"})
	return &Controller{
		engine:    engine,
		annotator: annotator,
		recorder:  recorder,
		sender:    sender,
		view:      view,
		options:   options,
		logger:    l,
		errs:      apperrors.NewErrorHandler(l),
	}
}

// WithObservability attaches an OpenTelemetry recorder; nil disables it.
func (c *Controller) WithObservability(obs *observability.Observability) *Controller {
	c.obs = obs
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Submit runs one submission. The only errors returned are a
// VALIDATION_FAILED StandardError for an invalid snapshot and
// SUBMISSION_IN_PROGRESS when another Submit is still running. Once
// validation passes the record is always handed to the local store, and
// remote or presentation failures degrade to OutcomeSucceededWithLocalFallback.
func (c *Controller) Submit(ctx context.Context, snapshot models.FormSnapshot) (Outcome, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Warn("submit ignored, submission in progress", nil)
		return OutcomeRejected, apperrors.NewSubmissionInProgressError()
	}
	defer c.busy.Store(false)

	// Copy before anything reads it; the caller may keep editing its map.
	snapshot = snapshot.Clone()

	c.transition(StateValidating)
	result := c.engine.Evaluate(snapshot)
	c.annotator.Apply(result)

	if !result.Valid() {
		invalid := result.Invalid()
		c.transition(StateRejected)
		c.view.ShowRejected(invalid)
		c.transition(StateReady)

		metrics.SubmissionsTotal.WithLabelValues(OutcomeRejected.String()).Inc()
		c.obs.RecordSubmission(ctx, OutcomeRejected.String(), 0)
		c.logger.Info("submission rejected", map[string]interface{}{
			"invalidFields": invalid,
		})
		return OutcomeRejected, apperrors.NewValidationFailedError(result.Reasons())
	}

	return c.submitValid(ctx, snapshot), nil
}

func (c *Controller) submitValid(ctx context.Context, snapshot models.FormSnapshot) (outcome Outcome) {
	start := c.options.Now()
	outcome = OutcomeSucceededWithLocalFallback

	c.transition(StateSubmitting)
	c.view.SetBusy(true)

	defer func() {
		if r := recover(); r != nil {
			c.errs.RecoverPanic("submission", r)
			outcome = OutcomeSucceededWithLocalFallback
		}
		c.safely("view.busy", func() { c.view.SetBusy(false) })
		c.transition(StateReady)

		elapsed := c.options.Now().Sub(start)
		metrics.SubmissionsTotal.WithLabelValues(outcome.String()).Inc()
		metrics.SubmitDuration.Observe(elapsed.Seconds())
		c.obs.RecordSubmission(ctx, outcome.String(), elapsed)
	}()

	record := models.NewSubmissionRecord(snapshot, c.options.SourceURL, start)
	log := c.logger.WithFields(map[string]interface{}{"recordId": record.ID})

	remoteErr := c.attemptRemoteSend(ctx, record)
	if remoteErr == nil {
		outcome = OutcomeSucceeded
	} else {
		// Non-authoritative: the local copy below is the guarantee.
		c.errs.Swallow("remote.send", remoteErr)
	}

	// The caller may have been cancelled during the send. Persisting is not
	// cancellable; the store bounds each call with its own timeout.
	c.persist(context.WithoutCancel(ctx), record, log)

	c.transition(StateSubmitted)
	c.view.ShowSubmitted()

	log.Info("submission accepted", map[string]interface{}{
		"outcome": outcome.String(),
		"source":  record.Source,
	})
	return outcome
}

func (c *Controller) attemptRemoteSend(ctx context.Context, record models.SubmissionRecord) (err error) {
	if c.sender == nil {
		return apperrors.NewRemoteTransportError("", fmt.Errorf("no sender configured"))
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewRemoteTransportError("", fmt.Errorf("sender panic: %v", r))
		}
	}()
	return c.sender.Send(ctx, record)
}

// persist hands record to the recorder. A recorder panic means the record
// was not stored anywhere, which is logged as a persistence failure.
func (c *Controller) persist(ctx context.Context, record models.SubmissionRecord, log logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StoreFailures.WithLabelValues("append").Inc()
			log.Error("submission not persisted", map[string]interface{}{
				"errorCode": apperrors.ErrCodeStorageWriteFailed,
				"panic":     fmt.Sprint(r),
			})
		}
	}()
	c.recorder.Append(ctx, record)
}

// safely runs fn and logs instead of propagating a panic.
func (c *Controller) safely(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.errs.RecoverPanic(step, r)
		}
	}()
	fn()
}

func (c *Controller) transition(to State) {
	from := State(c.state.Swap(int32(to)))
	if c.options.OnStateChange != nil && from != to {
		c.options.OnStateChange(from, to)
	}
}
