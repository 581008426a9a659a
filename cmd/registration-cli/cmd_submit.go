// cmd/registration-cli/cmd_submit.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "registration-pipeline/internal/common/errors"
	"registration-pipeline/internal/form/submission"
	"registration-pipeline/internal/form/terminal"
	"registration-pipeline/internal/models"
)

var (
	submitFields   []string
	submitNoPrompt bool
	submitYes      bool
)

// submitCmd fills in and submits the registration form
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Fill in and submit the registration form",
	Long: `Prompt for each form field and submit the registration.

Values given with --field are offered as defaults. With --no-prompt the
--field values are submitted as-is and invalid fields are reported.`,
	RunE: runSubmit,
}

var errCancelled = errors.New("submission cancelled")

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initial, err := parseFieldFlags(submitFields)
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var driver terminal.PromptDriver
	if !submitNoPrompt {
		driver = terminal.NewSurveyDriver()
	}
	return submitForm(ctx, a, driver, initial, cmd.OutOrStdout())
}

// submitForm collects a snapshot (prompting when driver is set) and runs it
// through the controller.
func submitForm(ctx context.Context, a *app, driver terminal.PromptDriver, initial models.FormSnapshot, out io.Writer) error {
	specs := a.engine.Specs()
	form := terminal.NewForm(driver, a.presenter, specs)
	view := terminal.NewView(out, form.Widgets()...)

	snapshot := initial
	if driver != nil {
		collected, err := form.Collect(ctx, initial)
		if err != nil {
			if errors.Is(err, terminal.ErrAborted) {
				return errCancelled
			}
			return err
		}
		snapshot = collected

		if !submitYes {
			ok, err := form.ConfirmSubmit(ctx)
			if err != nil {
				if errors.Is(err, terminal.ErrAborted) {
					return errCancelled
				}
				return err
			}
			if !ok {
				return errCancelled
			}
		}
	}

	outcome, err := a.controller(view).Submit(ctx, snapshot)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeValidationFailed) {
			return fmt.Errorf("registration not submitted: %w", err)
		}
		return err
	}

	a.log.Debug("submit finished", map[string]interface{}{"outcome": outcome.String()})
	if err := a.checkPersisted(out); err != nil {
		return err
	}
	if outcome == submission.OutcomeSucceededWithLocalFallback {
		a.log.Info("remote endpoint unavailable, submission kept locally", nil)
	}
	return nil
}

// parseFieldFlags turns name=value pairs into a snapshot.
func parseFieldFlags(pairs []string) (models.FormSnapshot, error) {
	snapshot := make(models.FormSnapshot, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --field %q, expected name=value", pair)
		}
		snapshot[name] = value
	}
	return snapshot, nil
}
