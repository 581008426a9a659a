// cmd/registration-cli/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "registration-cli",
	Short: "Collect, submit and inspect registrations",
	Long: `registration-cli runs the registration form in the terminal.

Every accepted submission is sent to the configured endpoint and always
recorded in the local store, whether or not the endpoint answered.

Available commands:
  submit - Fill in and submit the registration form
  list   - Show locally recorded submissions
  fields - Show the form fields and their rules`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	submitCmd.Flags().StringArrayVarP(&submitFields, "field", "f", nil, "Field value as name=value (repeatable)")
	submitCmd.Flags().BoolVar(&submitNoPrompt, "no-prompt", false, "Submit the --field values without prompting")
	submitCmd.Flags().BoolVarP(&submitYes, "yes", "y", false, "Skip the confirmation prompt")

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "Print the field registry as JSON")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fieldsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
