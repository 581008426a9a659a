// cmd/registration-cli/cmd_list.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"registration-pipeline/internal/models"
)

var (
	listJSON   bool
	fieldsJSON bool
)

// listCmd prints the locally recorded submissions
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show locally recorded submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return listRecords(cmd.Context(), a, cmd.OutOrStdout(), listJSON)
	},
}

// fieldsCmd prints the active field registry
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the form fields and their rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return printFields(a, cmd.OutOrStdout(), fieldsJSON)
	},
}

func listRecords(ctx context.Context, a *app, out io.Writer, asJSON bool) error {
	records := a.store.LoadAll(ctx)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No submissions recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tSOURCE\tFIELDS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.ID,
			r.SubmittedAtUTC.Format(time.RFC3339),
			r.Source,
			formatFields(r),
		)
	}
	return tw.Flush()
}

func formatFields(r models.SubmissionRecord) string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, r.Fields[name]))
	}
	return strings.Join(parts, " ")
}

func printFields(a *app, out io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a.registry)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tREQUIRED\tMIN LENGTH\tPATTERN")
	for _, f := range a.registry.Fields {
		minLength := "-"
		if f.MinLength != nil {
			minLength = fmt.Sprintf("%d", *f.MinLength)
		}
		pattern := f.Pattern
		if pattern == "" {
			pattern = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", f.Name, f.Label, f.Required, minLength, pattern)
	}
	return tw.Flush()
}
