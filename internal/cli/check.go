package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckResult is the outcome of a store integrity check.
type CheckResult struct {
	Checked int           `json:"checked"`
	Invalid []InvalidPost `json:"invalid"`
}

type InvalidPost struct {
	Slug  string `json:"slug"`
	Error string `json:"error"`
}

// NewCheckCommand validates every record the way the catalog loads them and
// fails when any record would break the catalog.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "check",
		Short:         "Validate every post record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			slugs, err := opts.store().List(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "list posts", err)
			}

			cat := opts.catalog()
			res := CheckResult{Checked: len(slugs), Invalid: []InvalidPost{}}
			for _, s := range slugs {
				if _, err := cat.GetBySlug(ctx, s); err != nil {
					res.Invalid = append(res.Invalid, InvalidPost{Slug: s, Error: err.Error()})
				}
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				for _, bad := range res.Invalid {
					fmt.Fprintf(out, "FAIL %s: %s\n", bad.Slug, bad.Error)
				}
				fmt.Fprintf(out, "%d checked, %d invalid\n", res.Checked, len(res.Invalid))
			}

			if len(res.Invalid) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d invalid post(s)", len(res.Invalid)))
			}
			return nil
		},
	}
}
