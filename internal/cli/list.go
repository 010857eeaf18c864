package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List posts, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := opts.catalog().ListAll(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "list posts", err)
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), posts)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSLUG\tTITLE\tTAGS\tREADING TIME")
			for _, p := range posts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Date, p.Slug, p.Title, strings.Join(p.Tags, ","), p.ReadingTime)
			}
			return tw.Flush()
		},
	}
}
