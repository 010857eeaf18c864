package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/blog-publisher/internal/slug"
)

func NewSlugCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "slug <title>...",
		Short:         "Print the slug a title would be stored under",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := slug.Derive(strings.Join(args, " "))
			if !slug.Valid(s) {
				return NewExitError(ExitFailure, fmt.Sprintf("title yields no usable slug (got %q)", s))
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}
