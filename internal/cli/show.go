package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/blog-publisher/internal/catalog"
)

func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <slug>",
		Short:         "Print one post",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := opts.catalog().GetBySlug(cmd.Context(), args[0])
			if errors.Is(err, catalog.ErrPostNotFound) {
				return NewExitError(ExitFailure, fmt.Sprintf("post %q not found", args[0]))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "read post", err)
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), post)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:       %s\n", post.Title)
			fmt.Fprintf(out, "Slug:        %s\n", post.Slug)
			fmt.Fprintf(out, "Date:        %s\n", post.Date)
			fmt.Fprintf(out, "Tags:        %s\n", strings.Join(post.Tags, ", "))
			fmt.Fprintf(out, "Description: %s\n", post.Description)
			fmt.Fprintf(out, "Reading:     %s (%d words)\n\n", post.ReadingTime, post.WordCount)
			fmt.Fprintln(out, post.Content)
			return nil
		},
	}
}
