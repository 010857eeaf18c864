// Package cli implements blogctl, the operator tool for the local post store.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/example/blog-publisher/internal/catalog"
	"github.com/example/blog-publisher/internal/config"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	PostsDir   string
	Extension  string
	Format     string // "json" | "text"
}

var validFormats = []string{"text", "json"}

// NewRootCommand creates the blogctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Inspect and check the local blog post store",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats))
			}
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.GetConfigPath("config.yml"), "path to the service config file")
	cmd.PersistentFlags().StringVar(&opts.PostsDir, "dir", "", "posts directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Extension, "ext", "", "record file extension (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSlugCommand(opts))

	return cmd
}

// resolve fills the store location from the config file unless set by flags.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if cmd.Flags().Changed("dir") && cmd.Flags().Changed("ext") {
		return nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if !cmd.Flags().Changed("dir") {
		o.PostsDir = cfg.Posts.Dir
	}
	if !cmd.Flags().Changed("ext") {
		o.Extension = cfg.Posts.Extension
	}
	return nil
}

func (o *RootOptions) store() *store.FileStore {
	return store.New(o.PostsDir, o.Extension)
}

func (o *RootOptions) catalog() *catalog.Catalog {
	return catalog.New(o.store(), logger.NewNop())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
