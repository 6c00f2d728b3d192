// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/ward-admin/cliparse"
)

// NewRootCommand builds the ward-admin command tree. Running it without a
// subcommand starts the server.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ward-admin",
		Short: "Ward administration dashboard API",
		Long: `ward-admin serves the ward dashboard: paginated collection screens over a
document store, calendar import with an editable table, and xlsx/pdf export.

Run without a subcommand (or with "serve") to start the HTTP server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cliparse.LoadDotEnv()
		},
		SilenceUsage: true,
	}

	serve := newServeCommand()
	root.RunE = serve.RunE
	root.Args = serve.Args
	root.DisableFlagParsing = true

	root.AddCommand(serve)
	root.AddCommand(newHashPasswordCommand())
	root.AddCommand(newConvertCommand())
	root.AddCommand(newImportCommand())
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
