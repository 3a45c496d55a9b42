package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/loginpanel/internal/config"
	"github.com/ericfisherdev/loginpanel/internal/domain/model"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "loginpanel",
		Short: "Sign-in and registration server over a pluggable credential store",
		Long: `loginpanel serves a sign-in form backed by one credential store:

  memory    fixed users loaded at startup (sign-in only)
  file      JSON array file (registration only, via POST /signin)
  document  MongoDB collection (sign-in and registration)
  sqlite    embedded SQLite database (sign-in and registration)

Configuration is read from LOGINPANEL_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand() *cobra.Command {
	var (
		backend    string
		listenAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("backend") {
				b, err := model.ParseBackend(backend)
				if err != nil {
					return err
				}
				cfg.Backend = b
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}

			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "", "credential backend: memory, file, document, sqlite (overrides LOGINPANEL_BACKEND)")
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides LOGINPANEL_LISTEN_ADDR)")

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loginpanel %s (commit: %s)\n", version, commit)
		},
	}
}
