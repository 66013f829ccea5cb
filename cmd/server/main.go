package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd runs the API server when invoked without a subcommand.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fitfactory",
		Short:        "FitFactory backend API",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}

	root.AddCommand(newServeCmd(), newCreateTableCmd(), newGenSecretCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API server",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}
