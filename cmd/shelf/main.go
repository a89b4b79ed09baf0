// Command shelf serves the bookmark web UI and JSON API.
//
// Configuration comes from the environment (and a .env file when present);
// see internal/config for the variables.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Smart Bookmark Manager server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "shelf "+version.String())
		},
	})
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("❌ shelf failed to start: %v", err)
	}
}
