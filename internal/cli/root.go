// Package cli is the shelfctl command tree.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/client"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// options are the persistent flags shared by every command.
type options struct {
	server   string
	token    string
	timeout  time.Duration
	logLevel string

	log    logger.Logger
	client *client.Client
}

// NewRootCommand builds shelfctl. Flags default to SHELF_URL and SHELF_TOKEN.
func NewRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Manage your shelf bookmarks from the command line",
		Long:          "shelfctl lists, adds, deletes and imports bookmarks on a shelf server.\nCreate a token on the web page (CLI access), then export SHELF_TOKEN.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.log = logger.New(o.logLevel, true)
			if cmd.Name() == "version" {
				return nil
			}
			if o.token == "" {
				return errors.New("no token: pass --token or set SHELF_TOKEN")
			}
			c, err := client.New(o.server, o.token, o.timeout)
			if err != nil {
				return err
			}
			o.client = c
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.server, "server", getenv("SHELF_URL", "http://localhost:8080"), "shelf server URL (env SHELF_URL)")
	flags.StringVar(&o.token, "token", os.Getenv("SHELF_TOKEN"), "API token (env SHELF_TOKEN)")
	flags.DurationVar(&o.timeout, "timeout", 10*time.Second, "HTTP request timeout")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newListCommand(o),
		newAddCommand(o),
		newDeleteCommand(o),
		newWatchCommand(o),
		newImportCommand(o),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "shelfctl "+version.String())
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
