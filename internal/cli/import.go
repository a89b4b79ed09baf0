package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/sources/homepage"
)

func newImportCommand(o *options) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a Homepage bookmarks.yaml or services.yaml",
		Long: `import reads a Homepage (gethomepage.dev) bookmarks.yaml or services.yaml
and adds every entry whose URL is not already on your shelf.`,
		Example: "  shelfctl import --file ./config/bookmarks.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, kind, err := homepage.NewLoader(file).Load()
			if err != nil {
				return err
			}
			o.log.Info("homepage file loaded",
				logger.String("file", file),
				logger.String("kind", string(kind)),
				logger.Int("entries", len(entries)))

			existing, err := o.client.List(cmd.Context())
			if err != nil {
				return err
			}
			seen := make(map[string]bool, len(existing.Bookmarks))
			for _, b := range existing.Bookmarks {
				seen[b.URL] = true
			}

			added, skipped := 0, 0
			for _, e := range entries {
				if seen[e.URL] {
					skipped++
					continue
				}
				seen[e.URL] = true
				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "would add  %s  %s\n", e.Title, e.URL)
					added++
					continue
				}
				if _, err := o.client.Create(cmd.Context(), e.Title, e.URL); err != nil {
					return err
				}
				added++
			}

			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d bookmarks from %s (%d already present)\n", verb, added, kind, skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the Homepage YAML file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be added")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
