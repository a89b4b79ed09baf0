package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/client"
)

const dateLayout = "Jan 2, 2006 15:04"

func newListCommand(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your bookmarks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := o.client.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list.Bookmarks)
			}
			return printList(cmd.OutOrStdout(), list.Bookmarks)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newAddCommand(o *options) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Example: `  shelfctl add https://go.dev --title "Go"
  shelfctl add https://pkg.go.dev -t "Go packages"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.client.Create(cmd.Context(), title, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s\n", b.ID, b.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newDeleteCommand(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this bookmark?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			err := o.client.Delete(cmd.Context(), id)
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			case errors.Is(err, client.ErrNotFound):
				// Someone else deleted it first; the outcome is the same.
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (already gone)\n", id)
			default:
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func printList(out io.Writer, bookmarks []client.Bookmark) error {
	if len(bookmarks) == 0 {
		_, err := fmt.Fprintln(out, "No bookmarks yet")
		return err
	}

	_, _ = fmt.Fprintf(out, "Your Bookmarks (%d)\n", len(bookmarks))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tURL\tADDED")
	for _, b := range bookmarks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.URL, b.CreatedAt.Local().Format(dateLayout))
	}
	return w.Flush()
}
