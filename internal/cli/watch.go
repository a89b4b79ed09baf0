package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
)

func newWatchCommand(o *options) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the list again whenever it changes",
		Long:  "watch polls the server and reprints the list when it changes. Stop it with Ctrl-C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &watcher{out: cmd.OutOrStdout()}
			p := scheduler.NewPoller("watch", interval, func(ctx context.Context) error {
				list, err := o.client.List(ctx)
				if err != nil {
					return err
				}
				if list.Changed {
					o.log.Debug("bookmark list changed", logger.Revision(list.Revision))
				}
				return w.show(list.Changed, func(out io.Writer) error {
					return printList(out, list.Bookmarks)
				})
			}, o.log)

			ctx := cmd.Context()
			if err := p.Start(ctx); err != nil {
				return err
			}
			o.log.Debug("watching bookmarks", logger.Duration("interval", interval))
			<-ctx.Done()
			p.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}

// watcher serializes output from overlapping poll ticks. It prints whenever
// the list body changed, so a write whose revision bump was lost still shows up.
type watcher struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *watcher) show(changed bool, render func(io.Writer) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !changed {
		return nil
	}
	_, _ = fmt.Fprintf(w.out, "\n%s\n", time.Now().Format(dateLayout))
	return render(w.out)
}
