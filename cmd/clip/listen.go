package main

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"webclipper-api/core/domain"
	"webclipper-api/sdk"
)

// printer is a content script that writes every push as a JSON line
type printer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newPrinter(w io.Writer) *printer {
	return &printer{enc: json.NewEncoder(w)}
}

func (p *printer) Deliver(ctx context.Context, msg domain.Message) (domain.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.EmptyResponse(), p.enc.Encode(msg)
}

func newListenCmd(app *App) *cobra.Command {
	var pageURL string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Attach to a tab on the server and print what is pushed to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := sdk.NewClient(sdk.WithBaseURL(app.Server), sdk.WithLogger(app.logger))
			if err != nil {
				return err
			}
			if pageURL != "" {
				if _, err := c.UpsertTab(ctx, app.Tab, pageURL, "complete"); err != nil {
					return err
				}
			}
			return c.Listen(ctx, app.Tab, newPrinter(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "Register the tab with this address first")
	return cmd
}
