package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"webclipper-api/core/capture"
	"webclipper-api/core/contentscript"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/infrastructure/cache/memory"
	stdhttp "webclipper-api/infrastructure/http/standard"
	"webclipper-api/infrastructure/images"
	"webclipper-api/infrastructure/page"
)

// DefaultSelector picks the elements a reader would double-click
const DefaultSelector = "h1, h2, h3, p, li, blockquote, pre, td"

type pageOptions struct {
	selector     string
	article      bool
	inlineImages bool
	markdown     bool
	copy         bool
	timeout      time.Duration
}

func newPageCmd(app *App) *cobra.Command {
	opts := pageOptions{}

	cmd := &cobra.Command{
		Use:   "page <url>",
		Short: "Collect the text elements of a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.selector, "selector", DefaultSelector, "CSS selector of the elements to collect")
	cmd.Flags().BoolVar(&opts.article, "article", false, "Collect from the readable article only")
	cmd.Flags().BoolVar(&opts.inlineImages, "inline-images", false, "Embed images as data URIs")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Print the domain's items as Markdown")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the domain's items to the clipboard")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "Page and image fetch timeout")

	return cmd
}

func runPage(cmd *cobra.Command, app *App, rawURL string, opts pageOptions) error {
	ctx := cmd.Context()

	fetched, err := page.NewFetcher(page.Options{
		Timeout:  opts.timeout,
		Readable: opts.article,
		Logger:   app.logger,
	}).Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	s, err := app.open(ctx, fetched.URL)
	if err != nil {
		return err
	}
	defer s.close()

	cfg := contentscript.Config{
		FrameID:   "0",
		PageURL:   fetched.URL,
		Document:  fetched.Document,
		Transport: s.transport,
		Clipboard: systemClipboard{},
		// every selected element is its own gesture
		Debounce: time.Nanosecond,
		Logger:   app.logger,
	}
	if opts.inlineImages {
		cfg.Images = images.NewResolver(interfaces.Dependencies{
			Cache:      memory.NewMemoryCache(),
			HTTPClient: stdhttp.NewStandardHTTPClient(opts.timeout, stdhttp.WithLogger(app.logger)),
			Logger:     app.logger,
		})
		cfg.ImageTimeout = opts.timeout
	}
	script, err := contentscript.New(cfg)
	if err != nil {
		return err
	}
	script.Start(ctx)

	collected, skipped := 0, 0
	for _, node := range goquery.NewDocumentFromNode(fetched.Document).Find(opts.selector).Nodes {
		_, err := script.DoubleClick(ctx, node, capture.PrimaryButton)
		switch {
		case err == nil:
			collected++
		case errors.Is(err, capture.ErrIgnored), coreerrors.IsRejected(err):
			skipped++
		default:
			return err
		}
	}
	app.logger.Info("Page collected", map[string]interface{}{
		"url":       fetched.URL,
		"collected": collected,
		"skipped":   skipped,
		"article":   fetched.Article,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Collected %d item(s) from %s\n", collected, fetched.URL)
	return printItems(cmd, script.Panel(), fetched.Title, opts.markdown, opts.copy)
}
