// ABOUTME: Root command and shared wiring of the clip tool
// ABOUTME: Chooses between a remote server and an in-process background for every command

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"webclipper-api/core/client"
	"webclipper-api/core/collection"
	"webclipper-api/core/host"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/tabs"
	"webclipper-api/core/visibility"
	"webclipper-api/infrastructure/cache/memory"
	"webclipper-api/infrastructure/cache/sqlite"
	"webclipper-api/infrastructure/logger/standard"
	"webclipper-api/sdk"
)

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

// systemClipboard adapts the OS clipboard to the panel
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboardWrite(text)
}

// App holds the global flags
type App struct {
	Server   string
	Tab      string
	Offline  bool
	DB       string
	LogLevel string

	logger *standard.StandardLogger
}

func newRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "clip",
		Short:        "Collect text from web pages into a Web Clipper collection",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Collect every paragraph of a page on a running server
  clip page https://example.com/post

  # Keep only the article and inline its images, without a server
  clip page --offline --db clips.db --article --inline-images https://example.com/post

  # Export what was collected on a domain
  clip items --offline --db clips.db --markdown example.com
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(app.LogLevel)
		if err != nil {
			return err
		}
		app.logger = standard.NewWithWriter(cmd.ErrOrStderr(), level)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("CLIP_SERVER", sdk.DefaultBaseURL), "Web Clipper server address")
	cmd.PersistentFlags().StringVar(&app.Tab, "tab", envOr("CLIP_TAB", "clip"), "Tab id to act as")
	cmd.PersistentFlags().BoolVar(&app.Offline, "offline", false, "Run the background in process instead of using a server")
	cmd.PersistentFlags().StringVar(&app.DB, "db", envOr("CLIP_DB", ""), "SQLite file keeping offline collections (memory when empty)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("CLIP_LOG_LEVEL", "warn"), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newPageCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newListenCmd(app))

	return cmd
}

// session is a store client bound to one tab, plus what must be released after
type session struct {
	transport client.Transport
	client    *client.Client
	close     func()
}

// open connects to the background. pageURL, when set, registers the tab
// with that address first.
func (app *App) open(ctx context.Context, pageURL string) (*session, error) {
	if app.Offline {
		return app.openLocal(ctx, pageURL)
	}

	c, err := sdk.NewClient(sdk.WithBaseURL(app.Server), sdk.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}
	if pageURL != "" {
		if _, err := c.UpsertTab(ctx, app.Tab, pageURL, "complete"); err != nil {
			return nil, err
		}
	}
	transport := c.Tab(app.Tab)
	return &session{transport: transport, client: client.New(transport, app.logger), close: func() {}}, nil
}

// openLocal runs the background in process over memory or SQLite
func (app *App) openLocal(ctx context.Context, pageURL string) (*session, error) {
	var (
		cache   interfaces.Cache = memory.NewMemoryCache()
		closers []io.Closer
	)
	if app.DB != "" {
		db, err := sqlite.NewSQLiteCache(app.DB, app.logger)
		if err != nil {
			return nil, err
		}
		cache = db
		closers = append(closers, db)
	}

	registry := tabs.NewRegistry(app.logger)
	store := collection.New(collection.Config{Cache: cache, Tabs: registry, Logger: app.logger})
	store.Start(ctx)
	background := host.New(host.Config{
		Store:      store,
		Tabs:       registry,
		Visibility: visibility.New(cache, app.logger),
		Logger:     app.logger,
	})
	if pageURL != "" {
		if _, err := registry.Upsert(app.Tab, pageURL, tabs.StatusComplete); err != nil {
			store.Stop()
			return nil, err
		}
	}

	transport := client.Local(background, app.Tab)
	return &session{
		transport: transport,
		client:    client.New(transport, app.logger),
		close: func() {
			store.Stop()
			for _, c := range closers {
				_ = c.Close()
			}
		},
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
