// Package core contains the Web Clipper logic. It does not depend on the
// HTTP layer; collaborators are injected through the interfaces package.
//
// The core package is organized into several sub-packages:
//
// - domain: items, badges and the runtime message vocabulary
// - style: resolves CSS display and visibility for parsed documents
// - serializer: turns DOM subtrees into readable text with image markers
// - capture: the per-frame selection controller
// - client: the content-script side of the store protocol
// - panel: the item list shown in the top frame
// - contentscript: assembles the pipeline of one frame and relays nested frames
// - collection: the single-writer store of collected items
// - tabs: the tab registry with badges and receivers
// - workers: ordered per-tab push delivery
// - visibility: domains whose panel is hidden
// - host: routes messages, toolbar clicks and menu clicks
// - errors: typed errors shared by every layer
// - interfaces: contracts for cache, HTTP, logging and collaborators
//
// # Usage Example
//
//	registry := tabs.NewRegistry(logger)
//	store := collection.New(collection.Config{Cache: cache, Tabs: registry, Logger: logger})
//	store.Start(ctx)
//	background := host.New(host.Config{
//	    Store:      store,
//	    Tabs:       registry,
//	    Visibility: visibility.New(cache, logger),
//	    Logger:     logger,
//	})
//
//	script, err := contentscript.New(contentscript.Config{
//	    PageURL:   "https://example.com/post",
//	    Document:  doc,
//	    Transport: client.Local(background, "1"),
//	})
package core
