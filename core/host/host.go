// ABOUTME: Host is the background side of the extension
// ABOUTME: Routes runtime messages to the collection store and turns menu and toolbar clicks into tab pushes

package host

import (
	"context"
	"sync"

	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/tabs"
)

// Context menu item ids
const (
	MenuAddClip            = "addClip"
	MenuSummarizeSelection = "summarizeSelection"
	MenuOpenFrame          = "openIframe"
	MenuOpenFrameWindow    = "openIframeWindow"
)

// CollectionStore is the canonical item sequence
type CollectionStore interface {
	Get(ctx context.Context, d string) ([]domain.IndexedItem, error)
	Add(ctx context.Context, item domain.Item) ([]domain.IndexedItem, error)
	Remove(ctx context.Context, index int, d string) ([]domain.IndexedItem, error)
	Clear(ctx context.Context) ([]domain.IndexedItem, error)
	RefreshBadge(ctx context.Context, tabID, d string) error
}

// TabDirectory is the tab enumeration facility
type TabDirectory interface {
	Get(id string) (tabs.Tab, error)
	Open(url string) (tabs.Tab, error)
	OnEvent(l tabs.Listener)
	Deliver(ctx context.Context, id string, msg domain.Message) (domain.Response, error)
}

// Visibility holds the hidden domains
type Visibility interface {
	Visible(ctx context.Context, d string) bool
	Toggle(ctx context.Context, d string) (bool, error)
}

// Broadcaster queues pushes to tabs
type Broadcaster interface {
	Dispatch(ctx context.Context, tabID string, msg domain.Message) error
}

// MenuClick is a context-menu selection
type MenuClick struct {
	MenuItemID    string `json:"menuItemId"`
	SelectionText string `json:"selectionText,omitempty"`
	FrameURL      string `json:"frameUrl,omitempty"`
}

// Config holds the host collaborators
type Config struct {
	Store      CollectionStore
	Tabs       TabDirectory
	Visibility Visibility

	// Broadcaster is optional; pushes go straight to the tab without it
	Broadcaster Broadcaster

	// Summarizer is optional; summarize requests are dropped without it
	Summarizer interfaces.Summarizer

	Logger interfaces.Logger
}

// Host routes messages between content scripts and the background components
type Host struct {
	cfg       Config
	summaries sync.WaitGroup
}

// New creates a host and subscribes it to tab events
func New(cfg Config) *Host {
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	h := &Host{cfg: cfg}
	if cfg.Tabs != nil {
		cfg.Tabs.OnEvent(h.onTabEvent)
	}
	return h
}

// Handle answers a runtime message sent by the content script of tabID.
// tabID may be empty when the sender is not a tab.
func (h *Host) Handle(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
	var (
		items []domain.IndexedItem
		err   error
	)

	switch msg.Action {
	case domain.ActionGetTexts:
		items, err = h.cfg.Store.Get(ctx, msg.Domain)
		if err == nil && tabID != "" {
			if berr := h.cfg.Store.RefreshBadge(ctx, tabID, msg.Domain); berr != nil {
				h.cfg.Logger.Debug("Failed to refresh badge", map[string]interface{}{"tab": tabID, "error": berr.Error()})
			}
		}
		if err == nil && h.cfg.Visibility != nil {
			visible := h.cfg.Visibility.Visible(ctx, msg.Domain)
			return domain.Response{Items: items, Visible: &visible}, nil
		}

	case domain.ActionAddText:
		if msg.Data == nil {
			return domain.Response{}, &coreerrors.ValidationError{Field: "data", Message: "addText requires an item"}
		}
		items, err = h.cfg.Store.Add(ctx, *msg.Data)

	case domain.ActionRemoveText:
		items, err = h.cfg.Store.Remove(ctx, msg.Index, msg.Domain)

	case domain.ActionClearAll:
		items, err = h.cfg.Store.Clear(ctx)

	case domain.ActionSummarize:
		h.summarize(ctx, tabID, msg.Text)
		return domain.EmptyResponse(), nil

	case domain.ActionToggleCollector:
		visible, err := h.Toggle(ctx, tabID)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{Items: []domain.IndexedItem{}, Visible: &visible}, nil

	default:
		return domain.Response{}, &coreerrors.ValidationError{Field: "action", Message: "unknown action " + string(msg.Action)}
	}

	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Items: items}, nil
}

// Toggle flips panel visibility for the domain of tabID, as a toolbar click
// does, and tells the tab. It returns the new visibility.
func (h *Host) Toggle(ctx context.Context, tabID string) (bool, error) {
	if h.cfg.Visibility == nil {
		return true, &coreerrors.ValidationError{Field: "visibility", Message: "visibility is not configured"}
	}
	tab, err := h.cfg.Tabs.Get(tabID)
	if err != nil {
		return false, err
	}
	if !domain.IsWebPage(tab.URL) {
		return false, &coreerrors.ValidationError{Field: "url", Message: "tab is not showing a web page"}
	}
	d, err := domain.DomainOf(tab.URL)
	if err != nil {
		return false, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}

	visible, err := h.cfg.Visibility.Toggle(ctx, d)
	if err != nil {
		return visible, coreerrors.WrapError(err, "toggle collector")
	}
	h.push(ctx, tabID, domain.Message{Action: domain.ActionToggleCollector, Domain: d, Visible: &visible})
	return visible, nil
}

// MenuClick handles a context-menu click in tabID. Opening a frame returns
// the new tab.
func (h *Host) MenuClick(ctx context.Context, tabID string, click MenuClick) (*tabs.Tab, error) {
	switch click.MenuItemID {
	case MenuAddClip:
		h.push(ctx, tabID, domain.Message{Action: domain.ActionAddClip, Text: click.SelectionText})
		return nil, nil

	case MenuSummarizeSelection:
		h.push(ctx, tabID, domain.Message{Action: domain.ActionSummarizeSelection})
		return nil, nil

	case MenuOpenFrame, MenuOpenFrameWindow:
		if click.FrameURL == "" {
			return nil, nil
		}
		tab, err := h.cfg.Tabs.Open(click.FrameURL)
		if err != nil {
			return nil, err
		}
		h.cfg.Logger.Info("Opened frame in a new tab", map[string]interface{}{
			"tab": tab.ID,
			"url": click.FrameURL,
		})
		return &tab, nil

	default:
		return nil, &coreerrors.ValidationError{Field: "menuItemId", Message: "unknown menu item " + click.MenuItemID}
	}
}

// Wait blocks until pending summaries have been delivered
func (h *Host) Wait() {
	h.summaries.Wait()
}

// summarize runs the summarizer in the background and shows the result in the tab
func (h *Host) summarize(ctx context.Context, tabID, text string) {
	if h.cfg.Summarizer == nil {
		h.cfg.Logger.Info("Summarize requested but no summarizer is configured", map[string]interface{}{
			"tab":    tabID,
			"length": len(text),
		})
		return
	}
	if text == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	h.summaries.Add(1)
	go func() {
		defer h.summaries.Done()
		summary, err := h.cfg.Summarizer.Summarize(ctx, text)
		if err != nil {
			h.cfg.Logger.Warn("Summarizer failed", map[string]interface{}{"tab": tabID, "error": err.Error()})
			return
		}
		if tabID != "" {
			h.push(ctx, tabID, domain.Message{Action: domain.ActionShowSummary, Summary: summary})
		}
	}()
}

func (h *Host) push(ctx context.Context, tabID string, msg domain.Message) {
	var err error
	if h.cfg.Broadcaster != nil {
		err = h.cfg.Broadcaster.Dispatch(ctx, tabID, msg)
	} else {
		_, err = h.cfg.Tabs.Deliver(ctx, tabID, msg)
	}
	if err != nil {
		h.cfg.Logger.Debug("Error sending message to tab", map[string]interface{}{
			"tab":    tabID,
			"action": string(msg.Action),
			"error":  err.Error(),
		})
	}
}

// onTabEvent refreshes the badge of a tab that became active or finished
// loading, and hides the panel of a freshly loaded hidden domain
func (h *Host) onTabEvent(ev tabs.Event) {
	if ev.Type != tabs.EventActivated && ev.Type != tabs.EventCompleted {
		return
	}
	if !domain.IsWebPage(ev.Tab.URL) {
		return
	}
	ctx := context.Background()
	if err := h.cfg.Store.RefreshBadge(ctx, ev.Tab.ID, ""); err != nil {
		h.cfg.Logger.Debug("Failed to refresh badge", map[string]interface{}{"tab": ev.Tab.ID, "error": err.Error()})
	}

	if ev.Type != tabs.EventCompleted || h.cfg.Visibility == nil {
		return
	}
	d, err := domain.DomainOf(ev.Tab.URL)
	if err != nil {
		return
	}
	if !h.cfg.Visibility.Visible(ctx, d) {
		hidden := false
		h.push(ctx, ev.Tab.ID, domain.Message{Action: domain.ActionToggleCollector, Domain: d, Visible: &hidden})
	}
}
