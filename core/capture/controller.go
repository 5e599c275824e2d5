// ABOUTME: Selection controller reacts to capture gestures inside one frame
// ABOUTME: Drives the serializer, filters short results and hands items to a sink

package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/serializer"
)

// DefaultDebounce is the window in which a second double-click is ignored
const DefaultDebounce = 300 * time.Millisecond

// PrimaryButton is the main mouse button
const PrimaryButton = 0

// ids and classes of the extension's own UI inside the page
const (
	PanelID    = "clipper-panel"
	ModalClass = "clipper-modal"

	extensionUISelector = "#" + PanelID + ", ." + ModalClass
)

var (
	// ErrIgnored is returned when a trigger does not apply to its target
	ErrIgnored = errors.New("capture: trigger ignored")

	// ErrBusy is returned while another extraction is running
	ErrBusy = errors.New("capture: extraction in progress")

	// ErrEmptySelection is returned when there is nothing selected to clip
	ErrEmptySelection = errors.New("capture: selection is empty")
)

// State of the controller
type State int

const (
	Idle State = iota
	Extracting
	Submitting
)

func (s State) String() string {
	switch s {
	case Extracting:
		return "extracting"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Layout reports where elements sit on the rendered page
type Layout interface {
	// Position returns the element's bounding rect origin plus the page scroll offset
	Position(n *html.Node) (domain.Position, bool)
}

// Sink receives what the controller produces. A top frame submits to the
// store client; a nested frame relays to its parent.
type Sink interface {
	Submit(ctx context.Context, item domain.Item) error
	Summarize(ctx context.Context, text string) error
}

// Config holds the controller collaborators
type Config struct {
	// PageURL is the address of the frame's document
	PageURL string

	Serializer *serializer.Serializer
	Sink       Sink

	// Layout is optional; positions are {0,0} without it
	Layout Layout

	// Debounce defaults to DefaultDebounce
	Debounce time.Duration

	// Clock defaults to time.Now
	Clock func() time.Time

	Logger interfaces.Logger
}

// Controller turns gestures into collected items for one frame
type Controller struct {
	cfg Config

	mu        sync.Mutex
	state     State
	lastClick time.Time
	selection *Range
	current   *html.Node
}

// NewController creates a controller
func NewController(cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	if cfg.Serializer == nil {
		cfg.Serializer = serializer.New(serializer.Options{Logger: cfg.Logger})
	}
	return &Controller{cfg: cfg}
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the page's active selection, if any
func (c *Controller) Selection() (Range, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return Range{}, false
	}
	return *c.selection, true
}

// Select replaces the page's active selection, as a user selecting text would
func (c *Controller) Select(r Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !r.Valid() {
		c.selection = nil
		return
	}
	c.selection = &r
}

// Current returns the element captured last
func (c *Controller) Current() *html.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// DoubleClick handles a double-click on target
func (c *Controller) DoubleClick(ctx context.Context, target *html.Node, button int) (domain.Item, error) {
	if button != PrimaryButton || target == nil {
		return domain.Item{}, ErrIgnored
	}
	if goquery.NewDocumentFromNode(target).Closest("a").Length() > 0 {
		c.cfg.Logger.Debug("Double-click on a link element, not collecting text", nil)
		return domain.Item{}, ErrIgnored
	}

	element := closest(target, serializer.IsTextTag)
	if element == nil || WithinExtensionUI(element) {
		return domain.Item{}, ErrIgnored
	}

	now := c.cfg.Clock()
	c.mu.Lock()
	if !c.lastClick.IsZero() && now.Sub(c.lastClick) < c.cfg.Debounce {
		c.mu.Unlock()
		return domain.Item{}, ErrIgnored
	}
	if c.state != Idle {
		c.mu.Unlock()
		return domain.Item{}, ErrBusy
	}
	c.lastClick = now
	c.state = Extracting
	c.mu.Unlock()

	text := c.cfg.Serializer.Serialize(ctx, element)
	return c.finish(ctx, text, element, NodeRange(element))
}

// AddClip captures the content of r inside its smallest enclosing
// table, div or p
func (c *Controller) AddClip(ctx context.Context, r Range) (domain.Item, error) {
	if !r.Valid() || strings.TrimSpace(r.Text()) == "" {
		return domain.Item{}, ErrEmptySelection
	}
	container := r.Container()
	if container == nil || WithinExtensionUI(container) {
		return domain.Item{}, ErrIgnored
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return domain.Item{}, ErrBusy
	}
	c.state = Extracting
	c.mu.Unlock()

	clone := Clone(r, container)
	text := c.cfg.Serializer.SerializeFragment(ctx, clone, container)
	return c.finish(ctx, text, container, r)
}

// finish validates extracted text and submits it, leaving the controller idle
func (c *Controller) finish(ctx context.Context, text string, element *html.Node, selected Range) (domain.Item, error) {
	defer c.setState(Idle)

	if !serializer.Accept(text) {
		c.cfg.Logger.Info("Text not collected: shorter than the minimum length", map[string]interface{}{
			"length": len([]rune(text)),
			"min":    domain.MinTextLength,
		})
		return domain.Item{}, &coreerrors.RejectedError{Length: len([]rune(text)), Min: domain.MinTextLength}
	}

	c.mu.Lock()
	c.selection = &selected
	c.current = element
	c.state = Submitting
	c.mu.Unlock()

	item, err := domain.NewItem(text, c.cfg.PageURL, c.position(element))
	if err != nil {
		return domain.Item{}, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}

	if c.cfg.Sink == nil {
		return item, nil
	}
	if err := c.cfg.Sink.Submit(ctx, item); err != nil {
		c.cfg.Logger.Warn("Failed to submit captured item", map[string]interface{}{
			"domain": item.Domain,
			"error":  err.Error(),
		})
		return item, fmt.Errorf("submit captured item: %w", err)
	}
	return item, nil
}

// SummarizeSelection sends the selected text, or the last captured
// element's text, to the summarizer
func (c *Controller) SummarizeSelection(ctx context.Context) error {
	c.mu.Lock()
	var text string
	if c.selection != nil {
		text = strings.TrimSpace(c.selection.Text())
	}
	if text == "" && c.current != nil {
		text = strings.TrimSpace(serializer.TextContent(c.current))
	}
	c.mu.Unlock()

	if text == "" {
		c.cfg.Logger.Debug("No text selected and no element captured", nil)
		return ErrEmptySelection
	}
	if c.cfg.Sink == nil {
		return nil
	}
	return c.cfg.Sink.Summarize(ctx, text)
}

func (c *Controller) position(n *html.Node) domain.Position {
	if c.cfg.Layout == nil {
		return domain.Position{}
	}
	if pos, ok := c.cfg.Layout.Position(n); ok {
		return pos
	}
	return domain.Position{}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// WithinExtensionUI reports whether n belongs to the panel or one of its modals
func WithinExtensionUI(n *html.Node) bool {
	return n != nil && goquery.NewDocumentFromNode(n).Closest(extensionUISelector).Length() > 0
}

// closest walks from n up through its ancestors and returns the first element
// that matches
func closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}
