// ABOUTME: Content script assembles the capture pipeline of one frame
// ABOUTME: Top frames own the panel and talk to the background; nested frames relay to their parent

package contentscript

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html"

	"webclipper-api/core/capture"
	"webclipper-api/core/client"
	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/panel"
	"webclipper-api/core/serializer"
)

// Config describes one frame
type Config struct {
	// FrameID identifies the frame inside its tab
	FrameID string

	// PageURL is the address of the frame's document
	PageURL  string
	Document *html.Node

	// Parent is nil for the top frame
	Parent *Script

	// Offset is where this frame's iframe element sits inside Parent
	Offset domain.Position

	Transport client.Transport

	// Images is optional; without it image markers keep the source url
	Images       interfaces.ImageResolver
	ImageTimeout time.Duration

	Layout    capture.Layout
	Clipboard panel.Clipboard
	Debounce  time.Duration
	Clock     func() time.Time
	Logger    interfaces.Logger
}

// Script is the content script of one frame
type Script struct {
	cfg        Config
	domain     string
	client     *client.Client
	controller *capture.Controller
	panel      *panel.Panel

	mu       sync.Mutex
	children []*Script
}

// New builds the script of a frame and attaches it to its parent
func New(cfg Config) (*Script, error) {
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	d, err := domain.DomainOf(cfg.PageURL)
	if err != nil {
		return nil, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}
	base, err := url.Parse(cfg.PageURL)
	if err != nil {
		return nil, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}

	s := &Script{cfg: cfg, domain: d}
	if cfg.Transport != nil {
		s.client = client.New(cfg.Transport, cfg.Logger)
	}
	s.controller = capture.NewController(capture.Config{
		PageURL: cfg.PageURL,
		Serializer: serializer.New(serializer.Options{
			BaseURL:      base,
			Images:       cfg.Images,
			ImageTimeout: cfg.ImageTimeout,
			Logger:       cfg.Logger,
		}),
		Sink:     s,
		Layout:   cfg.Layout,
		Debounce: cfg.Debounce,
		Clock:    cfg.Clock,
		Logger:   cfg.Logger,
	})

	if cfg.Parent == nil {
		if s.client == nil {
			return nil, &coreerrors.ValidationError{Field: "transport", Message: "top frame needs a transport"}
		}
		s.panel = panel.New(d, s.client, cfg.Clipboard, cfg.Logger)
	} else {
		cfg.Parent.adopt(s)
	}
	return s, nil
}

// Start loads the items of the frame's domain. The top frame shows them.
func (s *Script) Start(ctx context.Context) []domain.IndexedItem {
	if s.client == nil {
		return []domain.IndexedItem{}
	}
	items := s.client.GetItems(ctx, s.domain)
	if s.panel != nil {
		s.panel.Update(items)
	}
	return items
}

// IsTop reports whether this is the tab's top frame
func (s *Script) IsTop() bool {
	return s.cfg.Parent == nil
}

// Domain returns the frame's domain
func (s *Script) Domain() string {
	return s.domain
}

// Document returns the frame's document
func (s *Script) Document() *html.Node {
	return s.cfg.Document
}

// Panel returns the top frame's panel, nil elsewhere
func (s *Script) Panel() *panel.Panel {
	return s.panel
}

// Controller returns the frame's selection controller
func (s *Script) Controller() *capture.Controller {
	return s.controller
}

// DoubleClick forwards a double-click on target to the controller
func (s *Script) DoubleClick(ctx context.Context, target *html.Node, button int) (domain.Item, error) {
	return s.controller.DoubleClick(ctx, target, button)
}

// Select records the user's selection in this frame
func (s *Script) Select(r capture.Range) {
	s.controller.Select(r)
}

// Submit sends a captured item toward the background. Nested frames hand it
// to their parent inside an envelope.
func (s *Script) Submit(ctx context.Context, item domain.Item) error {
	if s.IsTop() {
		s.panel.Update(s.client.AddItem(ctx, item))
		return nil
	}
	env := domain.FrameEnvelope{
		Origin:  s.cfg.FrameID,
		Message: domain.Message{Action: domain.ActionAddText, Data: &item, Domain: item.Domain},
	}
	return s.cfg.Parent.relay(ctx, env.Hop(s.cfg.FrameID, s.cfg.Offset))
}

// Summarize sends text to the summarizer through the top frame
func (s *Script) Summarize(ctx context.Context, text string) error {
	if s.IsTop() {
		s.client.Summarize(ctx, text)
		return nil
	}
	env := domain.FrameEnvelope{
		Origin:  s.cfg.FrameID,
		Message: domain.Message{Action: domain.ActionSummarize, Text: text},
	}
	return s.cfg.Parent.relay(ctx, env.Hop(s.cfg.FrameID, s.cfg.Offset))
}

func (s *Script) relay(ctx context.Context, env domain.FrameEnvelope) error {
	if !s.IsTop() {
		return s.cfg.Parent.relay(ctx, env.Hop(s.cfg.FrameID, s.cfg.Offset))
	}

	s.cfg.Logger.Debug("Relayed message reached top frame", map[string]interface{}{
		"action": string(env.Message.Action),
		"origin": env.Origin,
		"hops":   len(env.Path),
	})
	switch env.Message.Action {
	case domain.ActionAddText:
		if env.Message.Data == nil {
			return &coreerrors.ValidationError{Field: "data", Message: "relayed addText carries no item"}
		}
		item := *env.Message.Data
		item.Position.X += env.Offset.X
		item.Position.Y += env.Offset.Y
		s.panel.Update(s.client.AddItem(ctx, item))
		return nil
	case domain.ActionSummarize:
		s.client.Summarize(ctx, env.Message.Text)
		return nil
	default:
		return &coreerrors.ValidationError{Field: "action", Message: "cannot relay " + string(env.Message.Action)}
	}
}

func (s *Script) adopt(child *Script) {
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
}

// frames lists this frame and every frame nested in it, parents first
func (s *Script) frames() []*Script {
	s.mu.Lock()
	children := append([]*Script(nil), s.children...)
	s.mu.Unlock()

	all := []*Script{s}
	for _, c := range children {
		all = append(all, c.frames()...)
	}
	return all
}

// Deliver handles a message pushed to the tab. It makes the script a tab receiver.
func (s *Script) Deliver(ctx context.Context, msg domain.Message) (domain.Response, error) {
	switch msg.Action {
	case domain.ActionUpdateToolWindow:
		if s.panel != nil {
			s.panel.Update(msg.Items)
		}

	case domain.ActionToggleCollector:
		if s.panel != nil && msg.Visible != nil {
			s.panel.SetVisible(*msg.Visible)
		}
		return domain.Response{Items: []domain.IndexedItem{}, Visible: msg.Visible}, nil

	case domain.ActionAddClip:
		s.addClip(ctx)

	case domain.ActionSummarizeSelection:
		for _, f := range s.frames() {
			if err := f.controller.SummarizeSelection(ctx); err != nil && !errors.Is(err, capture.ErrEmptySelection) {
				s.cfg.Logger.Warn("Failed to summarize selection", map[string]interface{}{
					"frame": f.cfg.FrameID,
					"error": err.Error(),
				})
			}
		}

	case domain.ActionShowSummary:
		if s.panel != nil {
			s.panel.ShowSummary(msg.Summary)
		}

	default:
		return domain.Response{}, &coreerrors.ValidationError{Field: "action", Message: "unknown action " + string(msg.Action)}
	}
	return domain.EmptyResponse(), nil
}

// addClip captures the selection of the first frame that has one
func (s *Script) addClip(ctx context.Context) {
	for _, f := range s.frames() {
		r, ok := f.controller.Selection()
		if !ok {
			continue
		}
		if _, err := f.controller.AddClip(ctx, r); err != nil {
			s.cfg.Logger.Info("Clip not added", map[string]interface{}{
				"frame": f.cfg.FrameID,
				"error": err.Error(),
			})
		}
		return
	}
	s.cfg.Logger.Debug("Add clip requested without a selection", nil)
}
