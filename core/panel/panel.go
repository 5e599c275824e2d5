// ABOUTME: Panel is the top-frame view of the items collected on the page's domain
// ABOUTME: Renders the item list, the full-text modal and the summary, and forwards edits to the store client

package panel

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"webclipper-api/core/capture"
	"webclipper-api/core/client"
	"webclipper-api/core/domain"
	"webclipper-api/core/interfaces"
)

// PreviewLength is how many characters of an item the list shows
const PreviewLength = 50

// Messages shown when there is nothing to list
const (
	EmptyList = "No items collected yet."
	EmptyText = "No text collected yet."
)

// Clipboard receives copied text
type Clipboard interface {
	WriteAll(text string) error
}

// Entry is one rendered list row
type Entry struct {
	// Number is the 1-based row label
	Number int

	// Index is the item's global index, used for removal
	Index int

	Preview  string
	Text     string
	Domain   string
	URL      string
	Position domain.Position
}

// Label is the row text, "{n}. {preview}..."
func (e Entry) Label() string {
	return fmt.Sprintf("%d. %s...", e.Number, e.Preview)
}

// Title is the link tooltip with the rounded capture position
func (e Entry) Title() string {
	return fmt.Sprintf("Position: (%d, %d)", int(math.Round(e.Position.X)), int(math.Round(e.Position.Y)))
}

// Panel holds the items of one domain. Only the top frame of a page has one.
type Panel struct {
	mu        sync.Mutex
	domain    string
	client    *client.Client
	clipboard Clipboard
	logger    interfaces.Logger

	items   []domain.IndexedItem
	visible bool
	summary string
	notice  string
}

// New creates a visible, empty panel for domainName
func New(domainName string, c *client.Client, clipboard Clipboard, logger interfaces.Logger) *Panel {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Panel{
		domain:    domainName,
		client:    c,
		clipboard: clipboard,
		logger:    logger,
		items:     []domain.IndexedItem{},
		visible:   true,
	}
}

// Domain returns the domain the panel shows
func (p *Panel) Domain() string {
	return p.domain
}

// Update replaces the listed items. Items of other domains are dropped, so
// a stale or foreign snapshot can be applied safely any number of times.
func (p *Panel) Update(items []domain.IndexedItem) {
	filtered := make([]domain.IndexedItem, 0, len(items))
	for _, item := range items {
		if item.Domain == p.domain {
			filtered = append(filtered, item)
		}
	}

	p.mu.Lock()
	p.items = filtered
	p.mu.Unlock()
}

// Items returns the listed items
func (p *Panel) Items() []domain.IndexedItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.IndexedItem(nil), p.items...)
}

// Entries returns the list rows in display order
func (p *Panel) Entries() []Entry {
	items := p.Items()
	entries := make([]Entry, len(items))
	for i, item := range items {
		entries[i] = Entry{
			Number:   i + 1,
			Index:    item.Index,
			Preview:  preview(item.Text),
			Text:     item.Text,
			Domain:   item.Domain,
			URL:      item.URL,
			Position: item.Position,
		}
	}
	return entries
}

// Lines renders the list as plain text, one row per entry
func (p *Panel) Lines() []string {
	entries := p.Entries()
	if len(entries) == 0 {
		return []string{EmptyList}
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Label()
	}
	return lines
}

// Render returns the panel markup, or an empty string while hidden
func (p *Panel) Render() string {
	if !p.Visible() {
		return ""
	}

	root := element(atom.Div, "id", capture.PanelID)
	heading := element(atom.H3)
	heading.AppendChild(text("Collector"))
	root.AppendChild(heading)

	list := element(atom.Ul, "class", "clipper-list")
	entries := p.Entries()
	if len(entries) == 0 {
		li := element(atom.Li)
		li.AppendChild(text(EmptyList))
		list.AppendChild(li)
	}
	for _, e := range entries {
		li := element(atom.Li)
		label := element(atom.Span, "class", "clipper-item-text")
		label.AppendChild(text(e.Label()))
		remove := element(atom.Button, "class", "clipper-remove-btn", "data-index", fmt.Sprint(e.Index))
		remove.AppendChild(text("×"))
		link := element(atom.A, "href", e.URL, "target", "_blank", "title", e.Title())
		link.AppendChild(text(e.Domain))
		li.AppendChild(label)
		li.AppendChild(remove)
		li.AppendChild(link)
		list.AppendChild(li)
	}
	root.AppendChild(list)

	buttons := element(atom.Div, "class", "clipper-buttons")
	for _, name := range []string{"Show All", "Clear All"} {
		b := element(atom.Button, "class", "clipper-btn")
		b.AppendChild(text(name))
		buttons.AppendChild(b)
	}
	root.AppendChild(buttons)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		p.logger.Error("Failed to render panel", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return sb.String()
}

// Remove deletes the item at a global index and shows what the store returns
func (p *Panel) Remove(ctx context.Context, index int) {
	p.Update(p.client.RemoveItem(ctx, index, p.domain))
}

// Clear empties the whole collection. The list is cleared whatever the answer.
func (p *Panel) Clear(ctx context.Context) {
	p.client.ClearAll(ctx)
	p.Update(nil)
}

// ShowAll returns every item of the domain as one text, ready for FullText
func (p *Panel) ShowAll(ctx context.Context) string {
	items := p.client.GetItems(ctx, p.domain)
	if len(items) == 0 {
		return EmptyText
	}
	entries := make([]string, len(items))
	for i, item := range items {
		entries[i] = fmt.Sprintf("Entry %d (%s):\n\n%s\n\n", i+1, item.Domain, item.Text)
	}
	return strings.Join(entries, "---\n\n")
}

// SummarizeAll sends the texts of the domain to the summarizer. It reports
// false when there is nothing to summarize.
func (p *Panel) SummarizeAll(ctx context.Context) bool {
	items := p.client.GetItems(ctx, p.domain)
	if len(items) == 0 {
		p.logger.Info("No text collected for summarization", map[string]interface{}{"domain": p.domain})
		return false
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	p.client.Summarize(ctx, strings.Join(texts, "\n\n"))
	return true
}

// ShowSummary keeps the last summary pushed to the page
func (p *Panel) ShowSummary(summary string) {
	p.mu.Lock()
	p.summary = summary
	p.mu.Unlock()
}

// Summary returns the last summary shown
func (p *Panel) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

// SetVisible shows or hides the panel
func (p *Panel) SetVisible(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

// Visible reports whether the panel is shown
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Copy writes the readable part of text to the clipboard and returns the
// notification to show
func (p *Panel) Copy(text string) string {
	notice := "Copied to clipboard!"
	if p.clipboard == nil {
		notice = "Failed to copy text"
	} else if err := p.clipboard.WriteAll(PlainText(text)); err != nil {
		p.logger.Warn("Failed to copy text", map[string]interface{}{"error": err.Error()})
		notice = "Failed to copy text"
	}

	p.mu.Lock()
	p.notice = notice
	p.mu.Unlock()
	return notice
}

// Notice returns the last notification
func (p *Panel) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= PreviewLength {
		return s
	}
	return string([]rune(s)[:PreviewLength])
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
