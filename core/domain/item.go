// ABOUTME: Item domain model represents a single captured unit of page text
// ABOUTME: Provides validation, domain derivation and per-domain filtering helpers

package domain

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest text, in characters, that may be stored.
// Shorter extractions are treated as accidental clicks on whitespace or icons.
const MinTextLength = 14

// Position holds document-relative capture coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Item represents a captured piece of text with its provenance
type Item struct {
	// Text is the normalized body, possibly with [IMAGE:...] markers
	Text string `json:"text"`

	// URL is the full page URL at capture time
	URL string `json:"url"`

	// Domain is the hostname of the capturing page
	Domain string `json:"domain"`

	// Position is where the captured element sits in the document
	Position Position `json:"position"`
}

// IndexedItem is an Item together with its position in the global sequence
type IndexedItem struct {
	Item

	// Index is the item's global index, usable with removeText
	Index int `json:"index"`
}

// NewItem builds an item for text captured on the page at rawURL.
// The domain is always derived from the URL.
func NewItem(text, rawURL string, pos Position) (Item, error) {
	domain, err := DomainOf(rawURL)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		Text:     text,
		URL:      rawURL,
		Domain:   domain,
		Position: pos,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate checks the item invariants
func (i Item) Validate() error {
	if !LongEnough(i.Text) {
		return errors.New("text is shorter than the minimum length")
	}
	if i.Domain == "" {
		return errors.New("domain cannot be empty")
	}
	return nil
}

// LongEnough reports whether text, ignoring surrounding whitespace, meets MinTextLength
func LongEnough(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && utf8.RuneCountInString(text) >= MinTextLength
}

// DomainOf returns the hostname of rawURL
func DomainOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Hostname() == "" {
		return "", errors.New("url has no host: " + rawURL)
	}
	return parsed.Hostname(), nil
}

// IsWebPage reports whether rawURL is a fetchable web page (http or https)
func IsWebPage(rawURL string) bool {
	if !strings.HasPrefix(rawURL, "http") {
		return false
	}
	parsed, err := url.Parse(rawURL)
	return err == nil && parsed.Hostname() != ""
}

// FilterByDomain returns the items whose domain equals domain, keeping their
// global indices. The result is never nil.
func FilterByDomain(items []Item, domain string) []IndexedItem {
	filtered := make([]IndexedItem, 0)
	for i, item := range items {
		if item.Domain == domain {
			filtered = append(filtered, IndexedItem{Item: item, Index: i})
		}
	}
	return filtered
}

// CountForDomain returns how many items belong to domain
func CountForDomain(items []Item, domain string) int {
	count := 0
	for _, item := range items {
		if item.Domain == domain {
			count++
		}
	}
	return count
}

// Items strips the indices from a filtered view
func Items(indexed []IndexedItem) []Item {
	items := make([]Item, len(indexed))
	for i, entry := range indexed {
		items[i] = entry.Item
	}
	return items
}
