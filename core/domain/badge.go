// ABOUTME: Badge domain model describes the per-tab item counter
// ABOUTME: Computes the badge text and tooltip shown for a tab's domain

package domain

import "fmt"

// Badge colors
const (
	BadgeBackground = "#4688F1"
	BadgeForeground = "#FFFF00"
)

// Badge is the toolbar decoration of a single tab
type Badge struct {
	Count      int    `json:"count"`
	Text       string `json:"text"`
	Title      string `json:"title"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// NewBadge builds the badge for a tab showing domain with count stored items
func NewBadge(domain string, count int) Badge {
	badge := Badge{Count: count, Background: BadgeBackground, Foreground: BadgeForeground}
	if count == 0 {
		badge.Title = "Web Clipper - No items collected yet"
		return badge
	}

	// padded so the number reads larger on the toolbar
	badge.Text = fmt.Sprintf(" %d ", count)

	plural := "s"
	if count == 1 {
		plural = ""
	}
	badge.Title = fmt.Sprintf("%d item%s collected on %s", count, plural, domain)
	return badge
}
