// ABOUTME: Markdown export of collected items
// ABOUTME: Renders each item the way the full-text view does and converts the markup

package page

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"webclipper-api/core/domain"
	"webclipper-api/core/panel"
)

// Markdown renders items as one document. Image markers become images.
func Markdown(title string, items []domain.IndexedItem) (string, error) {
	converter := md.NewConverter("", true, nil)

	var sb strings.Builder
	if title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	for i, item := range items {
		body, err := converter.ConvertString("<p>" + panel.FullText(item.Text) + "</p>")
		if err != nil {
			return "", fmt.Errorf("item %d: %w", item.Index, err)
		}
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		sb.WriteString(strings.TrimSpace(body))
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "*Source: [%s](%s)*", item.Domain, item.URL)
	}
	if len(items) > 0 {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
