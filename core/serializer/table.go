package serializer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tableText writes every cell's trimmed text followed by a blank line.
// Row and column structure is not kept.
func tableText(table *html.Node) string {
	var b strings.Builder
	for _, row := range tableRows(table) {
		for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
			if isElement(cell, atom.Td) || isElement(cell, atom.Th) {
				b.WriteString(trimSpace(TextContent(cell)))
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

// tableRows lists rows the way HTMLTableElement.rows does: header rows,
// then body rows in tree order, then footer rows. Nested tables are not entered.
func tableRows(table *html.Node) []*html.Node {
	var head, body, foot []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isElement(c, atom.Thead):
			head = append(head, childRows(c)...)
		case isElement(c, atom.Tbody):
			body = append(body, childRows(c)...)
		case isElement(c, atom.Tfoot):
			foot = append(foot, childRows(c)...)
		case isElement(c, atom.Tr):
			body = append(body, c)
		}
	}

	rows := make([]*html.Node, 0, len(head)+len(body)+len(foot))
	rows = append(rows, head...)
	rows = append(rows, body...)
	return append(rows, foot...)
}

func childRows(section *html.Node) []*html.Node {
	var rows []*html.Node
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Tr) {
			rows = append(rows, c)
		}
	}
	return rows
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.Namespace == "" && n.DataAtom == a
}
