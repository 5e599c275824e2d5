package style

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// user-agent defaults, after the HTML rendering section
var defaults = map[atom.Atom]string{
	atom.Head:     None,
	atom.Script:   None,
	atom.Style:    None,
	atom.Template: None,
	atom.Noscript: None,
	atom.Title:    None,
	atom.Meta:     None,
	atom.Link:     None,
	atom.Base:     None,
	atom.Area:     None,
	atom.Datalist: None,
	atom.Param:    None,
	atom.Rp:       None,

	atom.Html:       Block,
	atom.Body:       Block,
	atom.Address:    Block,
	atom.Article:    Block,
	atom.Aside:      Block,
	atom.Blockquote: Block,
	atom.Center:     Block,
	atom.Dd:         Block,
	atom.Details:    Block,
	atom.Dialog:     Block,
	atom.Dir:        Block,
	atom.Div:        Block,
	atom.Dl:         Block,
	atom.Dt:         Block,
	atom.Fieldset:   Block,
	atom.Figcaption: Block,
	atom.Figure:     Block,
	atom.Footer:     Block,
	atom.Form:       Block,
	atom.H1:         Block,
	atom.H2:         Block,
	atom.H3:         Block,
	atom.H4:         Block,
	atom.H5:         Block,
	atom.H6:         Block,
	atom.Header:     Block,
	atom.Hgroup:     Block,
	atom.Hr:         Block,
	atom.Legend:     Block,
	atom.Listing:    Block,
	atom.Main:       Block,
	atom.Menu:       Block,
	atom.Nav:        Block,
	atom.Ol:         Block,
	atom.Optgroup:   Block,
	atom.P:          Block,
	atom.Plaintext:  Block,
	atom.Pre:        Block,
	atom.Section:    Block,
	atom.Summary:    Block,
	atom.Ul:         Block,
	atom.Xmp:        Block,

	atom.Li: ListItem,

	atom.Table:    "table",
	atom.Caption:  "table-caption",
	atom.Colgroup: "table-column-group",
	atom.Col:      "table-column",
	atom.Thead:    "table-header-group",
	atom.Tbody:    "table-row-group",
	atom.Tfoot:    "table-footer-group",
	atom.Tr:       "table-row",
	atom.Td:       "table-cell",
	atom.Th:       "table-cell",
}

func defaultDisplay(n *html.Node) string {
	if n.Namespace != "" {
		return Inline
	}
	if hasAttr(n, "hidden") {
		return None
	}
	if d, ok := defaults[n.DataAtom]; ok {
		return d
	}
	return Inline
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}
