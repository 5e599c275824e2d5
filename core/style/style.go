// ABOUTME: Computed display resolution for parsed HTML documents
// ABOUTME: Cascades user-agent defaults, document style sheets and inline styles

package style

import (
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Display values the capture pipeline cares about
const (
	None     = "none"
	Block    = "block"
	Inline   = "inline"
	ListItem = "list-item"
)

// rule is a single display declaration from a document style sheet
type rule struct {
	sel       cascadia.Sel
	display   string
	important bool
}

// Resolver answers "what is the computed display of this element" without a
// layout engine. It is built once per document.
type Resolver struct {
	rules []rule
}

// NewResolver collects the <style> sheets of the document that contains n
func NewResolver(n *html.Node) *Resolver {
	r := &Resolver{}
	if n == nil {
		return r
	}

	root := n
	for root.Parent != nil {
		root = root.Parent
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Style && appliesToScreen(attr(node, "media")) {
			r.addSheet(textOf(node))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	// stable so equal specificity keeps source order
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].sel.Specificity().Less(r.rules[j].sel.Specificity())
	})
	return r
}

// addSheet parses a style sheet and records its display declarations
func (r *Resolver) addSheet(sheet string) {
	parsed, err := parser.Parse(sheet)
	if err != nil {
		return
	}

	for _, cssRule := range parsed.Rules {
		if cssRule.Kind != css.QualifiedRule {
			continue
		}
		for _, decl := range cssRule.Declarations {
			display := keyword(decl.Value)
			if !strings.EqualFold(decl.Property, "display") || display == "" {
				continue
			}
			for _, selector := range cssRule.Selectors {
				sel, err := cascadia.Parse(selector)
				if err != nil || sel.PseudoElement() != "" {
					continue
				}
				r.rules = append(r.rules, rule{
					sel:       sel,
					display:   display,
					important: decl.Important,
				})
			}
		}
	}
}

// Display returns the computed display of an element node.
// Non-element nodes report Inline.
func (r *Resolver) Display(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return Inline
	}

	display := defaultDisplay(n)

	var important string
	for _, ru := range r.rules {
		if !ru.sel.Match(n) {
			continue
		}
		if ru.important {
			important = ru.display
		} else {
			display = ru.display
		}
	}

	inline, inlineImportant := inlineDisplay(attr(n, "style"))
	if inline != "" {
		display = inline
	}
	if important != "" && !inlineImportant {
		display = important
	}
	return display
}

// Hidden reports whether the element is not rendered at all
func (r *Resolver) Hidden(n *html.Node) bool {
	return r.Display(n) == None
}

// inlineDisplay reads the display declaration of a style attribute
func inlineDisplay(styleAttr string) (string, bool) {
	if styleAttr == "" {
		return "", false
	}
	// the parser drops a final declaration that has no terminator
	styleAttr = strings.TrimSpace(styleAttr)
	if !strings.HasSuffix(styleAttr, ";") {
		styleAttr += ";"
	}
	decls, err := parser.ParseDeclarations(styleAttr)
	if err != nil {
		return "", false
	}

	display, important := "", false
	for _, decl := range decls {
		if !strings.EqualFold(decl.Property, "display") {
			continue
		}
		if important && !decl.Important {
			continue
		}
		display, important = keyword(decl.Value), decl.Important
	}
	return display, important
}

// keyword reduces a display value such as "block flow" to its outer keyword
func keyword(value string) string {
	value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
	if fields := strings.Fields(value); len(fields) > 0 {
		return fields[0]
	}
	return value
}

func appliesToScreen(media string) bool {
	if media == "" {
		return true
	}
	media = strings.ToLower(media)
	return strings.Contains(media, "screen") || strings.Contains(media, "all")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
