package serializer

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Normalize trims every line, collapses runs of blank lines to one and trims
// the result
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for i := range lines {
		lines[i] = trimSpace(lines[i])
	}
	for i, line := range lines {
		if line != "" || i == 0 || lines[i-1] != "" {
			kept = append(kept, line)
		}
	}
	return trimSpace(strings.Join(kept, "\n"))
}

// TextContent concatenates every descendant text node of n
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			} else {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// trimSpace strips the characters a browser's String.prototype.trim strips
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.Is(unicode.White_Space, r) || r == '\uFEFF'
}

// documentBase applies the document's <base href> on top of the page URL
func documentBase(n *html.Node, page *url.URL) *url.URL {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}

	href := ""
	var find func(*html.Node) bool
	find = func(node *html.Node) bool {
		if isElement(node, atom.Base) {
			if h := attr(node, "href"); h != "" {
				href = h
				return true
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	if !find(root) {
		return page
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return page
	}
	if page == nil {
		return ref
	}
	return page.ResolveReference(ref)
}

// resolveSrc makes an image source absolute, leaving data URIs untouched
func resolveSrc(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") || base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
