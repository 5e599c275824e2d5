package capture

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"webclipper-api/core/serializer"
)

// Range is a selection between two boundary points.
// For text containers the offset counts runes; for elements it counts children.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// NodeRange spans the contents of n
func NodeRange(n *html.Node) Range {
	return Range{
		StartContainer: n,
		StartOffset:    0,
		EndContainer:   n,
		EndOffset:      nodeLength(n),
	}
}

// Valid reports whether both boundary points are set and share a document
func (r Range) Valid() bool {
	return r.StartContainer != nil && r.EndContainer != nil && r.CommonAncestor() != nil
}

// CommonAncestor returns the deepest node containing both boundary points
func (r Range) CommonAncestor() *html.Node {
	if r.StartContainer == nil || r.EndContainer == nil {
		return nil
	}
	seen := make(map[*html.Node]bool)
	for n := r.StartContainer; n != nil; n = n.Parent {
		seen[n] = true
	}
	for n := r.EndContainer; n != nil; n = n.Parent {
		if seen[n] {
			return n
		}
	}
	return nil
}

// Text returns the selected text, the way a browser selection stringifies
func (r Range) Text() string {
	ancestor := r.CommonAncestor()
	if ancestor == nil {
		return ""
	}
	return serializer.TextContent(Clone(r, ancestor))
}

// Container returns the smallest table, div or p holding the whole range,
// or the common ancestor element when there is none
func (r Range) Container() *html.Node {
	ancestor := r.CommonAncestor()
	if ancestor != nil && ancestor.Type != html.ElementNode {
		ancestor = ancestor.Parent
	}
	for n := ancestor; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Namespace == "" &&
			(n.DataAtom == atom.Table || n.DataAtom == atom.Div || n.DataAtom == atom.P) {
			return n
		}
	}
	return ancestor
}

// point orders a boundary in the flattened subtree: pos is a preorder index,
// off a rune offset inside a text node or -1 for "just before the node"
type point struct {
	pos int
	off int
}

func (a point) less(b point) bool {
	return a.pos < b.pos || (a.pos == b.pos && a.off < b.off)
}

// Clone deep-copies container keeping only what the range covers. Partially
// covered text is cut at the boundary offsets. The copy is detached.
// Clone returns nil when a boundary lies outside container.
func Clone(r Range, container *html.Node) *html.Node {
	if container == nil {
		return nil
	}

	pre := make(map[*html.Node]int)
	last := make(map[*html.Node]int)
	counter := 0
	var number func(*html.Node)
	number = func(n *html.Node) {
		pre[n] = counter
		counter++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			number(c)
		}
		last[n] = counter - 1
	}
	number(container)

	boundary := func(c *html.Node, offset int) (point, bool) {
		idx, ok := pre[c]
		if !ok {
			return point{}, false
		}
		if c.Type == html.TextNode {
			return point{pos: idx, off: clamp(offset, 0, runeLen(c.Data))}, true
		}
		if child := childAt(c, offset); child != nil {
			return point{pos: pre[child], off: -1}, true
		}
		return point{pos: last[c] + 1, off: -1}, true
	}

	start, ok := boundary(r.StartContainer, r.StartOffset)
	if !ok {
		return nil
	}
	end, ok := boundary(r.EndContainer, r.EndOffset)
	if !ok {
		return nil
	}
	if end.less(start) {
		start, end = end, start
	}

	var clone func(*html.Node) *html.Node
	clone = func(n *html.Node) *html.Node {
		switch n.Type {
		case html.TextNode:
			runes := []rune(n.Data)
			from, to := point{pre[n], 0}, point{pre[n], len(runes)}
			if to.less(start) || end.less(from) {
				return nil
			}
			lo, hi := 0, len(runes)
			if start.pos == pre[n] && start.off >= 0 {
				lo = start.off
			}
			if end.pos == pre[n] {
				hi = end.off
			}
			if lo >= hi {
				return nil
			}
			return &html.Node{Type: html.TextNode, Data: string(runes[lo:hi])}
		case html.ElementNode:
			from, to := point{pre[n], -1}, point{last[n] + 1, -1}
			if n != container && (!start.less(to) || !from.less(end)) {
				return nil
			}
			cp := &html.Node{
				Type:      html.ElementNode,
				DataAtom:  n.DataAtom,
				Data:      n.Data,
				Namespace: n.Namespace,
				Attr:      append([]html.Attribute(nil), n.Attr...),
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if child := clone(c); child != nil {
					cp.AppendChild(child)
				}
			}
			return cp
		default:
			return nil
		}
	}

	if container.Type == html.TextNode {
		return clone(container)
	}
	if container.Type != html.ElementNode {
		// documents and fragments: copy the covered children under a detached div
		wrapper := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
		for c := container.FirstChild; c != nil; c = c.NextSibling {
			if child := clone(c); child != nil {
				wrapper.AppendChild(child)
			}
		}
		return wrapper
	}
	return clone(container)
}

func nodeLength(n *html.Node) int {
	if n == nil {
		return 0
	}
	if n.Type == html.TextNode {
		return runeLen(n.Data)
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func childAt(n *html.Node, index int) *html.Node {
	if index < 0 {
		return n.FirstChild
	}
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if i == index {
			return c
		}
		i++
	}
	return nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
