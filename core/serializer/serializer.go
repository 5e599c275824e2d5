// ABOUTME: DOM serializer turns a parsed HTML subtree into readable plain text
// ABOUTME: Traversal is synchronous; images resolve concurrently as futures

package serializer

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"webclipper-api/core/domain"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/style"
)

const (
	// DefaultImageTimeout bounds a single image conversion
	DefaultImageTimeout = 5 * time.Second

	// DefaultMaxConcurrentImages caps simultaneous image conversions per extraction
	DefaultMaxConcurrentImages = 4
)

// textTags are the elements that open an indented line when block-displayed
var textTags = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Span: true, atom.Div: true, atom.Li: true, atom.Td: true, atom.Th: true,
	atom.Blockquote: true, atom.Pre: true, atom.Code: true,
}

// closingTags end with a newline once their children are written
var closingTags = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Div: true, atom.Blockquote: true, atom.Pre: true,
}

// IsTextTag reports whether n is one of the recognized text-bearing elements
func IsTextTag(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Namespace == "" && textTags[n.DataAtom]
}

// Options configures a Serializer
type Options struct {
	// BaseURL resolves relative image sources
	BaseURL *url.URL

	// Images converts image sources to data URIs. Nil keeps source URLs.
	Images interfaces.ImageResolver

	// ImageTimeout bounds each conversion, DefaultImageTimeout when zero
	ImageTimeout time.Duration

	// MaxConcurrentImages caps parallel conversions, DefaultMaxConcurrentImages when zero
	MaxConcurrentImages int

	Logger interfaces.Logger
}

// Serializer converts DOM subtrees to text
type Serializer struct {
	baseURL *url.URL
	images  interfaces.ImageResolver
	timeout time.Duration
	limit   int
	logger  interfaces.Logger
}

// New creates a Serializer
func New(opts Options) *Serializer {
	s := &Serializer{
		baseURL: opts.BaseURL,
		images:  opts.Images,
		timeout: opts.ImageTimeout,
		limit:   opts.MaxConcurrentImages,
		logger:  opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultImageTimeout
	}
	if s.limit <= 0 {
		s.limit = DefaultMaxConcurrentImages
	}
	if s.logger == nil {
		s.logger = interfaces.NopLogger{}
	}
	return s
}

// Serialize returns the normalized text of n
func (s *Serializer) Serialize(ctx context.Context, n *html.Node) string {
	return Normalize(s.Collect(ctx, n))
}

// Collect returns the raw text of n before normalization.
// It always completes: failed or slow images degrade to their source URL.
func (s *Serializer) Collect(ctx context.Context, n *html.Node) string {
	return s.collect(ctx, n, n)
}

// SerializeFragment serializes a detached copy of part of a document.
// Styles and the base URL come from source, a node of the live document.
func (s *Serializer) SerializeFragment(ctx context.Context, fragment, source *html.Node) string {
	if source == nil {
		source = fragment
	}
	return Normalize(s.collect(ctx, fragment, source))
}

func (s *Serializer) collect(ctx context.Context, n, source *html.Node) string {
	if n == nil {
		return ""
	}

	w := &walker{
		styles: style.NewResolver(source),
		base:   documentBase(source, s.baseURL),
	}
	w.visit(n, 0)
	return s.compose(ctx, w.fragments)
}

// Accept reports whether normalized text is long enough to be stored
func Accept(text string) bool {
	return domain.LongEnough(text)
}

// compose resolves the image futures and joins every fragment in document order
func (s *Serializer) compose(ctx context.Context, fragments []fragment) string {
	parts := make([]string, len(fragments))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, f := range fragments {
		if !f.image {
			parts[i] = f.text
			continue
		}
		g.Go(func() error {
			parts[i] = s.resolveImage(ctx, f.text)
			return nil
		})
	}
	_ = g.Wait()

	return strings.Join(parts, "")
}

// resolveImage produces the marker for one image, never failing
func (s *Serializer) resolveImage(ctx context.Context, src string) string {
	if s.images == nil || src == "" {
		return imageMarker(src)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		uri string
		err error
	}
	done := make(chan result, 1)
	go func() {
		uri, err := s.images.Resolve(ctx, src)
		done <- result{uri: uri, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil || r.uri == "" {
			fields := map[string]interface{}{"src": src}
			if r.err != nil {
				fields["error"] = r.err.Error()
			}
			s.logger.Debug("Image conversion failed, keeping source url", fields)
			return imageMarker(src)
		}
		return imageMarker(r.uri)
	case <-ctx.Done():
		s.logger.Debug("Image conversion timed out, keeping source url", map[string]interface{}{
			"src":     src,
			"timeout": s.timeout.String(),
		})
		return imageMarker(src)
	}
}

func imageMarker(uri string) string {
	return "\n[IMAGE:" + uri + "]\n"
}

// fragment is a piece of output: literal text, or an image source awaiting conversion
type fragment struct {
	text  string
	image bool
}

type walker struct {
	styles    *style.Resolver
	base      *url.URL
	fragments []fragment
}

func (w *walker) write(text string) {
	if text == "" {
		return
	}
	if last := len(w.fragments) - 1; last >= 0 && !w.fragments[last].image {
		w.fragments[last].text += text
		return
	}
	w.fragments = append(w.fragments, fragment{text: text})
}

func (w *walker) visit(n *html.Node, depth int) {
	switch n.Type {
	case html.TextNode:
		w.write(trimSpace(n.Data))
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.visit(c, depth)
		}
	case html.ElementNode:
		w.element(n, depth)
	}
}

func (w *walker) element(n *html.Node, depth int) {
	if w.styles.Hidden(n) {
		return
	}

	if n.Namespace == "" {
		switch {
		case n.DataAtom == atom.Img:
			w.fragments = append(w.fragments, fragment{text: resolveSrc(w.base, attr(n, "src")), image: true})
			return
		case n.DataAtom == atom.Table:
			if depth > 0 {
				w.write("\n")
			}
			w.write(tableText(n))
			return
		case n.DataAtom == atom.Li:
			w.write(strings.Repeat("  ", depth) + listMarker(n))
		case textTags[n.DataAtom]:
			if depth > 0 && w.styles.Display(n) == style.Block {
				w.write("\n" + strings.Repeat("  ", depth))
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c, depth+1)
	}

	if n.Namespace == "" && closingTags[n.DataAtom] {
		w.write("\n")
	}
}

// listMarker numbers items of ordered lists and bullets everything else
func listMarker(li *html.Node) string {
	parent := li.Parent
	if parent == nil || parent.Type != html.ElementNode || parent.DataAtom != atom.Ol {
		return "• "
	}

	position := 1
	for sib := li.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.DataAtom == atom.Li {
			position++
		}
	}
	return strconv.Itoa(position) + ". "
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
