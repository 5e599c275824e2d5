// ABOUTME: Page fetcher downloads a web page with colly and parses it into a DOM
// ABOUTME: Optionally narrows the document to its readable article with go-readability

package page

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly"
	"golang.org/x/net/html"

	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
)

const (
	// DefaultUserAgent is sent with page requests
	DefaultUserAgent = "Mozilla/5.0 (compatible; WebClipper/1.0)"

	// MaxBodySize caps a downloaded page
	MaxBodySize = 5 * 1024 * 1024

	defaultTimeout = 15 * time.Second
)

// Page is a fetched document
type Page struct {
	// URL is the final address after redirects
	URL      string
	Title    string
	Document *html.Node

	// Article is true when Document holds only the readable article
	Article bool
}

// Options configures a Fetcher
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Readable keeps only the main article of each page
	Readable bool

	Logger interfaces.Logger
}

// Fetcher loads pages for capture
type Fetcher struct {
	opts Options
}

// NewFetcher creates a fetcher
func NewFetcher(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = interfaces.NopLogger{}
	}
	return &Fetcher{opts: opts}
}

// Fetch downloads and parses rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(MaxBodySize),
		colly.Async(false),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.opts.Timeout)

	var (
		body     []byte
		final    = target
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		final = r.Request.URL
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		f.opts.Logger.Warn("Failed to fetch page", map[string]interface{}{
			"url":    rawURL,
			"status": status,
			"error":  err.Error(),
		})
		fetchErr = err
	})

	if err := c.Visit(target.String()); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, &coreerrors.UnreachableError{Target: rawURL, Cause: fetchErr}
	}

	if f.opts.Readable {
		p, err := f.article(body, final)
		if err == nil {
			return p, nil
		}
		f.opts.Logger.Info("No readable article, keeping the full page", map[string]interface{}{
			"url":   final.String(),
			"error": err.Error(),
		})
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, coreerrors.WrapError(err, "parse page")
	}
	return &Page{URL: final.String(), Title: Title(doc), Document: doc}, nil
}

// article narrows body to the content go-readability picks
func (f *Fetcher) article(body []byte, pageURL *url.URL) (*Page, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, fmt.Errorf("empty article")
	}
	doc, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		return nil, err
	}
	return &Page{URL: pageURL.String(), Title: article.Title, Document: doc, Article: true}, nil
}

// Title returns the text of the document's first title element
func Title(doc *html.Node) string {
	return strings.TrimSpace(goquery.NewDocumentFromNode(doc).Find("title").First().Text())
}
