// ABOUTME: HTTP client contract used to fetch page images and call the summarizer
// ABOUTME: Kept minimal so tests can stub responses without a network

package interfaces

import (
	"context"
	"io"
)

// HTTPClient fetches images and posts summarization requests
type HTTPClient interface {
	// Get fetches url. Transient failures may be retried by the implementation.
	Get(ctx context.Context, url string) (Response, error)

	// Post sends body as JSON. Implementations that retry must replay body.
	Post(ctx context.Context, url string, body io.Reader) (Response, error)
}

// Response is what HTTPClient returns. Callers close Body.
type Response interface {
	StatusCode() int
	Body() io.ReadCloser

	// Header is case-insensitive and empty when absent
	Header(key string) string
}
