// ABOUTME: Summarizer adapter that forwards captured text to an external summarization service
// ABOUTME: Posts {"text"} as JSON and reads {"summary"} back

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
)

// maxResponseBytes caps how much of a summary response is read
const maxResponseBytes = 1 << 20

type request struct {
	Text string `json:"text"`
}

type response struct {
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

// Summarizer implements interfaces.Summarizer over HTTP
type Summarizer struct {
	url  string
	deps interfaces.Dependencies
}

// New creates a summarizer posting to url. deps.HTTPClient is required.
func New(url string, deps interfaces.Dependencies) *Summarizer {
	if deps.Logger == nil {
		deps.Logger = interfaces.NopLogger{}
	}
	return &Summarizer{url: url, deps: deps}
}

// Summarize sends text and returns the service's summary
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &coreerrors.ValidationError{Field: "text", Message: "nothing to summarize"}
	}

	body, err := json.Marshal(request{Text: text})
	if err != nil {
		return "", err
	}

	resp, err := s.deps.HTTPClient.Post(ctx, s.url, bytes.NewReader(body))
	if err != nil {
		return "", &coreerrors.UnreachableError{Target: "summarizer", Cause: err}
	}
	defer resp.Body().Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body(), maxResponseBytes))
	if err != nil {
		return "", coreerrors.WrapError(err, "read summary")
	}

	var out response
	if resp.StatusCode() != http.StatusOK {
		_ = json.Unmarshal(data, &out)
		s.deps.Logger.Warn("Summarizer returned an error", map[string]interface{}{
			"status": resp.StatusCode(),
			"error":  out.Error,
		})
		return "", &coreerrors.UnreachableError{
			Target: "summarizer",
			Cause:  fmt.Errorf("status %d", resp.StatusCode()),
		}
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return "", coreerrors.WrapError(err, "decode summary")
	}
	s.deps.Logger.Debug("Summary received", map[string]interface{}{
		"input_length":   len(text),
		"summary_length": len(out.Summary),
	})
	return out.Summary, nil
}
