package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/infrastructure/http/standard"
)

func newSummarizer(url string) *Summarizer {
	return New(url, interfaces.Dependencies{
		HTTPClient: standard.NewStandardHTTPClient(time.Second, standard.WithMaxRetries(1)),
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a long captured paragraph", req.Text)
		_ = json.NewEncoder(w).Encode(response{Summary: "short"})
	}))
	defer server.Close()

	summary, err := newSummarizer(server.URL).Summarize(context.Background(), "a long captured paragraph")

	require.NoError(t, err)
	assert.Equal(t, "short", summary)
}

func TestSummarizer_EmptyText(t *testing.T) {
	_, err := newSummarizer("http://unused.invalid").Summarize(context.Background(), "  \n ")

	assert.True(t, coreerrors.IsValidation(err))
}

func TestSummarizer_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(response{Error: "quota"})
	}))
	defer server.Close()

	_, err := newSummarizer(server.URL).Summarize(context.Background(), "text to summarize")

	assert.True(t, coreerrors.IsUnreachable(err))
}

func TestSummarizer_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer server.Close()

	_, err := newSummarizer(server.URL).Summarize(context.Background(), "text to summarize")

	assert.Error(t, err)
	assert.False(t, coreerrors.IsUnreachable(err))
}

func TestSummarizer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newSummarizer(url).Summarize(context.Background(), "text to summarize")

	assert.True(t, coreerrors.IsUnreachable(err))
}
