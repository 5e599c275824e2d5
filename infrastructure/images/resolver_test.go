package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/interfaces"
	httpstd "webclipper-api/infrastructure/http/standard"
)

// mockCache is a mock implementation of the Cache interface
type mockCache struct {
	data map[string][]byte
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, interfaces.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: 120, B: uint8(y * 40), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, payload []byte, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/missing"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/text"):
			_, _ = w.Write([]byte("not an image"))
		default:
			_, _ = w.Write(payload)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func mustDecode(t *testing.T, uri, wantMIME string) image.Image {
	t.Helper()
	prefix := "data:" + wantMIME + ";base64,"
	require.True(t, strings.HasPrefix(uri, prefix), "got %.40s", uri)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func newResolver(cache interfaces.Cache) *Resolver {
	return NewResolver(interfaces.Dependencies{
		HTTPClient: httpstd.NewStandardHTTPClient(5 * time.Second),
		Cache:      cache,
	})
}

func TestResolve_EncodesByExtension(t *testing.T) {
	server := imageServer(t, pngBytes(t, 4, 3), nil)
	r := newResolver(nil)

	tests := []struct {
		path string
		mime string
	}{
		{"/a.png", "image/png"},
		{"/a.PNG", "image/png"},
		{"/a.gif", "image/gif"},
		{"/a.jpg", "image/jpeg"},
		{"/noext", "image/jpeg"},
		// no WebP encoder exists, so the export falls back to JPEG
		{"/a.webp", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			uri, err := r.Resolve(context.Background(), server.URL+tt.path)
			require.NoError(t, err)

			img := mustDecode(t, uri, tt.mime)
			assert.Equal(t, 4, img.Bounds().Dx())
			assert.Equal(t, 3, img.Bounds().Dy())
		})
	}
}

func TestResolve_Failures(t *testing.T) {
	server := imageServer(t, pngBytes(t, 2, 2), nil)
	r := newResolver(nil)

	for _, src := range []string{
		server.URL + "/missing.png",
		server.URL + "/text.png",
		server.URL + "/icon.svg",
		"ftp://example.com/a.png",
		"not a url",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), src)
			assert.Error(t, err)
		})
	}
}

func TestResolve_DataURISource(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 5))

	uri, err := newResolver(nil).Resolve(context.Background(), src)

	require.NoError(t, err)
	img := mustDecode(t, uri, "image/jpeg")
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestResolve_UsesCache(t *testing.T) {
	var hits int32
	server := imageServer(t, pngBytes(t, 2, 2), &hits)
	cache := &mockCache{data: map[string][]byte{}}
	r := newResolver(cache)

	first, err := r.Resolve(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolve_HonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newResolver(nil).Resolve(ctx, server.URL+"/slow.png")
	assert.Error(t, err)
}

func TestMIMEFor(t *testing.T) {
	assert.Equal(t, "image/png", MIMEFor("https://e.com/x.png"))
	assert.Equal(t, "image/gif", MIMEFor("https://e.com/X.GIF"))
	assert.Equal(t, "image/webp", MIMEFor("https://e.com/x.webp"))
	assert.Equal(t, "image/jpeg", MIMEFor("https://e.com/x.png?size=2"))
	assert.Equal(t, "image/jpeg", MIMEFor(""))
}
