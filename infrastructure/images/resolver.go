// ABOUTME: Image resolver fetches page images and re-encodes them as base64 data URIs
// ABOUTME: Picks the output type from the source extension and falls back to JPEG

package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoding

	"webclipper-api/core/interfaces"
)

const (
	// JPEGQuality matches a canvas export at 0.8
	JPEGQuality = 80

	// MaxImageBytes caps how much of a response is read
	MaxImageBytes = 10 << 20

	cacheTTL       = 24 * time.Hour
	cacheKeyPrefix = "imageData:"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeGIF  = "image/gif"
	mimeWebP = "image/webp"
)

// Resolver implements interfaces.ImageResolver
type Resolver struct {
	deps interfaces.Dependencies
}

// NewResolver creates a resolver. deps.HTTPClient is required; Cache is optional.
func NewResolver(deps interfaces.Dependencies) *Resolver {
	if deps.Logger == nil {
		deps.Logger = interfaces.NopLogger{}
	}
	return &Resolver{deps: deps}
}

// Resolve loads src and returns it as a data URI
func (r *Resolver) Resolve(ctx context.Context, src string) (dataURI string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.deps.Logger.Debug("Recovered from panic in image conversion", map[string]interface{}{
				"src":   src,
				"panic": fmt.Sprintf("%v", rec),
			})
			dataURI, err = "", fmt.Errorf("panic recovered: %v", rec)
		}
	}()

	if r.deps.Cache != nil {
		if data, err := r.deps.Cache.Get(ctx, cacheKeyPrefix+src); err == nil && len(data) > 0 {
			return string(data), nil
		}
	}

	raw, err := r.load(ctx, src)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	dataURI, err = r.encode(img, MIMEFor(src))
	if err != nil {
		return "", err
	}

	if r.deps.Cache != nil {
		_ = r.deps.Cache.Set(ctx, cacheKeyPrefix+src, []byte(dataURI), cacheTTL)
	}
	return dataURI, nil
}

// load returns the raw bytes behind src
func (r *Resolver) load(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}

	parsed, err := url.Parse(src)
	if err != nil || parsed.Host == "" || !strings.HasPrefix(parsed.Scheme, "http") {
		return nil, fmt.Errorf("invalid image URL: %s", src)
	}
	if strings.HasSuffix(strings.ToLower(parsed.Path), ".svg") {
		return nil, fmt.Errorf("SVG images are not supported")
	}
	if r.deps.HTTPClient == nil {
		return nil, fmt.Errorf("no http client configured")
	}

	resp, err := r.deps.HTTPClient.Get(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.Body()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return raw, nil
}

// encode paints img on an RGBA canvas and exports it as mime, using JPEG when
// mime cannot be produced
func (r *Resolver) encode(img image.Image, mime string) (string, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return "", fmt.Errorf("image has empty bounds")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	var err error
	switch mime {
	case mimePNG:
		err = png.Encode(&buf, canvas)
	case mimeGIF:
		err = gif.Encode(&buf, canvas, &gif.Options{NumColors: 256, Drawer: draw.FloydSteinberg})
	case mimeJPEG:
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = fmt.Errorf("no encoder for %s", mime)
	}

	if err != nil && mime != mimeJPEG {
		r.deps.Logger.Debug("Encoding failed for detected type, trying JPEG", map[string]interface{}{
			"type":  mime,
			"error": err.Error(),
		})
		buf.Reset()
		mime = mimeJPEG
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// MIMEFor picks the output type from the end of the lowercased source
func MIMEFor(src string) string {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return mimePNG
	case strings.HasSuffix(lower, ".gif"):
		return mimeGIF
	case strings.HasSuffix(lower, ".webp"):
		return mimeWebP
	default:
		return mimeJPEG
	}
}

// decodeDataURI extracts the payload of a data: URI
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(header, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI payload: %w", err)
		}
		return raw, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI payload: %w", err)
	}
	return []byte(decoded), nil
}
