package webgl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/sync/singleflight"

	imgutil "github.com/gogpu/webgl/internal/image"
)

// Texture source errors, wrapped in *TextureLoadError.
var (
	// ErrNotImage is returned when the fetched bytes are not a known image format.
	ErrNotImage = errors.New("webgl: source is not an image")

	// ErrHTTPStatus is returned for a non-2xx HTTP response.
	ErrHTTPStatus = errors.New("webgl: unexpected HTTP status")
)

// maxTextureBytes caps a texture source read from a stream.
const maxTextureBytes = 64 << 20

// TextureResult is the outcome of LoadTexture. Exactly one of Texture and
// Err is set.
type TextureResult struct {
	Texture *Texture
	Err     error
}

// Loader fetches texture sources. The zero value is not usable; use
// NewLoader or the package-level LoadTexture.
type Loader struct {
	client *http.Client
	group  singleflight.Group
}

// NewLoader returns a loader that fetches http(s) locators with client.
// A nil client gets a 30 second timeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{client: client}
}

var defaultLoader = NewLoader(nil)

// LoadTexture fetches and decodes a texture source on the default loader.
// See [Loader.Load].
func LoadTexture(locator string, filter Filter) <-chan TextureResult {
	return defaultLoader.Load(locator, filter)
}

// Load fetches and decodes the image at locator in the background.
//
// locator is an http:// or https:// URL, a file:// URL or a plain file
// path. The returned channel is buffered and receives exactly one result;
// the load cannot be cancelled. Failures are reported as *TextureLoadError
// in the result. Concurrent loads of the same locator share one fetch.
func (l *Loader) Load(locator string, filter Filter) <-chan TextureResult {
	out := make(chan TextureResult, 1)
	go func() {
		v, err, shared := l.group.Do(locator, func() (any, error) {
			return l.fetch(locator)
		})
		if err != nil {
			slogger().Warn("webgl: texture load failed", "locator", locator, "error", err)
			out <- TextureResult{Err: &TextureLoadError{Locator: locator, Err: err}}
			return
		}
		img := v.(image.Image)
		b := img.Bounds()
		slogger().Debug("webgl: texture loaded", "locator", locator,
			"width", b.Dx(), "height", b.Dy(), "shared", shared)
		out <- TextureResult{Texture: NewTexture(img, filter)}
	}()
	return out
}

func (l *Loader) fetch(locator string) (image.Image, error) {
	data, err := l.read(locator)
	if err != nil {
		return nil, err
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: detected %q", ErrNotImage, kind.MIME.Value)
	}
	return imgutil.DecodeBytes(data)
}

func (l *Loader) read(locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path; a one-letter scheme is a Windows drive letter.
		return os.ReadFile(filepath.Clean(locator))
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return os.ReadFile(filepath.FromSlash(u.Path))
	case "http", "https":
		return l.get(u.String())
	default:
		return nil, fmt.Errorf("webgl: unsupported locator scheme %q", u.Scheme)
	}
}

func (l *Loader) get(rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxTextureBytes))
}
