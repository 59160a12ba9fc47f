package reel

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	// Frame sequences are usually exported as jpeg, png or webp.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// FrameSource opens the encoded bytes of a frame by URI. Implementations must
// be safe for concurrent use: every frame is opened from its own goroutine.
type FrameSource interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// DirSource reads frames from a file system, typically a directory of
// exported stills or an embed.FS.
type DirSource struct {
	FS fs.FS
}

// NewDirSource returns a DirSource rooted at dir on the local disk.
func NewDirSource(dir string) DirSource {
	return DirSource{FS: os.DirFS(dir)}
}

// Open implements FrameSource.
func (s DirSource) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	return s.FS.Open(strings.TrimPrefix(uri, "/"))
}

// HTTPSource fetches frames from static files under BaseURL.
type HTTPSource struct {
	BaseURL string
	// Client defaults to http.DefaultClient when nil.
	Client *http.Client
}

// Open implements FrameSource. Any non-2xx status is an error.
func (s *HTTPSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(uri, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// MapSource serves frames from memory, keyed by URI.
type MapSource map[string][]byte

// Open implements FrameSource.
func (m MapSource) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	data, ok := m[uri]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", uri, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// decodeFrame opens and decodes a single frame.
func decodeFrame(ctx context.Context, src FrameSource, uri string) (image.Image, error) {
	rc, err := src.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}
	return img, nil
}
