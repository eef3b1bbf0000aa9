package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

// DefaultFetchTimeout bounds remote image fetches.
const DefaultFetchTimeout = 30 * time.Second

// Image is a decoded background image together with what is known about
// where it came from.
type Image struct {
	image.Image

	// Ref is the path or URL the image was loaded from.
	Ref string

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string

	// SizeBytes is the size of the encoded image.
	SizeBytes int64

	// Tainted is set for cross-origin images whose response did not grant
	// access. Pixels of a tainted image cannot be read.
	Tainted bool
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant
// reads and fetches.
//
// Images are keyed by the reference string passed to Load: a file path or an
// http(s) URL. Different spellings of the same file get separate entries.
//
// # Cross-Origin Access
//
// Remote images are fetched the way a browser fetches an anonymous CORS
// image. When Origin is set it is sent as the Origin header; the image is
// readable only if the response's Access-Control-Allow-Origin is "*" or
// matches Origin. Otherwise the image is cached as Tainted and rasterising
// it fails with an access error. Local files are always readable.
type ImageCache struct {
	// Origin is the origin of the page the images are used on, e.g.
	// "https://example.com". May be empty.
	Origin string

	// Client performs remote fetches. Defaults to a client with
	// DefaultFetchTimeout.
	Client *http.Client

	mu     sync.RWMutex
	images map[string]*Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Image),
	}
}

// Load retrieves an image from the cache or loads it if not cached.
//
// ref may be a local path, a file:// URL or an http(s) URL. Supported formats
// are PNG, JPEG, GIF, BMP and WebP. Failures to open, fetch or decode are
// returned as contrast load errors.
func (c *ImageCache) Load(ctx context.Context, ref string) (*Image, error) {
	if ref == "" {
		return nil, contrast.ConfigurationError("load", "image reference is empty")
	}

	c.mu.RLock()
	if img, ok := c.images[ref]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	var (
		data    []byte
		tainted bool
		err     error
	)
	if isRemote(ref) {
		data, tainted, err = c.fetch(ctx, ref)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(ref, "file://"))
		if err != nil {
			err = fmt.Errorf("failed to open image: %w", err)
		}
	}
	if err != nil {
		return nil, contrast.LoadError("load", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, contrast.LoadError("decode", fmt.Errorf("failed to decode image: %w", err))
	}

	img := &Image{
		Image:     decoded,
		Ref:       ref,
		Format:    format,
		SizeBytes: int64(len(data)),
		Tainted:   tainted,
	}

	c.mu.Lock()
	c.images[ref] = img
	c.mu.Unlock()

	return img, nil
}

func (c *ImageCache) fetch(ctx context.Context, url string) ([]byte, bool, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	if c.Origin != "" {
		req.Header.Set("Origin", c.Origin)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}

	allow := resp.Header.Get("Access-Control-Allow-Origin")
	readable := sameOrigin(url, c.Origin) || allow == "*" || (c.Origin != "" && allow == c.Origin)
	return data, !readable, nil
}

// sameOrigin reports whether ref is served from origin (scheme://host[:port]).
// Default ports are made explicit on both sides before comparing.
func sameOrigin(ref, origin string) bool {
	if origin == "" {
		return false
	}
	a, err := neturl.Parse(ref)
	if err != nil {
		return false
	}
	b, err := neturl.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) && hostPort(a) == hostPort(b)
}

func hostPort(u *neturl.URL) string {
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return strings.ToLower(u.Hostname()) + ":" + port
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache. The next Load of ref reads
// it again. Unknown refs are ignored.
func (c *ImageCache) Evict(ref string) {
	c.mu.Lock()
	delete(c.images, ref)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the image: "png", "jpeg", "gif",
	// "bmp" or "webp".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded image in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// Readable is false for cross-origin images whose pixels cannot be sampled.
	Readable bool `json:"readable"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// returns its metadata.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(ctx context.Context, cache *ImageCache, ref string) (*ImageInfo, error) {
	img, err := cache.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.Image.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     img.Format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  img.SizeBytes,
		Readable:   !img.Tainted,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(ctx context.Context, cache *ImageCache, ref string) (*DimensionsResult, error) {
	img, err := cache.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
