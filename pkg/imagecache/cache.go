// Package imagecache fetches image attachments, identifies their type, and
// keeps them in memory keyed by content id.
package imagecache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/h2non/filetype"
	"golang.org/x/sync/singleflight"
)

// ErrNotImage is returned when fetched data is not a recognised image.
var ErrNotImage = errors.New("not an image")

// Size is a display size in points.
type Size struct {
	Width  float64
	Height float64
}

// Image is a fetched attachment.
type Image struct {
	// ContentID identifies the image by its content.
	ContentID string

	// URL is the location the image was fetched from.
	URL string

	// MIME is the sniffed media type.
	MIME string

	// Width and Height are the natural pixel dimensions, or zero when the
	// format could not be decoded.
	Width  int
	Height int

	// Display is the size the image should be drawn at.
	Display Size

	// Data holds the raw bytes.
	Data []byte
}

// Fit returns the largest size with the image's aspect ratio that fits within
// bounds scaled by scale. Images without known dimensions fill the bounds.
func (img Image) Fit(bounds Size, scale float64) Size {
	if scale <= 0 {
		scale = 1
	}
	if img.Width == 0 || img.Height == 0 {
		return bounds
	}

	natural := Size{Width: float64(img.Width) / scale, Height: float64(img.Height) / scale}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return natural
	}
	ratio := min(bounds.Width/natural.Width, bounds.Height/natural.Height, 1)
	return Size{Width: natural.Width * ratio, Height: natural.Height * ratio}
}

// Loader retrieves the raw bytes at url.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// Cache fetches images through a Loader and keeps them in memory. Concurrent
// requests for the same url share one load.
type Cache struct {
	loader  Loader
	timeout time.Duration
	logger  *log.Logger

	group singleflight.Group

	mu      sync.Mutex
	byID    map[string]Image
	idByURL map[string]string
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout bounds each asynchronous fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New returns an empty cache backed by loader.
func New(loader Loader, opts ...Option) *Cache {
	c := &Cache{
		loader:  loader,
		timeout: 30 * time.Second,
		logger:  log.Default(),
		byID:    make(map[string]Image),
		idByURL: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the cached image with the given content id.
func (c *Cache) Lookup(contentID string) (Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.byID[contentID]
	return img, ok
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.byID)
}

// Get returns the image at url, loading it on first use.
func (c *Cache) Get(ctx context.Context, url string) (Image, error) {
	c.mu.Lock()
	if id, ok := c.idByURL[url]; ok {
		img := c.byID[id]
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(url, func() (any, error) {
		data, err := c.loader.Load(ctx, url)
		if err != nil {
			return Image{}, fmt.Errorf("load %s: %w", url, err)
		}
		img, err := decode(url, data)
		if err != nil {
			return Image{}, err
		}

		c.mu.Lock()
		c.byID[img.ContentID] = img
		c.idByURL[url] = img.ContentID
		c.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return Image{}, err
	}
	return v.(Image), nil
}

// FetchImage loads url in the background and calls completion with the image
// sized to fit size at scale. id names the request in logs. completion runs on
// the fetching goroutine.
func (c *Cache) FetchImage(id, url string, size Size, scale float64, completion func(Image, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		img, err := c.Get(ctx, url)
		if err != nil {
			c.logger.Warn("image fetch failed", "id", id, "url", url, "error", err)
			completion(Image{}, err)
			return
		}
		img.Display = img.Fit(size, scale)
		c.logger.Debug("image fetched", "id", id, "url", url, "content_id", img.ContentID)
		completion(img, nil)
	}()
}

// decode identifies data and builds an Image from it.
func decode(url string, data []byte) (Image, error) {
	if !filetype.IsImage(data) {
		return Image{}, fmt.Errorf("%s: %w", url, ErrNotImage)
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return Image{}, fmt.Errorf("sniff %s: %w", url, err)
	}

	sum := sha256.Sum256(data)
	img := Image{
		ContentID: hex.EncodeToString(sum[:16]),
		URL:       url,
		MIME:      kind.MIME.Value,
		Data:      data,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img, nil
}
