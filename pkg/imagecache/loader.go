package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrTooLarge is returned when a response exceeds the configured limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// DefaultMaxBytes bounds a single fetched image.
const DefaultMaxBytes = 10 << 20

// HTTPLoader loads http(s) URLs with an http.Client and file:// URLs or bare
// paths from disk.
type HTTPLoader struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, url string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return l.loadFile(strings.TrimPrefix(url, "file://"), limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get: unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body, limit)
}

func (l *HTTPLoader) loadFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return readLimited(f, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
