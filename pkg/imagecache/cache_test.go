package imagecache_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/imagecache"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type countingLoader struct {
	data  []byte
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) Load(context.Context, string) ([]byte, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.data, nil
}

func TestGet_DecodesAndCaches(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{data: pngBytes(t, 40, 20)}
	cache := imagecache.New(loader)

	img, err := cache.Get(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)
	assert.Len(t, img.ContentID, 32)

	again, err := cache.Get(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, img.ContentID, again.ContentID)
	assert.Equal(t, int32(1), loader.calls.Load())

	cached, ok := cache.Lookup(img.ContentID)
	require.True(t, ok)
	assert.Equal(t, "a.png", cached.URL)
}

func TestGet_SharesConcurrentLoads(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{data: pngBytes(t, 1, 1), gate: make(chan struct{})}
	cache := imagecache.New(loader)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "same.png")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
	assert.LessOrEqual(t, loader.calls.Load(), int32(8))
}

func TestGet_RejectsNonImage(t *testing.T) {
	t.Parallel()

	cache := imagecache.New(&countingLoader{data: []byte("hello world")})

	_, err := cache.Get(context.Background(), "x.txt")
	require.ErrorIs(t, err, imagecache.ErrNotImage)
	assert.Equal(t, 0, cache.Len())
}

func TestFetchImage_Completes(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 200, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	cache := imagecache.New(&imagecache.HTTPLoader{Client: srv.Client()})

	done := make(chan imagecache.Image, 1)
	cache.FetchImage("block-1", srv.URL+"/img.png", imagecache.Size{Width: 50, Height: 50}, 2, func(img imagecache.Image, err error) {
		assert.NoError(t, err)
		done <- img
	})

	select {
	case img := <-done:
		assert.Equal(t, imagecache.Size{Width: 50, Height: 25}, img.Display)
	case <-time.After(5 * time.Second):
		t.Fatal("completion not called")
	}
}

func TestHTTPLoader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer srv.Close()

	loader := &imagecache.HTTPLoader{Client: srv.Client(), MaxBytes: 16}

	_, err := loader.Load(context.Background(), srv.URL+"/big")
	require.ErrorIs(t, err, imagecache.ErrTooLarge)

	_, err = loader.Load(context.Background(), srv.URL+"/missing")
	require.ErrorContains(t, err, "404")

	path := filepath.Join(t.TempDir(), "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("tiny"), 0o600))
	data, err := loader.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", string(data))
}

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		img    imagecache.Image
		bounds imagecache.Size
		scale  float64
		want   imagecache.Size
	}{
		{"shrinks to width", imagecache.Image{Width: 400, Height: 200}, imagecache.Size{Width: 100, Height: 100}, 1, imagecache.Size{Width: 100, Height: 50}},
		{"never grows", imagecache.Image{Width: 10, Height: 10}, imagecache.Size{Width: 100, Height: 100}, 1, imagecache.Size{Width: 10, Height: 10}},
		{"scale halves points", imagecache.Image{Width: 20, Height: 10}, imagecache.Size{Width: 100, Height: 100}, 2, imagecache.Size{Width: 10, Height: 5}},
		{"unknown dimensions fill", imagecache.Image{}, imagecache.Size{Width: 30, Height: 40}, 1, imagecache.Size{Width: 30, Height: 40}},
		{"no bounds keeps natural", imagecache.Image{Width: 8, Height: 4}, imagecache.Size{}, 0, imagecache.Size{Width: 8, Height: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.img.Fit(tt.bounds, tt.scale))
		})
	}
}
