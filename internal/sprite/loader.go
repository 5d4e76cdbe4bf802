package sprite

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Cache provides thread-safe caching of decoded source images so that a
// preview followed by an export does not decode the same file twice.
//
// Cached entries are the decoded inputs, which the engine treats as immutable;
// mapped output is never cached, so every render recomputes from the window
// it was given. Entries stay in memory until Evict or Clear.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache creates an empty image cache ready for concurrent use.
func NewCache() *Cache {
	return &Cache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading from disk on the first call
// and from the cache afterwards. The cache key is the exact path string.
func (c *Cache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes the entry for path, if any. The next Load for that path reads
// from disk again.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear drops every cached image.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Info contains metadata about a source image file.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected format, by extension: "png", "jpeg" or "unknown".
	Format string `json:"format"`

	// HasAlpha indicates whether the source already carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads an image through the cache and returns its metadata.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	bounds := img.Bounds()
	return &Info{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
