package iconcache

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-now/internal/weather"
)

// DefaultCapacity holds the whole OpenWeatherMap icon set (18 codes).
const DefaultCapacity = 20

// Downloader fetches raw icon bytes for a code.
type Downloader interface {
	Download(ctx context.Context, code string) ([]byte, error)
}

// Cache is a concurrency-safe, bounded in-memory icon store. On a miss it
// downloads and decodes the icon; failures are not cached.
type Cache struct {
	mu sync.RWMutex

	// key: icon code
	entries map[string]*weather.Icon
	// insertion order, oldest first
	order []string

	capacity   int
	downloader Downloader
	logger     *zap.Logger

	hits   int
	misses int
}

// New creates a Cache. If capacity is <= 0, DefaultCapacity is used.
func New(capacity int, downloader Downloader, logger *zap.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries:    make(map[string]*weather.Icon),
		capacity:   capacity,
		downloader: downloader,
		logger:     logger,
	}
}

// Resolve returns the icon for code, downloading it on a miss. It returns nil
// when the icon cannot be downloaded or decoded.
func (c *Cache) Resolve(ctx context.Context, code string) *weather.Icon {
	icon, ok := c.Get(code)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		c.logger.Debug("icon cache hit", zap.String("code", code))
		return icon
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	if c.downloader == nil {
		return nil
	}

	data, err := c.downloader.Download(ctx, code)
	if err != nil {
		c.logger.Warn("icon download failed", zap.String("code", code), zap.Error(err))
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("icon decode failed", zap.String("code", code), zap.Error(err))
		return nil
	}

	icon = &weather.Icon{Code: code, Data: data, Image: img}
	c.put(icon)
	return icon
}

// put inserts or overwrites an entry and evicts the oldest entries beyond capacity.
func (c *Cache) put(icon *weather.Icon) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[icon.Code]; !exists {
		c.order = append(c.order, icon.Code)
	}
	c.entries[icon.Code] = icon

	if over := len(c.order) - c.capacity; over > 0 {
		for _, code := range c.order[:over] {
			delete(c.entries, code)
		}
		c.order = c.order[over:]
	}
}

// Get returns a cached icon without downloading.
func (c *Cache) Get(code string) (*weather.Icon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	icon, ok := c.entries[code]
	return icon, ok
}

// Len returns the number of cached icons.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

var _ weather.IconResolver = (*Cache)(nil)
