// Package gencache memoizes generated programs by configuration.
package gencache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/klauspost/compress/zstd"

	"github.com/meltforce/liftplan/internal/progression"
)

// MinSize is the smallest cache freecache allocates.
const MinSize = 512 * 1024

// Cache holds generated results as zstd-compressed JSON. freecache rejects
// entries above 1/1024 of its size, so long programs only fit compressed.
type Cache struct {
	fc  *freecache.Cache
	enc *zstd.Encoder
	dec *zstd.Decoder
	ttl int
}

// New returns a cache of sizeBytes whose entries expire after ttl. A ttl of
// zero keeps entries until they are evicted.
func New(sizeBytes int, ttl time.Duration) (*Cache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	if sizeBytes < MinSize {
		sizeBytes = MinSize
	}
	return &Cache{
		fc:  freecache.NewCache(sizeBytes),
		enc: enc,
		dec: dec,
		ttl: int(ttl / time.Second),
	}, nil
}

type cacheKey struct {
	Program progression.Program `json:"p"`
	Config  progression.Config  `json:"c"`
}

// Generate returns the JSON result of cfg and whether it came from the cache.
// Results too large for the cache are returned but not stored.
func (c *Cache) Generate(cfg progression.Config) (json.RawMessage, bool, error) {
	key, err := json.Marshal(cacheKey{Program: cfg.Program(), Config: cfg})
	if err != nil {
		return nil, false, fmt.Errorf("encoding cache key: %w", err)
	}

	if packed, err := c.fc.Get(key); err == nil {
		if raw, err := c.dec.DecodeAll(packed, nil); err == nil {
			return raw, true, nil
		}
		c.fc.Del(key)
	}

	res, err := progression.Generate(cfg)
	if err != nil {
		return nil, false, err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, false, fmt.Errorf("encoding result: %w", err)
	}
	_ = c.fc.Set(key, c.enc.EncodeAll(raw, nil), c.ttl)
	return raw, false, nil
}

// Len is the number of cached results.
func (c *Cache) Len() int64 {
	return c.fc.EntryCount()
}

// Clear drops every cached result.
func (c *Cache) Clear() {
	c.fc.Clear()
}
