// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/wneessen/weather-forecast/internal/location"
)

const (
	// gridSize is the quantization step of cache keys, 0.01° is about 1.1 km.
	gridSize = 1e-2

	// maxEntries bounds the cache. Expired entries are pruned once it is reached.
	maxEntries = 256
)

var _ location.RegionLookup = (*CachedGeocoder)(nil)

// gridCell identifies a quantized coordinate.
type gridCell struct {
	lat, lon int32
}

type cachedAddress struct {
	addr    Address
	expires time.Time
}

// CachedGeocoder caches the results of another Geocoder. Coordinates within the same grid
// cell share a cache entry. Found and not-found results expire after separate TTLs; errors
// are never cached.
type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu      sync.RWMutex
	entries map[gridCell]cachedAddress
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		entries: make(map[gridCell]cachedAddress),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords location.Coordinate) (Address, error) {
	cell := newKey(coords.Lat, coords.Lon)
	if addr, ok := c.lookup(cell); ok {
		return addr, nil
	}

	addr, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return addr, err
	}
	c.store(cell, addr)
	return addr, nil
}

// RegionName returns the region of the coordinate, or ErrNotFound if there is none.
func (c *CachedGeocoder) RegionName(ctx context.Context, coords location.Coordinate) (string, error) {
	addr, err := c.Reverse(ctx, coords)
	if err != nil {
		return "", err
	}
	if !addr.Found || addr.Region == "" {
		return "", ErrNotFound
	}
	return addr.Region, nil
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedGeocoder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedGeocoder) lookup(cell gridCell) (Address, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cell]
	c.mu.RUnlock()
	if !ok || !time.Now().Before(entry.expires) {
		return Address{}, false
	}
	addr := entry.addr
	addr.CacheHit = true
	return addr, true
}

func (c *CachedGeocoder) store(cell gridCell, addr Address) {
	ttl := c.ttlHit
	if !addr.Found {
		ttl = c.ttlMiss
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxEntries {
		for key, entry := range c.entries {
			if !now.Before(entry.expires) {
				delete(c.entries, key)
			}
		}
	}
	c.entries[cell] = cachedAddress{addr: addr, expires: now.Add(ttl)}
}

func newKey(lat, lon float64) gridCell {
	return gridCell{
		lat: int32(math.Round(lat / gridSize)),
		lon: int32(math.Round(lon / gridSize)),
	}
}
