package memento

import "sync/atomic"

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// Struct is sized to fit within a single cache line (64 bytes).
//
// For Prometheus integration, expose these as:
//   - Counters: Gets, Stores, Deletes, Increments, Decrements, Errors
//   - Counter: GetHits (derive hit rate as GetHits/Gets)
type ClientStats struct {
	Gets       uint64 // Total Get/Gets operations
	GetHits    uint64 // Get/Gets operations that found at least one key
	Stores     uint64 // Total storage operations (set/add/replace/append/prepend/cas)
	Deletes    uint64 // Total Delete operations
	Increments uint64 // Total Incr operations
	Decrements uint64 // Total Decr operations
	Errors     uint64 // Total errors across all operations
	_          uint64 // Padding to align to 64 bytes
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - the client updates its own stats.
type clientStatsCollector struct {
	stats *ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{
		stats: &ClientStats{},
	}
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordStore() {
	atomic.AddUint64(&c.stats.Stores, 1)
}

func (c *clientStatsCollector) recordDelete() {
	atomic.AddUint64(&c.stats.Deletes, 1)
}

func (c *clientStatsCollector) recordIncrement() {
	atomic.AddUint64(&c.stats.Increments, 1)
}

func (c *clientStatsCollector) recordDecrement() {
	atomic.AddUint64(&c.stats.Decrements, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:       atomic.LoadUint64(&c.stats.Gets),
		GetHits:    atomic.LoadUint64(&c.stats.GetHits),
		Stores:     atomic.LoadUint64(&c.stats.Stores),
		Deletes:    atomic.LoadUint64(&c.stats.Deletes),
		Increments: atomic.LoadUint64(&c.stats.Increments),
		Decrements: atomic.LoadUint64(&c.stats.Decrements),
		Errors:     atomic.LoadUint64(&c.stats.Errors),
	}
}
