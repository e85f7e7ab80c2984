// Package cache models a fetch accelerator: a small read-only buffer of
// memory lines in front of slow program memory, with its tag store kept
// in an Akita cache directory.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds line buffer parameters.
type Config struct {
	// Lines is the number of buffered lines.
	Lines int
	// Associativity is the number of ways per set. Lines/Associativity
	// sets are used.
	Associativity int
	// LineBytes is the line size in bytes.
	LineBytes int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes the line fill)
	MissLatency uint64
}

// DefaultConfig returns four fully associative 16-byte lines, the shape
// of a typical ARM7 flash accelerator.
func DefaultConfig() Config {
	return Config{
		Lines:         4,
		Associativity: 4,
		LineBytes:     16,
		HitLatency:    0,
		MissLatency:   3,
	}
}

// AccessResult contains the result of a buffer read.
type AccessResult struct {
	// Hit indicates whether the line was buffered.
	Hit bool
	// Latency is the number of stall cycles this access takes.
	Latency uint64
	// Data is the value read, zero-extended.
	Data uint32
}

// Statistics holds buffer statistics.
type Statistics struct {
	Reads         uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
}

// BackingStore is the memory behind the buffer.
type BackingStore interface {
	// Read fetches size bytes starting at addr.
	Read(addr uint32, size int) []byte
}

// Cache is a read-only line buffer. Writes go around it; callers
// invalidate the lines they overlap.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Line storage indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats Statistics

	backing BackingStore
}

// New creates a line buffer over backing.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.Lines / config.Associativity
	if numSets == 0 {
		numSets = 1
	}
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.LineBytes)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.LineBytes,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the buffer configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns buffer statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears buffer statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) lineAddr(addr uint32) uint64 {
	return uint64(addr) &^ uint64(c.config.LineBytes-1)
}

// Read returns size bytes at addr from the buffer, filling the line on a
// miss. The access must not cross a line boundary.
func (c *Cache) Read(addr uint32, size int) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.lineAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := addr % uint32(c.config.LineBytes)
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    extractData(c.dataStore[c.blockIndex(block)], offset, size),
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size)
}

// handleMiss fills a victim line from the backing store.
func (c *Cache) handleMiss(addr uint32, size int) AccessResult {
	result := AccessResult{
		Latency: c.config.MissLatency,
	}

	lineAddr := c.lineAddr(addr)
	victim := c.directory.FindVictim(lineAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victimData := c.dataStore[c.blockIndex(victim)]
	if c.backing != nil {
		copy(victimData, c.backing.Read(uint32(lineAddr), c.config.LineBytes))
	} else {
		clear(victimData)
	}

	victim.Tag = lineAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	result.Data = extractData(victimData, addr%uint32(c.config.LineBytes), size)
	return result
}

// Invalidate drops the line holding addr. It reports whether a line was
// dropped.
func (c *Cache) Invalidate(addr uint32) bool {
	block := c.directory.Lookup(0, c.lineAddr(addr))
	if block == nil || !block.IsValid {
		return false
	}
	block.IsValid = false
	c.stats.Invalidations++
	return true
}

// Contains reports whether the line holding addr is buffered.
func (c *Cache) Contains(addr uint32) bool {
	block := c.directory.Lookup(0, c.lineAddr(addr))
	return block != nil && block.IsValid
}

// Reset invalidates every line and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// extractData reads a little-endian value of the given size.
func extractData(data []byte, offset uint32, size int) uint32 {
	if int(offset)+size > len(data) {
		return 0
	}

	var result uint32
	for i := 0; i < size; i++ {
		result |= uint32(data[int(offset)+i]) << (i * 8)
	}
	return result
}
