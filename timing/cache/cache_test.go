package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		memory  *emu.Memory
		backing *cache.BusBacking
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		backing = cache.NewBusBacking(memory)
		// Two sets of two 16-byte lines.
		config := cache.Config{
			Lines:         4,
			Associativity: 2,
			LineBytes:     16,
			HitLatency:    0,
			MissLatency:   3,
		}
		c = cache.New(config, backing)
	})

	Describe("Read operations", func() {
		It("should miss on a cold buffer", func() {
			memory.Write32(0x1000, 0xDEADBEEF)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(3)))
			Expect(result.Data).To(Equal(uint32(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on buffered data", func() {
			memory.Write32(0x1000, 0xCAFEBABE)

			c.Read(0x1000, 4)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(BeZero())
			Expect(result.Data).To(Equal(uint32(0xCAFEBABE)))
		})

		It("should hit on other words of the same line", func() {
			memory.Write32(0x1000, 0x11111111)
			memory.Write32(0x100C, 0x22223344)

			c.Read(0x1000, 4)

			result := c.Read(0x100C, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint32(0x22223344)))
			Expect(c.Read(0x100E, 2).Data).To(Equal(uint32(0x2222)))
			Expect(c.Read(0x100C, 1).Data).To(Equal(uint32(0x44)))
		})

		It("should miss on the next line", func() {
			c.Read(0x1000, 4)
			Expect(c.Read(0x1010, 4).Hit).To(BeFalse())
		})
	})

	Describe("Eviction", func() {
		It("should evict the least recently used line of a set", func() {
			// Lines 0x000, 0x020 and 0x040 share set 0.
			c.Read(0x000, 4)
			c.Read(0x020, 4)
			c.Read(0x000, 4)
			c.Read(0x040, 4)

			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
			Expect(c.Contains(0x000)).To(BeTrue())
			Expect(c.Contains(0x020)).To(BeFalse())
			Expect(c.Contains(0x040)).To(BeTrue())
		})
	})

	Describe("Invalidation", func() {
		It("should drop a buffered line", func() {
			memory.Write32(0x1000, 1)
			c.Read(0x1000, 4)
			memory.Write32(0x1000, 2)

			Expect(c.Invalidate(0x1004)).To(BeTrue())
			Expect(c.Invalidate(0x1004)).To(BeFalse())

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Data).To(Equal(uint32(2)))
			Expect(c.Stats().Invalidations).To(Equal(uint64(1)))
		})

		It("should clear everything on Reset", func() {
			c.Read(0x1000, 4)
			c.Reset()
			Expect(c.Contains(0x1000)).To(BeFalse())
			Expect(c.Stats()).To(Equal(cache.Statistics{}))
		})
	})
})
