// Validate the decoder - checks that every identity's canonical encoding
// decodes back to it, then measures decode throughput and allocations.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/arm7sim/insts"
)

func main() {
	decoder := insts.NewDecoder()

	failures := 0
	for _, spec := range insts.All() {
		if spec == insts.SpecUndefined {
			continue
		}
		word := insts.Synthesize(spec)
		if got := decoder.Decode(word); got != spec {
			fmt.Printf("MISMATCH: %-12s %08X decodes as %s\n", spec, word, got)
			failures++
		}
	}
	for t := insts.ThumbSpec(1); t < insts.NumThumbSpecs; t++ {
		half := insts.SynthesizeThumb(t)
		if got := decoder.DecodeThumb(half); got != t {
			fmt.Printf("MISMATCH: %-12s %04X decodes as %s\n", t, half, got)
			failures++
		}
	}

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("ARM identities:   %d\n", insts.NumSpecs)
	fmt.Printf("Thumb identities: %d\n", insts.NumThumbSpecs)
	fmt.Printf("Mismatches:       %d\n", failures)

	words := []uint32{
		0xE2800001, // add r0, r0, #1
		0xE0910312, // adds r0, r1, r2, lsl r3
		0xE5912004, // ldr r2, [r1, #4]
		0x1AFFFFFC, // bne
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(words[i%len(words)])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, w := range words {
			decoder.Decode(w)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("\nTotal decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	if failures > 0 {
		os.Exit(1)
	}
}
