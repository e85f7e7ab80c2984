// Package main provides the entry point for arm7sim.
// arm7sim is an ARM7TDMI (ARMv4T) instruction set simulator with a
// bus-cycle timing model.
//
// For the full CLI, use: go run ./cmd/arm7sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("arm7sim - ARM7TDMI Simulator")
	fmt.Println("")
	fmt.Println("Usage: arm7sim [-e elf | -b bin --base addr] [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, --config file     Timing configuration JSON file")
	fmt.Println("  -m, --max n           Stop after n instructions")
	fmt.Println("  -t, --timing          Print a cycle report")
	fmt.Println("  -i, --interactive     Start the interactive monitor")
	fmt.Println("  -v, --verbose         Debug logging")
	fmt.Println("      --trace           Log every instruction")
	fmt.Println("      --undef-exception Take the undefined instruction exception")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/arm7sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/arm7sim' instead.")
	}
}
