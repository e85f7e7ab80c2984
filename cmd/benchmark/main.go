// Command benchmark runs the ARM7TDMI timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--csv            Output results in CSV format (default: human-readable)
//	--json           Output results as a JSON report
//	-c file          Timing configuration JSON file
//	--fetch-buffer   Fetch buffer mode: disabled, opcode or full
//	--core           Run only the loop, matrix and branch benchmarks
//
// Example:
//
//	# Compare zero-wait-state memory against the default
//	go run ./cmd/benchmark -c fast.json --csv > results.csv
package main

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/sarchlab/arm7sim/benchmarks"
	"github.com/sarchlab/arm7sim/timing/cache"
	"github.com/sarchlab/arm7sim/timing/latency"
)

func main() {
	csvOutput := getopt.BoolLong("csv", 0, "Output results in CSV format")
	jsonOutput := getopt.BoolLong("json", 0, "Output results as JSON")
	configPath := getopt.StringLong("config", 'c', "", "Timing configuration JSON file", "file")
	fetchMode := getopt.StringLong("fetch-buffer", 0, "", "Fetch buffer mode (disabled, opcode, full)", "mode")
	coreOnly := getopt.BoolLong("core", 0, "Run only the core benchmarks")
	verbose := getopt.BoolLong("verbose", 'v', "Verbose output")
	help := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *help {
		getopt.Usage()
		os.Exit(0)
	}

	timing := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		timing, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
	}
	if *fetchMode != "" {
		mode, err := cache.ParseMode(*fetchMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		timing.FetchBufferMode = mode.String()
	}

	config := benchmarks.DefaultConfig()
	config.Timing = timing
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("ARM7TDMI Timing Benchmark Harness")
		fmt.Println("=================================")
		fmt.Printf("Wait states (N/S): %d/%d\n", timing.NonSequentialWaitStates, timing.SequentialWaitStates)
		fmt.Printf("Fetch buffer: %s\n", timing.FetchBufferMode)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Benchmarks: %d\n", summary.TotalBenchmarks)
		fmt.Printf("Total cycles: %d\n", summary.TotalCycles)
		fmt.Printf("Average CPI: %.3f\n", summary.AverageCPI)
	}
}
