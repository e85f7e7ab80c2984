// Package benchmarks provides timing benchmark infrastructure for the
// ARM7TDMI core model.
package benchmarks

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// ProgramBase is where every benchmark program is loaded and started.
const ProgramBase = 0x1000

// StackTop is the initial stack pointer of every benchmark.
const StackTop = 0x10000

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing model
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// Bus cycle counts by type
	NonSequentialCycles uint64 `json:"n_cycles"`
	SequentialCycles    uint64 `json:"s_cycles"`
	InternalCycles      uint64 `json:"i_cycles"`

	// StallCycles is the number of fetch buffer fill cycles
	StallCycles uint64 `json:"stall_cycles"`

	// PipelineFlushes is the number of pipeline refills
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Branches is the number of executed B, BL and BX instructions
	Branches uint64 `json:"branches"`

	// MemoryOps is the number of executed loads, stores and swaps
	MemoryOps uint64 `json:"memory_ops"`

	// Fetch buffer hits and misses (if enabled)
	FetchHits   uint64 `json:"fetch_hits,omitempty"`
	FetchMisses uint64 `json:"fetch_misses,omitempty"`

	// ExitCode is the program's exit code
	ExitCode int64 `json:"exit_code"`

	// SimulatedTime is the cycle count at the configured clock
	SimulatedTime time.Duration `json:"simulated_time_ns"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares registers and memory before the run
	Setup func(cpu *emu.CPU, memory *emu.Memory)

	// Program is the ARM machine code to execute
	Program []byte

	// ExpectedExit is the expected exit code (for validation)
	ExpectedExit int64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the cycle model; nil selects the default
	Timing *latency.TimingConfig

	// MaxInstructions bounds every run, 0 means no limit
	MaxInstructions uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing:          latency.DefaultTimingConfig(),
		MaxInstructions: 1_000_000,
		Output:          os.Stdout,
		Verbose:         false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// NewBenchmarkCore loads bench into fresh memory and returns a core ready
// to run it.
func NewBenchmarkCore(bench Benchmark, config *latency.TimingConfig, opts ...emu.CPUOption) (*core.Core, error) {
	memory := emu.NewMemory()
	memory.LoadProgram(ProgramBase, bench.Program)

	opts = append(opts[:len(opts):len(opts)],
		emu.WithSWIHandler(emu.NewDefaultSWIHandler(io.Discard, io.Discard)))
	c, err := core.NewCore(memory, config, opts...)
	if err != nil {
		return nil, err
	}

	c.CPU.SetReg(emu.RegSP, StackTop)
	if bench.Setup != nil {
		bench.Setup(c.CPU, memory)
	}
	c.SetPC(ProgramBase)
	return c, nil
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	c, err := NewBenchmarkCore(bench, h.config.Timing,
		emu.WithMaxInstructions(h.config.MaxInstructions))
	if err != nil {
		return BenchmarkResult{}, err
	}

	// Run simulation and measure time
	start := time.Now()
	exitCode := c.Run()
	wallTime := time.Since(start)

	if err := c.Err(); err != nil {
		return BenchmarkResult{}, err
	}

	stats := c.Stats()
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		NonSequentialCycles: stats.Bus.N,
		SequentialCycles:    stats.Bus.S,
		InternalCycles:      stats.Bus.I,
		StallCycles:         stats.StallCycles,
		PipelineFlushes:     stats.Flushes,
		Branches:            stats.Branches,
		MemoryOps:           stats.MemoryOps,
		ExitCode:            exitCode,
		SimulatedTime:       c.Table().Duration(stats.Cycles),
		WallTime:            wallTime,
	}

	if fb := c.FetchBuffer(); fb != nil {
		fs := fb.Stats()
		result.FetchHits = fs.Hits
		result.FetchMisses = fs.Misses
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d cycles\n", bench.Name, stats.Cycles)
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== ARM7TDMI Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Exit Code: %d\n", r.ExitCode)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  N/S/I Cycles:         %d/%d/%d\n",
			r.NonSequentialCycles, r.SequentialCycles, r.InternalCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		_, _ = fmt.Fprintf(h.config.Output, "  Branches:             %d\n", r.Branches)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Ops:           %d\n", r.MemoryOps)

		if r.FetchHits > 0 || r.FetchMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Fetch Buffer ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.FetchHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.FetchMisses)
			_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles: %d\n", r.StallCycles)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Time: %v\n", r.SimulatedTime)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,n_cycles,s_cycles,i_cycles,stalls,flushes,branches,memory_ops,fetch_hits,fetch_misses,exit_code")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.NonSequentialCycles,
			r.SequentialCycles,
			r.InternalCycles,
			r.StallCycles,
			r.PipelineFlushes,
			r.Branches,
			r.MemoryOps,
			r.FetchHits,
			r.FetchMisses,
			r.ExitCode,
		)
	}
}

// BuildProgram assembles instruction words into a little-endian byte slice.
func BuildProgram(instrs ...uint32) []byte {
	program := make([]byte, 4*len(instrs))
	for i, inst := range instrs {
		binary.LittleEndian.PutUint32(program[4*i:], inst)
	}
	return program
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the cycle model used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		s.TotalCycles += r.SimulatedCycles
		s.TotalInstructions += r.InstructionsRetired
		s.TotalWallTime += r.WallTime
	}
	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}
	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.config.Timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
