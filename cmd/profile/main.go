// Package main provides a profiling wrapper for arm7sim to find hot spots
// in the step loop.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/loader"
	"github.com/sarchlab/arm7sim/timing/core"
)

var (
	timing      = getopt.BoolLong("timing", 't', "Run through the cycle-counting core")
	cpuProfile  = getopt.StringLong("cpuprofile", 0, "", "write cpu profile to file", "file")
	memProfile  = getopt.StringLong("memprofile", 0, "", "write memory profile to file", "file")
	duration    = getopt.DurationLong("duration", 0, 30*time.Second, "max duration to run")
	instruction = getopt.Uint64Long("max-instr", 'm', 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	getopt.SetParameters("program.elf")
	getopt.Parse()

	if getopt.NArgs() < 1 {
		getopt.Usage()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := getopt.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)

	start := time.Now()

	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	var exitCode int64
	var instrCount uint64

	if *timing {
		exitCode, instrCount, err = runTimingProfile(prog)
	} else {
		exitCode, instrCount = runEmulationProfile(prog)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Exit code: %d\n", exitCode)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

func cpuOptions() []emu.CPUOption {
	return []emu.CPUOption{
		emu.WithSWIHandler(emu.NewDefaultSWIHandler(os.Stdout, io.Discard)),
		emu.WithMaxInstructions(*instruction),
	}
}

// runEmulationProfile runs the program on the functional emulator.
func runEmulationProfile(prog *loader.Program) (int64, uint64) {
	memory := emu.NewMemory()
	prog.LoadInto(memory)

	cpu := emu.NewCPU(append(cpuOptions(), emu.WithBus(memory))...)
	prog.Start(cpu)

	exitCode := cpu.Run()
	return exitCode, cpu.InstructionCount()
}

// runTimingProfile runs the program through the cycle-counting core.
func runTimingProfile(prog *loader.Program) (int64, uint64, error) {
	memory := emu.NewMemory()
	prog.LoadInto(memory)

	c, err := core.NewCore(memory, nil, cpuOptions()...)
	if err != nil {
		return 0, 0, err
	}
	prog.Start(c.CPU)

	exitCode := c.Run()
	return exitCode, c.Stats().Instructions, nil
}
