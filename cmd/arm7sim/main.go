// Package main provides the arm7sim command: an ARM7TDMI simulator with
// an optional cycle report and an interactive monitor.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	getopt "github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
)

var errHelp = errors.New("help requested")

type options struct {
	elfPath        string
	binPath        string
	base           uint32
	configPath     string
	maxInstr       uint64
	timing         bool
	interactive    bool
	verbose        bool
	trace          bool
	undefException bool
}

// parseOptions parses args, args[0] being the program name.
func parseOptions(args []string, usage io.Writer) (*options, error) {
	set := getopt.New()
	set.SetProgram("arm7sim")

	elfPath := set.StringLong("elf", 'e', "", "ELF executable to run", "file")
	binPath := set.StringLong("bin", 'b', "", "raw binary image to run", "file")
	base := set.StringLong("base", 0, "0", "load and entry address of a raw image", "addr")
	configPath := set.StringLong("config", 'c', "", "timing configuration JSON file", "file")
	maxInstr := set.Uint64Long("max", 'm', 0, "stop after this many instructions (0 = no limit)", "n")
	timing := set.BoolLong("timing", 't', "print a cycle report")
	interactive := set.BoolLong("interactive", 'i', "start the interactive monitor")
	verbose := set.BoolLong("verbose", 'v', "debug logging")
	trace := set.BoolLong("trace", 0, "log every instruction")
	undef := set.BoolLong("undef-exception", 0, "take the undefined instruction exception instead of stopping")
	help := set.BoolLong("help", 'h', "show this help")

	if err := set.Getopt(args, nil); err != nil {
		set.PrintUsage(usage)
		return nil, err
	}
	if *help {
		set.PrintUsage(usage)
		return nil, errHelp
	}

	o := &options{
		elfPath:        *elfPath,
		binPath:        *binPath,
		configPath:     *configPath,
		maxInstr:       *maxInstr,
		timing:         *timing,
		interactive:    *interactive,
		verbose:        *verbose,
		trace:          *trace,
		undefException: *undef,
	}

	if (o.elfPath == "") == (o.binPath == "") {
		set.PrintUsage(usage)
		return nil, fmt.Errorf("exactly one of --elf and --bin is required")
	}

	b, err := strconv.ParseUint(*base, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid base address %q: %w", *base, err)
	}
	o.base = uint32(b)

	return o, nil
}

func newLogger(o *options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch {
	case o.trace:
		l.SetLevel(logrus.TraceLevel)
	case o.verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

func main() {
	o, err := parseOptions(os.Args, os.Stderr)
	if err == errHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log := newLogger(o)

	m, err := newMachine(o, log, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.WithError(err).Error("failed to start")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"entry":    fmt.Sprintf("0x%08X", m.prog.EntryPoint),
		"segments": len(m.prog.Segments),
		"thumb":    m.prog.Thumb,
	}).Debug("program loaded")

	if o.interactive {
		if err := newMonitor(m, os.Stdout).loop(); err != nil {
			log.WithError(err).Error("monitor stopped")
			os.Exit(1)
		}
		return
	}

	exitCode := m.run()
	if o.timing {
		m.report(os.Stdout)
	}
	os.Exit(int(exitCode))
}
