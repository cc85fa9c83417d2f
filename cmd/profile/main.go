// Command profile runs a raw RV32 guest image to completion while
// capturing CPU/heap profiles, mirroring the teacher's profiling
// wrapper but against the AXI4-driven simulator instead of the
// functional emulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rv32axi/sim/simulator"
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/ddr"
)

var (
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max wall-clock duration before giving up")
	maxInst     = flag.Uint64("max-instr", 1_000_000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <image>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

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

	sim := simulator.New()
	size, err := sim.LoadImage(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded: %s (%d bytes)\n", imagePath, size)

	maxInstLimit := *maxInst
	sim.SetLimits(maxInstLimit, 1_000_000_000)

	start := time.Now()

	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	exitCode, instrCount := run(sim)
	elapsed := time.Since(start)

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

func run(sim *simulator.Simulator) (exitCode int, instrCount uint64) {
	slave := ddr.NewSlave(ddr.DefaultConfig())
	sim.SeedSlave(slave)
	var out axi.Out
	for {
		in := slave.Step(out)
		var status simulator.Status
		var code int
		out, status, code = sim.Step(in)
		if code != 0 {
			return code, status.InstCount
		}
	}
}
