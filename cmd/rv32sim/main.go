// Command rv32sim runs a raw RV32 guest image against the reference
// DDR slave and reports the resulting exit status.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rv32axi/sim/simulator"
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/ddr"
)

func main() {
	var (
		imagePath  = flag.String("image", "", "path to the raw RV32 guest image")
		maxInst    = flag.Uint64("max_inst", 10_000_000, "maximum retired instructions before halting")
		maxCycles  = flag.Uint64("max_cycles", 1_000_000_000, "maximum bus cycles before halting")
		verbose    = flag.Bool("verbose", false, "print per-step status")
		ddrConfig  = flag.String("ddr_config", "", "optional JSON file overriding the reference DDR slave's latency")
	)
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "rv32sim: -image is required")
		os.Exit(2)
	}

	cfg := ddr.DefaultConfig()
	if *ddrConfig != "" {
		loaded, err := ddr.LoadConfig(*ddrConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	sim := simulator.New()
	size, err := sim.LoadImage(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("loaded %d bytes from %s\n", size, *imagePath)
	}

	sim.SetLimits(*maxInst, *maxCycles)
	slave := ddr.NewSlave(cfg)
	sim.SeedSlave(slave)

	var out axi.Out
	for {
		in := slave.Step(out)
		var status simulator.Status
		var code int
		out, status, code = sim.Step(in)

		if *verbose {
			fmt.Printf("t=%d inst=%d stage halted=%v\n", status.SimTime, status.InstCount, status.Halted)
		}
		if status.UARTValid {
			fmt.Printf("%c", status.UARTChar)
		}

		if code != 0 {
			if code < 0 {
				fmt.Fprintf(os.Stderr, "rv32sim: %v\n", sim.LastError())
				os.Exit(1)
			}
			fmt.Printf("\nhalted: inst_count=%d sim_time=%d\n", status.InstCount, status.SimTime)
			return
		}
	}
}
