// Package main provides the entry point for rv32sim.
// rv32sim is a cycle-stepped RISC-V RV32IMA/Zfinx simulator coupled to
// an AXI4 memory interconnect.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32IMA/Zfinx AXI4 cycle simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32sim -image <path> [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -max_inst    Maximum retired instructions before halting")
	fmt.Println("  -max_cycles  Maximum bus cycles before halting")
	fmt.Println("  -ddr_config  Path to a JSON file overriding the reference DDR slave's latency")
	fmt.Println("  -verbose     Print per-step status")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: you provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
