// Package core provides a thin, stats-tracking wrapper around the
// pipeline state machine, mirroring how the teacher repo's Core wraps
// its Pipeline: ownership of the machine plus a small Stats/Run
// convenience surface over its raw Step.
package core

import (
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/pipeline"
)

// Stats summarizes a run in the same shape the teacher's
// timing/pipeline.Statistics does: cycles and retired instructions,
// from which CPI follows directly.
type Stats struct {
	Cycles       uint64
	Instructions uint64
}

// CPI returns cycles per retired instruction, 0 if no instructions
// retired yet.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core drives a pipeline.Machine against an AXI4 slave, one step per
// Tick, exposing run-to-completion and stats the way the teacher's
// Core exposes Run/RunCycles/Stats over its Pipeline.
type Core struct {
	Machine *pipeline.Machine
	Slave   Slave
}

// Slave is anything that can answer one AXI4 cycle given this cycle's
// master outputs; timing/ddr.Slave satisfies it, and so does any
// embedder-supplied DDR model.
type Slave interface {
	Step(out axi.Out) axi.In
}

// NewCore builds a Core around a fresh pipeline.Machine driving the
// given slave.
func NewCore(slave Slave) *Core {
	return &Core{Machine: pipeline.New(), Slave: slave}
}

// SetPC resets the machine to begin fetching at pc.
func (c *Core) SetPC(pc uint32) {
	c.Machine.Init(pc)
}

// Tick drives exactly one bus clock tick: it feeds the slave's
// response to last cycle's request (Run passes a zeroed axi.Out on
// the very first tick) and returns this cycle's status.
func (c *Core) Tick(lastOut axi.Out) (axi.Out, pipeline.Status) {
	in := c.Slave.Step(lastOut)
	return c.Machine.Step(in)
}

// Halted reports whether the machine has reached its terminal stage.
func (c *Core) Halted() bool {
	return c.Machine.Stage == pipeline.Halted
}

// Run drives the core until Halted, returning the retirement-success
// exit code: +1 on success, -1 on failure.
func (c *Core) Run() int {
	var out axi.Out
	for !c.Halted() {
		var status pipeline.Status
		out, status = c.Tick(out)
		if status.Halted {
			if status.Success {
				return 1
			}
			return -1
		}
	}
	return 1
}

// Stats reports the cycles/instructions counted so far.
func (c *Core) Stats() Stats {
	return Stats{
		Cycles:       c.Machine.SimTime,
		Instructions: c.Machine.InstCount,
	}
}
