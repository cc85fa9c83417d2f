// Package simulator is the driver-facing facade: construct a
// simulator, load an image into it, set its limits, and step it
// against an externally supplied AXI4 slave. It owns no process-wide
// globals — every field lives on the Simulator value, so multiple
// instances never alias each other's state.
package simulator

import (
	"fmt"

	"github.com/rv32axi/sim/emu"
	"github.com/rv32axi/sim/loader"
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/ddr"
	"github.com/rv32axi/sim/timing/pipeline"
)

// Status mirrors pipeline.Status; re-exported here so callers never
// need to import timing/pipeline directly.
type Status = pipeline.Status

// Simulator is one simulator instance: a pipeline.Machine plus the
// bookkeeping (last error, load state) the driver API needs.
type Simulator struct {
	machine   *pipeline.Machine
	lastError error
	loaded    bool
	image     *loader.Image
}

// New constructs an idle simulator instance, the Go-native analogue of
// the driver API's create().
func New() *Simulator {
	return &Simulator{machine: pipeline.New()}
}

// LoadImage opens a raw binary, copies it to the image base, patches
// the boot stub and sentinel word, and resets the machine to begin
// fetching at physical address 0 (the boot stub).
func (s *Simulator) LoadImage(path string) (size int, err error) {
	img, err := loader.Load(path)
	if err != nil {
		s.lastError = err
		return 0, err
	}

	s.machine.Init(0)
	if err := s.machine.Memory.LoadImage(img.Base, img.Data); err != nil {
		s.lastError = fmt.Errorf("installing image: %w", err)
		return 0, s.lastError
	}
	s.machine.Memory.Reset()
	s.loaded = true
	s.image = img

	return img.Size(), nil
}

// SeedSlave copies the loaded image plus the boot stub and sentinel word
// into slave's backing store. The simulator itself only ever touches
// machine.Memory directly; real fetches/loads/stores go out over AXI to
// whatever slave Step is driven against, so that slave needs the same
// content machine.Memory was patched with, the way a real embedder's
// DDR would already hold it before the first Step. Call this once,
// after LoadImage, before stepping against slave.
func (s *Simulator) SeedSlave(slave *ddr.Slave) {
	for addr := uint32(0); addr < emu.BootROMLength; addr += 4 {
		word, _ := s.machine.Memory.ReadWord(addr)
		slave.LoadWord(addr, word)
	}
	slave.LoadWord(emu.SentinelAddr, emu.SentinelValue)

	if s.image == nil {
		return
	}
	for off := uint32(0); off < uint32(len(s.image.Data)); off += 4 {
		addr := s.image.Base + off
		word, _ := s.machine.Memory.ReadWord(addr)
		slave.LoadWord(addr, word)
	}
}

// SetLimits installs the max-instruction / max-cycle termination
// bounds consulted every Step.
func (s *Simulator) SetLimits(maxInst, maxCycles uint64) {
	s.machine.SetLimits(maxInst, maxCycles)
}

// Step advances the simulator by one bus clock tick, returning this
// cycle's master-side AXI signals plus a status record. Result
// convention matches the driver API: 0 while running, +1 once halted
// successfully, -1 once halted on failure.
func (s *Simulator) Step(axiIn axi.In) (axi.Out, Status, int) {
	out, status := s.machine.Step(axiIn)
	if !status.Halted {
		return out, status, 0
	}
	if status.Success {
		return out, status, 1
	}
	s.lastError = fmt.Errorf("simulation halted: %s", status.Reason)
	return out, status, -1
}

// GetStatus returns a snapshot of the current step's status without
// advancing the machine.
func (s *Simulator) GetStatus() Status {
	return s.machine.Status()
}

// LastError returns the most recent error recorded by LoadImage or
// Step, or nil if none occurred.
func (s *Simulator) LastError() error {
	return s.lastError
}

// Machine exposes the underlying pipeline.Machine for callers (tests,
// the CLI) that need direct register/memory access beyond the AXI-
// facing Step surface.
func (s *Simulator) Machine() *pipeline.Machine {
	return s.machine
}
