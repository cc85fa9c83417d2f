// Package ddr provides a reference synchronous AXI4 slave so the
// simulator and its test suite can run end to end without an embedder-
// supplied DDR controller. The core only ever talks to this through the
// axi.In/axi.Out signal structs, never through a concrete DDR type, so
// this package is demo/test plumbing rather than a timing-accurate DDR
// model.
package ddr

import (
	"github.com/rv32axi/sim/timing/axi"
)

// Slave is a minimal synchronous AXI4 slave: configurable per-channel
// latency, no request reordering, one in-flight transaction per
// channel direction.
type Slave struct {
	cfg Config
	mem map[uint32]uint32

	arPending   bool
	arAddr      uint32
	arID        uint8
	arCountdown uint64

	rActive bool
	rID     uint8
	rData   uint32

	awPending   bool
	awID        uint8
	awCountdown uint64

	wPending bool
	wData    uint32
	wStrb    uint8
	wAddr    uint32

	bPending   bool
	bID        uint8
	bCountdown uint64
}

// NewSlave creates a reference DDR slave with the given latency
// profile.
func NewSlave(cfg Config) *Slave {
	return &Slave{cfg: cfg, mem: make(map[uint32]uint32)}
}

// LoadWord seeds the slave's backing store, used by tests and the CLI
// to preload an image directly into the reference DDR.
func (s *Slave) LoadWord(addr uint32, data uint32) {
	s.mem[addr>>2] = data
}

func (s *Slave) ReadWord(addr uint32) uint32 {
	return s.mem[addr>>2]
}

// Step samples the master's current-cycle outputs and returns the
// slave's outputs for this same cycle, advancing all in-flight
// latency countdowns by one.
func (s *Slave) Step(out axi.Out) axi.In {
	var in axi.In

	// Accept a new AR only when not already servicing one.
	in.ARReady = !s.arPending
	if out.ARValid && in.ARReady {
		s.arPending = true
		s.arAddr = out.ARAddr
		s.arID = out.ARID
		s.arCountdown = s.cfg.ARLatency
	}

	if s.arPending {
		if s.arCountdown > 0 {
			s.arCountdown--
		}
		if s.arCountdown == 0 && !s.rActive {
			s.rActive = true
			s.rID = s.arID
			s.rData = s.mem[s.arAddr>>2]
			s.arPending = false
		}
	}

	if s.rActive {
		in.RValid = true
		in.RID = s.rID
		in.RData = s.rData
		in.RResp = axi.RespOKAY
		in.RLast = true
		if out.RReady {
			s.rActive = false
		}
	}

	in.AWReady = !s.awPending
	if out.AWValid && in.AWReady {
		s.awPending = true
		s.awID = out.AWID
		s.awCountdown = s.cfg.AWLatency
		s.recordAWAddr(out.AWAddr)
	}
	if s.awPending {
		if s.awCountdown > 0 {
			s.awCountdown--
		}
	}

	in.WReady = s.awPending && s.awCountdown == 0
	if out.WValid && in.WReady {
		s.wPending = true
		s.wData = out.WData
		s.wStrb = out.WStrb
		s.awPending = false
	}

	if s.wPending {
		s.applyWrite()
		s.wPending = false
		s.bPending = true
		s.bID = s.awID
		s.bCountdown = s.cfg.BLatency
	}

	if s.bPending {
		if s.bCountdown > 0 {
			s.bCountdown--
		}
		if s.bCountdown == 0 {
			in.BValid = true
			in.BID = s.bID
			in.BResp = axi.RespOKAY
			if out.BReady {
				s.bPending = false
			}
		}
	}

	return in
}

func (s *Slave) applyWrite() {
	idx := s.wAddr >> 2
	old := s.mem[idx]
	var result uint32
	for lane := uint(0); lane < 4; lane++ {
		shift := lane * 8
		mask := uint32(0xFF) << shift
		if s.wStrb&(1<<lane) != 0 {
			result |= s.wData & mask
		} else {
			result |= old & mask
		}
	}
	s.mem[idx] = result
}

// recordAWAddr keeps the write address for Step's W handling: the AXI4
// write address and write data channels are independent, so the slave
// must remember the AW address until the W beat arrives. The core always
// issues AW and W together (single-beat writes), so callers drive both
// signals in the same Out value passed to Step; this records the
// address at AW-accept time so applyWrite can use it at W-accept time.
func (s *Slave) recordAWAddr(addr uint32) {
	s.wAddr = addr
}
