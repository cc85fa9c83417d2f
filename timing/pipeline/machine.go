// Package pipeline implements the cycle-stepped execution state machine
// that drives the CPU core through fetch, translate, memory-access, and
// commit phases, one AXI4 bus clock tick per Step call. It owns all
// outstanding-request bookkeeping and is the only place that talks AXI4
// channel signals; the CPU core (package emu) never sees a bus signal,
// only physical memory and a three-valued page-walk read hook.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/rv32axi/sim/emu"
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/cache"
)

// ExecStage is the pipeline's current phase.
type ExecStage int

const (
	PrepareFetch ExecStage = iota
	WaitFetch
	PrepareData
	WaitData
	Execute
	WaitAmoWrite
	Halted
)

func (s ExecStage) String() string {
	switch s {
	case PrepareFetch:
		return "PrepareFetch"
	case WaitFetch:
		return "WaitFetch"
	case PrepareData:
		return "PrepareData"
	case WaitData:
		return "WaitData"
	case Execute:
		return "Execute"
	case WaitAmoWrite:
		return "WaitAmoWrite"
	case Halted:
		return "Halted"
	default:
		return "Unknown"
	}
}

// kStallCycles is the watchdog threshold: this many ticks without
// inst_count advancing triggers a one-shot diagnostic dump.
const kStallCycles = 2_000_000

// mmuHookState is the one-entry pipeline between the CPU's page-table
// walker and the state machine's MMU read master.
type mmuHookState struct {
	pending        bool
	responseValid  bool
	addr           uint32
	data           uint32
	fault          bool
}

// Status is the per-step outcome returned alongside axi.Out.
type Status struct {
	SimTime     uint64
	InstCount   uint64
	Halted      bool
	Success     bool
	WaitAXI     bool
	UARTValid   bool
	UARTChar    byte
	Reason      string
}

// DiagnosticsSink receives the stall-watchdog's one-shot dump; defaults
// to os.Stderr, matching the teacher's plain fmt.Fprintf diagnostics.
type DiagnosticsSink = io.Writer

// Machine is the top-level cycle-stepped driver: CPU core + AXI master
// request tracking + interconnect arbitration, advanced one tick per
// Step call.
type Machine struct {
	CPU         *emu.CPU
	Memory      *emu.Memory
	PTWCache    *cache.PTWCache
	Interconnect *axi.Interconnect

	Stage ExecStage

	reads [3]*axi.ReadReqState // indexed by axi.Master: ICACHE, DCACHE_R, MMU
	write *axi.WriteReqState

	mmuHook mmuHookState

	// per-instruction scratch computed in a Prepare stage and consumed
	// in Execute.
	pendingPaddr   uint32
	pendingIsLoad  bool
	pendingIsStore bool
	pendingIsAMO   bool

	SimTime   uint64
	InstCount uint64

	MaxInst   uint64
	MaxCycles uint64

	lastInstTime uint64
	diagDumped   bool

	Diagnostics DiagnosticsSink

	success bool
	reason  string
}

// New builds a Machine with fresh CPU/memory/cache state, ready for
// Init.
func New() *Machine {
	memory := emu.NewMemory()
	cpu := emu.NewCPU(memory)
	ptw := cache.New()
	cpu.SetPTWCache(ptw)

	m := &Machine{
		CPU:          cpu,
		Memory:       memory,
		PTWCache:     ptw,
		Interconnect: axi.NewInterconnect(),
		reads:        [3]*axi.ReadReqState{{}, {}, {}},
		write:        &axi.WriteReqState{},
		Diagnostics:  os.Stderr,
	}
	cpu.ReadHook = m.mmuReadHook
	return m
}

// Init resets the machine to its boot state: CPU at resetPC, machine
// mode, all AXI request slots idle, PrepareFetch stage.
func (m *Machine) Init(resetPC uint32) {
	m.CPU.Init(resetPC)
	m.Stage = PrepareFetch
	m.reads = [3]*axi.ReadReqState{{}, {}, {}}
	m.write = &axi.WriteReqState{}
	m.mmuHook = mmuHookState{}
	m.SimTime = 0
	m.InstCount = 0
	m.lastInstTime = 0
	m.diagDumped = false
	m.success = false
	m.reason = ""
}

// SetLimits installs the max-instruction and max-cycle termination
// bounds.
func (m *Machine) SetLimits(maxInst, maxCycles uint64) {
	m.MaxInst = maxInst
	m.MaxCycles = maxCycles
}

// mmuReadHook is the three-valued page-walk read callback the CPU core
// calls from VA2PA. On first call for a given address it arms the MMU
// read master and returns PENDING; subsequent calls return PENDING
// until the AXI transaction completes, then OK with the captured data.
func (m *Machine) mmuReadHook(paddr uint32) (uint32, emu.HookResult) {
	if m.mmuHook.pending {
		if m.mmuHook.addr != paddr {
			// A new walk address superseded an in-flight one (should not
			// happen given one-translation-at-a-time Prepare stages, but
			// re-arm defensively rather than return stale data).
			m.mmuHook = mmuHookState{pending: true, addr: paddr}
			m.reads[axi.MasterMMU].Start(axi.MasterMMU, 0, paddr, 3)
			return 0, emu.HookPending
		}
		if m.mmuHook.responseValid {
			data := m.mmuHook.data
			fault := m.mmuHook.fault
			m.mmuHook = mmuHookState{}
			if fault {
				return 0, emu.HookFault
			}
			return data, emu.HookOK
		}
		return 0, emu.HookPending
	}

	m.mmuHook = mmuHookState{pending: true, addr: paddr}
	m.reads[axi.MasterMMU].Start(axi.MasterMMU, 0, paddr, 3)
	return 0, emu.HookPending
}

// Step advances the machine by one bus clock tick: it latches axiIn,
// drives the current stage's and the MMU walker's master-side requests,
// mirrors read/write beat data into physical memory, advances the stage
// machine, increments SimTime, and returns this cycle's axi.Out plus a
// status record. Once Halted, further calls are idempotent.
func (m *Machine) Step(axiIn axi.In) (axi.Out, Status) {
	if m.Stage == Halted {
		return axi.Out{}, m.statusSnapshot()
	}

	out := m.Interconnect.CombOutputs(m.reads, m.write)
	readBeat, writeBeat, bDone, bFault := m.Interconnect.CombInputs(axiIn, m.reads, m.write)

	var uartValid bool
	var uartChar byte

	if readBeat != nil {
		if readBeat.Fault {
			m.failRead(readBeat.Master)
		} else {
			m.captureReadBeat(readBeat.Master, readBeat.Data)
		}
	}

	if writeBeat != nil {
		touched, err := m.Memory.WriteWordStrobed(writeBeat.Addr, writeBeat.Data, writeBeat.Strb)
		if err == nil {
			for _, addr := range touched {
				if addr == emu.UARTBase {
					uartValid = true
					uartChar = byte(writeBeat.Data >> ((addr & 3) * 8))
				}
			}
		}
	}
	_ = bDone
	if bFault {
		m.failWrite()
	}

	m.Interconnect.Seq()
	m.advanceStage()
	m.SimTime++
	m.checkWatchdog()
	m.checkLimits()

	status := m.statusSnapshot()
	status.UARTValid = uartValid
	status.UARTChar = uartChar
	return out, status
}

// Status returns a snapshot of the machine's current status without
// advancing it, for callers that want to poll between Step calls.
func (m *Machine) Status() Status {
	return m.statusSnapshot()
}

func (m *Machine) statusSnapshot() Status {
	waitAXI := false
	for _, r := range m.reads {
		if r.Active && !r.Complete() {
			waitAXI = true
		}
	}
	if m.write.Active && !m.write.Complete() {
		waitAXI = true
	}
	return Status{
		SimTime:   m.SimTime,
		InstCount: m.InstCount,
		Halted:    m.Stage == Halted,
		Success:   m.success,
		WaitAXI:   waitAXI,
		Reason:    m.reason,
	}
}

func (m *Machine) failRead(master axi.Master) {
	switch master {
	case axi.MasterICache:
		m.CPU.Flags.PageFaultInst = true
	case axi.MasterDCacheR:
		if m.pendingIsStore {
			m.CPU.Flags.PageFaultStore = true
		} else {
			m.CPU.Flags.PageFaultLoad = true
		}
	case axi.MasterMMU:
		m.mmuHook.responseValid = true
		m.mmuHook.fault = true
	}
}

// failWrite marks the in-flight store/AMO write as faulted; a plain
// store's pendingIsStore still routes through Execute, where Exec's
// flag check raises the exception. An AMO/SC.W write-back has already
// run Exec before the write was issued, so stageWaitAmoWrite raises it
// directly once the write completes.
func (m *Machine) failWrite() {
	m.CPU.Flags.PageFaultStore = true
}

func (m *Machine) captureReadBeat(master axi.Master, data uint32) {
	switch master {
	case axi.MasterICache:
		m.Memory.WriteWord(m.reads[axi.MasterICache].Addr, data)
	case axi.MasterDCacheR:
		m.Memory.WriteWord(m.reads[axi.MasterDCacheR].Addr&^3, data)
	case axi.MasterMMU:
		m.Memory.WriteWord(m.reads[axi.MasterMMU].Addr&^3, data)
		m.mmuHook.responseValid = true
		m.mmuHook.data = data
	}
}

func (m *Machine) checkLimits() {
	if m.Stage == Halted {
		return
	}
	if m.MaxInst > 0 && m.InstCount >= m.MaxInst {
		m.Stage = Halted
		m.success = true
		m.reason = "max_inst_reached"
		return
	}
	if m.MaxCycles > 0 && m.SimTime >= m.MaxCycles {
		m.Stage = Halted
		m.success = false
		m.reason = "max_cycles reached"
	}
}

func (m *Machine) checkWatchdog() {
	if m.diagDumped {
		return
	}
	if m.SimTime-m.lastInstTime < kStallCycles {
		return
	}
	m.diagDumped = true
	fmt.Fprintf(m.Diagnostics,
		"stall watchdog: stage=%v sim_time=%d inst_count=%d mmu_pending=%v mmu_addr=0x%08x ar=[icache:%+v dcache_r:%+v mmu:%+v]\n",
		m.Stage, m.SimTime, m.InstCount, m.mmuHook.pending, m.mmuHook.addr,
		m.reads[axi.MasterICache], m.reads[axi.MasterDCacheR], m.reads[axi.MasterMMU])
}

// decode decodes the instruction word currently loaded for this
// cycle's fetch, populating CPU.Instruction/InstWord.
func (m *Machine) decode(word uint32) {
	m.CPU.InstWord = word
	m.CPU.Instruction = m.CPU.Decoder.Decode(word)
}
