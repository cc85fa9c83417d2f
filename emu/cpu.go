// Package emu implements the functional RV32IMA + Zfinx + Zicsr CPU
// core: register/CSR state, Sv32 translation, decode/execute, and the
// privileged trap/interrupt machinery. The core is functionally
// single-cycle: Exec assumes the fetched instruction word and any
// load-source data are already resident in physical memory, and leaves
// actual bus transfers to the caller (the timing/pipeline state
// machine).
package emu

import "github.com/rv32axi/sim/insts"

// AccessKind distinguishes the three kinds of memory access a virtual
// address translation can be requested for.
type AccessKind uint8

const (
	AccessFetch AccessKind = 0
	AccessLoad  AccessKind = 1
	AccessStore AccessKind = 2
)

// HookResult is the three-valued outcome of a page-walk word read
// request. PENDING must never be collapsed into a boolean: it is what
// lets an arbitrarily deep page walk interleave with the one-request-
// per-master AXI invariant, re-entering the same translation next cycle.
type HookResult int

const (
	HookOK HookResult = iota
	HookPending
	HookFault
)

// ReadHook is supplied by the owning state machine; it lets the page
// walker ask "give me the word at this physical address" without the
// CPU core knowing anything about AXI.
type ReadHook func(paddr uint32) (uint32, HookResult)

// Flags mirrors the per-cycle flag bundle from the data model: some are
// set by Exec and consumed by the state machine (IsBr/BrTaken/IsCSR/
// IsException/SimEnd/store latch), others are set by VA2PA and consumed
// by Exec (the page-fault flags, TranslationPending).
type Flags struct {
	Asy bool

	PageFaultInst  bool
	PageFaultLoad  bool
	PageFaultStore bool
	IllegalException bool
	TranslationPending bool

	PendingMSI, PendingMTI, PendingMEI bool
	PendingSSI, PendingSTI, PendingSEI bool

	IsBr     bool
	BrTaken  bool
	IsCSR    bool
	IsException bool
	SimEnd   bool

	Store      bool
	StoreAddr  uint32
	StoreData  uint32
	StoreStrb  uint8
}

// CPU is the RV32 functional core.
type CPU struct {
	Regs    *RegFile
	Memory  *Memory
	Decoder *insts.Decoder

	Instruction *insts.Instruction
	InstWord    uint32

	Flags Flags

	// ReadHook lets VA2PA request PTE words through the state machine's
	// AXI MMU master; PTWCache intercepts hits before reaching it.
	ReadHook ReadHook

	// ptwCache is consulted by the page walker before issuing a read
	// through ReadHook, and flushed on satp write / SFENCE.VMA.
	ptwCache PTWCache
}

// PTWCache is the interface timing/cache.PTWCache satisfies; kept here
// as a narrow interface so emu does not import the timing packages.
type PTWCache interface {
	Lookup(paddr uint32) (uint32, bool)
	Fill(paddr uint32, data uint32)
	FlushAll()
}

// NewCPU constructs a CPU with fresh register and memory state. The
// caller wires ReadHook and a PTWCache implementation before the first
// Exec.
func NewCPU(memory *Memory) *CPU {
	return &CPU{
		Regs:        NewRegFile(),
		Memory:      memory,
		Decoder:     insts.NewDecoder(),
		Instruction: &insts.Instruction{},
	}
}

// SetPTWCache installs the page-walk cache implementation.
func (cpu *CPU) SetPTWCache(cache PTWCache) {
	cpu.ptwCache = cache
}

func (cpu *CPU) ptwCacheFlush() {
	if cpu.ptwCache != nil {
		cpu.ptwCache.FlushAll()
	}
}

// Init resets the CPU to machine mode at resetPC with all flags clear.
func (cpu *CPU) Init(resetPC uint32) {
	cpu.Regs = NewRegFile()
	cpu.Regs.PC = resetPC
	cpu.Flags = Flags{}
}

// clearPerInstructionFlags resets the flags Exec is responsible for
// setting fresh each instruction, leaving TranslationPending and the
// page-fault flags (set by VA2PA during Prepare stages, before Exec
// runs) untouched.
func (cpu *CPU) clearPerInstructionFlags() {
	cpu.Flags.IsBr = false
	cpu.Flags.BrTaken = false
	cpu.Flags.IsCSR = false
	cpu.Flags.IsException = false
	cpu.Flags.Store = false
	cpu.Flags.IllegalException = false
}
