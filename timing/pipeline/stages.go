package pipeline

import (
	"github.com/rv32axi/sim/emu"
	"github.com/rv32axi/sim/insts"
	"github.com/rv32axi/sim/timing/axi"
)

// advanceStage runs the single stage transition due this cycle, given
// the request/beat bookkeeping advanceStage's caller (Step) already
// applied for this tick.
func (m *Machine) advanceStage() {
	switch m.Stage {
	case PrepareFetch:
		m.stagePrepareFetch()
	case WaitFetch:
		m.stageWaitFetch()
	case PrepareData:
		m.stagePrepareData()
	case WaitData:
		m.stageWaitData()
	case Execute:
		m.stageExecute()
	case WaitAmoWrite:
		m.stageWaitAmoWrite()
	}
}

func (m *Machine) stagePrepareFetch() {
	paddr, ok := m.CPU.VA2PA(m.CPU.Regs.PC, emu.AccessFetch)
	if m.CPU.Flags.TranslationPending {
		return // re-enter PrepareFetch next cycle
	}
	if !ok {
		m.decode(0)
		m.Stage = Execute
		return
	}
	// The boot stub is an on-chip boot ROM, not AXI-attached DRAM: serve
	// it straight from the local memory mirror instead of round-tripping
	// through the interconnect to whatever the embedder's DDR slave
	// holds at address 0.
	if paddr < emu.BootROMLength {
		word, _ := m.Memory.ReadWord(paddr)
		m.decode(word)
		m.Stage = PrepareData
		return
	}
	m.reads[axi.MasterICache].Start(axi.MasterICache, 0, paddr, 3)
	m.Stage = WaitFetch
}

func (m *Machine) stageWaitFetch() {
	r := m.reads[axi.MasterICache]
	if !r.Complete() {
		return
	}
	word, _ := m.Memory.ReadWord(r.Addr)
	m.decode(word)
	r.Clear()
	m.Stage = PrepareData
}

func (m *Machine) stagePrepareData() {
	inst := m.CPU.Instruction

	switch inst.Op {
	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW:
		m.preparesLoad(inst, false)
	case insts.OpSB, insts.OpSH, insts.OpSW:
		m.preparesStore(inst)
	case insts.OpLRW, insts.OpAMOSWAPW, insts.OpAMOADDW, insts.OpAMOXORW, insts.OpAMOANDW,
		insts.OpAMOORW, insts.OpAMOMINW, insts.OpAMOMAXW, insts.OpAMOMINUW, insts.OpAMOMAXUW:
		m.preparesLoad(inst, true)
	case insts.OpSCW:
		// SC.W always succeeds on this single-hart core: no memory read
		// is needed, only the translated address for the write-back that
		// Execute issues.
		paddr, ok := m.CPU.VA2PA(m.effectiveAddr(inst), emu.AccessStore)
		if m.CPU.Flags.TranslationPending {
			return
		}
		if ok {
			m.pendingPaddr = paddr
		}
		m.pendingIsStore = false
		m.pendingIsLoad = false
		m.pendingIsAMO = false
		m.Stage = Execute
	default:
		m.pendingIsLoad, m.pendingIsStore, m.pendingIsAMO = false, false, false
		m.Stage = Execute
	}
}

func (m *Machine) effectiveAddr(inst *insts.Instruction) uint32 {
	return m.CPU.Regs.ReadReg(inst.Rs1) + uint32(inst.Imm)
}

func (m *Machine) preparesLoad(inst *insts.Instruction, isAMO bool) {
	vaddr := m.effectiveAddr(inst)
	paddr, ok := m.CPU.VA2PA(vaddr, emu.AccessLoad)
	if m.CPU.Flags.TranslationPending {
		return
	}
	if !ok {
		m.Stage = Execute
		return
	}

	size := loadSize(inst.Op, isAMO)
	m.pendingPaddr = paddr
	m.pendingIsLoad = !isAMO
	m.pendingIsAMO = isAMO
	m.pendingIsStore = false

	m.reads[axi.MasterDCacheR].Start(axi.MasterDCacheR, 1, paddr&^3, size)
	m.Stage = WaitData
}

func loadSize(op insts.Op, isAMO bool) uint8 {
	if isAMO {
		return 3
	}
	switch op {
	case insts.OpLB, insts.OpLBU:
		return 0
	case insts.OpLH, insts.OpLHU:
		return 1
	default:
		return 3
	}
}

func (m *Machine) preparesStore(inst *insts.Instruction) {
	vaddr := m.effectiveAddr(inst)
	paddr, ok := m.CPU.VA2PA(vaddr, emu.AccessStore)
	if m.CPU.Flags.TranslationPending {
		return
	}
	if !ok {
		m.Stage = Execute
		return
	}

	var size uint8
	switch inst.Op {
	case insts.OpSB:
		size = 0
	case insts.OpSH:
		size = 1
	default:
		size = 2
	}
	addr, data, strb := emu.StoreLane(paddr, m.CPU.Regs.ReadReg(inst.Rs2), size)

	m.pendingPaddr = paddr
	m.pendingIsStore = true
	m.pendingIsLoad = false
	m.pendingIsAMO = false

	m.write.Start(axi.MasterDCacheW, 1, addr, 3, data, strb)
	m.Stage = WaitData
}

func (m *Machine) stageWaitData() {
	if m.pendingIsStore {
		if !m.write.Complete() {
			return
		}
		m.write.Clear()
		m.Stage = Execute
		return
	}

	r := m.reads[axi.MasterDCacheR]
	if !r.Complete() {
		return
	}
	r.Clear()
	m.Stage = Execute
}

func (m *Machine) stageExecute() {
	m.CPU.Exec(m.pendingPaddr)

	if !m.CPU.Flags.TranslationPending {
		m.InstCount++
		m.lastInstTime = m.SimTime
	}

	if m.CPU.Flags.IsException {
		m.pendingIsLoad, m.pendingIsStore, m.pendingIsAMO = false, false, false
		m.Stage = PrepareFetch
		return
	}

	if m.CPU.InstWord == insts.INSTEbreak {
		m.Stage = Halted
		m.success = true
		m.reason = "ebreak"
		return
	}

	if m.pendingIsAMO && m.CPU.Flags.Store {
		m.write.Start(axi.MasterDCacheW, 1, m.CPU.Flags.StoreAddr, 3, m.CPU.Flags.StoreData, m.CPU.Flags.StoreStrb)
		m.Stage = WaitAmoWrite
		return
	}

	if m.CPU.Instruction.Op == insts.OpSCW && m.CPU.Flags.Store {
		m.write.Start(axi.MasterDCacheW, 1, m.CPU.Flags.StoreAddr, 3, m.CPU.Flags.StoreData, m.CPU.Flags.StoreStrb)
		m.Stage = WaitAmoWrite
		return
	}

	m.pendingIsLoad, m.pendingIsStore, m.pendingIsAMO = false, false, false
	m.Stage = PrepareFetch
}

func (m *Machine) stageWaitAmoWrite() {
	if !m.write.Complete() {
		return
	}
	m.write.Clear()
	m.pendingIsAMO = false
	// Exec already ran for this AMO/SC.W before the write was issued, so
	// a bus fault on the write-back has to raise the trap here directly
	// rather than through Exec's flag check.
	if m.CPU.Flags.PageFaultStore {
		m.CPU.Exception(emu.CauseStorePageFault, m.CPU.Regs.PC)
	}
	m.Stage = PrepareFetch
}
