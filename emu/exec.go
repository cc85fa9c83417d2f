package emu

import "github.com/rv32axi/sim/insts"

var (
	alu   ALU
	fpu   FPU
	bru   BranchUnit
)

// Exec executes the decoded instruction currently held in
// cpu.Instruction/cpu.InstWord. paddr is the physical address already
// computed and translated by the Prepare stage for load/store/AMO
// instructions; it is ignored otherwise. Any load word or AMO operand
// word is assumed already resident in physical memory at paddr.
func (cpu *CPU) Exec(paddr uint32) {
	cpu.clearPerInstructionFlags()
	pc := cpu.Regs.PC

	// A translation fault from the Prepare stage's VA2PA call must trap
	// before dispatch: the physical address handed to us is otherwise
	// stale (Prepare never advances pendingPaddr on a failed translation),
	// and running the opcode body against it would commit a bogus rd or
	// read/write the wrong word before the trap is ever taken.
	if cpu.Flags.PageFaultInst {
		cpu.Exception(CauseInstPageFault, pc)
		return
	}
	if cpu.Flags.PageFaultLoad {
		cpu.Exception(CauseLoadPageFault, pc)
		return
	}
	if cpu.Flags.PageFaultStore {
		cpu.Exception(CauseStorePageFault, pc)
		return
	}

	inst := cpu.Instruction
	lsu := LoadStoreUnit{Memory: cpu.Memory}
	nextPC := pc + 4

	switch inst.Op {
	case insts.OpLUI:
		cpu.Regs.WriteReg(inst.Rd, uint32(inst.Imm))
	case insts.OpAUIPC:
		cpu.Regs.WriteReg(inst.Rd, pc+uint32(inst.Imm))

	case insts.OpJAL:
		cpu.Regs.WriteReg(inst.Rd, nextPC)
		nextPC = pc + uint32(inst.Imm)
		cpu.Flags.IsBr = true
		cpu.Flags.BrTaken = true

	case insts.OpJALR:
		target := (cpu.Regs.ReadReg(inst.Rs1) + uint32(inst.Imm)) &^ 1
		cpu.Regs.WriteReg(inst.Rd, nextPC)
		nextPC = target
		cpu.Flags.IsBr = true
		cpu.Flags.BrTaken = true

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		cpu.Flags.IsBr = true
		a, b := cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)
		if bru.Taken(inst.Op, a, b) {
			cpu.Flags.BrTaken = true
			nextPC = pc + uint32(inst.Imm)
		}

	case insts.OpLB, insts.OpLBU, insts.OpLH, insts.OpLHU, insts.OpLW:
		cpu.execLoad(lsu, inst, paddr)

	case insts.OpSB, insts.OpSH, insts.OpSW:
		// The store already landed in physical memory through the AXI
		// write beat the state machine drove during Prepare/WaitData;
		// there is nothing left for Exec to do.

	case insts.OpADDI:
		cpu.Regs.WriteReg(inst.Rd, alu.Add(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpSLTI:
		cpu.Regs.WriteReg(inst.Rd, alu.Slt(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpSLTIU:
		cpu.Regs.WriteReg(inst.Rd, alu.Sltu(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpXORI:
		cpu.Regs.WriteReg(inst.Rd, alu.Xor(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpORI:
		cpu.Regs.WriteReg(inst.Rd, alu.Or(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpANDI:
		cpu.Regs.WriteReg(inst.Rd, alu.And(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpSLLI:
		cpu.Regs.WriteReg(inst.Rd, alu.Sll(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpSRLI:
		cpu.Regs.WriteReg(inst.Rd, alu.Srl(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.OpSRAI:
		cpu.Regs.WriteReg(inst.Rd, alu.Sra(cpu.Regs.ReadReg(inst.Rs1), uint32(inst.Imm)))

	case insts.OpADD:
		cpu.Regs.WriteReg(inst.Rd, alu.Add(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSUB:
		cpu.Regs.WriteReg(inst.Rd, alu.Sub(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSLL:
		cpu.Regs.WriteReg(inst.Rd, alu.Sll(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSLT:
		cpu.Regs.WriteReg(inst.Rd, alu.Slt(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSLTU:
		cpu.Regs.WriteReg(inst.Rd, alu.Sltu(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpXOR:
		cpu.Regs.WriteReg(inst.Rd, alu.Xor(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSRL:
		cpu.Regs.WriteReg(inst.Rd, alu.Srl(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpSRA:
		cpu.Regs.WriteReg(inst.Rd, alu.Sra(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpOR:
		cpu.Regs.WriteReg(inst.Rd, alu.Or(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpAND:
		cpu.Regs.WriteReg(inst.Rd, alu.And(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))

	case insts.OpMUL:
		cpu.Regs.WriteReg(inst.Rd, alu.Mul(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpMULH:
		cpu.Regs.WriteReg(inst.Rd, alu.Mulh(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpMULHSU:
		cpu.Regs.WriteReg(inst.Rd, alu.Mulhsu(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpMULHU:
		cpu.Regs.WriteReg(inst.Rd, alu.Mulhu(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpDIV:
		cpu.Regs.WriteReg(inst.Rd, alu.Div(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpDIVU:
		cpu.Regs.WriteReg(inst.Rd, alu.Divu(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpREM:
		cpu.Regs.WriteReg(inst.Rd, alu.Rem(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpREMU:
		cpu.Regs.WriteReg(inst.Rd, alu.Remu(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))

	case insts.OpLRW:
		v, err := lsu.LW(paddr)
		if err != nil {
			cpu.Flags.IllegalException = true
			break
		}
		cpu.Regs.WriteReg(inst.Rd, v)
	case insts.OpSCW:
		// Single-hart core: SC always succeeds since no other master
		// can have broken the reservation.
		addr, data, strb := StoreLane(paddr, cpu.Regs.ReadReg(inst.Rs2), 2)
		cpu.Flags.Store = true
		cpu.Flags.StoreAddr, cpu.Flags.StoreData, cpu.Flags.StoreStrb = addr, data, strb
		cpu.Regs.WriteReg(inst.Rd, 0)
	case insts.OpAMOSWAPW, insts.OpAMOADDW, insts.OpAMOXORW, insts.OpAMOANDW,
		insts.OpAMOORW, insts.OpAMOMINW, insts.OpAMOMAXW, insts.OpAMOMINUW, insts.OpAMOMAXUW:
		cpu.execAMO(inst, paddr)

	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC, insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		cpu.execCSR(inst)

	case insts.OpSFENCEVMA:
		cpu.SFenceVMA()

	case insts.OpFENCE:
		// no-op: this core has no caches to order.

	case insts.OpECALL:
		cpu.ECall()
		return

	case insts.OpEBREAK:
		cpu.Flags.SimEnd = true

	case insts.OpFADDS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Add(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFSUBS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Sub(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFMULS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Mul(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFDIVS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Div(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFSQRTS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Sqrt(cpu.Regs.ReadReg(inst.Rs1)))
	case insts.OpFMINS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Min(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFMAXS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Max(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFEQS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Eq(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFLTS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Lt(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFLES:
		cpu.Regs.WriteReg(inst.Rd, fpu.Le(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFSGNJS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Sgnj(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFSGNJNS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Sgnjn(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFSGNJXS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Sgnjx(cpu.Regs.ReadReg(inst.Rs1), cpu.Regs.ReadReg(inst.Rs2)))
	case insts.OpFCVTWS:
		cpu.Regs.WriteReg(inst.Rd, fpu.CvtWS(cpu.Regs.ReadReg(inst.Rs1)))
	case insts.OpFCVTWUS:
		cpu.Regs.WriteReg(inst.Rd, fpu.CvtWUS(cpu.Regs.ReadReg(inst.Rs1)))
	case insts.OpFCVTSW:
		cpu.Regs.WriteReg(inst.Rd, fpu.CvtSW(cpu.Regs.ReadReg(inst.Rs1)))
	case insts.OpFCVTSWU:
		cpu.Regs.WriteReg(inst.Rd, fpu.CvtSWU(cpu.Regs.ReadReg(inst.Rs1)))
	case insts.OpFCLASSS:
		cpu.Regs.WriteReg(inst.Rd, fpu.Class(cpu.Regs.ReadReg(inst.Rs1)))

	default:
		cpu.Flags.IllegalException = true
	}

	if cpu.Flags.IllegalException {
		cpu.Exception(CauseIllegalInstruction, cpu.InstWord)
		return
	}

	cpu.Regs.PC = nextPC
}

func (cpu *CPU) execLoad(lsu LoadStoreUnit, inst *insts.Instruction, paddr uint32) {
	var v uint32
	var err error
	switch inst.Op {
	case insts.OpLB:
		v, err = lsu.LB(paddr)
	case insts.OpLBU:
		v, err = lsu.LBU(paddr)
	case insts.OpLH:
		v, err = lsu.LH(paddr)
	case insts.OpLHU:
		v, err = lsu.LHU(paddr)
	case insts.OpLW:
		v, err = lsu.LW(paddr)
	}
	if err != nil {
		cpu.Flags.PageFaultLoad = true
		return
	}
	cpu.Regs.WriteReg(inst.Rd, v)
}

// execAMO performs the RMW on the word already fetched into memory at
// paddr, writes rd with the old value, and latches the new value for the
// state machine's write-back.
func (cpu *CPU) execAMO(inst *insts.Instruction, paddr uint32) {
	old, err := cpu.Memory.ReadWord(paddr &^ 3)
	if err != nil {
		cpu.Flags.PageFaultLoad = true
		return
	}
	rs2 := cpu.Regs.ReadReg(inst.Rs2)

	var result uint32
	switch inst.Op {
	case insts.OpAMOSWAPW:
		result = rs2
	case insts.OpAMOADDW:
		result = alu.Add(old, rs2)
	case insts.OpAMOXORW:
		result = alu.Xor(old, rs2)
	case insts.OpAMOANDW:
		result = alu.And(old, rs2)
	case insts.OpAMOORW:
		result = alu.Or(old, rs2)
	case insts.OpAMOMINW:
		if int32(old) < int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case insts.OpAMOMAXW:
		if int32(old) > int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case insts.OpAMOMINUW:
		if old < rs2 {
			result = old
		} else {
			result = rs2
		}
	case insts.OpAMOMAXUW:
		if old > rs2 {
			result = old
		} else {
			result = rs2
		}
	}

	cpu.Regs.WriteReg(inst.Rd, old)
	cpu.Flags.Store = true
	cpu.Flags.StoreAddr = paddr &^ 3
	cpu.Flags.StoreData = result
	cpu.Flags.StoreStrb = 0xF
}

func (cpu *CPU) execCSR(inst *insts.Instruction) {
	cpu.Flags.IsCSR = true
	old, ok := cpu.readCSR(inst.CSR)
	if !ok {
		cpu.Flags.IllegalException = true
		return
	}

	var rs1val uint32
	switch inst.Op {
	case insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		rs1val = uint32(inst.Rs1)
	default:
		rs1val = cpu.Regs.ReadReg(inst.Rs1)
	}

	var newVal uint32
	switch inst.Op {
	case insts.OpCSRRW, insts.OpCSRRWI:
		newVal = rs1val
	case insts.OpCSRRS, insts.OpCSRRSI:
		newVal = old | rs1val
	case insts.OpCSRRC, insts.OpCSRRCI:
		newVal = old &^ rs1val
	}

	writesCSR := true
	switch inst.Op {
	case insts.OpCSRRS, insts.OpCSRRC, insts.OpCSRRSI, insts.OpCSRRCI:
		writesCSR = rs1val != 0
	}

	if writesCSR && !cpu.writeCSR(inst.CSR, newVal) {
		cpu.Flags.IllegalException = true
		return
	}

	cpu.Regs.WriteReg(inst.Rd, old)
}
