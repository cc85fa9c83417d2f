package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/emu"
	"github.com/rv32axi/sim/insts"
)

func newCPU() *emu.CPU {
	mem := emu.NewMemory()
	cpu := emu.NewCPU(mem)
	cpu.Init(0x80000000)
	return cpu
}

func setInst(cpu *emu.CPU, word uint32) {
	cpu.InstWord = word
	cpu.Instruction = cpu.Decoder.Decode(word)
}

var _ = Describe("CPU.Exec", func() {
	It("executes ADDI and advances the PC by 4", func() {
		cpu := newCPU()
		setInst(cpu, 0x00A00093) // ADDI x1, x0, 10
		cpu.Exec(0)
		Expect(cpu.Regs.ReadReg(1)).To(Equal(uint32(10)))
		Expect(cpu.Regs.PC).To(Equal(uint32(0x80000004)))
	})

	It("takes a branch and redirects the PC", func() {
		cpu := newCPU()
		cpu.Regs.WriteReg(1, 5)
		cpu.Regs.WriteReg(2, 5)
		word := uint32(0x63) | (1 << 15) | (2 << 20) | (8 << 8) // BEQ x1, x2, +16 (imm[4:1] in bits 11:8)
		setInst(cpu, word)
		cpu.Exec(0)
		Expect(cpu.Flags.IsBr).To(BeTrue())
		Expect(cpu.Flags.BrTaken).To(BeTrue())
	})

	It("loads a word already resident in physical memory", func() {
		cpu := newCPU()
		Expect(cpu.Memory.WriteWord(0x1000, 0x12345678)).To(Succeed())
		word := uint32(0x03) | (1 << 7) | (2 << 12) | (2 << 15) // LW x1, 0(x2)
		setInst(cpu, word)
		cpu.Exec(0x1000)
		Expect(cpu.Regs.ReadReg(1)).To(Equal(uint32(0x12345678)))
	})

	It("sets the simulation-end flag on EBREAK", func() {
		cpu := newCPU()
		setInst(cpu, insts.INSTEbreak)
		cpu.Exec(0)
		Expect(cpu.Flags.SimEnd).To(BeTrue())
	})

	It("traps to machine mode on ECALL from machine mode", func() {
		cpu := newCPU()
		pc := cpu.Regs.PC
		setInst(cpu, 0x00000073) // ECALL
		cpu.Exec(0)
		Expect(cpu.Regs.CSR[emu.CSRMcause]).To(Equal(uint32(emu.CauseECallFromM)))
		Expect(cpu.Regs.CSR[emu.CSRMepc]).To(Equal(pc))
	})

	It("raises an illegal-instruction trap on an unrecognized opcode", func() {
		cpu := newCPU()
		setInst(cpu, 0x0000007F)
		cpu.Exec(0)
		Expect(cpu.Regs.CSR[emu.CSRMcause]).To(Equal(uint32(emu.CauseIllegalInstruction)))
	})

	It("performs an AMOADD.W read-modify-write and latches the store", func() {
		cpu := newCPU()
		Expect(cpu.Memory.WriteWord(0x2000, 5)).To(Succeed())
		cpu.Regs.WriteReg(2, 7)
		word := uint32(0x0000202F) | (1 << 15) | (2 << 20) // AMOADD.W x?, (x1), x2
		setInst(cpu, word)
		cpu.Exec(0x2000)
		Expect(cpu.Regs.ReadReg(0)).To(Equal(uint32(0))) // rd=0 in this encoding, discarded
		Expect(cpu.Flags.Store).To(BeTrue())
		Expect(cpu.Flags.StoreData).To(Equal(uint32(12)))
	})

	It("traps on a translation-faulted load without committing rd", func() {
		cpu := newCPU()
		cpu.Regs.WriteReg(1, 0xDEADBEEF)
		Expect(cpu.Memory.WriteWord(0x3000, 0x12345678)).To(Succeed())
		word := uint32(0x03) | (1 << 7) | (2 << 12) | (2 << 15) // LW x1, 0(x2)
		setInst(cpu, word)
		pc := cpu.Regs.PC

		cpu.Flags.PageFaultLoad = true
		cpu.Exec(0x3000)

		Expect(cpu.Regs.ReadReg(1)).To(Equal(uint32(0xDEADBEEF)))
		Expect(cpu.Regs.CSR[emu.CSRMepc]).To(Equal(pc))
		Expect(cpu.Regs.CSR[emu.CSRMcause]).To(Equal(uint32(emu.CauseLoadPageFault)))
	})

	It("traps on a translation-faulted AMO without performing the read-modify-write", func() {
		cpu := newCPU()
		Expect(cpu.Memory.WriteWord(0x4000, 5)).To(Succeed())
		cpu.Regs.WriteReg(2, 7)
		word := uint32(0x0000202F) | (1 << 15) | (2 << 20) // AMOADD.W x0, (x1), x2
		setInst(cpu, word)

		cpu.Flags.PageFaultLoad = true
		cpu.Exec(0x4000)

		Expect(cpu.Flags.Store).To(BeFalse())
		v, err := cpu.Memory.ReadWord(0x4000)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(5)))
		Expect(cpu.Regs.CSR[emu.CSRMcause]).To(Equal(uint32(emu.CauseLoadPageFault)))
	})

	It("clears IllegalException at the start of the next Exec call", func() {
		cpu := newCPU()
		setInst(cpu, 0x0000007F) // illegal
		cpu.Exec(0)
		Expect(cpu.Flags.IllegalException).To(BeTrue())

		setInst(cpu, 0x00A00093) // ADDI, legal
		cpu.Exec(0)
		Expect(cpu.Flags.IllegalException).To(BeFalse())
	})
})
