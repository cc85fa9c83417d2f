package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/insts"
)

var _ = Describe("Decoder", func() {
	var d *insts.Decoder

	BeforeEach(func() {
		d = insts.NewDecoder()
	})

	It("decodes ADDI x1, x0, 10", func() {
		inst := d.Decode(0x00A00093)
		Expect(inst.Op).To(Equal(insts.OpADDI))
		Expect(inst.Rd).To(Equal(uint8(1)))
		Expect(inst.Rs1).To(Equal(uint8(0)))
		Expect(inst.Imm).To(Equal(int32(10)))
	})

	It("decodes a negative I-immediate", func() {
		// ADDI x1, x0, -1
		inst := d.Decode(0xFFF00093)
		Expect(inst.Op).To(Equal(insts.OpADDI))
		Expect(inst.Imm).To(Equal(int32(-1)))
	})

	It("decodes LUI with the upper 20 bits", func() {
		inst := d.Decode(0x12345037 | 0x1) // opcode 0x37, rd=0
		Expect(inst.Op).To(Equal(insts.OpLUI))
		Expect(inst.Imm).To(Equal(int32(0x12345000)))
	})

	It("decodes JAL with a signed jump offset", func() {
		// JAL x1, -4  => imm[20:2] all ones, imm[1] clear
		inst := d.Decode(0xFFDFF0EF)
		Expect(inst.Op).To(Equal(insts.OpJAL))
		Expect(inst.Rd).To(Equal(uint8(1)))
		Expect(inst.Imm).To(Equal(int32(-4)))
	})

	It("decodes SW with an S-type immediate", func() {
		// SW x2, 4(x1): imm=4, rs2=2, rs1=1
		word := uint32(0x23) | (4<<7) | (0x2<<12) | (1<<15) | (2<<20) | (0<<25)
		inst := d.Decode(word)
		Expect(inst.Op).To(Equal(insts.OpSW))
		Expect(inst.Imm).To(Equal(int32(4)))
		Expect(inst.Rs1).To(Equal(uint8(1)))
		Expect(inst.Rs2).To(Equal(uint8(2)))
	})

	It("decodes BEQ with a B-type immediate", func() {
		word := uint32(0x63) | (1 << 15) | (2 << 20)
		inst := d.Decode(word)
		Expect(inst.Op).To(Equal(insts.OpBEQ))
	})

	It("decodes ADD vs SUB by funct7", func() {
		add := d.Decode(0x00000033 | (1 << 15) | (2 << 20))
		sub := d.Decode(0x40000033 | (1 << 15) | (2 << 20))
		Expect(add.Op).To(Equal(insts.OpADD))
		Expect(sub.Op).To(Equal(insts.OpSUB))
	})

	It("decodes the M-extension MUL/DIV/REM family", func() {
		mul := d.Decode(0x02000033 | (1 << 15) | (2 << 20))
		divu := d.Decode(0x02005033 | (1 << 15) | (2 << 20))
		Expect(mul.Op).To(Equal(insts.OpMUL))
		Expect(divu.Op).To(Equal(insts.OpDIVU))
	})

	It("decodes LR.W and SC.W from the AMO opcode", func() {
		lrw := d.Decode(0x1000202F | (1 << 15))
		scw := d.Decode(0x1800202F | (1 << 15) | (2 << 20))
		Expect(lrw.Op).To(Equal(insts.OpLRW))
		Expect(scw.Op).To(Equal(insts.OpSCW))
	})

	It("decodes AMOSWAP.W and carries acquire/release bits", func() {
		word := uint32(0x0800202F) | (3 << 25) | (1 << 15) | (2 << 20)
		inst := d.Decode(word)
		Expect(inst.Op).To(Equal(insts.OpAMOSWAPW))
		Expect(inst.AqRl).To(Equal(uint8(3)))
	})

	It("decodes CSRRW and extracts the CSR address", func() {
		// CSRRW x1, 0x340(mscratch), x2
		word := uint32(0x73) | (1 << 7) | (1 << 12) | (2 << 15) | (0x340 << 20)
		inst := d.Decode(word)
		Expect(inst.Op).To(Equal(insts.OpCSRRW))
		Expect(inst.CSR).To(Equal(uint16(0x340)))
	})

	It("decodes ECALL and EBREAK as distinct system instructions", func() {
		ecall := d.Decode(0x00000073)
		ebreak := d.Decode(insts.INSTEbreak)
		Expect(ecall.Op).To(Equal(insts.OpECALL))
		Expect(ebreak.Op).To(Equal(insts.OpEBREAK))
	})

	It("decodes SFENCE.VMA as its own opcode", func() {
		inst := d.Decode(insts.INSTFenceVMA)
		Expect(inst.Op).To(Equal(insts.OpSFENCEVMA))
	})

	It("decodes FADD.S and FCVT.W.S from the Zfinx opcode", func() {
		fadd := d.Decode(0x00000053 | (1 << 15) | (2 << 20))
		fcvt := d.Decode(0xC0000053 | (1 << 15))
		Expect(fadd.Op).To(Equal(insts.OpFADDS))
		Expect(fcvt.Op).To(Equal(insts.OpFCVTWS))
	})

	It("leaves an unrecognized opcode as OpUnknown", func() {
		inst := d.Decode(0x0000007F)
		Expect(inst.Op).To(Equal(insts.OpUnknown))
	})
})
