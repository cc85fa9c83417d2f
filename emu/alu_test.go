package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/emu"
)

var _ = Describe("ALU", func() {
	var alu emu.ALU

	It("adds and subtracts with wraparound", func() {
		Expect(alu.Add(0xFFFFFFFF, 1)).To(Equal(uint32(0)))
		Expect(alu.Sub(0, 1)).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("computes signed and unsigned comparisons", func() {
		Expect(alu.Slt(0xFFFFFFFF, 1)).To(Equal(uint32(1))) // -1 < 1
		Expect(alu.Sltu(0xFFFFFFFF, 1)).To(Equal(uint32(0)))
	})

	It("shifts arithmetic right with sign extension", func() {
		Expect(alu.Sra(0x80000000, 4)).To(Equal(uint32(0xF8000000)))
		Expect(alu.Srl(0x80000000, 4)).To(Equal(uint32(0x08000000)))
	})

	It("computes the high word of a signed multiply", func() {
		// -1 * -1 = 1, high word is 0
		Expect(alu.Mulh(0xFFFFFFFF, 0xFFFFFFFF)).To(Equal(uint32(0)))
	})

	It("computes the high word of an unsigned multiply", func() {
		Expect(alu.Mulhu(0xFFFFFFFF, 0xFFFFFFFF)).To(Equal(uint32(0xFFFFFFFE)))
	})

	It("returns all-ones for signed division by zero", func() {
		Expect(alu.Div(10, 0)).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("returns the dividend for signed remainder by zero", func() {
		Expect(alu.Rem(10, 0)).To(Equal(uint32(10)))
	})

	It("handles the signed division overflow case", func() {
		Expect(alu.Div(0x80000000, 0xFFFFFFFF)).To(Equal(uint32(0x80000000)))
		Expect(alu.Rem(0x80000000, 0xFFFFFFFF)).To(Equal(uint32(0)))
	})
})
