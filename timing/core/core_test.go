package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/timing/core"
	"github.com/rv32axi/sim/timing/ddr"
)

var _ = Describe("Core", func() {
	It("runs to completion and reports a successful exit code on EBREAK", func() {
		slave := ddr.NewSlave(ddr.DefaultConfig())
		slave.LoadWord(0x80000000, 0x00100073) // EBREAK
		c := core.NewCore(slave)
		c.SetPC(0)
		c.Machine.Memory.Reset()

		code := c.Run()
		Expect(code).To(Equal(1))
		Expect(c.Halted()).To(BeTrue())
	})

	It("tracks cycles and retired instructions through Stats", func() {
		slave := ddr.NewSlave(ddr.DefaultConfig())
		slave.LoadWord(0x80000000, 0x00100073)
		c := core.NewCore(slave)
		c.SetPC(0)
		c.Machine.Memory.Reset()
		c.Run()

		stats := c.Stats()
		Expect(stats.Instructions).To(Equal(uint64(5)))
		Expect(stats.Cycles).To(BeNumerically(">", 0))
		Expect(stats.CPI()).To(BeNumerically(">", 0))
	})

	It("reports a CPI of zero before any instruction retires", func() {
		stats := core.Stats{}
		Expect(stats.CPI()).To(Equal(0.0))
	})
})
