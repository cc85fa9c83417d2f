package simulator_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/simulator"
	"github.com/rv32axi/sim/timing/axi"
	"github.com/rv32axi/sim/timing/ddr"
)

func writeImage(words ...uint32) string {
	dir := GinkgoT().TempDir()
	path := filepath.Join(dir, "image.bin")
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	Expect(os.WriteFile(path, buf, 0o644)).To(Succeed())
	return path
}

func runToHalt(sim *simulator.Simulator) (simulator.Status, int) {
	slave := ddr.NewSlave(ddr.DefaultConfig())
	sim.SeedSlave(slave)
	var out axi.Out
	var status simulator.Status
	code := 0
	for i := 0; i < 10_000; i++ {
		in := slave.Step(out)
		out, status, code = sim.Step(in)
		if code != 0 {
			return status, code
		}
	}
	return status, code
}

var _ = Describe("Simulator", func() {
	It("loads an image and reports its size", func() {
		sim := simulator.New()
		path := writeImage(0x00100073) // EBREAK
		size, err := sim.LoadImage(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(size).To(Equal(4))
	})

	It("runs the boot stub into the loaded image and halts on EBREAK", func() {
		sim := simulator.New()
		path := writeImage(0x00100073) // EBREAK as the guest's first instruction
		_, err := sim.LoadImage(path)
		Expect(err).NotTo(HaveOccurred())
		sim.SetLimits(1000, 1_000_000)

		status, code := runToHalt(sim)
		Expect(code).To(Equal(1))
		Expect(status.Halted).To(BeTrue())
		Expect(status.Success).To(BeTrue())
		// Four boot-stub instructions plus the guest's own EBREAK.
		Expect(status.InstCount).To(Equal(uint64(5)))
	})

	It("reports the max-instruction limit as a successful halt", func() {
		sim := simulator.New()
		// An infinite loop: JAL x0, 0.
		path := writeImage(0x0000006F)
		_, err := sim.LoadImage(path)
		Expect(err).NotTo(HaveOccurred())
		sim.SetLimits(10, 1_000_000)

		status, code := runToHalt(sim)
		Expect(code).To(Equal(1))
		Expect(status.Halted).To(BeTrue())
		Expect(status.Success).To(BeTrue())
		Expect(sim.LastError()).NotTo(HaveOccurred())
	})

	It("GetStatus does not advance the machine", func() {
		sim := simulator.New()
		path := writeImage(0x00100073)
		_, err := sim.LoadImage(path)
		Expect(err).NotTo(HaveOccurred())

		before := sim.GetStatus()
		after := sim.GetStatus()
		Expect(after.SimTime).To(Equal(before.SimTime))
		Expect(after.InstCount).To(Equal(before.InstCount))
	})
})
