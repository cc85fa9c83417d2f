package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/emu"
)

var _ = Describe("CPU.VA2PA", func() {
	It("passes virtual addresses through untranslated when satp.MODE is bare", func() {
		cpu := newCPU()
		paddr, ok := cpu.VA2PA(0x80001234, emu.AccessFetch)
		Expect(ok).To(BeTrue())
		Expect(paddr).To(Equal(uint32(0x80001234)))
	})

	It("walks a two-level Sv32 page table to a leaf at level 0", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS

		rootPPN := uint32(0x1000)
		leafPPN := uint32(0x2000)
		vaddr := uint32(0x00401000) // vpn[1]=1, vpn[0]=1, offset=0

		words := map[uint32]uint32{}
		rootPTE := (rootPPN << 10) | (1 << 10) // placeholder, overwritten below
		_ = rootPTE

		// Level-1 PTE at rootPPN*4096 + vpn[1]*4, pointing to leafPPN, non-leaf (no R/W/X).
		l1Addr := rootPPN<<12 + 1*4
		words[l1Addr] = (leafPPN << 10) | 0x1 // V=1, R/W/X=0 => pointer

		// Level-0 PTE at leafPPN*4096 + vpn[0]*4, a valid leaf: V,R,W,X,A,D set.
		l0Addr := leafPPN<<12 + 1*4
		words[l0Addr] = (uint32(0x3000) << 10) | 0xCF // V|R|W|X|A|D

		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return words[paddr], emu.HookOK
		}
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | rootPPN

		paddr, ok := cpu.VA2PA(vaddr, emu.AccessLoad)
		Expect(ok).To(BeTrue())
		Expect(paddr).To(Equal(uint32(0x3000<<12) | (vaddr & 0xFFF)))
	})

	It("reports TranslationPending without mutating other flags when the hook is pending", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | 0x1000
		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return 0, emu.HookPending
		}
		_, ok := cpu.VA2PA(0x00401000, emu.AccessLoad)
		Expect(ok).To(BeFalse())
		Expect(cpu.Flags.TranslationPending).To(BeTrue())
		Expect(cpu.Flags.PageFaultLoad).To(BeFalse())
	})

	It("raises a load page fault on an invalid PTE", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | 0x1000
		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return 0, emu.HookOK // V=0 everywhere
		}
		_, ok := cpu.VA2PA(0x00401000, emu.AccessLoad)
		Expect(ok).To(BeFalse())
		Expect(cpu.Flags.PageFaultLoad).To(BeTrue())
	})

	It("clears a stale page-fault flag on the next translation", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | 0x1000
		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return 0, emu.HookOK
		}
		_, _ = cpu.VA2PA(0x00401000, emu.AccessLoad)
		Expect(cpu.Flags.PageFaultLoad).To(BeTrue())

		cpu.Regs.CSR[emu.CSRSatp] = 0 // switch to bare mode
		_, ok := cpu.VA2PA(0x00401000, emu.AccessLoad)
		Expect(ok).To(BeTrue())
		Expect(cpu.Flags.PageFaultLoad).To(BeFalse())
	})

	It("resolves a level-1 megapage leaf using PTE.PPN[1] above bit 21", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS
		rootPPN := uint32(0x1000)
		vaddr := uint32(0x00401000) // vpn[1]=1, offset within megapage = 0x1000

		words := map[uint32]uint32{}
		l1Addr := rootPPN<<12 + 1*4
		megaPPN := uint32(0x3) << 10 // PPN[1]=3, PPN[0]=0: a valid megapage alignment
		words[l1Addr] = (megaPPN << 10) | 0xCF // V|R|W|X|A|D leaf at level 1

		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return words[paddr], emu.HookOK
		}
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | rootPPN

		paddr, ok := cpu.VA2PA(vaddr, emu.AccessLoad)
		Expect(ok).To(BeTrue())
		Expect(paddr).To(Equal(uint32(3<<22) | (vaddr & 0x3FFFFF)))
	})

	It("traps on a stale access bit instead of silently setting it", func() {
		cpu := newCPU()
		cpu.Regs.Priv = emu.PrivilegeS
		rootPPN := uint32(0x1000)
		vaddr := uint32(0x00401000)
		words := map[uint32]uint32{}
		l1Addr := rootPPN<<12 + 1*4
		leafPPN := uint32(0x3000)
		words[l1Addr] = (leafPPN << 10) | 0xF // V|R|W|X leaf at level 1, no A bit
		cpu.ReadHook = func(paddr uint32) (uint32, emu.HookResult) {
			return words[paddr], emu.HookOK
		}
		cpu.Regs.CSR[emu.CSRSatp] = (1 << 31) | rootPPN

		_, ok := cpu.VA2PA(vaddr, emu.AccessLoad)
		Expect(ok).To(BeFalse())
		Expect(cpu.Flags.PageFaultLoad).To(BeTrue())
	})
})
