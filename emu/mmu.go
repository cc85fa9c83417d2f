package emu

// Sv32 PTE field masks.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7
)

const pteShiftPPN = 10

// VA2PA translates a virtual address for the given access kind. When
// satp.MODE selects Sv32 and the effective privilege is not M (accounting
// for mstatus.MPRV on non-fetch accesses), it walks the two-level Sv32
// page table. On a page-walk word that is not yet available, it sets
// Flags.TranslationPending and returns with ok=false and no other state
// mutated; the caller (a Prepare stage) must re-invoke VA2PA on the next
// cycle with the CPU otherwise untouched.
func (cpu *CPU) VA2PA(vaddr uint32, kind AccessKind) (paddr uint32, ok bool) {
	cpu.Flags.TranslationPending = false
	cpu.Flags.PageFaultInst = false
	cpu.Flags.PageFaultLoad = false
	cpu.Flags.PageFaultStore = false

	satp := cpu.Regs.CSR[CSRSatp]
	mode := satp >> 31

	effectivePriv := cpu.Regs.Priv
	mstatus := cpu.Regs.CSR[CSRMstatus]
	if kind != AccessFetch && mstatus&mstatusMPRV != 0 {
		effectivePriv = Privilege((mstatus & mstatusMPP) >> 11)
	}

	if mode == 0 || effectivePriv == PrivilegeM {
		return vaddr, true
	}

	vpn := [2]uint32{(vaddr >> 12) & 0x3FF, (vaddr >> 22) & 0x3FF}
	a := (satp & 0x3FFFFF) << 12

	for level := 1; level >= 0; level-- {
		pteAddr := a + vpn[level]*4

		pte, res := cpu.readPTW(pteAddr)
		switch res {
		case HookPending:
			cpu.Flags.TranslationPending = true
			return 0, false
		case HookFault:
			cpu.pageFault(kind, vaddr)
			return 0, false
		}

		if pte&pteV == 0 || (pte&pteR == 0 && pte&pteW != 0) {
			cpu.pageFault(kind, vaddr)
			return 0, false
		}

		isLeaf := pte&(pteR|pteX) != 0
		if !isLeaf {
			a = ((pte >> pteShiftPPN) << 12)
			continue
		}

		if !cpu.checkPermissions(pte, kind, effectivePriv, mstatus) {
			cpu.pageFault(kind, vaddr)
			return 0, false
		}

		if level == 1 && (pte>>pteShiftPPN)&0x3FF != 0 {
			cpu.pageFault(kind, vaddr)
			return 0, false
		}

		// Svade: hardware never sets A/D; a stale entry traps instead
		// of being silently fixed up.
		if pte&pteA == 0 || (kind == AccessStore && pte&pteD == 0) {
			cpu.pageFault(kind, vaddr)
			return 0, false
		}

		ppn := pte >> pteShiftPPN
		if level == 1 {
			paddr = (ppn>>10)<<22 | (vaddr & 0x3FFFFF)
		} else {
			paddr = (ppn<<12 | (vaddr & 0xFFF))
		}
		return paddr, true
	}

	cpu.pageFault(kind, vaddr)
	return 0, false
}

// checkPermissions enforces U/S access rules plus SUM (S access to U
// pages) and MXR (make-executable-readable for loads).
func (cpu *CPU) checkPermissions(pte uint32, kind AccessKind, priv Privilege, mstatus uint32) bool {
	u := pte&pteU != 0

	if priv == PrivilegeU && !u {
		return false
	}
	if priv == PrivilegeS && u && mstatus&mstatusSUM == 0 {
		return false
	}

	switch kind {
	case AccessFetch:
		return pte&pteX != 0
	case AccessStore:
		return pte&pteW != 0
	default: // AccessLoad
		if pte&pteR != 0 {
			return true
		}
		return mstatus&mstatusMXR != 0 && pte&pteX != 0
	}
}

func (cpu *CPU) pageFault(kind AccessKind, vaddr uint32) {
	switch kind {
	case AccessFetch:
		cpu.Flags.PageFaultInst = true
	case AccessLoad:
		cpu.Flags.PageFaultLoad = true
	case AccessStore:
		cpu.Flags.PageFaultStore = true
	}
}

// readPTW consults the PTW cache before falling through to ReadHook.
func (cpu *CPU) readPTW(paddr uint32) (uint32, HookResult) {
	if cpu.ptwCache != nil {
		if data, hit := cpu.ptwCache.Lookup(paddr); hit {
			return data, HookOK
		}
	}
	if cpu.ReadHook == nil {
		return 0, HookFault
	}
	data, res := cpu.ReadHook(paddr)
	if res == HookOK && cpu.ptwCache != nil {
		cpu.ptwCache.Fill(paddr, data)
	}
	return data, res
}

// SFenceVMA flushes the PTW cache, matching satp-write invalidation.
func (cpu *CPU) SFenceVMA() {
	cpu.ptwCacheFlush()
}
