package emu

// Standard RISC-V synchronous exception causes used by this core.
const (
	CauseInstAddrMisaligned = 0
	CauseIllegalInstruction = 2
	CauseBreakpoint         = 3
	CauseLoadAddrMisaligned = 4
	CauseLoadAccessFault    = 5
	CauseStoreAddrMisaligned = 6
	CauseStoreAccessFault   = 7
	CauseECallFromU         = 8
	CauseECallFromS         = 9
	CauseECallFromM         = 11
	CauseInstPageFault      = 12
	CauseLoadPageFault      = 13
	CauseStorePageFault     = 15
)

// Exception delivers a trap (synchronous exception or, when cause's top
// bit is set, an asynchronous interrupt) per RISC-V privileged
// delegation rules: medeleg/mideleg decide whether the trap target is S
// or M mode given the current privilege; xepc/xcause/xtval, the
// xIE-to-xPIE save, the xPP previous-privilege save, and the new PC from
// {m,s}tvec (vectored when bit 0 is set and the cause is an interrupt)
// are all updated atomically from the caller's point of view.
func (cpu *CPU) Exception(cause uint32, trapVal uint32) {
	isInterrupt := cause&0x80000000 != 0
	causeNum := cause &^ 0x80000000

	delegated := false
	if cpu.Regs.Priv != PrivilegeM {
		if isInterrupt {
			delegated = cpu.Regs.CSR[CSRMideleg]&(1<<causeNum) != 0
		} else {
			delegated = cpu.Regs.CSR[CSRMedeleg]&(1<<causeNum) != 0
		}
	}

	prevPriv := cpu.Regs.Priv
	mstatus := cpu.Regs.CSR[CSRMstatus]

	if delegated {
		cpu.Regs.CSR[CSRSepc] = cpu.Regs.PC
		cpu.Regs.CSR[CSRScause] = cause
		cpu.Regs.CSR[CSRStval] = trapVal

		if mstatus&mstatusSIE != 0 {
			mstatus |= mstatusSPIE
		} else {
			mstatus &^= mstatusSPIE
		}
		mstatus &^= mstatusSIE

		mstatus &^= mstatusSPP
		if prevPriv == PrivilegeS {
			mstatus |= mstatusSPP
		}

		cpu.Regs.CSR[CSRMstatus] = mstatus
		cpu.Regs.Priv = PrivilegeS
		cpu.Regs.PC = trapVector(cpu.Regs.CSR[CSRStvec], causeNum, isInterrupt)
	} else {
		cpu.Regs.CSR[CSRMepc] = cpu.Regs.PC
		cpu.Regs.CSR[CSRMcause] = cause
		cpu.Regs.CSR[CSRMtval] = trapVal

		if mstatus&mstatusMIE != 0 {
			mstatus |= mstatusMPIE
		} else {
			mstatus &^= mstatusMPIE
		}
		mstatus &^= mstatusMIE

		mstatus &^= mstatusMPP
		mstatus |= uint32(prevPriv) << 11

		cpu.Regs.CSR[CSRMstatus] = mstatus
		cpu.Regs.Priv = PrivilegeM
		cpu.Regs.PC = trapVector(cpu.Regs.CSR[CSRMtvec], causeNum, isInterrupt)
	}

	cpu.Flags.IsException = true
}

// trapVector computes the trap target PC from a tvec CSR: direct mode
// (low bits 0b00) always targets BASE; vectored mode (0b01) targets
// BASE + 4*cause, but only for interrupts.
func trapVector(tvec uint32, cause uint32, isInterrupt bool) uint32 {
	base := tvec &^ 0x3
	mode := tvec & 0x3
	if mode == 1 && isInterrupt {
		return base + 4*cause
	}
	return base
}

// ECall raises the environment-call exception matching the current
// privilege mode.
func (cpu *CPU) ECall() {
	switch cpu.Regs.Priv {
	case PrivilegeU:
		cpu.Exception(CauseECallFromU, 0)
	case PrivilegeS:
		cpu.Exception(CauseECallFromS, 0)
	default:
		cpu.Exception(CauseECallFromM, 0)
	}
}
