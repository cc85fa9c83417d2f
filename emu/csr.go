package emu

// mstatus bit positions we manipulate directly (the rest are WPRI and
// left untouched).
const (
	mstatusMIE  = 1 << 3
	mstatusSIE  = 1 << 1
	mstatusMPIE = 1 << 7
	mstatusSPIE = 1 << 5
	mstatusMPP  = 0x3 << 11
	mstatusSPP  = 1 << 8
	mstatusMPRV = 1 << 17
	mstatusSUM  = 1 << 18
	mstatusMXR  = 1 << 19
)

// csrPrivilege reports the minimum privilege required to access a CSR,
// taken from bits 9:8 of its standard number, and whether the CSR is
// read-only (bits 11:10 == 0b11).
func csrPrivilege(number uint16) (Privilege, bool) {
	level := (number >> 8) & 0x3
	readOnly := (number>>10)&0x3 == 0x3
	switch level {
	case 0:
		return PrivilegeU, readOnly
	case 1:
		return PrivilegeS, readOnly
	default:
		return PrivilegeM, readOnly
	}
}

// readCSR performs a privilege-checked CSR read. ok is false on an
// illegal access (insufficient privilege or unmapped CSR number).
func (cpu *CPU) readCSR(number uint16) (uint32, bool) {
	idx, known := cvtNumberToCSR(number)
	if !known {
		return 0, false
	}
	minPriv, _ := csrPrivilege(number)
	if cpu.Regs.Priv < minPriv {
		return 0, false
	}
	return cpu.Regs.ReadCSR(idx), true
}

// writeCSR performs a privilege- and read-only-checked CSR write.
func (cpu *CPU) writeCSR(number uint16, value uint32) bool {
	idx, known := cvtNumberToCSR(number)
	if !known {
		return false
	}
	minPriv, readOnly := csrPrivilege(number)
	if cpu.Regs.Priv < minPriv || readOnly {
		return false
	}
	if idx == CSRSatp {
		cpu.ptwCacheFlush()
	}
	cpu.Regs.WriteCSR(idx, value)
	return true
}
