package emu

// Privilege is the CPU's current privilege mode.
type Privilege uint8

const (
	PrivilegeU Privilege = 0
	PrivilegeS Privilege = 1
	PrivilegeM Privilege = 3
)

// CSR is the compact CSR index used internally in place of the 12-bit
// architectural CSR number. cvtNumberToCSR maps between the two.
type CSR uint8

const (
	CSRMtvec CSR = iota
	CSRMepc
	CSRMcause
	CSRMie
	CSRMip
	CSRMtval
	CSRMscratch
	CSRMstatus
	CSRMideleg
	CSRMedeleg
	CSRSepc
	CSRStvec
	CSRScause
	CSRSscratch
	CSRStval
	CSRSstatus
	CSRSie
	CSRSip
	CSRSatp
	CSRMhartid
	CSRMisa
	CSRTime
	CSRTimeh

	csrCount
)

// cvtNumberToCSR maps the standard 12-bit CSR number to the compact
// index above. Unmapped numbers decode to (0, false).
func cvtNumberToCSR(number uint16) (CSR, bool) {
	switch number {
	case 0x305:
		return CSRMtvec, true
	case 0x341:
		return CSRMepc, true
	case 0x342:
		return CSRMcause, true
	case 0x304:
		return CSRMie, true
	case 0x344:
		return CSRMip, true
	case 0x343:
		return CSRMtval, true
	case 0x340:
		return CSRMscratch, true
	case 0x300:
		return CSRMstatus, true
	case 0x303:
		return CSRMideleg, true
	case 0x302:
		return CSRMedeleg, true
	case 0x141:
		return CSRSepc, true
	case 0x105:
		return CSRStvec, true
	case 0x142:
		return CSRScause, true
	case 0x140:
		return CSRSscratch, true
	case 0x143:
		return CSRStval, true
	case 0x100:
		return CSRSstatus, true
	case 0x104:
		return CSRSie, true
	case 0x144:
		return CSRSip, true
	case 0x180:
		return CSRSatp, true
	case 0xF14:
		return CSRMhartid, true
	case 0x301:
		return CSRMisa, true
	case 0xC01:
		return CSRTime, true
	case 0xC81:
		return CSRTimeh, true
	default:
		return 0, false
	}
}

// RegFile holds the 32 general-purpose registers, the CSR file, PC, and
// privilege mode. Register x0 is never materialized into the write path:
// WriteReg silently discards writes to index 0, and ReadReg returns 0.
type RegFile struct {
	X   [32]uint32
	PC  uint32
	CSR [csrCount]uint32
	Priv Privilege
}

// NewRegFile creates a register file reset to machine mode with PC=0.
func NewRegFile() *RegFile {
	rf := &RegFile{Priv: PrivilegeM}
	rf.CSR[CSRMisa] = 0x40001101 // RV32, I+M+A extensions advertised
	return rf
}

// ReadReg reads GPR reg, always returning 0 for x0.
func (rf *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 {
		return 0
	}
	return rf.X[reg]
}

// WriteReg writes GPR reg, discarding writes to x0.
func (rf *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 {
		return
	}
	rf.X[reg] = value
}

// sstatusMask selects the subset of mstatus bits visible through sstatus:
// UIE, SIE, UPIE, SPIE, SPP, FS (unused under Zfinx but kept for layout
// fidelity), XS, SUM, MXR, SD.
const sstatusMask uint32 = 0x800de133

// ReadCSR reads the compact-indexed CSR, applying the sstatus/sie/sip
// aliasing views over their machine-mode storage.
func (rf *RegFile) ReadCSR(idx CSR) uint32 {
	switch idx {
	case CSRSstatus:
		return rf.CSR[CSRMstatus] & sstatusMask
	case CSRSie:
		return rf.CSR[CSRMie] & rf.CSR[CSRMideleg]
	case CSRSip:
		return rf.CSR[CSRMip] & rf.CSR[CSRMideleg]
	default:
		return rf.CSR[idx]
	}
}

// WriteCSR writes the compact-indexed CSR, routing sstatus/sie/sip writes
// through to their backing mstatus/mie/mip storage under the delegated
// mask.
func (rf *RegFile) WriteCSR(idx CSR, value uint32) {
	switch idx {
	case CSRSstatus:
		rf.CSR[CSRMstatus] = (rf.CSR[CSRMstatus] &^ sstatusMask) | (value & sstatusMask)
	case CSRSie:
		deleg := rf.CSR[CSRMideleg]
		rf.CSR[CSRMie] = (rf.CSR[CSRMie] &^ deleg) | (value & deleg)
	case CSRSip:
		deleg := rf.CSR[CSRMideleg]
		rf.CSR[CSRMip] = (rf.CSR[CSRMip] &^ deleg) | (value & deleg)
	default:
		rf.CSR[idx] = value
	}
}
