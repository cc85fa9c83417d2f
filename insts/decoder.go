package insts

// Op represents a decoded RV32 operation.
type Op uint16

// RV32IMA + Zicsr + Zfinx opcodes.
const (
	OpUnknown Op = iota

	// RV32I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// A extension
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// Privileged / supervisor
	OpSFENCEVMA

	// Zfinx (single-precision float, integer-register operands)
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFCVTWS
	OpFCVTWUS
	OpFCVTSW
	OpFCVTSWU
	OpFEQS
	OpFLTS
	OpFLES
	OpFCLASSS
)

// Format identifies the instruction encoding shape, mirroring the RV32
// base-ISA formats (R/I/S/B/U/J) plus a synthetic CSR format used for
// Zicsr instructions, which are encoded as I-type but carry a CSR address
// instead of a sign-extended immediate.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatCSR
)

// Instruction is a decoded RV32 instruction. Decoder.Decode returns a
// freshly allocated Instruction on every call.
type Instruction struct {
	Op     Op
	Format Format
	Raw    uint32

	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	Funct3 uint8
	Funct7 uint8

	Imm int32 // sign-extended immediate (I/S/B/U/J as applicable)
	CSR uint16

	// AqRl carries the acquire/release bits for A-extension instructions.
	AqRl uint8
}

// Decoder decodes RV32 machine code into Instruction values.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func immI(word uint32) int32 { return signExtend(word>>20, 12) }

func immS(word uint32) int32 {
	lo := (word >> 7) & 0x1F
	hi := (word >> 25) & 0x7F
	return signExtend((hi<<5)|lo, 12)
}

func immB(word uint32) int32 {
	imm := ((word>>31)&1)<<12 |
		((word>>25)&0x3F)<<5 |
		((word>>8)&0xF)<<1 |
		((word>>7)&1)<<11
	return signExtend(imm, 13)
}

func immU(word uint32) int32 { return int32(word & 0xFFFFF000) }

func immJ(word uint32) int32 {
	imm := ((word>>31)&1)<<20 |
		((word>>21)&0x3FF)<<1 |
		((word>>20)&1)<<11 |
		((word>>12)&0xFF)<<12
	return signExtend(imm, 21)
}

// Decode decodes a 32-bit RV32 instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown, Raw: word}

	opcode := word & 0x7F
	inst.Rd = uint8((word >> 7) & 0x1F)
	inst.Funct3 = uint8((word >> 12) & 0x7)
	inst.Rs1 = uint8((word >> 15) & 0x1F)
	inst.Rs2 = uint8((word >> 20) & 0x1F)
	inst.Funct7 = uint8((word >> 25) & 0x7F)

	switch opcode {
	case 0x37:
		inst.Format = FormatU
		inst.Op = OpLUI
		inst.Imm = immU(word)
	case 0x17:
		inst.Format = FormatU
		inst.Op = OpAUIPC
		inst.Imm = immU(word)
	case 0x6F:
		inst.Format = FormatJ
		inst.Op = OpJAL
		inst.Imm = immJ(word)
	case 0x67:
		inst.Format = FormatI
		inst.Op = OpJALR
		inst.Imm = immI(word)
	case 0x63:
		inst.Format = FormatB
		inst.Imm = immB(word)
		d.decodeBranch(inst)
	case 0x03:
		inst.Format = FormatI
		inst.Imm = immI(word)
		d.decodeLoad(inst)
	case 0x23:
		inst.Format = FormatS
		inst.Imm = immS(word)
		d.decodeStore(inst)
	case 0x13:
		inst.Format = FormatI
		inst.Imm = immI(word)
		d.decodeOpImm(inst)
	case 0x33:
		inst.Format = FormatR
		d.decodeOp(inst)
	case 0x0F:
		inst.Format = FormatI
		inst.Op = OpFENCE
	case 0x73:
		d.decodeSystem(word, inst)
	case 0x2F:
		inst.Format = FormatR
		d.decodeAMO(inst)
	case 0x53:
		inst.Format = FormatR
		d.decodeFP(inst)
	}

	return inst
}

func (d *Decoder) decodeBranch(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpBEQ
	case 0x1:
		inst.Op = OpBNE
	case 0x4:
		inst.Op = OpBLT
	case 0x5:
		inst.Op = OpBGE
	case 0x6:
		inst.Op = OpBLTU
	case 0x7:
		inst.Op = OpBGEU
	}
}

func (d *Decoder) decodeLoad(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpLB
	case 0x1:
		inst.Op = OpLH
	case 0x2:
		inst.Op = OpLW
	case 0x4:
		inst.Op = OpLBU
	case 0x5:
		inst.Op = OpLHU
	}
}

func (d *Decoder) decodeStore(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpSB
	case 0x1:
		inst.Op = OpSH
	case 0x2:
		inst.Op = OpSW
	}
}

func (d *Decoder) decodeOpImm(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpADDI
	case 0x2:
		inst.Op = OpSLTI
	case 0x3:
		inst.Op = OpSLTIU
	case 0x4:
		inst.Op = OpXORI
	case 0x6:
		inst.Op = OpORI
	case 0x7:
		inst.Op = OpANDI
	case 0x1:
		inst.Op = OpSLLI
		inst.Imm = int32(inst.Rs2) // shamt lives in the rs2 field
	case 0x5:
		inst.Imm = int32(inst.Rs2)
		if inst.Funct7&0x20 != 0 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
	}
}

func (d *Decoder) decodeOp(inst *Instruction) {
	switch {
	case inst.Funct7 == 0x01:
		d.decodeMulDiv(inst)
		return
	}

	switch inst.Funct3 {
	case 0x0:
		if inst.Funct7&0x20 != 0 {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0x1:
		inst.Op = OpSLL
	case 0x2:
		inst.Op = OpSLT
	case 0x3:
		inst.Op = OpSLTU
	case 0x4:
		inst.Op = OpXOR
	case 0x5:
		if inst.Funct7&0x20 != 0 {
			inst.Op = OpSRA
		} else {
			inst.Op = OpSRL
		}
	case 0x6:
		inst.Op = OpOR
	case 0x7:
		inst.Op = OpAND
	}
}

func (d *Decoder) decodeMulDiv(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpMUL
	case 0x1:
		inst.Op = OpMULH
	case 0x2:
		inst.Op = OpMULHSU
	case 0x3:
		inst.Op = OpMULHU
	case 0x4:
		inst.Op = OpDIV
	case 0x5:
		inst.Op = OpDIVU
	case 0x6:
		inst.Op = OpREM
	case 0x7:
		inst.Op = OpREMU
	}
}

func (d *Decoder) decodeAMO(inst *Instruction) {
	inst.AqRl = inst.Funct7 & 0x3
	funct5 := inst.Funct7 >> 2

	switch funct5 {
	case 0x02:
		inst.Op = OpLRW
	case 0x03:
		inst.Op = OpSCW
	case 0x01:
		inst.Op = OpAMOSWAPW
	case 0x00:
		inst.Op = OpAMOADDW
	case 0x04:
		inst.Op = OpAMOXORW
	case 0x0C:
		inst.Op = OpAMOANDW
	case 0x08:
		inst.Op = OpAMOORW
	case 0x10:
		inst.Op = OpAMOMINW
	case 0x14:
		inst.Op = OpAMOMAXW
	case 0x18:
		inst.Op = OpAMOMINUW
	case 0x1C:
		inst.Op = OpAMOMAXUW
	}
}

func (d *Decoder) decodeFP(inst *Instruction) {
	funct5 := inst.Funct7 >> 2

	switch funct5 {
	case 0x00:
		inst.Op = OpFADDS
	case 0x01:
		inst.Op = OpFSUBS
	case 0x02:
		inst.Op = OpFMULS
	case 0x03:
		inst.Op = OpFDIVS
	case 0x0B:
		inst.Op = OpFSQRTS
	case 0x14:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpFLES
		case 0x1:
			inst.Op = OpFLTS
		case 0x2:
			inst.Op = OpFEQS
		}
	case 0x05:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpFMINS
		case 0x1:
			inst.Op = OpFMAXS
		}
	case 0x18:
		if inst.Rs2 == 0 {
			inst.Op = OpFCVTWS
		} else {
			inst.Op = OpFCVTWUS
		}
	case 0x1A:
		if inst.Rs2 == 0 {
			inst.Op = OpFCVTSW
		} else {
			inst.Op = OpFCVTSWU
		}
	case 0x04:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpFSGNJS
		case 0x1:
			inst.Op = OpFSGNJNS
		case 0x2:
			inst.Op = OpFSGNJXS
		}
	case 0x1C:
		inst.Op = OpFCLASSS
	}
}

func (d *Decoder) decodeSystem(word uint32, inst *Instruction) {
	if word == INSTFenceVMA {
		inst.Op = OpSFENCEVMA
		inst.Format = FormatR
		return
	}

	if inst.Funct3 == 0 {
		inst.Format = FormatI
		switch word {
		case 0x00000073:
			inst.Op = OpECALL
		case INSTEbreak:
			inst.Op = OpEBREAK
		}
		return
	}

	inst.Format = FormatCSR
	inst.CSR = uint16(word >> 20)
	switch inst.Funct3 {
	case 0x1:
		inst.Op = OpCSRRW
	case 0x2:
		inst.Op = OpCSRRS
	case 0x3:
		inst.Op = OpCSRRC
	case 0x5:
		inst.Op = OpCSRRWI
	case 0x6:
		inst.Op = OpCSRRSI
	case 0x7:
		inst.Op = OpCSRRCI
	}
}
