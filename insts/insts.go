// Package insts provides RV32 instruction definitions and decoding.
//
// This package implements decoding of RV32IMA + Zicsr + Zfinx machine code
// into a structured instruction representation. It supports:
//   - RV32I: the base integer ISA (LUI/AUIPC/JAL/JALR/branches/loads/stores/
//     ALU-immediate/ALU-register/FENCE/ECALL/EBREAK)
//   - M: integer multiply/divide/remainder
//   - A: LR.W/SC.W and the AMO* family
//   - Zicsr: CSRRW/S/C and the immediate variants
//   - Zfinx: single-precision float ops operating on the integer register
//     file (no separate FP register file)
//
// Usage:
//
//	dec := insts.NewDecoder()
//	inst := dec.Decode(0x00A00093) // ADDI x1, x0, 10
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

// INSTEbreak is the encoded EBREAK word. The state machine's Execute stage
// treats retirement of this exact word as the simulation-end sentinel.
const INSTEbreak uint32 = 0x00100073

// INSTFenceVMA identifies SFENCE.VMA, decoded as OpSFENCEVMA by Decode but kept
// here since several opcode tables reference the raw encoding.
const INSTFenceVMA uint32 = 0x12000073
