package emu

import "math/bits"

// ALU implements the RV32I/M integer arithmetic and logic ops as plain
// functions of two 32-bit operands, mirroring the teacher's
// per-operation-method style.
type ALU struct{}

func (ALU) Add(a, b uint32) uint32  { return a + b }
func (ALU) Sub(a, b uint32) uint32  { return a - b }
func (ALU) And(a, b uint32) uint32  { return a & b }
func (ALU) Or(a, b uint32) uint32   { return a | b }
func (ALU) Xor(a, b uint32) uint32  { return a ^ b }
func (ALU) Sll(a, b uint32) uint32  { return a << (b & 0x1F) }
func (ALU) Srl(a, b uint32) uint32  { return a >> (b & 0x1F) }
func (ALU) Sra(a, b uint32) uint32  { return uint32(int32(a) >> (b & 0x1F)) }

func (ALU) Slt(a, b uint32) uint32 {
	if int32(a) < int32(b) {
		return 1
	}
	return 0
}

func (ALU) Sltu(a, b uint32) uint32 {
	if a < b {
		return 1
	}
	return 0
}

func (ALU) Mul(a, b uint32) uint32 { return a * b }

func (ALU) Mulh(a, b uint32) uint32 {
	prod := int64(int32(a)) * int64(int32(b))
	return uint32(prod >> 32)
}

func (ALU) Mulhsu(a, b uint32) uint32 {
	prod := int64(int32(a)) * int64(uint64(b))
	return uint32(prod >> 32)
}

func (ALU) Mulhu(a, b uint32) uint32 {
	hi, _ := bits.Mul32(a, b)
	return hi
}

func (ALU) Div(a, b uint32) uint32 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return 0xFFFFFFFF
	}
	if sa == -0x80000000 && sb == -1 {
		return a
	}
	return uint32(sa / sb)
}

func (ALU) Divu(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

func (ALU) Rem(a, b uint32) uint32 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return a
	}
	if sa == -0x80000000 && sb == -1 {
		return 0
	}
	return uint32(sa % sb)
}

func (ALU) Remu(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
