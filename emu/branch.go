package emu

import "github.com/rv32axi/sim/insts"

// BranchUnit evaluates RV32 branch and jump conditions.
type BranchUnit struct{}

// Taken reports whether a branch opcode's condition holds for the given
// operands.
func (BranchUnit) Taken(op insts.Op, a, b uint32) bool {
	switch op {
	case insts.OpBEQ:
		return a == b
	case insts.OpBNE:
		return a != b
	case insts.OpBLT:
		return int32(a) < int32(b)
	case insts.OpBGE:
		return int32(a) >= int32(b)
	case insts.OpBLTU:
		return a < b
	case insts.OpBGEU:
		return a >= b
	default:
		return false
	}
}
