package emu

import "math"

// FPU implements the Zfinx single-precision subset: operands and
// results live in the integer register file as their IEEE-754 bit
// patterns, so every method here takes/returns uint32.
type FPU struct{}

func f32(bits uint32) float32 { return math.Float32frombits(bits) }
func b32(v float32) uint32    { return math.Float32bits(v) }

func (FPU) Add(a, b uint32) uint32 { return b32(f32(a) + f32(b)) }
func (FPU) Sub(a, b uint32) uint32 { return b32(f32(a) - f32(b)) }
func (FPU) Mul(a, b uint32) uint32 { return b32(f32(a) * f32(b)) }
func (FPU) Div(a, b uint32) uint32 { return b32(f32(a) / f32(b)) }

func (FPU) Sqrt(a uint32) uint32 { return b32(float32(math.Sqrt(float64(f32(a))))) }

func (FPU) Min(a, b uint32) uint32 {
	fa, fb := f32(a), f32(b)
	if fa != fa { // NaN
		return b
	}
	if fb != fb {
		return a
	}
	if fa < fb {
		return a
	}
	return b
}

func (FPU) Max(a, b uint32) uint32 {
	fa, fb := f32(a), f32(b)
	if fa != fa {
		return b
	}
	if fb != fb {
		return a
	}
	if fa > fb {
		return a
	}
	return b
}

func (FPU) Eq(a, b uint32) uint32 {
	if f32(a) == f32(b) {
		return 1
	}
	return 0
}

func (FPU) Lt(a, b uint32) uint32 {
	if f32(a) < f32(b) {
		return 1
	}
	return 0
}

func (FPU) Le(a, b uint32) uint32 {
	if f32(a) <= f32(b) {
		return 1
	}
	return 0
}

// Sgnj/Sgnjn/Sgnjx implement the FSGNJ.S family: the result's magnitude
// comes from a, the sign from (b, !b, a^b) respectively.
func (FPU) Sgnj(a, b uint32) uint32  { return (a &^ (1 << 31)) | (b & (1 << 31)) }
func (FPU) Sgnjn(a, b uint32) uint32 { return (a &^ (1 << 31)) | ((b ^ 0xFFFFFFFF) & (1 << 31)) }
func (FPU) Sgnjx(a, b uint32) uint32 { return a ^ (b & (1 << 31)) }

// CvtWS converts a float to a signed 32-bit integer, RISC-V round-to-
// nearest-even with saturation on overflow/NaN.
func (FPU) CvtWS(a uint32) uint32 {
	f := f32(a)
	if f != f {
		return 0x7FFFFFFF
	}
	if f >= 1<<31 {
		return 0x7FFFFFFF
	}
	if f < -(1 << 31) {
		return 0x80000000
	}
	return uint32(int32(math.RoundToEven(float64(f))))
}

func (FPU) CvtWUS(a uint32) uint32 {
	f := f32(a)
	if f != f || f < 0 {
		return 0
	}
	if f >= 1<<32 {
		return 0xFFFFFFFF
	}
	return uint32(math.RoundToEven(float64(f)))
}

func (FPU) CvtSW(a uint32) uint32  { return b32(float32(int32(a))) }
func (FPU) CvtSWU(a uint32) uint32 { return b32(float32(a)) }

// Class implements FCLASS.S, returning the standard 10-bit classification
// mask.
func (FPU) Class(a uint32) uint32 {
	f := f32(a)
	sign := a>>31 != 0
	switch {
	case f != f:
		if a&(1<<22) != 0 {
			return 1 << 9 // quiet NaN
		}
		return 1 << 8 // signaling NaN
	case math.IsInf(float64(f), 0):
		if sign {
			return 1 << 0
		}
		return 1 << 7
	case f == 0:
		if sign {
			return 1 << 3
		}
		return 1 << 4
	case isSubnormal32(a):
		if sign {
			return 1 << 2
		}
		return 1 << 5
	default:
		if sign {
			return 1 << 1
		}
		return 1 << 6
	}
}

func isSubnormal32(bits uint32) bool {
	exp := (bits >> 23) & 0xFF
	mant := bits & 0x7FFFFF
	return exp == 0 && mant != 0
}
