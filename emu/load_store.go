package emu

// LoadStoreUnit assembles sub-word loads from physical memory and
// computes the strobe/shift for sub-word stores. The state machine is
// responsible for the actual AXI transfer; this unit only computes what
// bytes move and interprets what comes back.
type LoadStoreUnit struct {
	Memory *Memory
}

// LB/LH/LW/LBU/LHU load from an already-resident physical word.
func (lsu LoadStoreUnit) LB(paddr uint32) (uint32, error) {
	v, err := lsu.Memory.ReadByte(paddr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int8(v))), nil
}

func (lsu LoadStoreUnit) LBU(paddr uint32) (uint32, error) {
	v, err := lsu.Memory.ReadByte(paddr)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (lsu LoadStoreUnit) LH(paddr uint32) (uint32, error) {
	v, err := lsu.Memory.ReadHalf(paddr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int16(v))), nil
}

func (lsu LoadStoreUnit) LHU(paddr uint32) (uint32, error) {
	v, err := lsu.Memory.ReadHalf(paddr)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (lsu LoadStoreUnit) LW(paddr uint32) (uint32, error) {
	return lsu.Memory.ReadWord(paddr &^ 3)
}

// StoreLane computes the byte-strobe and word-aligned data for a
// sub-word store, the shape of the store latch the state machine drains
// into an AXI write beat.
func StoreLane(paddr uint32, data uint32, size uint8) (addr uint32, wdata uint32, strb uint8) {
	aligned := paddr &^ 3
	shift := (paddr & 3) * 8

	switch size {
	case 0: // byte
		return aligned, (data & 0xFF) << shift, 1 << (paddr & 3)
	case 1: // half
		return aligned, (data & 0xFFFF) << shift, 0x3 << (paddr & 2)
	default: // word
		return aligned, data, 0xF
	}
}
