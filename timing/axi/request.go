package axi

// ReadReqState tracks one outstanding AXI read, one of the three read
// masters' slots (fetch, data-load, MMU). Fields are frozen once Active
// is set until the request completes.
type ReadReqState struct {
	Active     bool
	Issued     bool // AR accepted
	Master     Master
	ID         uint8 // 2-bit transaction id
	Addr       uint32
	TotalSize  uint8 // bytes - 1, 0..3
	BeatsSeen  uint8
}

// TotalBeats returns ⌈(TotalSize+1)/4⌉, always 1 on this 32-bit bus.
func (r *ReadReqState) TotalBeats() uint8 {
	return uint8((uint32(r.TotalSize) + 1 + 3) / 4)
}

// WireID returns the encoded AXI id this request expects on its
// response channel.
func (r *ReadReqState) WireID() uint8 {
	return EncodeID(r.Master, r.ID)
}

// Complete reports whether this request has been both issued and fully
// responded to.
func (r *ReadReqState) Complete() bool {
	return r.Active && r.Issued && r.BeatsSeen >= r.TotalBeats()
}

// Start activates a read request with the invariant fields frozen.
func (r *ReadReqState) Start(master Master, id uint8, addr uint32, totalSize uint8) {
	*r = ReadReqState{Active: true, Master: master, ID: id, Addr: addr, TotalSize: totalSize}
}

// Clear deactivates the slot, ready for the next Start.
func (r *ReadReqState) Clear() {
	*r = ReadReqState{}
}

// WriteReqState tracks the single outstanding AXI write (data-store or
// AMO write-back).
type WriteReqState struct {
	Active    bool
	Issued    bool // AW accepted
	WSent     bool // W beat accepted
	Master    Master
	ID        uint8
	Addr      uint32
	TotalSize uint8
	Data      uint32
	Strb      uint8
	BeatsSeen uint8
}

func (w *WriteReqState) TotalBeats() uint8 {
	return uint8((uint32(w.TotalSize) + 1 + 3) / 4)
}

func (w *WriteReqState) WireID() uint8 {
	return EncodeID(w.Master, w.ID)
}

// Complete reports whether both the AW/W side and the B response have
// landed.
func (w *WriteReqState) Complete() bool {
	return w.Active && w.Issued && w.WSent && w.BeatsSeen >= w.TotalBeats()
}

func (w *WriteReqState) Start(master Master, id uint8, addr uint32, totalSize uint8, data uint32, strb uint8) {
	*w = WriteReqState{Active: true, Master: master, ID: id, Addr: addr, TotalSize: totalSize, Data: data, Strb: strb}
}

func (w *WriteReqState) Clear() {
	*w = WriteReqState{}
}
