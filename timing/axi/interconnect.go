package axi

// Interconnect multiplexes the three read masters and one write master
// onto the shared AR/AW/W/R/B channel bundle. Because the MMU read port
// runs in parallel with whichever Prepare/Wait stage is active, more
// than one read master can have an active, unissued request in the same
// cycle; the interconnect arbitrates among them with a rotating
// priority so no master is starved by a chronically busy walker.
//
// Discipline: CombOutputs computes this cycle's master-to-slave signals
// from the current request state (no mutation); CombInputs applies the
// sampled slave-to-master signals back into that state (issued flags,
// captured beats); Seq advances the arbitration pointer once the state
// machine has finalized this cycle's requests.
type Interconnect struct {
	arPriority Master // read master favored on a tie, rotated by Seq
}

// NewInterconnect creates an interconnect with ICACHE favored first.
func NewInterconnect() *Interconnect {
	return &Interconnect{arPriority: MasterICache}
}

// readOrder returns the three read masters in priority order, starting
// from the rotating favorite.
func (ic *Interconnect) readOrder() [3]Master {
	all := [3]Master{MasterICache, MasterDCacheR, MasterMMU}
	start := 0
	for i, m := range all {
		if m == ic.arPriority {
			start = i
			break
		}
	}
	var order [3]Master
	for i := range all {
		order[i] = all[(start+i)%3]
	}
	return order
}

// CombOutputs computes this cycle's AXI master outputs from the three
// read request slots (indexed by Master value 0..2) and the single
// write request slot.
func (ic *Interconnect) CombOutputs(reads [3]*ReadReqState, write *WriteReqState) Out {
	var out Out
	out.RReady = true
	out.BReady = true

	for _, m := range ic.readOrder() {
		r := reads[m]
		if r == nil || !r.Active || r.Issued {
			continue
		}
		out.ARValid = true
		out.ARAddr = r.Addr
		out.ARID = r.WireID()
		out.ARLen = r.TotalBeats() - 1
		out.ARSize = 2
		out.ARBurst = BurstINCR
		break
	}

	if write != nil && write.Active {
		if !write.Issued {
			out.AWValid = true
			out.AWAddr = write.Addr
			out.AWID = write.WireID()
			out.AWLen = write.TotalBeats() - 1
			out.AWSize = 2
			out.AWBurst = BurstINCR
		}
		if !write.WSent {
			out.WValid = true
			out.WData = write.Data
			out.WStrb = write.Strb
			out.WLast = true
		}
	}

	return out
}

// CombInputs applies sampled slave outputs back into the request
// states: marks AR/AW/W as issued on handshake, and reports which read
// request (if any) completed a beat this cycle along with its data, so
// the caller can mirror it into physical memory.
type ReadBeat struct {
	Master  Master
	Data    uint32
	Fault   bool
}

// WriteBeat reports a W-channel handshake this cycle, the trigger for
// mirroring store/AMO data into physical memory under its strobe.
type WriteBeat struct {
	Addr uint32
	Data uint32
	Strb uint8
}

func (ic *Interconnect) CombInputs(in In, reads [3]*ReadReqState, write *WriteReqState) (beat *ReadBeat, wbeat *WriteBeat, bDone bool, bFault bool) {
	for _, m := range ic.readOrder() {
		r := reads[m]
		if r == nil || !r.Active || r.Issued {
			continue
		}
		if in.ARReady {
			r.Issued = true
		}
		break
	}

	if in.RValid {
		for _, m := range [3]Master{MasterICache, MasterDCacheR, MasterMMU} {
			r := reads[m]
			if r == nil || !r.Active || !r.Issued {
				continue
			}
			if in.RID != r.WireID() {
				continue
			}
			r.BeatsSeen++
			beat = &ReadBeat{Master: m, Data: in.RData, Fault: in.RResp != RespOKAY}
			break
		}
	}

	if write != nil && write.Active {
		if !write.Issued && in.AWReady {
			write.Issued = true
		}
		if !write.WSent && in.WReady {
			wbeat = &WriteBeat{Addr: write.Addr, Data: write.Data, Strb: write.Strb}
			write.WSent = true
		}
		if in.BValid && in.BID == write.WireID() {
			write.BeatsSeen++
			bFault = in.BResp != RespOKAY
			bDone = true
		}
	}

	return beat, wbeat, bDone, bFault
}

// Seq rotates AR priority away from whichever master it just favored,
// so a walker that keeps re-issuing doesn't starve the fetch/data
// masters.
func (ic *Interconnect) Seq() {
	ic.arPriority = Master((uint8(ic.arPriority) + 1) % 3)
}
