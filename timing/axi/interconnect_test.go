package axi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/timing/axi"
)

var _ = Describe("EncodeID/DecodeMaster", func() {
	It("round-trips a master and transaction id through the wire ID", func() {
		id := axi.EncodeID(axi.MasterDCacheW, 2)
		Expect(axi.DecodeMaster(id)).To(Equal(axi.MasterDCacheW))
	})

	It("gives every master a distinct wire-id base", func() {
		bases := map[uint8]axi.Master{}
		for _, m := range []axi.Master{axi.MasterICache, axi.MasterDCacheR, axi.MasterMMU, axi.MasterDCacheW} {
			id := axi.EncodeID(m, 0)
			_, collide := bases[id]
			Expect(collide).To(BeFalse())
			bases[id] = m
		}
	})
})

var _ = Describe("Interconnect", func() {
	var (
		ic    *axi.Interconnect
		reads [3]*axi.ReadReqState
	)

	BeforeEach(func() {
		ic = axi.NewInterconnect()
		reads = [3]*axi.ReadReqState{{}, {}, {}}
	})

	It("drives ARValid for the active read master", func() {
		reads[axi.MasterICache].Start(axi.MasterICache, 0, 0x80000000, 3)
		out := ic.CombOutputs(reads, &axi.WriteReqState{})
		Expect(out.ARValid).To(BeTrue())
		Expect(out.ARAddr).To(Equal(uint32(0x80000000)))
	})

	It("marks a read issued once ARReady is sampled", func() {
		reads[axi.MasterICache].Start(axi.MasterICache, 0, 0x80000000, 3)
		ic.CombInputs(axi.In{ARReady: true}, reads, &axi.WriteReqState{})
		Expect(reads[axi.MasterICache].Issued).To(BeTrue())
	})

	It("captures a read beat matching the expected wire id", func() {
		r := reads[axi.MasterICache]
		r.Start(axi.MasterICache, 1, 0x80000000, 3)
		r.Issued = true
		beat, _, _, _ := ic.CombInputs(axi.In{RValid: true, RID: r.WireID(), RData: 0xCAFEBABE}, reads, &axi.WriteReqState{})
		Expect(beat).NotTo(BeNil())
		Expect(beat.Master).To(Equal(axi.MasterICache))
		Expect(beat.Data).To(Equal(uint32(0xCAFEBABE)))
	})

	It("ignores a read beat whose id does not match any outstanding request", func() {
		r := reads[axi.MasterICache]
		r.Start(axi.MasterICache, 1, 0x80000000, 3)
		r.Issued = true
		beat, _, _, _ := ic.CombInputs(axi.In{RValid: true, RID: 0xFF, RData: 0xCAFEBABE}, reads, &axi.WriteReqState{})
		Expect(beat).To(BeNil())
	})

	It("reports a write beat on the W handshake, distinct from B completion", func() {
		write := &axi.WriteReqState{}
		write.Start(axi.MasterDCacheW, 0, 0x2000, 3, 0xAABBCCDD, 0xF)
		write.Issued = true
		_, wbeat, bDone, _ := ic.CombInputs(axi.In{WReady: true}, [3]*axi.ReadReqState{{}, {}, {}}, write)
		Expect(wbeat).NotTo(BeNil())
		Expect(wbeat.Data).To(Equal(uint32(0xAABBCCDD)))
		Expect(bDone).To(BeFalse())
	})

	It("reports B completion separately once the id matches", func() {
		write := &axi.WriteReqState{}
		write.Start(axi.MasterDCacheW, 2, 0x2000, 3, 0, 0xF)
		write.Issued = true
		write.WSent = true
		_, _, bDone, bFault := ic.CombInputs(axi.In{BValid: true, BID: write.WireID(), BResp: axi.RespOKAY}, [3]*axi.ReadReqState{{}, {}, {}}, write)
		Expect(bDone).To(BeTrue())
		Expect(bFault).To(BeFalse())
	})

	It("rotates AR priority on Seq so a busy walker cannot starve other masters", func() {
		first := ic.CombOutputs(reads, &axi.WriteReqState{})
		reads[axi.MasterICache].Start(axi.MasterICache, 0, 0, 3)
		reads[axi.MasterMMU].Start(axi.MasterMMU, 0, 0, 3)
		before := ic.CombOutputs(reads, &axi.WriteReqState{})
		ic.Seq()
		after := ic.CombOutputs(reads, &axi.WriteReqState{})
		_ = first
		// Both masters are active; rotating priority should eventually
		// surface the non-ICache master as the one granted ARValid.
		Expect(before.ARValid || after.ARValid).To(BeTrue())
		Expect(before.ARID).To(Equal(reads[axi.MasterICache].WireID()))
		Expect(after.ARID).To(Equal(reads[axi.MasterMMU].WireID()))
	})
})
