// Package axi models the AXI4 master-side channel signals this core
// drives toward an external DDR slave: three read masters (instruction
// fetch, data load, MMU page-walk) and one write master (data store /
// AMO write-back), multiplexed onto the shared AR/AW/W/R/B channel
// bundle.
package axi

// Master identifies one of the four AXI masters this core drives.
type Master uint8

const (
	MasterICache  Master = 0
	MasterDCacheR Master = 1
	MasterMMU     Master = 2
	MasterDCacheW Master = 3
)

// EncodeID packs a master and a 2-bit transaction id into the wire ID,
// per the data model: (master[1:0] << 2) | id[1:0].
func EncodeID(master Master, id uint8) uint8 {
	return (uint8(master) << 2) | (id & 0x3)
}

// DecodeMaster recovers the master field from a wire ID.
func DecodeMaster(wireID uint8) Master {
	return Master(wireID >> 2)
}

// Burst encodes the AXI4 ARBURST/AWBURST field; this core only ever
// issues INCR bursts.
type Burst uint8

const BurstINCR Burst = 1

// In carries every slave-to-master signal the core samples at the start
// of a step, across all five channels.
type In struct {
	ARReady bool
	AWReady bool
	WReady  bool

	RValid bool
	RID    uint8
	RData  uint32
	RResp  uint8
	RLast  bool

	BValid bool
	BID    uint8
	BResp  uint8
}

// Out carries every master-to-slave signal the core drives at the end
// of a step.
type Out struct {
	ARValid bool
	ARAddr  uint32
	ARID    uint8
	ARLen   uint8 // total_beats - 1
	ARSize  uint8 // 2 for 4-byte transfers
	ARBurst Burst

	AWValid bool
	AWAddr  uint32
	AWID    uint8
	AWLen   uint8
	AWSize  uint8
	AWBurst Burst

	WValid bool
	WData  uint32
	WStrb  uint8
	WLast  bool

	RReady bool
	BReady bool
}

// RespOKAY/RespSLVERR are the AXI4 response codes this core
// distinguishes: any nonzero response is treated as a bus fault.
const (
	RespOKAY    uint8 = 0
	RespSLVERR  uint8 = 2
	RespDECERR  uint8 = 3
)
