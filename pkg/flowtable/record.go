package flowtable

import "github.com/flowexport/ipfixd/pkg/flowkey"

// Record is the accounting state kept for one FlowKey (spec: FlowRecord).
// A live record exists in the Table iff a matching entry exists in its
// index; they are created and destroyed together (owned by the Table).
type Record struct {
	Key flowkey.Key

	FlowStartMs int64
	FlowEndMs   int64

	PacketCount uint64
	OctetCount  uint64
}

// Reset zeroes the counters and pins both timestamps to now, used for
// active-rotation (the key and table slot are retained).
func (r *Record) Reset(nowMs int64) {
	r.FlowStartMs = nowMs
	r.FlowEndMs = nowMs
	r.PacketCount = 0
	r.OctetCount = 0
}
