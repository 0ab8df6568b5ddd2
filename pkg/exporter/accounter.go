package exporter

import (
	"github.com/flowexport/ipfixd/pkg/flowkey"
	"github.com/flowexport/ipfixd/pkg/flowtable"
	"github.com/flowexport/ipfixd/pkg/metrics"
)

// Accounter implements the fast-path per-packet update described in spec
// §4.3: build a key, update an existing record or insert a new one, all
// with one hash lookup and at most one table write. It performs no
// allocation and never blocks; every failure is converted to a metrics
// counter rather than propagated, matching spec §7's fast-path error
// policy.
type Accounter struct {
	table *flowtable.Table
}

// NewAccounter wraps table for fast-path accounting.
func NewAccounter(table *flowtable.Table) *Accounter {
	return &Accounter{table: table}
}

// Observe accounts one IPv4 packet (hdr, an Ethernet-stripped IPv4 header)
// observed at nowMs. It returns ErrMalformedHeader if the header is
// invalid, or ErrTableFull if the flow table had no room for a new key;
// both are recorded on metrics before being returned so the caller never
// needs to touch a counter itself.
func (a *Accounter) Observe(hdr []byte, nowMs int64) error {
	key, err := flowkey.Build(hdr)
	if err != nil {
		metrics.PacketsMalformed.Inc()
		return ErrMalformedHeader
	}

	totalLen, err := flowkey.TotalLength(hdr)
	if err != nil {
		metrics.PacketsMalformed.Inc()
		return ErrMalformedHeader
	}

	if idx, ok := a.table.Lookup(key); ok {
		rec := a.table.Get(idx)
		rec.FlowEndMs = nowMs
		rec.PacketCount++
		rec.OctetCount += uint64(totalLen)
		metrics.PacketsAccounted.Inc()
		return nil
	}

	_, err = a.table.Insert(key, flowtable.Record{
		Key:         key,
		FlowStartMs: nowMs,
		FlowEndMs:   nowMs,
		PacketCount: 1,
		OctetCount:  uint64(totalLen),
	})
	if err != nil {
		metrics.PacketsDroppedTableFull.Inc()
		return ErrTableFull
	}
	metrics.PacketsAccounted.Inc()
	return nil
}
