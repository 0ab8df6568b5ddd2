package exporter

import (
	"github.com/flowexport/ipfixd/pkg/flowkey"
	"github.com/flowexport/ipfixd/pkg/flowtable"
	"github.com/flowexport/ipfixd/pkg/metrics"
)

// Scanner implements the periodic Expiration Scanner of spec §4.4: classify
// every live record as idle-expired, active-expired, or live, relative to
// nowMs. Both timeouts are evaluated with strict less-than against now, so
// a record exactly at the boundary (flow_end_ms + idle_timeout_ms == now_ms)
// is NOT expired (spec §8 boundary test).
type Scanner struct {
	Table           *flowtable.Table
	IdleTimeoutMs   int64
	ActiveTimeoutMs int64
}

// NewScanner constructs a Scanner over table with the given timeouts.
func NewScanner(table *flowtable.Table, idleTimeoutMs, activeTimeoutMs int64) *Scanner {
	return &Scanner{
		Table:           table,
		IdleTimeoutMs:   idleTimeoutMs,
		ActiveTimeoutMs: activeTimeoutMs,
	}
}

// Tick walks the table once at time nowMs and returns the FlowRecord
// snapshots that expired during this pass, in table-iteration order,
// appended to the ExpiredQueue (spec's FIFO-drained expired queue). Idle
// expiry removes the record from the table; active expiry snapshots it and
// resets its counters in place, leaving the key live. When both conditions
// hold simultaneously, idle wins (spec §4.4/§8): the record is removed, not
// rotated, since idle implies traffic has actually stopped.
//
// Idle removal happens after the table walk completes (the walk itself only
// reads and, for active rotations, mutates a record in place through the
// pointer the table already handed out — it never calls back into the
// table's own locking API while the walk holds it).
func (s *Scanner) Tick(nowMs int64) []flowtable.Record {
	var expired []flowtable.Record
	var idleKeys []flowtable.Record // only Key is read back out of these

	s.Table.Iter(func(key flowkey.Key, rec *flowtable.Record) bool {
		switch {
		case rec.FlowEndMs+s.IdleTimeoutMs < nowMs:
			expired = append(expired, *rec)
			idleKeys = append(idleKeys, *rec)
		case rec.FlowStartMs+s.ActiveTimeoutMs < nowMs:
			expired = append(expired, *rec)
			rec.Reset(nowMs)
			metrics.FlowsActiveRotated.Inc()
		}
		return true
	})

	for _, r := range idleKeys {
		s.Table.Remove(r.Key)
		metrics.FlowsIdleExpired.Inc()
	}

	metrics.FlowTableOccupancy.Set(float64(s.Table.Len()))
	return expired
}
