package exporter

import "sync/atomic"

// DebugSnapshot is a point-in-time operational snapshot, logged as
// structured fields on SIGUSR1 or served as JSON from the /debug HTTP route.
// It is a lightweight
// alternative to a full metrics scrape, grounded on the teacher's
// capture.Status/capture.Stats introspection methods.
type DebugSnapshot struct {
	FlowTableOccupancy int    `json:"flow_table_occupancy"`
	FlowTableCapacity  int    `json:"flow_table_capacity"`
	ExportSequence     uint32 `json:"export_sequence"`
	PendingDatagrams   int    `json:"pending_datagrams"`
	LastScanDurationMs int64  `json:"last_scan_duration_ms"`
}

// DebugSnapshot reports the exporter's current flow table occupancy, pending
// datagram backlog, sequence number and last recorded scan duration.
func (e *Exporter) DebugSnapshot() DebugSnapshot {
	e.mu.Lock()
	snap := DebugSnapshot{
		ExportSequence:     atomic.LoadUint32(&e.sequence),
		PendingDatagrams:   len(e.pending),
		LastScanDurationMs: e.lastScanDuration.Milliseconds(),
	}
	e.mu.Unlock()

	if e.Table != nil {
		snap.FlowTableOccupancy = e.Table.Len()
		snap.FlowTableCapacity = e.Table.Capacity()
	}
	return snap
}
