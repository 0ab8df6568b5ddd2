package exporter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowexport/ipfixd/pkg/dataplane"
	"github.com/flowexport/ipfixd/pkg/flowtable"
	"github.com/flowexport/ipfixd/pkg/ipfix"
	"github.com/flowexport/ipfixd/pkg/logging"
	"github.com/flowexport/ipfixd/pkg/metrics"
)

// MaxRecordsPerDatagram bounds how many data records are packed into a
// single IPFIX message before a new one is started. Spec §8 scenario 6
// exercises multiple records per datagram, so this is a batching knob, not
// a protocol limit.
const MaxRecordsPerDatagram = 4

// DefaultMaxTransmitRetries is the bounded retry count spec §7 names as an
// example ("e.g., 3") for a datagram stuck under transmit backpressure.
const DefaultMaxTransmitRetries = 3

// Exporter owns the sequence counter and PendingDatagramQueue described in
// spec §3/§4.7, and drives the Record Encoder and Datagram Builder over the
// snapshots a Scanner pass produces.
type Exporter struct {
	Builder     *ipfix.Builder
	Transmitter dataplane.Transmitter
	Clock       dataplane.Clock

	// Table, if set, backs the FlowTableOccupancy/FlowTableCapacity fields
	// of DebugSnapshot. It is assigned once at startup and never reassigned,
	// so reading it concurrently with DebugSnapshot calls is safe.
	Table *flowtable.Table

	MaxTransmitRetries int

	mu               sync.Mutex
	sequence         uint32
	pending          []pendingDatagram
	lastScanDuration time.Duration
}

type pendingDatagram struct {
	buf     []byte
	records int
	retries int
}

// NewExporter constructs an Exporter. MaxTransmitRetries defaults to
// DefaultMaxTransmitRetries when 0.
func NewExporter(builder *ipfix.Builder, transmitter dataplane.Transmitter, clock dataplane.Clock, maxTransmitRetries int) *Exporter {
	if maxTransmitRetries <= 0 {
		maxTransmitRetries = DefaultMaxTransmitRetries
	}
	return &Exporter{
		Builder:            builder,
		Transmitter:        transmitter,
		Clock:              clock,
		MaxTransmitRetries: maxTransmitRetries,
	}
}

// SequenceNumber returns the exporter's current sequence counter value: the
// count of data records exported so far (spec §4.7), reset only on restart.
func (e *Exporter) SequenceNumber() uint32 {
	return atomic.LoadUint32(&e.sequence)
}

// ExportExpired encodes and enqueues the snapshots produced by a Scanner
// pass, batching up to MaxRecordsPerDatagram records per IPFIX message, and
// then drains the PendingDatagramQueue against the Transmitter. It returns
// the number of records successfully transmitted this call.
func (e *Exporter) ExportExpired(expired []flowtable.Record) int {
	for start := 0; start < len(expired); start += MaxRecordsPerDatagram {
		end := start + MaxRecordsPerDatagram
		if end > len(expired) {
			end = len(expired)
		}
		batch := expired[start:end]

		records := make([]ipfix.DataRecord, len(batch))
		for i, r := range batch {
			records[i] = toDataRecord(r)
		}

		seq := atomic.LoadUint32(&e.sequence)
		datagram := e.Builder.Build(records, seq, uint32(e.Clock.Now().Unix()))
		atomic.AddUint32(&e.sequence, uint32(len(batch)))
		metrics.ExportSequenceNumber.Set(float64(atomic.LoadUint32(&e.sequence)))

		e.mu.Lock()
		e.pending = append(e.pending, pendingDatagram{buf: datagram, records: len(batch)})
		e.mu.Unlock()
	}

	return e.drainPending()
}

// RecordScanDuration stores d as the duration of the most recent Scanner
// pass, surfaced through DebugSnapshot. The caller times its own Scanner.Tick
// call; the Exporter has no visibility into scan timing otherwise.
func (e *Exporter) RecordScanDuration(d time.Duration) {
	e.mu.Lock()
	e.lastScanDuration = d
	e.mu.Unlock()
}

// drainPending attempts to transmit every queued datagram, in FIFO order
// (spec §5 "datagrams are transmitted FIFO within the PendingDatagramQueue").
// A datagram whose Enqueue returns any error stays queued and is retried on
// the next call; once MaxTransmitRetries attempts in all have failed it is
// dropped with a counter increment (spec §7). Both cases are logged as
// warnings.
func (e *Exporter) drainPending() int {
	e.mu.Lock()
	batch := e.pending
	e.mu.Unlock()

	sent := 0
	remaining := batch[:0]

	for _, p := range batch {
		if err := e.Transmitter.Enqueue(p.buf); err != nil {
			p.retries++
			if p.retries >= e.MaxTransmitRetries {
				metrics.DatagramsDroppedBackpressure.Inc()
				logging.Logger().With("error", err, "attempts", p.retries, "records", p.records).Warn("dropped datagram after exhausting transmit retries")
				e.Builder.Release(p.buf)
				continue
			}
			logging.Logger().With("error", err, "attempts", p.retries).Warn("transmit failed, datagram kept for retry")
			remaining = append(remaining, p)
			continue
		}
		metrics.DatagramsSent.Inc()
		sent += p.records
		e.Builder.Release(p.buf)
	}

	e.mu.Lock()
	e.pending = remaining
	e.mu.Unlock()
	return sent
}

func toDataRecord(r flowtable.Record) ipfix.DataRecord {
	return ipfix.DataRecord{
		SrcIP:       r.Key.SrcIP(),
		DstIP:       r.Key.DstIP(),
		Protocol:    r.Key.Protocol(),
		SrcPort:     r.Key.SrcPort(),
		DstPort:     r.Key.DstPort(),
		FlowStartMs: uint64(r.FlowStartMs),
		FlowEndMs:   uint64(r.FlowEndMs),
		OctetCount:  r.OctetCount,
		PacketCount: r.PacketCount,
	}
}
