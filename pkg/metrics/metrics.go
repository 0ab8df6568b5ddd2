// Package metrics exposes Prometheus instrumentation for the exporter,
// following the direct NewCounter/NewGauge/NewHistogram + MustRegister
// pattern used throughout the teacher repository (pkg/capture/metrics.go).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace       = "ipfixd"
	accounterSubsys = "accounter"
	scannerSubsys   = "scanner"
	exporterSubsys  = "exporter"
)

var (
	// PacketsAccounted counts packets successfully folded into a flow record.
	PacketsAccounted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: accounterSubsys,
		Name:      "packets_accounted_total",
		Help:      "Number of IPv4 packets successfully accounted into the flow table",
	})

	// PacketsDroppedTableFull counts packets dropped from accounting because
	// the flow table had no capacity for a new key (spec §4.3/§7 TableFull).
	PacketsDroppedTableFull = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: accounterSubsys,
		Name:      "packets_dropped_table_full_total",
		Help:      "Number of packets dropped from flow accounting due to a full flow table",
	})

	// PacketsMalformed counts packets rejected by the Flow Key Builder due to
	// an invalid IPv4 header (spec §7 MalformedHeader).
	PacketsMalformed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: accounterSubsys,
		Name:      "packets_malformed_total",
		Help:      "Number of packets dropped due to a malformed IPv4 header",
	})

	// FlowsIdleExpired counts flow records removed from the table by the
	// Expiration Scanner due to the idle timeout.
	FlowsIdleExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: scannerSubsys,
		Name:      "flows_idle_expired_total",
		Help:      "Number of flow records idle-expired and removed from the table",
	})

	// FlowsActiveRotated counts flow records snapshotted and reset in place
	// by the Expiration Scanner due to the active timeout.
	FlowsActiveRotated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: scannerSubsys,
		Name:      "flows_active_rotated_total",
		Help:      "Number of flow records active-rotated (snapshotted, counters reset in place)",
	})

	// ScanDuration records how long each Expiration Scanner pass takes.
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: scannerSubsys,
		Name:      "scan_duration_seconds",
		Help:      "Duration of one expiration scan pass over the flow table",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// DatagramsSent counts IPFIX datagrams successfully handed to the
	// transmitter.
	DatagramsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: exporterSubsys,
		Name:      "datagrams_sent_total",
		Help:      "Number of IPFIX datagrams successfully transmitted",
	})

	// DatagramsDroppedBackpressure counts datagrams dropped after exhausting
	// the bounded retry budget under transmit backpressure (spec §7).
	DatagramsDroppedBackpressure = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: exporterSubsys,
		Name:      "datagrams_dropped_backpressure_total",
		Help:      "Number of IPFIX datagrams dropped after exceeding the transmit retry budget",
	})

	// FlowTableOccupancy reports the live record count in the flow table.
	FlowTableOccupancy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: accounterSubsys,
		Name:      "flow_table_occupancy",
		Help:      "Number of live flow records currently held in the flow table",
	})

	// ExportSequenceNumber mirrors the exporter's current sequence counter.
	ExportSequenceNumber = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: exporterSubsys,
		Name:      "sequence_number",
		Help:      "Current IPFIX export sequence number",
	})
)

func init() {
	prometheus.MustRegister(
		PacketsAccounted,
		PacketsDroppedTableFull,
		PacketsMalformed,
		FlowsIdleExpired,
		FlowsActiveRotated,
		ScanDuration,
		DatagramsSent,
		DatagramsDroppedBackpressure,
		FlowTableOccupancy,
		ExportSequenceNumber,
	)
}

// Handler returns the Prometheus scrape endpoint handler for the optional
// metrics HTTP listener (spec §13's metrics.addr configuration field).
func Handler() http.Handler {
	return promhttp.Handler()
}
