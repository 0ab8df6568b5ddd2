// Package config carries the exporter's process-wide configuration record
// (spec §6), populated once at startup from flags/env/file via viper and
// validated through the same validator-interface convention the teacher
// repository's cmd/goProbe/config package uses.
package config

const (
	// DefaultCollectorPort is the well-known IPFIX collector port.
	DefaultCollectorPort uint16 = 4739

	// DefaultIdleTimeoutMs is the default flow idle-expiry threshold.
	DefaultIdleTimeoutMs int64 = 10000

	// DefaultActiveTimeoutMs is the default flow active-rotation threshold.
	DefaultActiveTimeoutMs int64 = 30000

	// DefaultScanPeriodMs is the default Expiration Scanner wake-up interval.
	DefaultScanPeriodMs int64 = 10000

	// DefaultObservationDomainID is used when none is configured.
	DefaultObservationDomainID uint32 = 0

	// DefaultFlowTableCapacity is the default pre-sized flow table capacity.
	DefaultFlowTableCapacity int = 1 << 20

	// DefaultLogLevel and DefaultLogEncoding match pkg/logging's defaults.
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "logfmt"

	// DefaultMaxTransmitRetries bounds retries for a datagram stuck under
	// transmit backpressure (spec §7).
	DefaultMaxTransmitRetries = 3

	// DefaultDatagramPoolSize bounds the number of reusable datagram buffers
	// kept by the Datagram Builder.
	DefaultDatagramPoolSize = 16
)
