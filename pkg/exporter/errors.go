package exporter

import "errors"

// Error kinds from spec §7. The fast path never surfaces these to the
// dataplane: every Accounter failure is converted to a counter increment
// (see pkg/metrics). The slow path logs warnings on non-fatal errors and
// continues; EncodeBufferTooSmall is the sole programming-invariant
// violation, and it panics inside pkg/ipfix rather than being returned
// here, per spec §7's "treated as fatal assertion."
var (
	// ErrTableFull is surfaced by Accounter.Observe when the flow table has
	// no capacity for a new key. The packet is dropped from accounting;
	// forwarding is unaffected.
	ErrTableFull = errors.New("exporter: flow table full")

	// ErrMalformedHeader is surfaced by Accounter.Observe when the Flow Key
	// Builder rejects the packet's IPv4 header.
	ErrMalformedHeader = errors.New("exporter: malformed IPv4 header")

	// ErrTransmitBackpressure names the transmit-backpressure error kind.
	// The Exporter does not return it: a datagram the Transmitter rejects
	// stays queued and is retried, then dropped once
	// Exporter.MaxTransmitRetries attempts have failed.
	ErrTransmitBackpressure = errors.New("exporter: transmit backpressure")
)
