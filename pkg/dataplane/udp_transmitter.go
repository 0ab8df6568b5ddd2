package dataplane

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// RawTransmitter is a reference Transmitter backed by an IP_HDRINCL raw
// socket: since the Datagram Builder constructs the IPv4 and UDP headers
// itself (spec §4.7), transmission must hand the kernel an already-complete
// packet rather than a UDP payload the kernel would re-wrap. This is the
// standalone-process counterpart to the real dataplane's own transmit entry
// point, which the core treats as an external collaborator (spec §1).
type RawTransmitter struct {
	fd   int
	dest unix.SockaddrInet4
}

// NewRawTransmitter opens an IP_HDRINCL raw socket targeting collectorIP.
// Requires CAP_NET_RAW (or root) in the running process.
func NewRawTransmitter(collectorIP net.IP) (*RawTransmitter, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_RAW)
	if err != nil {
		return nil, fmt.Errorf("dataplane: open raw socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("dataplane: set IP_HDRINCL: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("dataplane: set SO_REUSEADDR: %w", err)
	}

	v4 := collectorIP.To4()
	if v4 == nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("dataplane: collector address %s is not IPv4", collectorIP)
	}
	var addr [4]byte
	copy(addr[:], v4)

	return &RawTransmitter{
		fd:   fd,
		dest: unix.SockaddrInet4{Addr: addr},
	}, nil
}

// Enqueue sends a complete IPv4/UDP datagram (including both headers) as
// built by ipfix.Builder.
func (t *RawTransmitter) Enqueue(datagram []byte) error {
	return unix.Sendto(t.fd, datagram, 0, &t.dest)
}

// Close releases the underlying socket.
func (t *RawTransmitter) Close() error {
	return unix.Close(t.fd)
}
