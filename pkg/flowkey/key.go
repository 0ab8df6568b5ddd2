// Package flowkey extracts a canonical 5-tuple FlowKey from an IPv4 header.
package flowkey

import (
	"errors"

	"golang.org/x/net/ipv4"
)

// Protocol numbers consulted when deciding whether to extract transport ports.
const (
	TCP byte = 6
	UDP byte = 17
)

// Size is the fixed, padded width of a FlowKey in bytes. It must be at least
// 18 bytes per the wire layout (4 src_ip + 4 dst_ip + 1 protocol + 2 src_port
// + 2 dst_port = 13 bytes of payload); the remainder is zero padding so the
// key has a stable size as a hash-table key.
const Size = 24

// ErrMalformedHeader is returned when the supplied buffer cannot possibly
// hold a valid IPv4 header.
var ErrMalformedHeader = errors.New("flowkey: malformed IPv4 header")

// Key is the fixed-width, zero-padded identifier of a unidirectional flow.
// Equality is bytewise on the full padded array, so Key can be used directly
// as a Go map key or hashed wholesale.
type Key [Size]byte

// offsets within Key
const (
	offSrcIP    = 0
	offDstIP    = 4
	offProtocol = 8
	offSrcPort  = 9
	offDstPort  = 11
	// offsets 13..Size-1 are zero padding
)

// SrcIP returns the 4-byte source address as stored (network byte order).
func (k Key) SrcIP() [4]byte {
	var b [4]byte
	copy(b[:], k[offSrcIP:offSrcIP+4])
	return b
}

// DstIP returns the 4-byte destination address as stored (network byte order).
func (k Key) DstIP() [4]byte {
	var b [4]byte
	copy(b[:], k[offDstIP:offDstIP+4])
	return b
}

// Protocol returns the IANA protocol number.
func (k Key) Protocol() byte { return k[offProtocol] }

// SrcPort returns the source transport port, or 0 if the protocol doesn't carry one.
func (k Key) SrcPort() uint16 {
	return uint16(k[offSrcPort])<<8 | uint16(k[offSrcPort+1])
}

// DstPort returns the destination transport port, or 0 if the protocol doesn't carry one.
func (k Key) DstPort() uint16 {
	return uint16(k[offDstPort])<<8 | uint16(k[offDstPort+1])
}

// Build extracts a FlowKey from an Ethernet-stripped IPv4 header. hdr must
// contain at least the fixed 20-byte IPv4 header; if the protocol is TCP or
// UDP, hdr must also contain the first four octets of the transport header,
// located at the offset given by the header's IHL field (header length in
// 32-bit words), not a hardcoded 20 — real IPv4 headers may carry options.
func Build(hdr []byte) (Key, error) {
	var k Key

	if len(hdr) < ipv4.HeaderLen {
		return k, ErrMalformedHeader
	}
	if hdr[0]>>4 != 4 {
		return k, ErrMalformedHeader
	}
	ihl := int(hdr[0]&0x0f) * 4
	if ihl < ipv4.HeaderLen || len(hdr) < ihl {
		return k, ErrMalformedHeader
	}

	copy(k[offSrcIP:offSrcIP+4], hdr[12:16])
	copy(k[offDstIP:offDstIP+4], hdr[16:20])

	protocol := hdr[9]
	k[offProtocol] = protocol

	if protocol == TCP || protocol == UDP {
		if len(hdr) < ihl+4 {
			return k, ErrMalformedHeader
		}
		copy(k[offSrcPort:offSrcPort+2], hdr[ihl:ihl+2])
		copy(k[offDstPort:offDstPort+2], hdr[ihl+2:ihl+4])
	}
	// non-TCP/UDP: ports (and all padding) stay zero.

	return k, nil
}

// TotalLength reads the IPv4 total-length field (host byte order) used by
// the Flow Accounter to add to a record's octet counter.
func TotalLength(hdr []byte) (uint16, error) {
	if len(hdr) < ipv4.HeaderLen {
		return 0, ErrMalformedHeader
	}
	return uint16(hdr[2])<<8 | uint16(hdr[3]), nil
}
