package ipfix

import (
	"encoding/binary"
	"net"

	"github.com/fako1024/gotools/concurrency"
)

const (
	ipv4HeaderSize = 20
	udpHeaderSize  = 8

	ipv4VersionIHL = 0x45 // version 4, IHL 5 (no options)
	ipv4TTL        = 64
	protocolUDP    = 17
)

// Builder assembles complete IPv4/UDP/IPFIX datagrams ready for a
// Transmitter; handing them over is the caller's job. It owns a pool of reusable byte buffers so the slow-path
// export loop does not allocate a new buffer on every tick, mirroring the
// teacher's LocalBuffer/MemPool pattern (pkg/capture/buffer.go) adapted
// here to pool whole outbound datagrams instead of per-packet hash entries.
type Builder struct {
	ExporterIP          net.IP
	ExporterPort        uint16
	CollectorIP         net.IP
	CollectorPort       uint16
	ObservationDomainID uint32

	pool *concurrency.MemPool
}

// NewBuilder constructs a Builder. poolSize bounds the number of buffers
// kept ready between transmissions.
func NewBuilder(exporterIP, collectorIP net.IP, exporterPort, collectorPort uint16, observationDomainID uint32, poolSize int) *Builder {
	return &Builder{
		ExporterIP:          exporterIP,
		ExporterPort:        exporterPort,
		CollectorIP:         collectorIP,
		CollectorPort:       collectorPort,
		ObservationDomainID: observationDomainID,
		pool:                concurrency.NewMemPool(poolSize),
	}
}

// Build assembles one complete IPv4/UDP datagram carrying a single IPFIX
// message with one data set of records, and returns the datagram.
// sequenceNumber is written into the message header as given; the caller
// passes the count of records exported before this message and advances its
// own counter. exportTimeSec is seconds since the Unix epoch.
func (b *Builder) Build(records []DataRecord, sequenceNumber uint32, exportTimeSec uint32) []byte {
	setLen := SetLength(len(records))
	msgLen := MessageHeaderSize + setLen
	udpLen := udpHeaderSize + msgLen
	totalLen := ipv4HeaderSize + udpLen

	buf := b.pool.Get()
	if cap(buf) < totalLen {
		buf = make([]byte, totalLen)
	} else {
		buf = buf[:totalLen]
	}

	b.writeIPv4Header(buf[:ipv4HeaderSize], uint16(udpLen))
	writeUDPHeader(buf[ipv4HeaderSize:ipv4HeaderSize+udpHeaderSize], b.ExporterPort, b.CollectorPort, uint16(udpLen))

	payload := buf[ipv4HeaderSize+udpHeaderSize:]
	EncodeMessageHeader(payload, uint16(msgLen), exportTimeSec, sequenceNumber, b.ObservationDomainID)
	EncodeSet(payload[MessageHeaderSize:], records)

	return buf
}

// Release returns a datagram buffer obtained from Build back to the pool.
// Call it once the transmitter has taken ownership of (or finished with)
// the buffer's contents.
func (b *Builder) Release(buf []byte) {
	b.pool.Put(buf)
}

func (b *Builder) writeIPv4Header(buf []byte, udpLen uint16) {
	buf[0] = ipv4VersionIHL
	buf[1] = 0 // TOS
	binary.BigEndian.PutUint16(buf[2:4], uint16(ipv4HeaderSize)+udpLen)
	binary.BigEndian.PutUint16(buf[4:6], 0) // identification
	binary.BigEndian.PutUint16(buf[6:8], 0) // flags + fragment offset
	buf[8] = ipv4TTL
	buf[9] = protocolUDP
	binary.BigEndian.PutUint16(buf[10:12], 0) // checksum, computed below
	copy(buf[12:16], b.ExporterIP.To4())
	copy(buf[16:20], b.CollectorIP.To4())

	checksum := ipChecksum(buf[:ipv4HeaderSize])
	binary.BigEndian.PutUint16(buf[10:12], checksum)
}

func writeUDPHeader(buf []byte, srcPort, dstPort uint16, udpLen uint16) {
	binary.BigEndian.PutUint16(buf[0:2], srcPort)
	binary.BigEndian.PutUint16(buf[2:4], dstPort)
	binary.BigEndian.PutUint16(buf[4:6], udpLen)
	binary.BigEndian.PutUint16(buf[6:8], 0) // checksum left unset: optional over IPv4, best-effort export
}

// ipChecksum computes the RFC 791 one's-complement checksum of hdr (the
// checksum field itself must be zero when this is called).
func ipChecksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
