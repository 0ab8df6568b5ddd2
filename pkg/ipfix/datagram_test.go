package ipfix

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build_HeaderLayout(t *testing.T) {
	b := NewBuilder(net.IPv4(10, 0, 0, 1), net.IPv4(10, 0, 0, 2), 9999, 4739, 0, 4)

	rec := DataRecord{SrcIP: [4]byte{1, 2, 3, 4}, DstIP: [4]byte{5, 6, 7, 8}, Protocol: 17}
	datagram := b.Build([]DataRecord{rec}, 0, 1700000000)
	defer b.Release(datagram)

	require.Len(t, datagram, ipv4HeaderSize+udpHeaderSize+MessageHeaderSize+SetLength(1))

	assert.Equal(t, byte(0x45), datagram[0], "version/IHL")
	assert.Equal(t, byte(17), datagram[9], "protocol must be UDP")

	totalLen := be16(datagram[2:4])
	assert.Equal(t, uint16(len(datagram)), totalLen)

	srcPort := be16(datagram[ipv4HeaderSize : ipv4HeaderSize+2])
	dstPort := be16(datagram[ipv4HeaderSize+2 : ipv4HeaderSize+4])
	assert.Equal(t, uint16(9999), srcPort)
	assert.Equal(t, uint16(4739), dstPort)

	payload := datagram[ipv4HeaderSize+udpHeaderSize:]
	assert.Equal(t, uint16(10), be16(payload[0:2]), "IPFIX version")
}

func TestIPChecksum_ZeroesOutOnValidHeader(t *testing.T) {
	b := NewBuilder(net.IPv4(192, 168, 1, 1), net.IPv4(192, 168, 1, 2), 1, 2, 0, 1)
	hdr := make([]byte, ipv4HeaderSize)
	b.writeIPv4Header(hdr, 16)

	// RFC 791: the one's-complement sum of the header (checksum field included, as
	// computed) must fold to 0xffff, i.e. its complement is zero.
	var sum uint32
	for i := 0; i < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	assert.Equal(t, uint16(0xffff), uint16(sum))
}
