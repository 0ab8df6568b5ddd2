package ipfix

import "encoding/binary"

// MessageHeaderSize is the width, in octets, of the fixed IPFIX v10 message
// header.
const MessageHeaderSize = 16

// messageVersion is the fixed IPFIX protocol version.
const messageVersion uint16 = 10

// EncodeMessageHeader writes the 16-octet IPFIX v10 message header into buf.
// length is the total message size in octets, including this header.
// exportTimeSec is seconds since the Unix epoch; sequenceNumber is the
// monotonically increasing count of data records this exporter has sent
// before this message (reset only on restart); observationDomainID is the
// configured domain identifier (default 0).
func EncodeMessageHeader(buf []byte, length uint16, exportTimeSec uint32, sequenceNumber uint32, observationDomainID uint32) int {
	if len(buf) < MessageHeaderSize {
		panic("ipfix: EncodeBufferTooSmall")
	}
	binary.BigEndian.PutUint16(buf[0:2], messageVersion)
	binary.BigEndian.PutUint16(buf[2:4], length)
	binary.BigEndian.PutUint32(buf[4:8], exportTimeSec)
	binary.BigEndian.PutUint32(buf[8:12], sequenceNumber)
	binary.BigEndian.PutUint32(buf[12:16], observationDomainID)
	return MessageHeaderSize
}
