package ipfix

import "encoding/binary"

// DataRecord is the field-level content of one exported flow, independent
// of how the caller represents a live flow record. IP octets are stored
// exactly as observed (network byte order); ports are numeric values,
// written big-endian; FlowStartMs/FlowEndMs/
// OctetCount/PacketCount are encoded as 64-bit unsigned big-endian per
// spec (mandated over the original source's inconsistent 32/64-bit
// handling; see DESIGN.md open question #2).
type DataRecord struct {
	SrcIP       [4]byte
	DstIP       [4]byte
	Protocol    byte
	SrcPort     uint16
	DstPort     uint16
	FlowStartMs uint64
	FlowEndMs   uint64
	OctetCount  uint64
	PacketCount uint64
}

// EncodeRecord writes the 45-octet fixed-width data record for rec into buf
// (in Template field order) and returns the number of bytes written. buf
// must be at least RecordWidth bytes; a shorter buffer is a caller
// programming error (spec's EncodeBufferTooSmall), not a runtime condition
// the encoder tolerates, so it panics rather than returning an error.
func EncodeRecord(buf []byte, rec DataRecord) int {
	if len(buf) < RecordWidth {
		panic("ipfix: EncodeBufferTooSmall")
	}

	off := 0
	copy(buf[off:off+4], rec.SrcIP[:])
	off += 4
	copy(buf[off:off+4], rec.DstIP[:])
	off += 4
	buf[off] = rec.Protocol
	off++
	binary.BigEndian.PutUint16(buf[off:off+2], rec.SrcPort)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], rec.DstPort)
	off += 2
	binary.BigEndian.PutUint64(buf[off:off+8], rec.FlowStartMs)
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], rec.FlowEndMs)
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], rec.OctetCount)
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], rec.PacketCount)
	off += 8

	return off
}

// SetHeaderSize is the width, in octets, of the 4-byte set header prefixing
// every data set.
const SetHeaderSize = 4

// EncodeSet writes an IPFIX Data Set containing the given records into buf:
// a 4-octet set header (set_id, length-including-header) followed by each
// record's 45-octet body in order. Returns the number of bytes written.
func EncodeSet(buf []byte, records []DataRecord) int {
	length := SetHeaderSize + len(records)*RecordWidth
	if len(buf) < length {
		panic("ipfix: EncodeBufferTooSmall")
	}

	binary.BigEndian.PutUint16(buf[0:2], SetID)
	binary.BigEndian.PutUint16(buf[2:4], uint16(length))

	off := SetHeaderSize
	for _, rec := range records {
		off += EncodeRecord(buf[off:], rec)
	}
	return off
}

// SetLength returns the encoded byte length of a data set holding n records.
func SetLength(n int) int {
	return SetHeaderSize + n*RecordWidth
}
