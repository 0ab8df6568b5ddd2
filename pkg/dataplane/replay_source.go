package dataplane

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// ReplaySource reads a sequence of length-prefixed IPv4 header buffers from
// an io.Reader: a 4-octet big-endian interface ID, a 2-octet big-endian
// length, followed by that many header octets. It lets the standalone
// binary exercise the full accounting/export pipeline against a captured
// packet stream without requiring a live AF_PACKET/PF_RING capture path,
// which spec §1 places outside this module (PacketSource is a collaborator
// interface here, not a live capture implementation).
type ReplaySource struct {
	r *bufio.Reader
}

// NewReplaySource wraps r for framed reading.
func NewReplaySource(r io.Reader) *ReplaySource {
	return &ReplaySource{r: bufio.NewReader(r)}
}

// Next implements PacketSource, returning ok=false once the stream is
// exhausted or ends in a truncated frame.
func (s *ReplaySource) Next() (hdr []byte, ifaceID uint32, ok bool) {
	var head [6]byte
	if _, err := io.ReadFull(s.r, head[:]); err != nil {
		return nil, 0, false
	}
	ifaceID = binary.BigEndian.Uint32(head[0:4])
	n := binary.BigEndian.Uint16(head[4:6])

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, 0, false
	}
	return buf, ifaceID, true
}

// WriteFrame writes one length-prefixed frame in ReplaySource's format,
// used by tooling that produces replay files.
func WriteFrame(w io.Writer, ifaceID uint32, hdr []byte) error {
	if len(hdr) > 0xffff {
		return fmt.Errorf("dataplane: header of %d bytes exceeds frame limit", len(hdr))
	}
	var head [6]byte
	binary.BigEndian.PutUint32(head[0:4], ifaceID)
	binary.BigEndian.PutUint16(head[4:6], uint16(len(hdr)))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	_, err := w.Write(hdr)
	return err
}
