package ipfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeMessageHeader(t *testing.T) {
	buf := make([]byte, MessageHeaderSize)
	n := EncodeMessageHeader(buf, 65, 1700000000, 7, 42)
	assert.Equal(t, MessageHeaderSize, n)
	assert.Equal(t, uint16(10), be16(buf[0:2]))
	assert.Equal(t, uint16(65), be16(buf[2:4]))
	assert.Equal(t, uint32(1700000000), be32(buf[4:8]))
	assert.Equal(t, uint32(7), be32(buf[8:12]))
	assert.Equal(t, uint32(42), be32(buf[12:16]))
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
