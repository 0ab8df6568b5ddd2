package dataplane

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaySource_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 1, []byte{1, 2, 3}))
	require.NoError(t, WriteFrame(&buf, 2, []byte{4, 5}))

	src := NewReplaySource(&buf)

	hdr, iface, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(1), iface)
	assert.Equal(t, []byte{1, 2, 3}, hdr)

	hdr, iface, ok = src.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(2), iface)
	assert.Equal(t, []byte{4, 5}, hdr)

	_, _, ok = src.Next()
	assert.False(t, ok)
}

func TestReplaySource_EmptyStream(t *testing.T) {
	src := NewReplaySource(bytes.NewReader(nil))
	_, _, ok := src.Next()
	assert.False(t, ok)
}
