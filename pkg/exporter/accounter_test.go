package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowexport/ipfixd/pkg/flowkey"
	"github.com/flowexport/ipfixd/pkg/flowtable"
)

func ipv4Header(proto byte, totalLen uint16, srcIP, dstIP [4]byte, sport, dport uint16) []byte {
	h := make([]byte, 20, 24)
	h[0] = 0x45
	h[2] = byte(totalLen >> 8)
	h[3] = byte(totalLen)
	h[9] = proto
	copy(h[12:16], srcIP[:])
	copy(h[16:20], dstIP[:])
	if proto == 6 || proto == 17 {
		h = append(h, byte(sport>>8), byte(sport), byte(dport>>8), byte(dport))
	}
	return h
}

// TestScenario1_SingleFlowAccounting mirrors spec §8 scenario 1.
func TestScenario1_SingleFlowAccounting(t *testing.T) {
	tbl := flowtable.New(16)
	acc := NewAccounter(tbl)

	src := [4]byte{10, 0, 0, 1}
	dst := [4]byte{10, 0, 0, 2}

	for i, ts := range []int64{1000, 1100, 1200} {
		hdr := ipv4Header(17, 100, src, dst, 1000, 53)
		require.NoErrorf(t, acc.Observe(hdr, ts), "packet %d", i)
	}

	require.Equal(t, 1, tbl.Len())

	var found *flowtable.Record
	tbl.Iter(func(k flowkey.Key, r *flowtable.Record) bool {
		found = r
		return false
	})
	require.NotNil(t, found)
	assert.Equal(t, uint64(3), found.PacketCount)
	assert.Equal(t, uint64(300), found.OctetCount)
	assert.Equal(t, int64(1000), found.FlowStartMs)
	assert.Equal(t, int64(1200), found.FlowEndMs)
}

// TestScenario2_TwoFlowIsolation mirrors spec §8 scenario 2.
func TestScenario2_TwoFlowIsolation(t *testing.T) {
	tbl := flowtable.New(16)
	acc := NewAccounter(tbl)

	a := [4]byte{10, 0, 0, 1}
	b := [4]byte{10, 0, 0, 2}

	require.NoError(t, acc.Observe(ipv4Header(6, 60, a, b, 1000, 80), 0))
	require.NoError(t, acc.Observe(ipv4Header(6, 60, b, a, 80, 1000), 0))

	assert.Equal(t, 2, tbl.Len())
}

func TestAccounter_NonTCPUDP_PortsZero(t *testing.T) {
	tbl := flowtable.New(16)
	acc := NewAccounter(tbl)

	a := [4]byte{10, 0, 0, 1}
	b := [4]byte{10, 0, 0, 2}
	require.NoError(t, acc.Observe(ipv4Header(1, 84, a, b, 0, 0), 0))

	var rec *flowtable.Record
	tbl.Iter(func(k flowkey.Key, r *flowtable.Record) bool {
		rec = r
		return false
	})
	require.NotNil(t, rec)
	assert.Equal(t, uint16(0), rec.Key.SrcPort())
	assert.Equal(t, uint16(0), rec.Key.DstPort())
}

func TestAccounter_MalformedHeader(t *testing.T) {
	tbl := flowtable.New(16)
	acc := NewAccounter(tbl)
	err := acc.Observe([]byte{0x45, 0x00}, 0)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.Equal(t, 0, tbl.Len())
}

func TestAccounter_TableFull(t *testing.T) {
	tbl := flowtable.New(1)
	acc := NewAccounter(tbl)

	for i := 0; i < tbl.Capacity(); i++ {
		a := [4]byte{10, 0, 0, byte(i + 1)}
		b := [4]byte{10, 0, 0, 200}
		require.NoError(t, acc.Observe(ipv4Header(17, 10, a, b, uint16(2000+i), 53), 0))
	}

	a := [4]byte{10, 0, 0, 250}
	b := [4]byte{10, 0, 0, 200}
	err := acc.Observe(ipv4Header(17, 10, a, b, 9999, 53), 0)
	assert.ErrorIs(t, err, ErrTableFull)
}
