package exporter

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowexport/ipfixd/pkg/dataplane"
	"github.com/flowexport/ipfixd/pkg/flowkey"
	"github.com/flowexport/ipfixd/pkg/flowtable"
	"github.com/flowexport/ipfixd/pkg/ipfix"
)

func newTestExporter(tx dataplane.Transmitter) (*Exporter, *ipfix.Builder) {
	b := ipfix.NewBuilder(net.IPv4(10, 0, 0, 9), net.IPv4(10, 0, 0, 8), 9999, 4739, 0, 8)
	clock := dataplane.NewMockClock(1700000000000)
	return NewExporter(b, tx, clock, 3), b
}

func recordFor(tag byte) flowtable.Record {
	var k flowkey.Key
	k[0] = tag
	return flowtable.Record{Key: k, FlowStartMs: 0, FlowEndMs: 100, PacketCount: 1, OctetCount: 64}
}

// TestScenario6_SequenceMonotonicity mirrors spec §8 scenario 6: exporting
// batches of 1, 2, 2 records produces sequence numbers 0, 1, 3 in the
// message headers.
func TestScenario6_SequenceMonotonicity(t *testing.T) {
	tx := &dataplane.MockTransmitter{}
	exp, _ := newTestExporter(tx)

	batches := [][]flowtable.Record{
		{recordFor(1)},
		{recordFor(2), recordFor(3)},
		{recordFor(4), recordFor(5)},
	}

	var gotSeqs []uint32
	for _, batch := range batches {
		exp.ExportExpired(batch)
	}
	require.Len(t, tx.Sent, 3)
	for _, datagram := range tx.Sent {
		payload := datagram[28:] // 20 IPv4 + 8 UDP
		seq := uint32(payload[8])<<24 | uint32(payload[9])<<16 | uint32(payload[10])<<8 | uint32(payload[11])
		gotSeqs = append(gotSeqs, seq)
	}
	assert.Equal(t, []uint32{0, 1, 3}, gotSeqs)
}

func TestExportExpired_TransmitBackpressureRetries(t *testing.T) {
	tx := &dataplane.MockTransmitter{FailN: 2}
	exp, _ := newTestExporter(tx)

	sent := exp.ExportExpired([]flowtable.Record{recordFor(1)})
	assert.Equal(t, 0, sent)
	assert.Len(t, exp.pending, 1)

	sent = exp.ExportExpired(nil)
	assert.Equal(t, 0, sent)
	assert.Len(t, exp.pending, 1)

	sent = exp.ExportExpired(nil)
	assert.Equal(t, 1, sent)
	assert.Len(t, exp.pending, 0)
}

func TestExportExpired_DropsAfterMaxRetries(t *testing.T) {
	tx := &dataplane.MockTransmitter{FailN: 10}
	exp, _ := newTestExporter(tx)
	exp.MaxTransmitRetries = 2

	exp.ExportExpired([]flowtable.Record{recordFor(1)})
	exp.ExportExpired(nil)

	assert.Empty(t, exp.pending, "datagram must be dropped once retries are exhausted")
	assert.Empty(t, tx.Sent)
}

func TestRecordEncodeDecodeRoundTrip(t *testing.T) {
	r := ipfix.DataRecord{
		SrcIP: [4]byte{1, 2, 3, 4}, DstIP: [4]byte{5, 6, 7, 8},
		Protocol: 6, SrcPort: 80, DstPort: 443,
		FlowStartMs: 1000, FlowEndMs: 2000, OctetCount: 9000, PacketCount: 12,
	}
	buf := make([]byte, ipfix.RecordWidth)
	ipfix.EncodeRecord(buf, r)

	decoded := ipfix.DataRecord{
		SrcIP:       [4]byte(buf[0:4]),
		DstIP:       [4]byte(buf[4:8]),
		Protocol:    buf[8],
		SrcPort:     uint16(buf[9])<<8 | uint16(buf[10]),
		DstPort:     uint16(buf[11])<<8 | uint16(buf[12]),
		FlowStartMs: be64(buf[13:21]),
		FlowEndMs:   be64(buf[21:29]),
		OctetCount:  be64(buf[29:37]),
		PacketCount: be64(buf[37:45]),
	}
	assert.Equal(t, r, decoded)
}

func be64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
