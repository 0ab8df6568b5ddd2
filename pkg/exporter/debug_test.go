package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flowexport/ipfixd/pkg/dataplane"
	"github.com/flowexport/ipfixd/pkg/flowtable"
)

func TestDebugSnapshot(t *testing.T) {
	tx := &dataplane.MockTransmitter{FailN: 1}
	exp, _ := newTestExporter(tx)
	exp.Table = flowtable.New(16)
	exp.Table.Insert(recordFor(1).Key, recordFor(1))
	exp.Table.Insert(recordFor(2).Key, recordFor(2))

	exp.RecordScanDuration(42 * time.Millisecond)
	exp.ExportExpired([]flowtable.Record{recordFor(3)})

	snap := exp.DebugSnapshot()
	assert.Equal(t, 2, snap.FlowTableOccupancy)
	assert.Equal(t, exp.Table.Capacity(), snap.FlowTableCapacity)
	assert.EqualValues(t, 0, snap.ExportSequence)
	assert.Equal(t, 1, snap.PendingDatagrams, "datagram should still be queued after a transmit failure")
	assert.EqualValues(t, 42, snap.LastScanDurationMs)
}

func TestDebugSnapshot_NoTable(t *testing.T) {
	tx := &dataplane.MockTransmitter{}
	exp, _ := newTestExporter(tx)

	snap := exp.DebugSnapshot()
	assert.Zero(t, snap.FlowTableOccupancy)
	assert.Zero(t, snap.FlowTableCapacity)
}
