package flowtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowexport/ipfixd/pkg/flowkey"
)

func testKey(b byte) flowkey.Key {
	var k flowkey.Key
	k[0] = b
	return k
}

func TestInsertLookupGet(t *testing.T) {
	tbl := New(16)
	k := testKey(1)

	idx, err := tbl.Insert(k, Record{PacketCount: 1, OctetCount: 100})
	require.NoError(t, err)

	gotIdx, ok := tbl.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, idx, gotIdx)

	rec := tbl.Get(gotIdx)
	assert.Equal(t, uint64(1), rec.PacketCount)
	assert.Equal(t, uint64(100), rec.OctetCount)
	assert.Equal(t, 1, tbl.Len())
}

func TestLookupAfterRemoveIsEmpty(t *testing.T) {
	tbl := New(16)
	k := testKey(2)

	_, err := tbl.Insert(k, Record{})
	require.NoError(t, err)

	tbl.Remove(k)
	_, ok := tbl.Lookup(k)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())

	// idempotent
	tbl.Remove(k)
	assert.Equal(t, 0, tbl.Len())
}

func TestIndexStableBetweenInsertAndRemove(t *testing.T) {
	tbl := New(16)
	k := testKey(3)

	idx, err := tbl.Insert(k, Record{})
	require.NoError(t, err)

	tbl.Get(idx).PacketCount = 42
	gotIdx, ok := tbl.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, idx, gotIdx)
	assert.Equal(t, uint64(42), tbl.Get(idx).PacketCount)
}

func TestTableFull(t *testing.T) {
	tbl := New(1) // rounds up to bucketCnt=8 slots
	for i := 0; i < tbl.Capacity(); i++ {
		_, err := tbl.Insert(testKey(byte(i+10)), Record{})
		require.NoError(t, err)
	}
	_, err := tbl.Insert(testKey(200), Record{})
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestRemoveReclaimsCapacity(t *testing.T) {
	tbl := New(1)
	capacity := tbl.Capacity()
	keys := make([]flowkey.Key, capacity)
	for i := 0; i < capacity; i++ {
		keys[i] = testKey(byte(i + 1))
		_, err := tbl.Insert(keys[i], Record{})
		require.NoError(t, err)
	}
	tbl.Remove(keys[0])
	_, err := tbl.Insert(testKey(250), Record{})
	assert.NoError(t, err, "removing a key should free its slot for reuse")
}

func TestIterVisitsAllLiveRecords(t *testing.T) {
	tbl := New(16)
	want := map[flowkey.Key]bool{}
	for i := byte(1); i <= 5; i++ {
		k := testKey(i)
		want[k] = true
		_, err := tbl.Insert(k, Record{})
		require.NoError(t, err)
	}
	tbl.Remove(testKey(3))
	delete(want, testKey(3))

	got := map[flowkey.Key]bool{}
	tbl.Iter(func(k flowkey.Key, r *Record) bool {
		got[k] = true
		return true
	})
	assert.Equal(t, want, got)
}

func TestInsertOverwritesExistingKey(t *testing.T) {
	tbl := New(16)
	k := testKey(9)
	idx1, err := tbl.Insert(k, Record{PacketCount: 1})
	require.NoError(t, err)
	idx2, err := tbl.Insert(k, Record{PacketCount: 2})
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, uint64(2), tbl.Get(idx2).PacketCount)
}
