// Package flowtable implements a fixed-capacity, bucketed hash table mapping
// flow keys to flow records. Capacity is pre-sized at construction time and
// never grows: a full table rejects new inserts with ErrTableFull rather
// than reallocating, so the fast path never allocates on a miss.
package flowtable

import (
	"errors"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/flowexport/ipfixd/pkg/flowkey"
)

// ErrTableFull is returned by Insert when no bucket capacity remains for a
// new key.
var ErrTableFull = errors.New("flowtable: table full")

// bucketCnt slots share a cache line's worth of top-hash bytes before
// probing moves to the next bucket, mirroring the bucketed layout used by
// the teacher's generic hashmap.Map (zeebo/xxh3-hashed, bucketCnt=8) without
// its grow/evacuate machinery, which this table deliberately omits.
const bucketCnt = 8

type slot struct {
	used    bool
	topHash uint8
	key     flowkey.Key
	record  Record
}

// Table is a fixed-size, bucketed hash table keyed by flowkey.Key. All
// exported methods are safe for concurrent use (see DESIGN.md for the
// single-worker-vs-multi-worker trade-off this enables).
type Table struct {
	mu sync.Mutex

	slots    []slot
	nBuckets int
	mask     uint64
	count    int
	capacity int
}

// New allocates a table sized to hold at least capacity live records. The
// underlying slot array is sized to the next power-of-two multiple of
// bucketCnt and is never reallocated afterwards.
func New(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	nBuckets := 1
	for nBuckets*bucketCnt < capacity {
		nBuckets *= 2
	}
	return &Table{
		slots:    make([]slot, nBuckets*bucketCnt),
		nBuckets: nBuckets,
		mask:     uint64(nBuckets - 1),
		capacity: nBuckets * bucketCnt,
	}
}

// Capacity returns the total number of record slots available.
func (t *Table) Capacity() int {
	return t.capacity
}

// Len returns the number of live records currently stored.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func hash(key flowkey.Key) uint64 {
	return xxh3.Hash(key[:])
}

func topHashOf(h uint64) uint8 {
	top := uint8(h >> 56)
	if top < 1 {
		top += 1 // reserve 0 for tombstones
	}
	return top
}

// findSlot scans starting at the bucket the key hashes to, probing forward
// bucket-by-bucket (each bucket holding bucketCnt candidate positions) until
// it finds the key or reaches a never-used slot, which terminates the probe
// chain (a key present in the table would have been placed at or before the
// first never-used slot encountered on its chain). Tombstoned slots (left
// behind by Remove) do not terminate the chain but are remembered as the
// preferred insertion point, so repeated insert/remove cycles reclaim
// capacity instead of leaking it.
//
// It returns the slot's global index and whether an existing matching key
// was found there; if not found, idx points at the best available insertion
// slot (a tombstone if one was seen, else the terminating empty slot), or
// -1 if the table is completely full with no empty or tombstoned slot on
// the chain.
func (t *Table) findSlot(key flowkey.Key, h uint64, top uint8) (idx int, found bool) {
	firstTombstone := -1
	startBucket := h & t.mask
	for b := uint64(0); b < uint64(t.nBuckets); b++ {
		bucket := (startBucket + b) & t.mask
		base := int(bucket) * bucketCnt
		for i := 0; i < bucketCnt; i++ {
			s := &t.slots[base+i]
			if !s.used {
				if firstTombstone != -1 {
					return firstTombstone, false
				}
				return base + i, false
			}
			if s.topHash == 0 {
				// tombstone
				if firstTombstone == -1 {
					firstTombstone = base + i
				}
				continue
			}
			if s.topHash == top && s.key == key {
				return base + i, true
			}
		}
	}
	if firstTombstone != -1 {
		return firstTombstone, false
	}
	return -1, false
}

// Lookup returns an opaque index handle for key's record if present.
func (t *Table) Lookup(key flowkey.Key) (idx int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := hash(key)
	i, found := t.findSlot(key, h, topHashOf(h))
	if !found {
		return 0, false
	}
	return i, true
}

// Insert adds a new record for key. It fails with ErrTableFull when no
// bucket capacity remains. Calling Insert for a key that already exists
// overwrites its record in place and returns the same index it already had.
func (t *Table) Insert(key flowkey.Key, rec Record) (idx int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := hash(key)
	top := topHashOf(h)
	i, found := t.findSlot(key, h, top)
	if i == -1 {
		return 0, ErrTableFull
	}
	s := &t.slots[i]
	if !found {
		t.count++
	}
	s.used = true
	s.topHash = top
	s.key = key
	s.record = rec
	return i, nil
}

// Get returns a mutable pointer to the record at idx. idx must have been
// returned by a previous Lookup or Insert and must not have been Removed
// since.
func (t *Table) Get(idx int) *Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &t.slots[idx].record
}

// Remove deletes key's record, if present. It is idempotent.
//
// Removing a slot in the middle of a probe chain without disturbing later
// entries would break lookups for keys probed past it, so Remove leaves the
// slot `used` with topHash 0 as a tombstone: it neither matches a lookup nor
// terminates a probe chain, but findSlot prefers it as the insertion point
// for the next Insert along that chain, reclaiming the capacity.
func (t *Table) Remove(key flowkey.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := hash(key)
	i, found := t.findSlot(key, h, topHashOf(h))
	if !found {
		return
	}
	s := &t.slots[i]
	*s = slot{}
	s.used = true // tombstone: occupies the probe chain, matches nothing
	t.count--
}

// Iter calls fn for every live (key, record) pair in implementation-defined
// order. If fn returns false, iteration stops early.
func (t *Table) Iter(fn func(key flowkey.Key, rec *Record) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		s := &t.slots[i]
		if !s.used || s.topHash == 0 {
			continue // unused slot or tombstone
		}
		if !fn(s.key, &s.record) {
			return
		}
	}
}
