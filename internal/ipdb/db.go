// Package ipdb implements the compiled IP range database: the packed location
// identifier, the fixed-width record zones and the lookup engine over them.
//
// Blob layout (little-endian):
//
//	header  16 bytes  v4 start, v4 end, v6 start, v6 end (uint32 byte offsets)
//	v4 zone 16 bytes per record: start uint32, end uint32, location uint64
//	v6 zone 40 bytes per record: start uint128, end uint128, location uint64
//
// Records in each zone are sorted by start and never overlap.
package ipdb

import (
	"errors"
	"fmt"
	"net/netip"
	"os"

	"lukechampine.com/uint128"
)

// zone is a validated byte range of whole records inside the blob
type zone struct {
	start int
	end   int
	size  int
	count int
}

func newZone(data []byte, start, end uint32, size int, family string) (zone, error) {
	s, e := int(start), int(end)
	switch {
	case s < HeaderSize:
		return zone{}, fmt.Errorf("%w: %s zone starts inside header (%d)", ErrBadZone, family, s)
	case e < s:
		return zone{}, fmt.Errorf("%w: %s zone ends before it starts (%d < %d)", ErrBadZone, family, e, s)
	case e > len(data):
		return zone{}, fmt.Errorf("%w: %s zone ends past blob (%d > %d)", ErrBadZone, family, e, len(data))
	case (e-s)%size != 0:
		return zone{}, fmt.Errorf("%w: %s zone length %d is not a multiple of %d", ErrBadZone, family, e-s, size)
	}
	return zone{start: s, end: e, size: size, count: (e - s) / size}, nil
}

// record returns the bytes of record i, refusing anything outside the zone
func (z zone) record(data []byte, i int) ([]byte, bool) {
	if i < 0 || i >= z.count {
		return nil, false
	}
	off := z.start + i*z.size
	if off+z.size > z.end {
		return nil, false
	}
	return data[off : off+z.size], true
}

// DB answers point queries against a compiled blob. It never modifies the
// blob and holds no mutable state, so it is safe for concurrent use.
type DB struct {
	data []byte
	v4   zone
	v6   zone
	err  error
}

// Stats reports how many records each zone holds
type Stats struct {
	V4Records int
	V6Records int
}

// New parses the header of data. A zone whose offsets are inconsistent is
// treated as empty; the reason is available from Err.
func New(data []byte) *DB {
	db := &DB{data: data}

	h, err := ParseHeader(data)
	if err != nil {
		db.err = err
		return db
	}

	var errs []error
	if db.v4, err = newZone(data, h.V4Start, h.V4End, V4RecordSize, "v4"); err != nil {
		errs = append(errs, err)
	}
	if db.v6, err = newZone(data, h.V6Start, h.V6End, V6RecordSize, "v6"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 && db.v4.count > 0 && db.v6.count > 0 &&
		db.v4.start < db.v6.end && db.v6.start < db.v4.end {
		errs = append(errs, fmt.Errorf("%w: v4 zone [%d,%d) and v6 zone [%d,%d) overlap",
			ErrBadZone, db.v4.start, db.v4.end, db.v6.start, db.v6.end))
		db.v4, db.v6 = zone{}, zone{}
	}
	db.err = errors.Join(errs...)
	return db
}

// Open reads a compiled database file into memory
func Open(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return New(data), nil
}

// Err returns why a zone was rejected, or nil when both zones are usable
func (db *DB) Err() error {
	return db.err
}

// Stats returns the record count of each usable zone
func (db *DB) Stats() Stats {
	return Stats{V4Records: db.v4.count, V6Records: db.v6.count}
}

// Query finds the location of addr. IPv4 addresses search the v4 zone, every
// other address (IPv4-mapped included) searches the v6 zone.
func (db *DB) Query(addr netip.Addr) (Location, bool) {
	switch {
	case addr.Is4():
		return db.QueryV4(V4Number(addr))
	case addr.Is6():
		return db.QueryV6(V6Number(addr))
	default:
		return Location{}, false
	}
}

// QueryV4 finds the record containing x in the v4 zone
func (db *DB) QueryV4(x uint32) (Location, bool) {
	i, ok := narrow(db.v4.count, func(i int) (bool, bool) {
		r, ok := db.v4Record(i)
		return x > r.End, ok
	})
	if !ok {
		return Location{}, false
	}
	r, ok := db.v4Record(i)
	if !ok || !r.Contains(x) {
		return Location{}, false
	}
	return r.Location, true
}

// QueryV6 finds the record containing x in the v6 zone
func (db *DB) QueryV6(x uint128.Uint128) (Location, bool) {
	i, ok := narrow(db.v6.count, func(i int) (bool, bool) {
		r, ok := db.v6Record(i)
		return x.Cmp(r.End) > 0, ok
	})
	if !ok {
		return Location{}, false
	}
	r, ok := db.v6Record(i)
	if !ok || !r.Contains(x) {
		return Location{}, false
	}
	return r.Location, true
}

func (db *DB) v4Record(i int) (V4Record, bool) {
	b, ok := db.v4.record(db.data, i)
	if !ok {
		return V4Record{}, false
	}
	return decodeV4(b)
}

func (db *DB) v6Record(i int) (V6Record, bool) {
	b, ok := db.v6.record(db.data, i)
	if !ok {
		return V6Record{}, false
	}
	return decodeV6(b)
}

// narrow returns the only record of a sorted, disjoint zone of n records that
// can contain the target: the first one whose end is not below it (or the last
// record when every end is below it). past(i) reports whether the target lies
// beyond the end of record i, and false as its second result when record i
// cannot be read.
//
// Only halves proven too low are discarded. A record whose end is not below
// the target may still contain it, and so may no record after it.
func narrow(n int, past func(i int) (beyond, ok bool)) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	base, size := 0, n
	for size > 1 {
		half := size / 2
		mid := base + half - 1 // last index of the lower half
		beyond, ok := past(mid)
		if !ok {
			return 0, false
		}
		if beyond {
			base = mid + 1
			size -= half
		} else {
			size = half
		}
	}
	return base, true
}
