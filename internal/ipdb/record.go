package ipdb

import (
	"encoding/binary"
	"net/netip"

	"lukechampine.com/uint128"
)

// Record widths on the wire
const (
	V4RecordSize = 4 + 4 + LocationSize   // 16
	V6RecordSize = 16 + 16 + LocationSize // 40
)

// V4Record is one IPv4 interval [Start, End] and its location
type V4Record struct {
	Start    uint32
	End      uint32
	Location Location
}

// V6Record is one IPv6 interval [Start, End] and its location
type V6Record struct {
	Start    uint128.Uint128
	End      uint128.Uint128
	Location Location
}

// Contains reports whether x falls inside the inclusive interval
func (r V4Record) Contains(x uint32) bool {
	return r.Start <= x && x <= r.End
}

// Contains reports whether x falls inside the inclusive interval
func (r V6Record) Contains(x uint128.Uint128) bool {
	return r.Start.Cmp(x) <= 0 && x.Cmp(r.End) <= 0
}

func (r V4Record) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, r.Start)
	b = binary.LittleEndian.AppendUint32(b, r.End)
	return binary.LittleEndian.AppendUint64(b, r.Location.id)
}

func (r V6Record) appendTo(b []byte) []byte {
	var buf [32]byte
	r.Start.PutBytes(buf[:16])
	r.End.PutBytes(buf[16:])
	b = append(b, buf[:]...)
	return binary.LittleEndian.AppendUint64(b, r.Location.id)
}

// decodeV4 reads a record from b, which must hold at least V4RecordSize bytes
func decodeV4(b []byte) (V4Record, bool) {
	if len(b) < V4RecordSize {
		return V4Record{}, false
	}
	return V4Record{
		Start:    binary.LittleEndian.Uint32(b[0:4]),
		End:      binary.LittleEndian.Uint32(b[4:8]),
		Location: Location{id: binary.LittleEndian.Uint64(b[8:16])},
	}, true
}

// decodeV6 reads a record from b, which must hold at least V6RecordSize bytes
func decodeV6(b []byte) (V6Record, bool) {
	if len(b) < V6RecordSize {
		return V6Record{}, false
	}
	return V6Record{
		Start:    uint128.FromBytes(b[0:16]),
		End:      uint128.FromBytes(b[16:32]),
		Location: Location{id: binary.LittleEndian.Uint64(b[32:40])},
	}, true
}

// V4Number converts an IPv4 address to its 32-bit integer form
func V4Number(addr netip.Addr) uint32 {
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:])
}

// V6Number converts an address to its 128-bit integer form.
// IPv4 addresses are taken in their IPv4-mapped form.
func V6Number(addr netip.Addr) uint128.Uint128 {
	b := addr.As16()
	return uint128.FromBytesBE(b[:])
}
