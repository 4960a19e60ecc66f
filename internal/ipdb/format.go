package ipdb

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the fixed length of the blob header: four little-endian uint32 offsets
const HeaderSize = 16

var (
	// ErrTruncatedHeader means the blob is shorter than its header
	ErrTruncatedHeader = errors.New("ipdb: blob shorter than header")
	// ErrBadZone means a zone's offsets do not describe whole records inside the blob
	ErrBadZone = errors.New("ipdb: invalid zone")
	// ErrTooLarge means the zones cannot be addressed with 32-bit offsets
	ErrTooLarge = errors.New("ipdb: database exceeds 32-bit offsets")
)

// Header holds the byte offsets of both zones, measured from the start of the blob
type Header struct {
	V4Start uint32
	V4End   uint32
	V6Start uint32
	V6End   uint32
}

// NewHeader lays out the zones back to back right after the header
func NewHeader(v4Count, v6Count int) (Header, error) {
	v4Len := uint64(v4Count) * V4RecordSize
	v6Len := uint64(v6Count) * V6RecordSize
	if HeaderSize+v4Len+v6Len > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: %d v4 and %d v6 records", ErrTooLarge, v4Count, v6Count)
	}
	h := Header{V4Start: HeaderSize}
	h.V4End = h.V4Start + uint32(v4Len)
	h.V6Start = h.V4End
	h.V6End = h.V6Start + uint32(v6Len)
	return h, nil
}

// ParseHeader reads the header at the start of data
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(data))
	}
	return Header{
		V4Start: binary.LittleEndian.Uint32(data[0:4]),
		V4End:   binary.LittleEndian.Uint32(data[4:8]),
		V6Start: binary.LittleEndian.Uint32(data[8:12]),
		V6End:   binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// MarshalBinary encodes the header in wire order
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, HeaderSize)
	b = binary.LittleEndian.AppendUint32(b, h.V4Start)
	b = binary.LittleEndian.AppendUint32(b, h.V4End)
	b = binary.LittleEndian.AppendUint32(b, h.V6Start)
	b = binary.LittleEndian.AppendUint32(b, h.V6End)
	return b, nil
}

// Encode writes a complete database: header, v4 zone, v6 zone, no padding.
// Records are written in the given order; the caller is responsible for sorting.
func Encode(w io.Writer, v4 []V4Record, v6 []V6Record) (int64, error) {
	h, err := NewHeader(len(v4), len(v6))
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	var written int64

	hb, _ := h.MarshalBinary()
	n, err := bw.Write(hb)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write header: %w", err)
	}

	buf := make([]byte, 0, V6RecordSize)
	for _, r := range v4 {
		n, err := bw.Write(r.appendTo(buf[:0]))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write v4 record: %w", err)
		}
	}
	for _, r := range v6 {
		n, err := bw.Write(r.appendTo(buf[:0]))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write v6 record: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush database: %w", err)
	}
	return written, nil
}
