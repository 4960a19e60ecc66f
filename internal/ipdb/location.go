package ipdb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/evyataryagoni/iplocation/internal/country"
)

// Location layout (64 bits):
//
//	country  8 bits  << 56
//	unused   8 bits
//	province 16 bits << 32
//	city     32 bits
const (
	countryShift  = 56
	provinceShift = 32
	provinceMask  = uint64(math.MaxUint16) << provinceShift
	cityMask      = uint64(math.MaxUint32)

	// NoProvince marks a location without province data
	NoProvince = Province(math.MaxUint16)
	// NoCity marks a location without city data
	NoCity = City(math.MaxUint32)
)

// LocationSize is the encoded width of a Location in bytes
const LocationSize = 8

// Province is an index into the province dictionary of the same compilation
type Province uint16

// City is an index into the city dictionary of the same compilation
type City uint32

// Index returns the dictionary position
func (p Province) Index() int { return int(p) }

// Index returns the dictionary position
func (c City) Index() int { return int(c) }

// Location is the packed country/province/city identifier stored in every record.
// The packed value stays private; callers use the accessors.
type Location struct {
	id uint64
}

// NewLocation packs the three indexes. Pass NoProvince / NoCity for absent fields.
func NewLocation(c country.Country, p Province, city City) Location {
	return Location{
		id: uint64(c.Index())<<countryShift | uint64(p)<<provinceShift | uint64(city),
	}
}

// Country returns the country index. It may be invalid for a corrupt database.
func (l Location) Country() country.Country {
	return country.Country(uint8(l.id >> countryShift))
}

// Province returns the province index, or false when the location has none
func (l Location) Province() (Province, bool) {
	p := Province((l.id & provinceMask) >> provinceShift)
	if p == NoProvince {
		return 0, false
	}
	return p, true
}

// City returns the city index, or false when the location has none
func (l Location) City() (City, bool) {
	c := City(l.id & cityMask)
	if c == NoCity {
		return 0, false
	}
	return c, true
}

// String formats the raw indexes, e.g. "12,Unknown US"
func (l Location) String() string {
	province, city := "Unknown", "Unknown"
	if p, ok := l.Province(); ok {
		province = fmt.Sprint(p.Index())
	}
	if c, ok := l.City(); ok {
		city = fmt.Sprint(c.Index())
	}
	return fmt.Sprintf("%s,%s %s", province, city, l.Country())
}

// MarshalBinary encodes the location the way records carry it (8 bytes, little-endian)
func (l Location) MarshalBinary() ([]byte, error) {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, LocationSize), l.id), nil
}

// UnmarshalBinary decodes a location written by MarshalBinary
func (l *Location) UnmarshalBinary(data []byte) error {
	if len(data) != LocationSize {
		return fmt.Errorf("location must be %d bytes, got %d", LocationSize, len(data))
	}
	l.id = binary.LittleEndian.Uint64(data)
	return nil
}
