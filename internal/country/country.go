// Package country is the fixed country enumeration stored in every compiled
// location. The set is closed: codes outside the ISO 3166-1 alpha-2 table
// cannot be represented.
package country

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCountry is returned when a code is not part of the table
var ErrUnknownCountry = errors.New("unknown country code")

type entry struct {
	code string
	name string
}

// Country is an index into the fixed country table.
// The zero value is the first entry (AD); use Parse or FromIndex to build one.
type Country uint8

// Count is the number of countries in the table
const Count = len(table)

// Parse resolves a 2-letter code (case-insensitive) to its Country
func Parse(code string) (Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	i := sort.Search(len(table), func(i int) bool { return table[i].code >= code })
	if i < len(table) && table[i].code == code {
		return Country(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
}

// FromIndex returns the country stored at index i.
// ok is false when i lies outside the table.
func FromIndex(i uint8) (c Country, ok bool) {
	if int(i) >= len(table) {
		return Country(i), false
	}
	return Country(i), true
}

// Index returns the table position used by the location encoding
func (c Country) Index() uint8 {
	return uint8(c)
}

// Valid reports whether c points inside the table
func (c Country) Valid() bool {
	return int(c) < len(table)
}

// Code returns the 2-letter code, or "" for an invalid country
func (c Country) Code() string {
	if !c.Valid() {
		return ""
	}
	return table[c].code
}

// Name returns the English short name, or "" for an invalid country
func (c Country) Name() string {
	if !c.Valid() {
		return ""
	}
	return table[c].name
}

func (c Country) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Country(%d)", uint8(c))
	}
	return table[c].code
}
