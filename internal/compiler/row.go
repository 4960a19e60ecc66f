package compiler

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/evyataryagoni/iplocation/internal/country"
	"lukechampine.com/uint128"
)

// Drop reasons, used as log fields and Stats keys
const (
	reasonMalformed = "malformed"
	reasonCountry   = "unknown_country"
	reasonAddress   = "bad_address"
	reasonInverted  = "inverted_range"
)

// rowError explains why a source line produced no record
type rowError struct {
	reason string
	err    error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *rowError) Unwrap() error {
	return e.err
}

// row is a parsed source line whose names are not yet indexed
type row[T any] struct {
	start    T
	end      T
	country  country.Country
	province string // "" when absent
	city     string // "" when absent
}

// family describes how one address family parses and orders its endpoints
type family[T any] struct {
	name  string
	parse func(string) (T, error)
	cmp   func(a, b T) int
}

var v4Family = family[uint32]{
	name: "v4",
	parse: func(s string) (uint32, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	},
	cmp: func(a, b uint32) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	},
}

var v6Family = family[uint128.Uint128]{
	name:  "v6",
	parse: parseUint128,
	cmp:   uint128.Uint128.Cmp,
}

// parseUint128 parses a plain base-10 number up to 2^128-1. Signs, base
// prefixes, underscores and surrounding text are rejected, as for v4.
func parseUint128(s string) (uint128.Uint128, error) {
	if s == "" {
		return uint128.Zero, errors.New("empty number")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return uint128.Zero, fmt.Errorf("invalid digit %q in %q", s[i], s)
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%q is out of range", s)
	}
	return uint128.FromBig(n), nil
}

// parseRow turns one source line into a row
func parseRow[T any](f family[T], line string) (row[T], error) {
	var r row[T]

	fields, ok := splitQuoted(line)
	if !ok {
		return r, &rowError{reason: reasonMalformed, err: errors.New("expected six quoted fields")}
	}

	c, err := country.Parse(fields[fieldCountryCode])
	if err != nil {
		return r, &rowError{reason: reasonCountry, err: err}
	}

	start, err := f.parse(fields[fieldStart])
	if err != nil {
		return r, &rowError{reason: reasonAddress, err: fmt.Errorf("range start %q: %w", fields[fieldStart], err)}
	}
	end, err := f.parse(fields[fieldEnd])
	if err != nil {
		return r, &rowError{reason: reasonAddress, err: fmt.Errorf("range end %q: %w", fields[fieldEnd], err)}
	}
	if f.cmp(start, end) > 0 {
		return r, &rowError{reason: reasonInverted, err: fmt.Errorf("start %v is after end %v", start, end)}
	}

	r = row[T]{start: start, end: end, country: c}
	if p := fields[fieldProvince]; p != absent {
		r.province = p
	}
	if city := fields[fieldCity]; city != absent {
		r.city = city
	}
	return r, nil
}
