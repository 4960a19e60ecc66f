// Package dictionary holds the sorted name tables that give provinces and
// cities their indexes. Indexes are only meaningful together with the
// database compiled in the same run.
package dictionary

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

var (
	// ErrNotFound is returned when a name is not in the dictionary
	ErrNotFound = errors.New("name not found")
	// ErrOutOfRange is returned for an index past the end of the dictionary
	ErrOutOfRange = errors.New("index out of range")
	// ErrOverflow is returned when a dictionary cannot be indexed by its field width
	ErrOverflow = errors.New("dictionary exceeds index space")
)

// Limits on dictionary length. The maximum value of each index width is
// reserved as the "absent" sentinel.
const (
	MaxProvinces = math.MaxUint16 - 1
	MaxCities    = math.MaxUint32 - 1
)

// Dictionary is an immutable, sorted list of unique names
type Dictionary struct {
	names []string
}

// New builds a dictionary from names that must already be sorted and unique
func New(names []string) (*Dictionary, error) {
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			return nil, fmt.Errorf("names not sorted and unique at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
	return &Dictionary{names: names}, nil
}

// Len returns the number of names
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Index returns the position of name
func (d *Dictionary) Index(name string) (int, error) {
	i, found := slices.BinarySearch(d.names, name)
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return i, nil
}

// Name returns the name stored at index i
func (d *Dictionary) Name(i int) (string, error) {
	if i < 0 || i >= len(d.names) {
		return "", fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, len(d.names))
	}
	return d.names[i], nil
}

// Names returns a copy of the sorted names
func (d *Dictionary) Names() []string {
	return slices.Clone(d.names)
}

// Builder collects names for one namespace
type Builder struct {
	seen map[string]struct{}
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Add records a name; duplicates are ignored
func (b *Builder) Add(name string) {
	b.seen[name] = struct{}{}
}

// Len returns the number of distinct names collected so far
func (b *Builder) Len() int {
	return len(b.seen)
}

// Build sorts the collected names. It fails with ErrOverflow when more than
// limit distinct names were collected.
func (b *Builder) Build(limit uint64) (*Dictionary, error) {
	if uint64(len(b.seen)) > limit {
		return nil, fmt.Errorf("%w: %d names, limit %d", ErrOverflow, len(b.seen), limit)
	}
	names := make([]string, 0, len(b.seen))
	for name := range b.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Dictionary{names: names}, nil
}
