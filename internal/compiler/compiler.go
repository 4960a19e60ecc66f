// Package compiler turns the raw IP range datasets into a compiled database
// blob and the province/city dictionaries that go with it.
package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/evyataryagoni/iplocation/internal/country"
	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/evyataryagoni/iplocation/internal/logger"
)

// ErrOverlap is returned when two source ranges of one family share addresses
var ErrOverlap = errors.New("overlapping ranges")

// maxLineSize bounds a single source line
const maxLineSize = 1 << 20

// Stats summarizes one compilation
type Stats struct {
	V4Lines   int
	V6Lines   int
	V4Records int
	V6Records int
	Provinces int
	Cities    int
	Dropped   map[string]int // by reason
	Reordered []string       // families whose input was not sorted
}

// DroppedTotal returns the number of source lines that produced no record
func (s Stats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Result is one self-consistent compilation: both zones and the
// dictionaries their locations index into
type Result struct {
	Dictionaries *dictionary.Set
	V4           []ipdb.V4Record
	V6           []ipdb.V6Record
	Stats        Stats
}

// Compiler converts source datasets into a Result
type Compiler struct {
	logger *logger.Logger
}

// New creates a compiler. log may be nil.
func New(log *logger.Logger) *Compiler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Compiler{logger: log.WithComponent("Compiler")}
}

// Compile reads the IPv4 and IPv6 datasets and builds a Result.
//
// Malformed lines, unknown country codes and unparsable addresses drop the
// line and are logged. Unsorted input is sorted by range start. Overlapping
// ranges and dictionaries too large for their index width abort compilation.
func (c *Compiler) Compile(v4, v6 io.Reader) (*Result, error) {
	stats := Stats{Dropped: make(map[string]int)}
	provinces, cities := dictionary.NewBuilder(), dictionary.NewBuilder()

	v4Rows, err := readRows(c, v4Family, v4, provinces, cities, &stats, &stats.V4Lines)
	if err != nil {
		return nil, err
	}
	v6Rows, err := readRows(c, v6Family, v6, provinces, cities, &stats, &stats.V6Lines)
	if err != nil {
		return nil, err
	}

	pd, err := provinces.Build(dictionary.MaxProvinces)
	if err != nil {
		return nil, fmt.Errorf("province dictionary: %w", err)
	}
	cd, err := cities.Build(dictionary.MaxCities)
	if err != nil {
		return nil, fmt.Errorf("city dictionary: %w", err)
	}
	dicts := &dictionary.Set{Provinces: pd, Cities: cd}

	res := &Result{Dictionaries: dicts}
	res.V4 = make([]ipdb.V4Record, len(v4Rows))
	for i, r := range v4Rows {
		res.V4[i] = ipdb.V4Record{Start: r.start, End: r.end, Location: locate(dicts, r.country, r.province, r.city)}
	}
	res.V6 = make([]ipdb.V6Record, len(v6Rows))
	for i, r := range v6Rows {
		res.V6[i] = ipdb.V6Record{Start: r.start, End: r.end, Location: locate(dicts, r.country, r.province, r.city)}
	}

	reordered, err := orderZone(res.V4,
		func(a, b ipdb.V4Record) int { return v4Family.cmp(a.Start, b.Start) },
		func(prev, next ipdb.V4Record) bool { return prev.End >= next.Start })
	if err != nil {
		return nil, fmt.Errorf("v4 zone: %w", err)
	}
	if reordered {
		stats.Reordered = append(stats.Reordered, v4Family.name)
	}

	reordered, err = orderZone(res.V6,
		func(a, b ipdb.V6Record) int { return a.Start.Cmp(b.Start) },
		func(prev, next ipdb.V6Record) bool { return prev.End.Cmp(next.Start) >= 0 })
	if err != nil {
		return nil, fmt.Errorf("v6 zone: %w", err)
	}
	if reordered {
		stats.Reordered = append(stats.Reordered, v6Family.name)
	}

	stats.V4Records = len(res.V4)
	stats.V6Records = len(res.V6)
	stats.Provinces = pd.Len()
	stats.Cities = cd.Len()
	res.Stats = stats

	for _, f := range stats.Reordered {
		c.logger.Warn().Str("family", f).Msg("Source rows were not sorted by range start, sorted them")
	}
	c.logger.Info().
		Int("v4_records", stats.V4Records).
		Int("v6_records", stats.V6Records).
		Int("provinces", stats.Provinces).
		Int("cities", stats.Cities).
		Int("dropped", stats.DroppedTotal()).
		Msg("Compilation finished")

	return res, nil
}

// readRows parses every line of one dataset and feeds the name builders
func readRows[T any](c *Compiler, f family[T], src io.Reader, provinces, cities *dictionary.Builder, stats *Stats, lines *int) ([]row[T], error) {
	if src == nil {
		return nil, nil
	}

	log := c.logger.WithFamily(f.name)
	var rows []row[T]
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		*lines++
		line := scanner.Text()

		r, err := parseRow(f, line)
		if err != nil {
			var re *rowError
			reason := reasonMalformed
			if errors.As(err, &re) {
				reason = re.reason
			}
			stats.Dropped[reason]++
			log.Warn().
				Int("line", *lines).
				Str("reason", reason).
				Err(err).
				Str("row", line).
				Msg("Dropped row")
			continue
		}

		if r.province != "" {
			provinces.Add(r.province)
		}
		if r.city != "" {
			cities.Add(r.city)
		}
		rows = append(rows, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s dataset: %w", f.name, err)
	}
	return rows, nil
}

// locate packs a row's country and names, falling back to the sentinels for
// names missing from the dictionaries
func locate(d *dictionary.Set, c country.Country, province, city string) ipdb.Location {
	return ipdb.NewLocation(c, d.ProvinceIndex(province), d.CityIndex(city))
}

// orderZone sorts records by start when needed and rejects overlaps
func orderZone[R any](records []R, cmpStart func(a, b R) int, overlaps func(prev, next R) bool) (bool, error) {
	reordered := false
	if !slices.IsSortedFunc(records, cmpStart) {
		slices.SortStableFunc(records, cmpStart)
		reordered = true
	}
	for i := 1; i < len(records); i++ {
		if overlaps(records[i-1], records[i]) {
			return reordered, fmt.Errorf("%w: record %d %v and record %d %v", ErrOverlap, i-1, records[i-1], i, records[i])
		}
	}
	return reordered, nil
}

// CheckOrder verifies that every zone is strictly ascending and disjoint
func (r *Result) CheckOrder() error {
	for i := 1; i < len(r.V4); i++ {
		if r.V4[i-1].End >= r.V4[i].Start {
			return fmt.Errorf("v4 zone: %w at record %d", ErrOverlap, i)
		}
	}
	for i := 1; i < len(r.V6); i++ {
		if r.V6[i-1].End.Cmp(r.V6[i].Start) >= 0 {
			return fmt.Errorf("v6 zone: %w at record %d", ErrOverlap, i)
		}
	}
	return nil
}
