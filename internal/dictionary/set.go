package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"os"
	"text/template"

	"github.com/evyataryagoni/iplocation/internal/ipdb"
)

// Set is the pair of dictionaries produced by one compilation
type Set struct {
	Provinces *Dictionary
	Cities    *Dictionary
}

// Names are the resolved parts of a location; empty strings mean unknown
type Names struct {
	Province string
	City     string
}

// Resolve maps the province and city indexes of loc to names.
// Indexes outside the dictionaries resolve to "".
func (s *Set) Resolve(loc ipdb.Location) Names {
	var n Names
	if p, ok := loc.Province(); ok {
		n.Province, _ = s.Provinces.Name(p.Index())
	}
	if c, ok := loc.City(); ok {
		n.City, _ = s.Cities.Name(c.Index())
	}
	return n
}

// ProvinceIndex returns the province index of name, or ipdb.NoProvince
func (s *Set) ProvinceIndex(name string) ipdb.Province {
	i, err := s.Provinces.Index(name)
	if err != nil {
		return ipdb.NoProvince
	}
	return ipdb.Province(i)
}

// CityIndex returns the city index of name, or ipdb.NoCity
func (s *Set) CityIndex(name string) ipdb.City {
	i, err := s.Cities.Index(name)
	if err != nil {
		return ipdb.NoCity
	}
	return ipdb.City(i)
}

type jsonTable struct {
	Len   int      `json:"len"`
	Names []string `json:"names"`
}

type jsonSet struct {
	Provinces jsonTable `json:"provinces"`
	Cities    jsonTable `json:"cities"`
}

// WriteJSON exports both dictionaries with their explicit lengths
func (s *Set) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(jsonSet{
		Provinces: jsonTable{Len: s.Provinces.Len(), Names: s.Provinces.names},
		Cities:    jsonTable{Len: s.Cities.Len(), Names: s.Cities.names},
	})
}

// ReadSet loads dictionaries written by WriteJSON
func ReadSet(r io.Reader) (*Set, error) {
	var js jsonSet
	if err := json.NewDecoder(r).Decode(&js); err != nil {
		return nil, fmt.Errorf("failed to decode dictionaries: %w", err)
	}

	provinces, err := fromTable("provinces", js.Provinces, MaxProvinces)
	if err != nil {
		return nil, err
	}
	cities, err := fromTable("cities", js.Cities, MaxCities)
	if err != nil {
		return nil, err
	}
	return &Set{Provinces: provinces, Cities: cities}, nil
}

// LoadSet reads a dictionary file from disk
func LoadSet(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionaries: %w", err)
	}
	defer f.Close()
	return ReadSet(f)
}

func fromTable(kind string, t jsonTable, limit uint64) (*Dictionary, error) {
	if t.Len != len(t.Names) {
		return nil, fmt.Errorf("%s: declared length %d, found %d names", kind, t.Len, len(t.Names))
	}
	if uint64(len(t.Names)) > limit {
		return nil, fmt.Errorf("%s: %w: %d names", kind, ErrOverflow, len(t.Names))
	}
	d, err := New(t.Names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return d, nil
}

var goSource = template.Must(template.New("dict").Parse(`// Code generated by ipdb-compile. DO NOT EDIT.

package {{.Package}}

// ProvincesLen is the number of province names.
const ProvincesLen = {{len .Provinces}}

// Provinces is the sorted province dictionary.
var Provinces = [ProvincesLen]string{
{{- range .Provinces}}
	{{printf "%q" .}},
{{- end}}
}

// CitiesLen is the number of city names.
const CitiesLen = {{len .Cities}}

// Cities is the sorted city dictionary.
var Cities = [CitiesLen]string{
{{- range .Cities}}
	{{printf "%q" .}},
{{- end}}
}
`))

// WriteGo exports both dictionaries as a Go source file declaring static
// arrays, for programs that embed the dictionaries instead of loading JSON.
func (s *Set) WriteGo(w io.Writer, pkg string) error {
	var buf bytes.Buffer
	err := goSource.Execute(&buf, struct {
		Package   string
		Provinces []string
		Cities    []string
	}{pkg, s.Provinces.names, s.Cities.names})
	if err != nil {
		return fmt.Errorf("failed to render dictionaries: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format dictionaries: %w", err)
	}
	_, err = w.Write(src)
	return err
}
