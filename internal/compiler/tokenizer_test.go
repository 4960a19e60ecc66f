package compiler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/evyataryagoni/iplocation/internal/country"
	"lukechampine.com/uint128"
)

// TestSplitQuoted tests positional extraction of quoted fields
func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name string
		line string
		want [fieldCount]string
		ok   bool
	}{
		{
			name: "standard row",
			line: `"16777216","16777471","AU","Australia","Queensland","Brisbane"`,
			want: [fieldCount]string{"16777216", "16777471", "AU", "Australia", "Queensland", "Brisbane"},
			ok:   true,
		},
		{
			name: "commas inside a field are kept",
			line: `"1","2","KR","Korea, Republic of","Seoul-teukbyeolsi","Seoul"`,
			want: [fieldCount]string{"1", "2", "KR", "Korea, Republic of", "Seoul-teukbyeolsi", "Seoul"},
			ok:   true,
		},
		{
			name: "separators are not interpreted",
			line: `junk"1"x"2";"US"  "United States""-""-"trailing`,
			want: [fieldCount]string{"1", "2", "US", "United States", "-", "-"},
			ok:   true,
		},
		{
			name: "empty fields",
			line: `"","","","","",""`,
			ok:   true,
		},
		{name: "too few fields", line: `"1","2","US","United States","-"`},
		{name: "too many fields", line: `"1","2","US","United States","-","-","-"`},
		{name: "unterminated field", line: `"1","2","US","United States","-","-`},
		{name: "no quotes", line: `1,2,US,United States,-,-`},
		{name: "empty line", line: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := splitQuoted(tt.line)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (fields %q)", tt.ok, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestParseRow tests row parsing for both families
func TestParseRow(t *testing.T) {
	r, err := parseRow(v4Family, `"134744064","134744319","US","United States of America","-","Mountain View"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	us, _ := country.Parse("US")
	if r.start != 134744064 || r.end != 134744319 || r.country != us {
		t.Errorf("unexpected row %+v", r)
	}
	if r.province != "" || r.city != "Mountain View" {
		t.Errorf("expected absent province and Mountain View, got %q %q", r.province, r.city)
	}

	r6, err := parseRow(v6Family, `"0","340282366920938463463374607431768211455","JP","Japan","Tokyo","-"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r6.start.IsZero() || !r6.end.Equals(uint128.Max) {
		t.Errorf("unexpected v6 bounds %v %v", r6.start, r6.end)
	}
	if r6.province != "Tokyo" || r6.city != "" {
		t.Errorf("unexpected names %q %q", r6.province, r6.city)
	}

	_, err = parseRow(v6Family, `"0","340282366920938463463374607431768211456","JP","Japan","-","-"`)
	var re *rowError
	if !errors.As(err, &re) || re.reason != reasonAddress {
		t.Errorf("expected bad address for 2^128, got %v", err)
	}

	for _, bad := range []string{"0x10", "1_6", "16 junk", "+16", "-1", ""} {
		line := fmt.Sprintf(`"%s","32","US","United States of America","-","-"`, bad)
		_, err := parseRow(v6Family, line)
		if !errors.As(err, &re) || re.reason != reasonAddress {
			t.Errorf("expected bad address for v6 start %q, got %v", bad, err)
		}
		_, err = parseRow(v4Family, line)
		if !errors.As(err, &re) || re.reason != reasonAddress {
			t.Errorf("expected bad address for v4 start %q, got %v", bad, err)
		}
	}

	r6, err = parseRow(v6Family, `"010","32","US","United States of America","-","-"`)
	if err != nil || !r6.start.Equals64(10) {
		t.Errorf("expected leading zeros to parse as decimal 10, got %v %v", r6.start, err)
	}

	_, err = parseRow(v4Family, `"1","2","ZZ","Nowhere","-","-"`)
	if !errors.Is(err, country.ErrUnknownCountry) {
		t.Errorf("expected ErrUnknownCountry, got %v", err)
	}
}
