package ipdb

import (
	"math"
	"testing"

	"github.com/evyataryagoni/iplocation/internal/country"
)

// TestLocation_RoundTrip tests that decoding reproduces the encoded indexes
func TestLocation_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		country  uint8
		province Province
		city     City
	}{
		{"zero", 0, 0, 0},
		{"typical", 232, 3208, 73496},
		{"max non-sentinel", 248, math.MaxUint16 - 1, math.MaxUint32 - 1},
		{"high bits", 128, 0x8000, 0x80000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewLocation(country.Country(tt.country), tt.province, tt.city)

			if got := loc.Country().Index(); got != tt.country {
				t.Errorf("expected country %d, got %d", tt.country, got)
			}
			p, ok := loc.Province()
			if !ok || p != tt.province {
				t.Errorf("expected province %d, got %d (ok=%v)", tt.province, p, ok)
			}
			c, ok := loc.City()
			if !ok || c != tt.city {
				t.Errorf("expected city %d, got %d (ok=%v)", tt.city, c, ok)
			}
		})
	}
}

// TestLocation_Sentinels tests that absent fields decode as absent and nothing else does
func TestLocation_Sentinels(t *testing.T) {
	us, _ := country.Parse("US")

	loc := NewLocation(us, NoProvince, NoCity)
	if _, ok := loc.Province(); ok {
		t.Error("expected province to be absent")
	}
	if _, ok := loc.City(); ok {
		t.Error("expected city to be absent")
	}
	if loc.Country() != us {
		t.Errorf("expected country US, got %s", loc.Country())
	}

	loc = NewLocation(us, NoProvince, 7)
	if _, ok := loc.Province(); ok {
		t.Error("expected province to be absent")
	}
	if c, ok := loc.City(); !ok || c != 7 {
		t.Errorf("expected city 7, got %d (ok=%v)", c, ok)
	}

	loc = NewLocation(us, 9, NoCity)
	if p, ok := loc.Province(); !ok || p != 9 {
		t.Errorf("expected province 9, got %d (ok=%v)", p, ok)
	}
	if _, ok := loc.City(); ok {
		t.Error("expected city to be absent")
	}
}

// TestLocation_FieldsDoNotBleed tests that a maxed field leaves its neighbours intact
func TestLocation_FieldsDoNotBleed(t *testing.T) {
	loc := NewLocation(country.Country(math.MaxUint8), 0, NoCity)
	if p, ok := loc.Province(); !ok || p != 0 {
		t.Errorf("expected province 0, got %d (ok=%v)", p, ok)
	}
	if loc.Country().Index() != math.MaxUint8 {
		t.Errorf("expected country 255, got %d", loc.Country().Index())
	}
	if loc.Country().Valid() {
		t.Error("country 255 is outside the table")
	}
}

// TestLocation_String tests the text form
func TestLocation_String(t *testing.T) {
	us, _ := country.Parse("US")

	tests := []struct {
		loc  Location
		want string
	}{
		{NewLocation(us, NoProvince, NoCity), "Unknown,Unknown US"},
		{NewLocation(us, 4, NoCity), "4,Unknown US"},
		{NewLocation(us, 4, 12), "4,12 US"},
	}

	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

// TestLocation_Binary tests the 8-byte encoding used outside the blob
func TestLocation_Binary(t *testing.T) {
	cn, _ := country.Parse("CN")
	loc := NewLocation(cn, 31, 4000)

	b, err := loc.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != LocationSize {
		t.Fatalf("expected %d bytes, got %d", LocationSize, len(b))
	}
	if b[7] != cn.Index() {
		t.Errorf("expected country in the most significant byte, got %v", b)
	}

	var back Location
	if err := back.UnmarshalBinary(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != loc {
		t.Errorf("expected %v, got %v", loc, back)
	}

	if err := back.UnmarshalBinary(b[:7]); err == nil {
		t.Error("expected error for short input")
	}
}
