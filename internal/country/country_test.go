package country

import (
	"errors"
	"testing"
)

// TestTable_SortedAndUnique guards the index contract: positions are baked into compiled databases
func TestTable_SortedAndUnique(t *testing.T) {
	if Count != 249 {
		t.Errorf("expected 249 countries, got %d", Count)
	}
	if Count > 255 {
		t.Fatalf("table does not fit an 8-bit index: %d entries", Count)
	}

	for i := 1; i < len(table); i++ {
		if table[i-1].code >= table[i].code {
			t.Errorf("table not strictly sorted at %d: %s >= %s", i, table[i-1].code, table[i].code)
		}
	}
}

// TestParse_KnownCodes tests code lookups
func TestParse_KnownCodes(t *testing.T) {
	tests := []struct {
		code      string
		wantIndex uint8
		wantName  string
	}{
		{"AD", 0, "Andorra"},
		{"CN", 47, "China"},
		{"GB", 76, "United Kingdom of Great Britain and Northern Ireland"},
		{"US", 232, "United States of America"},
		{"us", 232, "United States of America"},
		{" ZW ", 248, "Zimbabwe"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := Parse(tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Index() != tt.wantIndex {
				t.Errorf("expected index %d, got %d", tt.wantIndex, c.Index())
			}
			if c.Name() != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, c.Name())
			}
		})
	}
}

// TestParse_UnknownCodes tests that codes outside the table are rejected
func TestParse_UnknownCodes(t *testing.T) {
	for _, code := range []string{"ZZ", "-", "", "USA", "A"} {
		t.Run(code, func(t *testing.T) {
			_, err := Parse(code)
			if !errors.Is(err, ErrUnknownCountry) {
				t.Errorf("expected ErrUnknownCountry, got %v", err)
			}
		})
	}
}

// TestFromIndex tests the index constructor and the invalid accessors
func TestFromIndex(t *testing.T) {
	for i := 0; i < Count; i++ {
		c, ok := FromIndex(uint8(i))
		if !ok {
			t.Fatalf("index %d should be valid", i)
		}
		back, err := Parse(c.Code())
		if err != nil || back != c {
			t.Errorf("round trip failed for index %d: got %v, %v", i, back, err)
		}
	}

	c, ok := FromIndex(250)
	if ok {
		t.Error("index 250 should be invalid")
	}
	if c.Code() != "" || c.Name() != "" {
		t.Errorf("invalid country should have empty code and name, got %q %q", c.Code(), c.Name())
	}
	if c.String() != "Country(250)" {
		t.Errorf("unexpected String(): %s", c.String())
	}
}
