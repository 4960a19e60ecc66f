package store

import (
	"bytes"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestBlobStore_FindByIP tests lookups in both zones
func TestBlobStore_FindByIP(t *testing.T) {
	store := newTestBlobStore(t, newTestMetrics())
	defer store.Close()

	tests := []struct {
		ip       string
		code     string
		province string
		city     string
	}{
		{"1.0.0.0", "AU", "Queensland", "Brisbane"},
		{"1.0.0.255", "AU", "Queensland", "Brisbane"},
		{"8.8.8.8", "US", "", "Mountain View"},
		{"2001:db8::1", "US", "California", "Mountain View"},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			location, err := store.FindByIP(netip.MustParseAddr(tt.ip))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if location.IP != tt.ip {
				t.Errorf("expected IP '%s', got '%s'", tt.ip, location.IP)
			}
			if location.CountryCode != tt.code {
				t.Errorf("expected '%s', got '%s'", tt.code, location.CountryCode)
			}
			if location.Province != tt.province {
				t.Errorf("expected province '%s', got '%s'", tt.province, location.Province)
			}
			if location.City != tt.city {
				t.Errorf("expected city '%s', got '%s'", tt.city, location.City)
			}
		})
	}
}

// TestBlobStore_FindByIP_NotFound tests addresses outside every range
func TestBlobStore_FindByIP_NotFound(t *testing.T) {
	store := newTestBlobStore(t, nil)

	for _, ip := range []string{"0.255.255.255", "1.0.1.0", "8.8.9.0", "255.255.255.255", "::1", "2001:db9::"} {
		_, err := store.FindByIP(netip.MustParseAddr(ip))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", ip, err)
		}
	}
}

// TestBlobStore_Metrics tests record gauges and query counters
func TestBlobStore_Metrics(t *testing.T) {
	m := newTestMetrics()
	store := newTestBlobStore(t, m)

	if got := testutil.ToFloat64(m.DatabaseRecords.WithLabelValues("v4")); got != 2 {
		t.Errorf("expected 2 v4 records, got %v", got)
	}
	if got := testutil.ToFloat64(m.DatabaseRecords.WithLabelValues("v6")); got != 1 {
		t.Errorf("expected 1 v6 record, got %v", got)
	}
	if got := testutil.ToFloat64(m.DatabaseInvalid); got != 0 {
		t.Errorf("expected valid database, got %v", got)
	}

	store.FindByIP(netip.MustParseAddr("8.8.8.8"))
	store.FindByIP(netip.MustParseAddr("9.9.9.9"))
	if got := testutil.ToFloat64(m.DatastoreQueriesTotal.WithLabelValues("blob", "find_by_ip", "hit")); got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.DatastoreQueriesTotal.WithLabelValues("blob", "find_by_ip", "miss")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
}

// TestBlobStore_CorruptZone tests that a bad zone serves nothing and is reported
func TestBlobStore_CorruptZone(t *testing.T) {
	dicts, v4, v6 := testZones(t)
	var buf bytes.Buffer
	if _, err := ipdb.Encode(&buf, v4, v6); err != nil {
		t.Fatalf("failed to encode blob: %v", err)
	}
	// cut the last v6 record short
	data := buf.Bytes()[:buf.Len()-1]

	m := newTestMetrics()
	store := NewBlobStoreFromDB(ipdb.New(data), dicts, m)

	if store.Err() == nil {
		t.Error("expected a zone error")
	}
	if got := testutil.ToFloat64(m.DatabaseInvalid); got != 1 {
		t.Errorf("expected invalid database gauge, got %v", got)
	}
	if _, err := store.FindByIP(netip.MustParseAddr("2001:db8::1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from the corrupt zone, got %v", err)
	}
}

// TestNewBlobStore_Files tests loading from disk
func TestNewBlobStore_Files(t *testing.T) {
	dicts, v4, v6 := testZones(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ip.db")
	dictPath := filepath.Join(dir, "dict.json")

	var blob, dict bytes.Buffer
	if _, err := ipdb.Encode(&blob, v4, v6); err != nil {
		t.Fatalf("failed to encode blob: %v", err)
	}
	if err := dicts.WriteJSON(&dict); err != nil {
		t.Fatalf("failed to encode dictionaries: %v", err)
	}
	os.WriteFile(dbPath, blob.Bytes(), 0644)
	os.WriteFile(dictPath, dict.Bytes(), 0644)

	store, err := NewBlobStore(dbPath, dictPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats := store.Stats(); stats.V4Records != 2 || stats.V6Records != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	location, err := store.FindByIP(netip.MustParseAddr("1.0.0.1"))
	if err != nil || location.City != "Brisbane" {
		t.Errorf("expected Brisbane, got %+v (%v)", location, err)
	}

	if _, err := NewBlobStore(filepath.Join(dir, "missing.db"), dictPath, nil); err == nil {
		t.Error("expected error for missing database")
	}
	if _, err := NewBlobStore(dbPath, filepath.Join(dir, "missing.json"), nil); err == nil {
		t.Error("expected error for missing dictionaries")
	}
}
