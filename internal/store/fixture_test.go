package store

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/evyataryagoni/iplocation/internal/country"
	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// testZones returns a small compilation:
//
//	1.0.0.0-1.0.0.255         AU Queensland, Brisbane
//	8.8.8.0-8.8.8.255         US -, Mountain View
//	2001:db8::/32             US California, Mountain View
func testZones(t *testing.T) (*dictionary.Set, []ipdb.V4Record, []ipdb.V6Record) {
	t.Helper()

	provinces, err := dictionary.New([]string{"California", "Queensland"})
	if err != nil {
		t.Fatalf("failed to build provinces: %v", err)
	}
	cities, err := dictionary.New([]string{"Brisbane", "Mountain View"})
	if err != nil {
		t.Fatalf("failed to build cities: %v", err)
	}
	au, _ := country.Parse("AU")
	us, _ := country.Parse("US")

	v4 := []ipdb.V4Record{
		{
			Start:    ipdb.V4Number(netip.MustParseAddr("1.0.0.0")),
			End:      ipdb.V4Number(netip.MustParseAddr("1.0.0.255")),
			Location: ipdb.NewLocation(au, 1, 0),
		},
		{
			Start:    ipdb.V4Number(netip.MustParseAddr("8.8.8.0")),
			End:      ipdb.V4Number(netip.MustParseAddr("8.8.8.255")),
			Location: ipdb.NewLocation(us, ipdb.NoProvince, 1),
		},
	}
	v6 := []ipdb.V6Record{
		{
			Start:    ipdb.V6Number(netip.MustParseAddr("2001:db8::")),
			End:      ipdb.V6Number(netip.MustParseAddr("2001:db8:ffff:ffff:ffff:ffff:ffff:ffff")),
			Location: ipdb.NewLocation(us, 0, 1),
		},
	}
	return &dictionary.Set{Provinces: provinces, Cities: cities}, v4, v6
}

// newTestBlobStore encodes testZones into a blob store
func newTestBlobStore(t *testing.T, m *metrics.Metrics) *BlobStore {
	t.Helper()

	dicts, v4, v6 := testZones(t)
	var buf bytes.Buffer
	if _, err := ipdb.Encode(&buf, v4, v6); err != nil {
		t.Fatalf("failed to encode blob: %v", err)
	}
	return NewBlobStoreFromDB(ipdb.New(buf.Bytes()), dicts, m)
}

// newTestMetrics returns metrics bound to a private registry
func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}
