package store

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/evyataryagoni/iplocation/internal/models"
)

const blobDatastore = "blob"

// BlobStore implements Store over a compiled database blob and the
// dictionaries written by the same compilation.
// It holds no locks: the blob is immutable once loaded.
type BlobStore struct {
	db      *ipdb.DB
	dicts   *dictionary.Set
	metrics *metrics.Metrics
}

// NewBlobStore loads the blob at dbPath and the JSON dictionaries at dictPath.
//
// A blob whose zones fail validation still loads; the broken zones answer
// no queries and the reason is available from Err.
func NewBlobStore(dbPath, dictPath string, m *metrics.Metrics) (*BlobStore, error) {
	db, err := ipdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load database: %w", err)
	}
	dicts, err := dictionary.LoadSet(dictPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionaries: %w", err)
	}
	return NewBlobStoreFromDB(db, dicts, m), nil
}

// NewBlobStoreFromDB wraps an already loaded database
func NewBlobStoreFromDB(db *ipdb.DB, dicts *dictionary.Set, m *metrics.Metrics) *BlobStore {
	s := &BlobStore{db: db, dicts: dicts, metrics: m}
	if m != nil {
		stats := db.Stats()
		m.DatabaseRecords.WithLabelValues("v4").Set(float64(stats.V4Records))
		m.DatabaseRecords.WithLabelValues("v6").Set(float64(stats.V6Records))
		if db.Err() != nil {
			m.DatabaseInvalid.Set(1)
		} else {
			m.DatabaseInvalid.Set(0)
		}
	}
	return s
}

// FindByIP looks up an IP address in the compiled ranges
func (s *BlobStore) FindByIP(ip netip.Addr) (*models.IPLocation, error) {
	start := time.Now()
	loc, ok := s.db.Query(ip)
	status := "hit"
	if !ok {
		status = "miss"
	}
	s.metrics.ObserveQuery(blobDatastore, "find_by_ip", status, time.Since(start).Seconds())

	if !ok {
		return nil, ErrNotFound
	}
	return resolve(ip, loc, s.dicts), nil
}

// Stats returns the number of records per zone
func (s *BlobStore) Stats() ipdb.Stats {
	return s.db.Stats()
}

// Err reports why a zone of the loaded blob is being served as empty, if any
func (s *BlobStore) Err() error {
	return s.db.Err()
}

// Close is a no-op, the blob lives in memory
func (s *BlobStore) Close() error {
	return nil
}
