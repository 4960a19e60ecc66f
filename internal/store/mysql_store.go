package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/evyataryagoni/iplocation/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"lukechampine.com/uint128"
)

const (
	mysqlDatastore = "mysql"

	familyV4 uint8 = 4
	familyV6 uint8 = 6

	// importBatchSize is the number of rows per INSERT statement
	importBatchSize = 1000
)

// IPRangeModel is the GORM model for the ip_ranges table.
// Range bounds are stored big-endian with a fixed width per family
// (4 bytes for v4, 16 for v6) so that byte order matches numeric order.
type IPRangeModel struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	Family     uint8  `gorm:"column:family;index:idx_family_start,priority:1"`
	RangeStart []byte `gorm:"column:range_start;type:varbinary(16);index:idx_family_start,priority:2"`
	RangeEnd   []byte `gorm:"column:range_end;type:varbinary(16)"`
	Location   []byte `gorm:"column:location;type:binary(8)"`
}

// TableName specifies the table name for GORM
func (IPRangeModel) TableName() string {
	return "ip_ranges"
}

// MySQLStore implements Store over compiled ranges exported to MySQL.
// Locations are stored packed; names come from the dictionaries of the
// compilation that produced the rows.
type MySQLStore struct {
	db      *gorm.DB
	dicts   *dictionary.Set
	metrics *metrics.Metrics
}

// NewMySQLStore creates a new MySQL store using GORM
//
// dsn format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string, dicts *dictionary.Set, m *metrics.Metrics) (*MySQLStore, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if m != nil {
		m.DatastoreConnectionsOpen.Set(float64(sqlDB.Stats().OpenConnections))
	}
	return &MySQLStore{db: db, dicts: dicts, metrics: m}, nil
}

// Migrate creates or updates the ip_ranges table
func (s *MySQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&IPRangeModel{}); err != nil {
		return fmt.Errorf("failed to migrate ip_ranges: %w", err)
	}
	return nil
}

// Import replaces the contents of ip_ranges with the given zones in one
// transaction, so readers see either the old or the new compilation
func (s *MySQLStore) Import(v4 []ipdb.V4Record, v6 []ipdb.V6Record) error {
	rows := make([]IPRangeModel, 0, len(v4)+len(v6))
	for _, r := range v4 {
		rows = append(rows, IPRangeModel{
			Family:     familyV4,
			RangeStart: v4Key(r.Start),
			RangeEnd:   v4Key(r.End),
			Location:   packLocation(r.Location),
		})
	}
	for _, r := range v6 {
		rows = append(rows, IPRangeModel{
			Family:     familyV6,
			RangeStart: v6Key(r.Start),
			RangeEnd:   v6Key(r.End),
			Location:   packLocation(r.Location),
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&IPRangeModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear ip_ranges: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, importBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert ranges: %w", err)
		}
		return nil
	})
}

// FindByIP finds the range with the greatest start not above ip and checks
// that it reaches ip
func (s *MySQLStore) FindByIP(ip netip.Addr) (*models.IPLocation, error) {
	start := time.Now()
	family, key := rangeKey(ip)

	var record IPRangeModel
	result := s.db.
		Where("family = ? AND range_start <= ?", family, key).
		Order("range_start DESC").
		Take(&record)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.metrics.ObserveQuery(mysqlDatastore, "find_by_ip", "miss", time.Since(start).Seconds())
			return nil, ErrNotFound
		}
		s.metrics.ObserveQuery(mysqlDatastore, "find_by_ip", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	if bytes.Compare(key, record.RangeEnd) > 0 {
		s.metrics.ObserveQuery(mysqlDatastore, "find_by_ip", "miss", time.Since(start).Seconds())
		return nil, ErrNotFound
	}

	var loc ipdb.Location
	if err := loc.UnmarshalBinary(record.Location); err != nil {
		s.metrics.ObserveQuery(mysqlDatastore, "find_by_ip", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("corrupt location in range %d: %w", record.ID, err)
	}
	s.metrics.ObserveQuery(mysqlDatastore, "find_by_ip", "hit", time.Since(start).Seconds())
	return resolve(ip, loc, s.dicts), nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// rangeKey returns the family and the comparable key of ip.
// v4-mapped v6 addresses are v6 keys, as in the blob.
func rangeKey(ip netip.Addr) (uint8, []byte) {
	if ip.Is4() {
		return familyV4, v4Key(ipdb.V4Number(ip))
	}
	b := ip.As16()
	return familyV6, b[:]
}

func v4Key(n uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, n)
}

func v6Key(n uint128.Uint128) []byte {
	return n.Big().FillBytes(make([]byte, 16))
}

func packLocation(loc ipdb.Location) []byte {
	b, _ := loc.MarshalBinary()
	return b
}
