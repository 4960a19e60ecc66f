package store

import (
	"errors"
	"net/netip"

	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/ipdb"
	"github.com/evyataryagoni/iplocation/internal/models"
)

// ErrNotFound means no range in the database covers the address
var ErrNotFound = errors.New("IP address not found")

// Store defines the interface for IP lookup operations
// Allows multiple backends (compiled blob, MySQL, Redis cache) and easy testing with mocks
type Store interface {
	// FindByIP returns the location of ip, or ErrNotFound
	FindByIP(ip netip.Addr) (*models.IPLocation, error)

	// Close releases the resources held by the store
	Close() error
}

// resolve turns a packed location into names using the dictionaries of the
// same compilation
func resolve(ip netip.Addr, loc ipdb.Location, dicts *dictionary.Set) *models.IPLocation {
	names := dicts.Resolve(loc)
	c := loc.Country()
	return &models.IPLocation{
		IP:          ip.String(),
		CountryCode: c.Code(),
		Country:     c.Name(),
		Province:    names.Province,
		City:        names.City,
	}
}
