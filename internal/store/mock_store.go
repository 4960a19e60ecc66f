package store

import (
	"net/netip"

	"github.com/evyataryagoni/iplocation/internal/models"
)

// MockStore is a test double for the Store interface
type MockStore struct {
	// Data maps an address to its location
	Data map[netip.Addr]*models.IPLocation

	// Track method calls for verification in tests
	FindByIPCalls []netip.Addr
	CloseCalled   bool

	// Control behavior for error scenarios
	FindByIPError error
	CloseError    error
}

// NewMockStore creates a mock store with sample test data
func NewMockStore() *MockStore {
	return &MockStore{
		Data: map[netip.Addr]*models.IPLocation{
			netip.MustParseAddr("8.8.8.8"): {
				IP:          "8.8.8.8",
				CountryCode: "US",
				Country:     "United States of America",
				Province:    "California",
				City:        "Mountain View",
			},
			netip.MustParseAddr("1.1.1.1"): {
				IP:          "1.1.1.1",
				CountryCode: "AU",
				Country:     "Australia",
				Province:    "Queensland",
				City:        "Brisbane",
			},
			netip.MustParseAddr("2001:4860:4860::8888"): {
				IP:          "2001:4860:4860::8888",
				CountryCode: "US",
				Country:     "United States of America",
			},
		},
	}
}

// NewEmptyMockStore creates a mock store with no data
func NewEmptyMockStore() *MockStore {
	return &MockStore{
		Data: map[netip.Addr]*models.IPLocation{},
	}
}

// FindByIP implements the Store interface
func (m *MockStore) FindByIP(ip netip.Addr) (*models.IPLocation, error) {
	m.FindByIPCalls = append(m.FindByIPCalls, ip)

	if m.FindByIPError != nil {
		return nil, m.FindByIPError
	}

	location, exists := m.Data[ip]
	if !exists {
		return nil, ErrNotFound
	}

	return location, nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
