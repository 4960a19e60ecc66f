package service

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/evyataryagoni/iplocation/internal/models"
	"github.com/evyataryagoni/iplocation/internal/store"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidIP is returned for input that is not an IPv4 or IPv6 address
var ErrInvalidIP = errors.New("invalid IP address format")

// IPService validates lookup input and queries the store.
// It sits between the handlers and the stores.
type IPService struct {
	store     store.Store
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewIPService creates a new IP service. m and log may be nil.
func NewIPService(store store.Store, m *metrics.Metrics, log *logger.Logger) *IPService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &IPService{
		store:     store,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("IPService"),
	}
}

// LookupIP returns the location of an IPv4 or IPv6 address in text form.
// It returns ErrInvalidIP, store.ErrNotFound or a store error.
func (s *IPService) LookupIP(ip string) (*models.IPLocation, error) {
	addr, err := s.parse(ip)
	if err != nil {
		s.logger.Warn().Str("ip", ip).Msg("Invalid IP address format")
		if s.metrics != nil {
			s.metrics.IPLookupsErrors.WithLabelValues("validation").Inc()
		}
		return nil, err
	}
	return s.Lookup(addr)
}

// Lookup returns the location of a parsed address
func (s *IPService) Lookup(addr netip.Addr) (*models.IPLocation, error) {
	log := s.logger.WithIP(addr.String())

	log.Debug().Msg("Looking up IP address")
	location, err := s.store.FindByIP(addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug().Msg("IP address not found")
			if s.metrics != nil {
				s.metrics.IPLookupsNotFound.Inc()
				s.metrics.IPLookupsTotal.WithLabelValues("not_found").Inc()
			}
		} else {
			log.Error().Err(err).Msg("Store error during IP lookup")
			if s.metrics != nil {
				s.metrics.IPLookupsErrors.WithLabelValues("store_error").Inc()
			}
		}
		return nil, err
	}

	log.Info().
		Str("country", location.CountryCode).
		Str("province", location.Province).
		Str("city", location.City).
		Msg("IP lookup successful")
	if s.metrics != nil {
		s.metrics.IPLookupsTotal.WithLabelValues("success").Inc()
	}
	return location, nil
}

// parse validates ip and converts it. Zones are dropped.
func (s *IPService) parse(ip string) (netip.Addr, error) {
	if err := s.validator.Var(ip, "required,ip"); err != nil {
		return netip.Addr{}, ErrInvalidIP
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrInvalidIP, err)
	}
	return addr.WithZone(""), nil
}

// Close closes the underlying store
func (s *IPService) Close() error {
	return s.store.Close()
}
