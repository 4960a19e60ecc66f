package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evyataryagoni/iplocation/internal/models"
	"github.com/evyataryagoni/iplocation/internal/service"
	"github.com/evyataryagoni/iplocation/internal/store"
)

// IPHandler handles HTTP requests for IP lookups.
// It parses requests and formats responses; lookups go through the service.
type IPHandler struct {
	service *service.IPService
}

// NewIPHandler creates a new IP handler with the given service
func NewIPHandler(service *service.IPService) *IPHandler {
	return &IPHandler{
		service: service,
	}
}

// Lookup handles GET /v1/lookup?ip=<ip>
// Responds with the country, province and city of the address.
// @Summary      Look up location by IP address
// @Description  Look up the country, province and city of an IPv4 or IPv6 address
// @Tags         IP Lookup
// @Accept       json
// @Produce      json
// @Param        ip   query      string  true  "IP address (IPv4 or IPv6)"  example(8.8.8.8)
// @Success      200  {object}   models.LookupResponse
// @Failure      400  {object}   models.ErrorResponse  "Invalid IP format"
// @Failure      404  {object}   models.ErrorResponse  "IP not found"
// @Failure      429  {object}   models.ErrorResponse  "Rate limit exceeded"
// @Failure      500  {object}   models.ErrorResponse  "Internal server error"
// @Router       /v1/lookup [get]
func (h *IPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	location, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, models.LookupResponse{
		IPLocation: *location,
		Location:   location.String(),
	})
}

// FindCountry handles GET /v1/find-country?ip=<ip>
// Responds with the country of the address only.
// @Summary      Find country by IP address
// @Description  Look up the country of an IPv4 or IPv6 address
// @Tags         IP Lookup
// @Accept       json
// @Produce      json
// @Param        ip   query      string  true  "IP address (IPv4 or IPv6)"  example(8.8.8.8)
// @Success      200  {object}   models.CountryResponse
// @Failure      400  {object}   models.ErrorResponse  "Invalid IP format"
// @Failure      404  {object}   models.ErrorResponse  "IP not found"
// @Failure      429  {object}   models.ErrorResponse  "Rate limit exceeded"
// @Failure      500  {object}   models.ErrorResponse  "Internal server error"
// @Router       /v1/find-country [get]
func (h *IPHandler) FindCountry(w http.ResponseWriter, r *http.Request) {
	location, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, models.CountryResponse{
		IP:          location.IP,
		CountryCode: location.CountryCode,
		Country:     location.Country,
	})
}

// lookup runs the query in the ip parameter and writes the error response
// when there is no result
func (h *IPHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.IPLocation, bool) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		h.respondError(w, http.StatusBadRequest, "Missing 'ip' query parameter")
		return nil, false
	}

	location, err := h.service.LookupIP(ip)
	switch {
	case err == nil:
		return location, true
	case errors.Is(err, service.ErrInvalidIP):
		h.respondError(w, http.StatusBadRequest, service.ErrInvalidIP.Error())
	case errors.Is(err, store.ErrNotFound):
		h.respondError(w, http.StatusNotFound, store.ErrNotFound.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
	return nil, false
}

// respondJSON writes a JSON response with the given status code
func (h *IPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func (h *IPHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
