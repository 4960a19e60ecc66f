package v1

import (
	"github.com/evyataryagoni/iplocation/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /v1 endpoints:
//
//	GET /v1/lookup?ip=<ip>        country, province and city
//	GET /v1/find-country?ip=<ip>  country only
func SetupRoutes(ipHandler *handler.IPHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/lookup", ipHandler.Lookup)
	r.Get("/find-country", ipHandler.FindCountry)

	return r
}
