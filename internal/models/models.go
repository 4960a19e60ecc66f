package models

import "fmt"

// IPLocation is the resolved location of an IP address.
// Province and City are empty when the database has no data for them.
type IPLocation struct {
	IP          string `json:"ip" example:"8.8.8.8"`
	CountryCode string `json:"country_code" example:"US"`
	Country     string `json:"country" example:"United States of America"`
	Province    string `json:"province,omitempty" example:"California"`
	City        string `json:"city,omitempty" example:"Mountain View"`
}

// unknown is printed for missing fields
const unknown = "Unknown"

// String formats the location as "<province>,<city> <country code>"
func (l IPLocation) String() string {
	province, city := l.Province, l.City
	if province == "" {
		province = unknown
	}
	if city == "" {
		city = unknown
	}
	return fmt.Sprintf("%s,%s %s", province, city, l.CountryCode)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error" example:"IP address not found"`
}

// LookupResponse is returned by /v1/lookup
type LookupResponse struct {
	IPLocation
	Location string `json:"location" example:"California,Mountain View US"` // "<province>,<city> <country code>"
}

// CountryResponse is returned by /v1/find-country
type CountryResponse struct {
	IP          string `json:"ip" example:"8.8.8.8"`
	CountryCode string `json:"country_code" example:"US"`
	Country     string `json:"country" example:"United States of America"`
}
