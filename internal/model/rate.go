package model

import "time"

// ElectricityRate is a retail electricity price in EUR per kWh. IsFallback is
// true when the value comes from the static per-country table rather than the
// live price service, so the display layer can disclose it.
type ElectricityRate struct {
	CountryCode string    `json:"country_code"`
	PricePerKwh float64   `json:"price_per_kwh"`
	IsFallback  bool      `json:"is_fallback"`
	FetchedAt   time.Time `json:"fetched_at"`
}
