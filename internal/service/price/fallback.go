package price

// DefaultCountryCode is used when geocoding fails to resolve a country or
// the resolved country is not in the fallback table.
const DefaultCountryCode = "FR"

// fallbackRates is the static per-country retail price table, EUR per kWh.
// Substituted whenever the live price service is unavailable or returns an
// implausible value.
var fallbackRates = map[string]float64{
	"FR": 0.2516,
	"DE": 0.3951,
	"BE": 0.2889,
	"NL": 0.2514,
	"LU": 0.1874,
	"ES": 0.1720,
	"PT": 0.2246,
	"IT": 0.2390,
	"CH": 0.2100,
	"GB": 0.2674,
	"IE": 0.2980,
	"AT": 0.2520,
}

// FallbackRate returns the static rate for a country, defaulting to France
// for unknown codes. Always finite and positive.
func FallbackRate(countryCode string) float64 {
	if rate, ok := fallbackRates[countryCode]; ok {
		return rate
	}
	return fallbackRates[DefaultCountryCode]
}
