// Package price resolves the retail electricity rate for a country, with a
// static fallback table. Price lookups never fail hard: any error degrades
// to the fallback rate, flagged for UI disclosure.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"solarsight/internal/config"
	"solarsight/internal/model"
	redis_client "solarsight/internal/redis"
)

// Sanity bounds for a retail price in EUR/kWh. Values outside are treated as
// malformed payloads and replaced by the fallback.
const (
	minSanePrice = 0.03
	maxSanePrice = 2.0
)

const priceRedisKey = "price"

// PriceService fetches live electricity prices with cache and fallback.
type PriceService struct {
	baseURL string
	client  *http.Client
}

var (
	priceServiceInstance *PriceService
	priceServiceOnce     sync.Once
)

// GetPriceService returns the singleton instance of the PriceService.
func GetPriceService(baseURL string) *PriceService {
	priceServiceOnce.Do(func() {
		priceServiceInstance = NewPriceService(baseURL)
	})
	return priceServiceInstance
}

// NewPriceService builds a service against the given endpoint. An empty
// endpoint disables live fetching entirely; only the fallback table is used.
func NewPriceService(baseURL string) *PriceService {
	return &PriceService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// priceResponse mirrors the wire shape of the price provider.
type priceResponse struct {
	CountryCode string  `json:"country_code"`
	PricePerKwh float64 `json:"price_per_kwh"`
	Currency    string  `json:"currency"`
}

// Get resolves the electricity rate for a country code. Resolution order:
// Redis cache, live service, static fallback. Never returns an error.
func (s *PriceService) Get(ctx context.Context, countryCode string) model.ElectricityRate {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	if rate, ok := s.fromCache(countryCode); ok {
		return rate
	}

	if s.baseURL != "" {
		if rate, ok := s.fetch(ctx, countryCode); ok {
			s.toCache(rate)
			return rate
		}
	}

	return s.Fallback(countryCode)
}

// Live reports whether a live price endpoint is configured.
func (s *PriceService) Live() bool {
	return s.baseURL != ""
}

// Fallback returns the static table rate for a country, flagged as such.
func (s *PriceService) Fallback(countryCode string) model.ElectricityRate {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return model.ElectricityRate{
		CountryCode: countryCode,
		PricePerKwh: FallbackRate(countryCode),
		IsFallback:  true,
		FetchedAt:   time.Now(),
	}
}

func (s *PriceService) fetch(ctx context.Context, countryCode string) (model.ElectricityRate, bool) {
	endpoint := fmt.Sprintf("%s?country=%s", s.baseURL, countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ElectricityRate{}, false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("price: fetch failed for %s, using fallback: %v", countryCode, err)
		return model.ElectricityRate{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("price: status %d for %s, using fallback", resp.StatusCode, countryCode)
		return model.ElectricityRate{}, false
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("price: malformed payload for %s, using fallback: %v", countryCode, err)
		return model.ElectricityRate{}, false
	}

	if payload.PricePerKwh < minSanePrice || payload.PricePerKwh > maxSanePrice {
		log.Printf("price: implausible price %v for %s, using fallback", payload.PricePerKwh, countryCode)
		return model.ElectricityRate{}, false
	}

	return model.ElectricityRate{
		CountryCode: countryCode,
		PricePerKwh: payload.PricePerKwh,
		IsFallback:  false,
		FetchedAt:   time.Now(),
	}, true
}

func (s *PriceService) fromCache(countryCode string) (model.ElectricityRate, bool) {
	if redis_client.GetClient() == nil {
		return model.ElectricityRate{}, false
	}

	raw, err := redis_client.Get(fmt.Sprintf("%s:%s", priceRedisKey, countryCode))
	if err != nil || raw == "" {
		return model.ElectricityRate{}, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < minSanePrice || value > maxSanePrice {
		return model.ElectricityRate{}, false
	}

	return model.ElectricityRate{
		CountryCode: countryCode,
		PricePerKwh: value,
		IsFallback:  false,
		FetchedAt:   time.Now(),
	}, true
}

func (s *PriceService) toCache(rate model.ElectricityRate) {
	if redis_client.GetClient() == nil {
		return
	}

	key := fmt.Sprintf("%s:%s", priceRedisKey, rate.CountryCode)
	value := strconv.FormatFloat(rate.PricePerKwh, 'f', -1, 64)
	if err := redis_client.Set(key, value, config.PriceCacheTTL); err != nil {
		log.Printf("price: failed to cache %s: %v", key, err)
	}
}
