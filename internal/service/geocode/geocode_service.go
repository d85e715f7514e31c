// Package geocode wraps the REST geocoder behind the single contract the
// analysis pipeline needs: address in, coordinate and country code out.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"solarsight/internal/model"
)

var (
	// ErrNoResult means the address could not be resolved at all. This is an
	// input error; retrying the same address will not help.
	ErrNoResult = errors.New("geocode: address not found")

	// ErrUpstream covers transport failures and quota/5xx responses. These
	// are plausibly transient and a manual retry may succeed.
	ErrUpstream = errors.New("geocode: upstream error")
)

// Result is a resolved address.
type Result struct {
	Location    model.GeoPoint
	CountryCode string
}

// GeocodeService resolves free-form addresses through the remote geocoder.
type GeocodeService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var (
	geocodeServiceInstance *GeocodeService
	geocodeServiceOnce     sync.Once
)

// GetGeocodeService returns the singleton instance of the GeocodeService.
func GetGeocodeService(baseURL, apiKey string) *GeocodeService {
	geocodeServiceOnce.Do(func() {
		geocodeServiceInstance = NewGeocodeService(baseURL, apiKey)
	})
	return geocodeServiceInstance
}

// NewGeocodeService builds a service against the given endpoint. Used
// directly by tests with an httptest server.
func NewGeocodeService(baseURL, apiKey string) *GeocodeService {
	return &GeocodeService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// geocodeResponse mirrors the wire shape of the geocoder.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Geocode resolves an address to a coordinate and ISO country code.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (Result, error) {
	endpoint := fmt.Sprintf("%s?address=%s&key=%s",
		s.baseURL, url.QueryEscape(address), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if payload.Status == "ZERO_RESULTS" {
		return Result{}, ErrNoResult
	}
	if payload.Status != "OK" {
		// Quota and key errors are plausibly transient
		return Result{}, fmt.Errorf("%w: status %s", ErrUpstream, payload.Status)
	}
	if len(payload.Results) == 0 {
		return Result{}, ErrNoResult
	}

	first := payload.Results[0]
	result := Result{
		Location: model.GeoPoint{
			Lat: first.Geometry.Location.Lat,
			Lng: first.Geometry.Location.Lng,
		},
	}

	for _, component := range first.AddressComponents {
		for _, t := range component.Types {
			if t == "country" {
				result.CountryCode = component.ShortName
			}
		}
	}

	return result, nil
}
