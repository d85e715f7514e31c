package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geocodeOK = `{
	"status": "OK",
	"results": [{
		"geometry": {"location": {"lat": 48.8566, "lng": 2.3522}},
		"address_components": [
			{"short_name": "Paris", "types": ["locality"]},
			{"short_name": "FR", "types": ["country", "political"]}
		]
	}]
}`

func TestGeocodeResolvesAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("address"))
		w.Write([]byte(geocodeOK))
	}))
	defer server.Close()

	service := NewGeocodeService(server.URL, "test-key")
	result, err := service.Geocode(context.Background(), "10 rue de Rivoli, Paris")

	require.NoError(t, err)
	assert.InDelta(t, 48.8566, result.Location.Lat, 1e-9)
	assert.InDelta(t, 2.3522, result.Location.Lng, 1e-9)
	assert.Equal(t, "FR", result.CountryCode)
}

func TestGeocodeNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	service := NewGeocodeService(server.URL, "test-key")
	_, err := service.Geocode(context.Background(), "nowhere at all")

	assert.ErrorIs(t, err, ErrNoResult)
}

func TestGeocodeQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	}))
	defer server.Close()

	service := NewGeocodeService(server.URL, "test-key")
	_, err := service.Geocode(context.Background(), "10 rue de Rivoli, Paris")

	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewGeocodeService(server.URL, "test-key")
	_, err := service.Geocode(context.Background(), "10 rue de Rivoli, Paris")

	assert.ErrorIs(t, err, ErrUpstream)
}
