// Package insights fetches building solar insights for a coordinate and
// indexes the returned roof segments for spatial matching.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"solarsight/internal/config"
	"solarsight/internal/model"
	redis_client "solarsight/internal/redis"
)

var (
	// ErrNotAnalyzable means the provider has no solar potential data for
	// this roof. Terminal for the address, not retryable.
	ErrNotAnalyzable = errors.New("insights: roof is not analyzable")

	// ErrUpstream covers transport failures and 4xx/5xx responses
	ErrUpstream = errors.New("insights: upstream error")
)

const insightsRedisKey = "insights"

// InsightsService retrieves and caches building insights responses.
type InsightsService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var (
	insightsServiceInstance *InsightsService
	insightsServiceOnce     sync.Once
)

// GetInsightsService returns the singleton instance of the InsightsService.
func GetInsightsService(baseURL, apiKey string) *InsightsService {
	insightsServiceOnce.Do(func() {
		insightsServiceInstance = NewInsightsService(baseURL, apiKey)
	})
	return insightsServiceInstance
}

// NewInsightsService builds a service against the given endpoint. Used
// directly by tests with an httptest server.
func NewInsightsService(baseURL, apiKey string) *InsightsService {
	return &InsightsService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// wire shapes of the building insights provider

type wireLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type wireBox struct {
	SW wireLatLng `json:"sw"`
	NE wireLatLng `json:"ne"`
}

type wireSegment struct {
	PitchDegrees   float64 `json:"pitchDegrees"`
	AzimuthDegrees float64 `json:"azimuthDegrees"`
	Stats          struct {
		AreaMeters2       float64   `json:"areaMeters2"`
		SunshineQuantiles []float64 `json:"sunshineQuantiles"`
	} `json:"stats"`
	Center      wireLatLng `json:"center"`
	BoundingBox wireBox    `json:"boundingBox"`
}

type wireResponse struct {
	Center         wireLatLng `json:"center"`
	BoundingBox    wireBox    `json:"boundingBox"`
	ImageryDate    struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"imageryDate"`
	ImageryQuality string `json:"imageryQuality"`
	SolarPotential *struct {
		MaxArrayAreaMeters2        float64       `json:"maxArrayAreaMeters2"`
		MaxArrayAnnualEnergyKwh    float64       `json:"maxArrayAnnualEnergyKwh"`
		MaxSunshineHoursPerYear    float64       `json:"maxSunshineHoursPerYear"`
		CarbonOffsetFactorKgPerMwh float64       `json:"carbonOffsetFactorKgPerMwh"`
		RoofSegmentStats           []wireSegment `json:"roofSegmentStats"`
		SolarPanelConfigs          []struct {
			PanelsCount       int     `json:"panelsCount"`
			YearlyEnergyDcKwh float64 `json:"yearlyEnergyDcKwh"`
		} `json:"solarPanelConfigs"`
	} `json:"solarPotential"`
}

// Fetch retrieves building insights for a coordinate, consulting the Redis
// cache first. Responses without solar potential yield ErrNotAnalyzable.
func (s *InsightsService) Fetch(ctx context.Context, lat, lng float64) (*model.BuildingInsights, error) {
	cacheKey := fmt.Sprintf("%s:%.5f:%.5f", insightsRedisKey, lat, lng)

	if cached := s.fromCache(cacheKey); cached != nil {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s?location.latitude=%f&location.longitude=%f&key=%s",
		s.baseURL, lat, lng, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotAnalyzable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ins := fromWire(&payload)
	if !ins.HasSolarPotential() {
		return nil, ErrNotAnalyzable
	}

	s.toCache(cacheKey, ins)
	return ins, nil
}

// fromWire maps the provider response to the in-memory model.
func fromWire(payload *wireResponse) *model.BuildingInsights {
	ins := &model.BuildingInsights{
		Center:         model.GeoPoint{Lat: payload.Center.Latitude, Lng: payload.Center.Longitude},
		BoundsSW:       model.GeoPoint{Lat: payload.BoundingBox.SW.Latitude, Lng: payload.BoundingBox.SW.Longitude},
		BoundsNE:       model.GeoPoint{Lat: payload.BoundingBox.NE.Latitude, Lng: payload.BoundingBox.NE.Longitude},
		ImageryQuality: payload.ImageryQuality,
	}

	if payload.ImageryDate.Year > 0 {
		ins.ImageryDate = time.Date(payload.ImageryDate.Year, time.Month(payload.ImageryDate.Month),
			payload.ImageryDate.Day, 0, 0, 0, 0, time.UTC)
	}

	sp := payload.SolarPotential
	if sp == nil {
		return ins
	}

	ins.MaxArrayAreaMeters2 = sp.MaxArrayAreaMeters2
	ins.MaxArrayAnnualEnergyKwh = sp.MaxArrayAnnualEnergyKwh
	ins.MaxSunshineHoursPerYear = sp.MaxSunshineHoursPerYear
	ins.CarbonOffsetFactorKgPerMwh = sp.CarbonOffsetFactorKgPerMwh

	for _, seg := range sp.RoofSegmentStats {
		ins.RoofSegments = append(ins.RoofSegments, model.RoofSegmentStats{
			PitchDegrees:      seg.PitchDegrees,
			AzimuthDegrees:    seg.AzimuthDegrees,
			AreaMeters2:       seg.Stats.AreaMeters2,
			SunshineQuantiles: seg.Stats.SunshineQuantiles,
			Center:            model.GeoPoint{Lat: seg.Center.Latitude, Lng: seg.Center.Longitude},
			BoundsSW:          model.GeoPoint{Lat: seg.BoundingBox.SW.Latitude, Lng: seg.BoundingBox.SW.Longitude},
			BoundsNE:          model.GeoPoint{Lat: seg.BoundingBox.NE.Latitude, Lng: seg.BoundingBox.NE.Longitude},
		})
	}

	for _, cfg := range sp.SolarPanelConfigs {
		ins.PanelConfigs = append(ins.PanelConfigs, model.SolarPanelConfig{
			PanelsCount:       cfg.PanelsCount,
			YearlyEnergyDcKwh: cfg.YearlyEnergyDcKwh,
		})
	}

	// Some responses omit the whole-roof annual maximum; the largest panel
	// configuration carries the same bound.
	if ins.MaxArrayAnnualEnergyKwh == 0 {
		for _, cfg := range ins.PanelConfigs {
			if cfg.YearlyEnergyDcKwh > ins.MaxArrayAnnualEnergyKwh {
				ins.MaxArrayAnnualEnergyKwh = cfg.YearlyEnergyDcKwh
			}
		}
	}

	return ins
}

func (s *InsightsService) fromCache(key string) *model.BuildingInsights {
	if redis_client.GetClient() == nil {
		return nil
	}

	raw, err := redis_client.Get(key)
	if err != nil || raw == "" {
		return nil
	}

	ins := &model.BuildingInsights{}
	if err := json.Unmarshal([]byte(raw), ins); err != nil {
		log.Printf("insights: dropping malformed cache entry %s: %v", key, err)
		return nil
	}
	return ins
}

func (s *InsightsService) toCache(key string, ins *model.BuildingInsights) {
	if redis_client.GetClient() == nil {
		return
	}

	raw, err := json.Marshal(ins)
	if err != nil {
		return
	}
	if err := redis_client.Set(key, raw, config.InsightsCacheTTL); err != nil {
		log.Printf("insights: failed to cache %s: %v", key, err)
	}
}
