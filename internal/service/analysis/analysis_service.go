// Package analysis sequences the external collaborators (geocoder, building
// insights, electricity price) and owns the drawing sessions. All remote
// errors are caught here and mapped to one user-facing category; nothing
// upstream-shaped leaks past this boundary.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"solarsight/internal/config"
	"solarsight/internal/drawing"
	"solarsight/internal/model"
	pg "solarsight/internal/postgres"
	redis_client "solarsight/internal/redis"
	"solarsight/internal/service/geocode"
	"solarsight/internal/service/insights"
	"solarsight/internal/service/price"
	"solarsight/internal/service/storage"
	"solarsight/internal/util"
)

const analysisRedisKey = "analysis"

var (
	// ErrNotFound means no analysis exists for the given id
	ErrNotFound = errors.New("analysis: not found")

	// ErrInvalidTransition means a drawing operation is not permitted in
	// the session's current state
	ErrInvalidTransition = errors.New("analysis: invalid drawing transition")
)

// AreaChangedFunc receives the new net area after every polygon mutation.
// A nil area means the session was cleared.
type AreaChangedFunc func(id string, areaM2 *float64)

// TechnicalInfoChangedFunc receives the recomputed metrics and projection.
type TechnicalInfoChangedFunc func(id string, m model.ZoneMetrics, p model.FinancialProjection)

// AnalysisService owns analyses and applies drawing mutations to them.
// Mutations are serialized: the drawing state machine is event-driven and
// synchronous, matching a single UI event loop.
type AnalysisService struct {
	geocoder *geocode.GeocodeService
	insights *insights.InsightsService
	prices   *price.PriceService
	solarCfg config.SolarConfig

	storage storage.Storage[string, *Analysis]

	// Per-analysis roof segment index, rebuilt lazily; never serialized
	indexes map[string]*insights.SegmentIndex

	areaListeners []AreaChangedFunc
	infoListeners []TechnicalInfoChangedFunc

	mu          sync.Mutex
	initialized bool
}

var (
	analysisServiceInstance *AnalysisService
	analysisServiceOnce     sync.Once
)

// GetAnalysisService returns the singleton instance of the AnalysisService.
func GetAnalysisService(geocoder *geocode.GeocodeService, ins *insights.InsightsService, prices *price.PriceService, solarCfg config.SolarConfig) *AnalysisService {
	analysisServiceOnce.Do(func() {
		analysisServiceInstance = NewAnalysisService(geocoder, ins, prices, solarCfg)
	})
	return analysisServiceInstance
}

// NewAnalysisService builds a service with explicit collaborators. Used
// directly by tests.
func NewAnalysisService(geocoder *geocode.GeocodeService, ins *insights.InsightsService, prices *price.PriceService, solarCfg config.SolarConfig) *AnalysisService {
	return &AnalysisService{
		geocoder: geocoder,
		insights: ins,
		prices:   prices,
		solarCfg: solarCfg,
		storage:  storage.NewMemoryStorage[string, *Analysis](),
		indexes:  make(map[string]*insights.SegmentIndex),
	}
}

// OnAreaChange registers a synchronous area-changed listener.
func (s *AnalysisService) OnAreaChange(fn AreaChangedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areaListeners = append(s.areaListeners, fn)
}

// OnTechnicalInfoChange registers a synchronous metrics listener.
func (s *AnalysisService) OnTechnicalInfoChange(fn TechnicalInfoChangedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoListeners = append(s.infoListeners, fn)
}

// InitService restores analyses persisted to Redis by a previous run.
func (s *AnalysisService) InitService(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	log.Println("Initializing AnalysisService...")
	startTime := time.Now()

	restored, err := s.loadAllFromRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to load analyses from Redis: %w", err)
	}

	for id, a := range restored {
		s.storage.Set(id, a)
	}
	s.storage.ClearDirty(keysOf(restored))

	log.Printf("Initialization complete: %d analyses restored in %v",
		len(restored), time.Since(startTime))

	s.initialized = true
	return nil
}

// Analyze runs the full pipeline for an address: geocode, building insights,
// electricity price. The price resolves asynchronously; until then the
// static fallback rate is used so drawing can start immediately.
func (s *AnalysisService) Analyze(ctx context.Context, address string) (*Analysis, error) {
	resolved, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	ins, err := s.insights.Fetch(ctx, resolved.Location.Lat, resolved.Location.Lng)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a := &Analysis{
		ID:          util.ShortUUID(),
		Address:     address,
		Location:    resolved.Location,
		CountryCode: resolved.CountryCode,
		Status:      model.AnalysisStatusReady,
		Insights:    ins,
		Rate:        s.prices.Fallback(resolved.CountryCode),
		Session:     drawing.NewSession(s.solarCfg.SnapToleranceMeters),
		Generation:  1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.indexes[a.ID] = insights.NewSegmentIndex(ins)
	s.recompute(a)
	s.storage.Set(a.ID, a)
	s.mu.Unlock()

	// The live price must not block the analysis; it is applied when it
	// resolves, guarded against staleness. Without a live endpoint the
	// fallback already set is final.
	if s.prices.Live() {
		go s.resolvePrice(a.ID, a.Generation, resolved.CountryCode)
	}

	return a, nil
}

// resolvePrice fetches the live rate and applies it only when the analysis
// still exists and no newer request superseded this one.
func (s *AnalysisService) resolvePrice(id string, generation uint64, countryCode string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rate := s.prices.Get(ctx, countryCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.storage.Get(id)
	if !exists || a.Generation != generation {
		log.Printf("price result for analysis %s discarded as stale", id)
		return
	}

	a.Rate = rate
	s.recompute(a)
	s.storage.Set(id, a)
}

// Get returns an analysis by id.
func (s *AnalysisService) Get(id string) (*Analysis, error) {
	a, exists := s.storage.Get(id)
	if !exists {
		return nil, ErrNotFound
	}
	return a, nil
}

// mutateSession applies one drawing transition and recomputes everything.
func (s *AnalysisService) mutateSession(id string, fn func(drawing.Session) (drawing.Session, error)) (*Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.storage.Get(id)
	if !exists {
		return nil, ErrNotFound
	}

	session, err := fn(a.Session)
	if err != nil {
		return nil, err
	}

	a.Session = session
	a.UpdatedAt = time.Now()
	s.recompute(a)
	s.storage.Set(id, a)
	return a, nil
}

// StartDrawing enters drawing mode, clearing any prior session content.
func (s *AnalysisService) StartDrawing(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		return session.Start(), nil
	})
}

// Click applies a map click to the session and reports what it did.
func (s *AnalysisService) Click(id string, p model.GeoPoint) (*Analysis, drawing.Event, error) {
	var event drawing.Event
	a, err := s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		if session.Mode == drawing.ModeIdle {
			return session, ErrInvalidTransition
		}
		next, ev := session.AddVertex(p)
		event = ev
		return next, nil
	})
	return a, event, err
}

// BeginHole switches the session to exclusion-hole drawing.
func (s *AnalysisService) BeginHole(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		next, ok := session.BeginHole()
		if !ok {
			return session, ErrInvalidTransition
		}
		return next, nil
	})
}

// CompleteHole explicitly finishes the hole in progress.
func (s *AnalysisService) CompleteHole(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		next, _ := session.CompleteHole()
		return next, nil
	})
}

// Finish explicitly ends configuration.
func (s *AnalysisService) Finish(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		return session.Finish(), nil
	})
}

// Undo restores the previous main-polygon snapshot.
func (s *AnalysisService) Undo(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		return session.Undo(), nil
	})
}

// Redo restores the next main-polygon snapshot.
func (s *AnalysisService) Redo(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		return session.Redo(), nil
	})
}

// Clear empties the session and notifies listeners that area is now null.
func (s *AnalysisService) Clear(id string) (*Analysis, error) {
	return s.mutateSession(id, func(session drawing.Session) (drawing.Session, error) {
		return session.Clear(), nil
	})
}

// SaveDirtyToRedis saves modified analyses to Redis
func (s *AnalysisService) SaveDirtyToRedis() error {
	dirty := s.storage.GetDirty()
	if len(dirty) == 0 {
		return nil
	}

	client := redis_client.GetClient()
	if client == nil {
		return nil
	}

	ctx := context.Background()
	pipe := client.Pipeline()

	keys := make([]string, 0, len(dirty))
	for id, a := range dirty {
		raw, err := json.Marshal(a)
		if err != nil {
			return err
		}
		pipe.Set(ctx, fmt.Sprintf("%s:%s", analysisRedisKey, id), raw, 0)
		keys = append(keys, id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	// Clear flags only after successful save
	s.storage.ClearDirty(keys)

	log.Printf("Saved %d analyses to Redis", len(dirty))
	return nil
}

// SaveAllToPG snapshots all ready analyses to PostgreSQL.
func (s *AnalysisService) SaveAllToPG() error {
	all := s.storage.GetAllValues()
	if len(all) == 0 {
		return nil
	}

	db := pg.GetDB()
	if db == nil {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, a := range all {
			if a.Status != model.AnalysisStatusReady {
				continue
			}
			if result := tx.Save(a.ToPG()); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Saved %d analyses to PostgreSQL", len(all))
	return nil
}

// loadAllFromRedis scans the analysis keyspace and unmarshals every entry.
func (s *AnalysisService) loadAllFromRedis(ctx context.Context) (map[string]*Analysis, error) {
	client := redis_client.GetClient()
	if client == nil {
		return map[string]*Analysis{}, nil
	}

	var cursor uint64
	var keys []string
	pattern := fmt.Sprintf("%s:*", analysisRedisKey)

	for {
		batch, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return map[string]*Analysis{}, nil
	}

	jsonData, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	analyses := make(map[string]*Analysis)
	for _, data := range jsonData {
		raw, ok := data.(string)
		if !ok || raw == "" {
			continue
		}

		a := &Analysis{}
		if err := json.Unmarshal([]byte(raw), a); err != nil {
			continue
		}
		analyses[a.ID] = a
	}

	return analyses, nil
}

func keysOf(m map[string]*Analysis) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
