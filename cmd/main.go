package main

import (
	"context"
	"log"

	"solarsight/internal/api"
	routes "solarsight/internal/api/handlers"
	"solarsight/internal/config"
	"solarsight/internal/model"
	"solarsight/internal/postgres"
	"solarsight/internal/redis"
	"solarsight/internal/service/analysis"
	"solarsight/internal/service/geocode"
	"solarsight/internal/service/insights"
	"solarsight/internal/service/price"
	"solarsight/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database and cache
	initializeDatabaseAndCache(cfg)

	// Initialize and start services
	analysisService := initializeServices(cfg)

	// Publish derived numbers to the log; the display layer consumes the
	// same callbacks through the API responses
	analysisService.OnTechnicalInfoChange(func(id string, m model.ZoneMetrics, p model.FinancialProjection) {
		log.Printf("analysis %s: %.0f m2, %d panels, %.1f kWc, %.0f kWh/yr",
			id, m.AreaMeters2, m.NumberOfPanels, m.PeakPowerKwc, m.EstimatedEnergyKwh)
	})

	// Start background persistence workers
	worker.StartAllWorkers()

	// Setup and run API server
	runAPIServer(cfg, analysisService)
}

func initializeDatabaseAndCache(cfg config.Config) {
	// Initialize PostgreSQL
	postgres.Init(cfg.DBUrl)

	// Initialize Redis
	redis.Init(cfg.RedisUrl)
}

func initializeServices(cfg config.Config) *analysis.AnalysisService {
	geocoder := geocode.GetGeocodeService(cfg.GeocoderURL, cfg.GeocoderKey)
	insightsService := insights.GetInsightsService(cfg.SolarAPIURL, cfg.SolarAPIKey)
	priceService := price.GetPriceService(cfg.PriceAPIURL)

	analysisService := analysis.GetAnalysisService(
		geocoder, insightsService, priceService, config.DefaultSolarConfig())

	// Restore sessions persisted by a previous run
	if err := analysisService.InitService(context.Background()); err != nil {
		log.Fatalf("Failed to initialize analysis service: %v", err)
	}

	return analysisService
}

func runAPIServer(cfg config.Config, analysisService *analysis.AnalysisService) {
	// Initialize Gin router
	r := gin.Default()

	// Wire the service into the handlers and configure API routes
	routes.SetAnalysisService(func() *analysis.AnalysisService { return analysisService })
	api.SetupRouter(r)

	// Start the server
	r.Run(cfg.Port)
}
