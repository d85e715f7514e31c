package worker

import (
	"log"
	"time"

	"solarsight/internal/config"
	"solarsight/internal/service/analysis"
)

// StartPersistenceWorkers starts the tickers that back analyses up to Redis
// and snapshot them to PostgreSQL.
func StartPersistenceWorkers() {
	service := analysis.GetAnalysisService(nil, nil, nil, config.DefaultSolarConfig())

	redisTicker := time.NewTicker(config.RedisBackupInterval)
	go func() {
		for range redisTicker.C {
			if err := service.SaveDirtyToRedis(); err != nil {
				log.Printf("Error saving analyses to Redis: %v", err)
			}
		}
	}()

	pgTicker := time.NewTicker(config.PostgresBackupInterval)
	go func() {
		for range pgTicker.C {
			if err := service.SaveAllToPG(); err != nil {
				log.Printf("Error saving analyses to PostgreSQL: %v", err)
			}
		}
	}()

	log.Println("Analysis persistence workers started with intervals:",
		config.RedisBackupInterval, config.PostgresBackupInterval)
}
