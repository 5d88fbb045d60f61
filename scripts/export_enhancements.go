// Manual trigger for the enhancement export sweep.
//
// The sweep runs inside the main application every 24 hours; this
// script exists for on-demand runs, for example before taking a
// content snapshot or after a burst of tutoring traffic.
//
// Usage: go run scripts/export_enhancements.go

package main

import (
	"context"
	"log"

	"lughati_backend/internal/config"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/service"
	"lughati_backend/pkg/database"
	"lughati_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	enhancementRepo := repository.NewEnhancementRepository(db)
	cacheRepo := repository.NewLessonCacheRepository(db, nil, cfg.Redis.CacheTTL)

	exportService, err := service.NewExportService(cfg, enhancementRepo, cacheRepo)
	if err != nil {
		log.Fatalf("Failed to initialize export service: %v", err)
	}

	result, err := exportService.ExportPending(context.Background())
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	log.Printf("Exported %d triggers covering %d lessons to %s",
		result.TriggerCount, result.LessonCount, result.Location)
}
