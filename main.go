package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/corescan/deployguard/internal/adapter/handler"
	"github.com/corescan/deployguard/internal/infrastructure/repository"
	"github.com/corescan/deployguard/internal/usecase"
	"github.com/corescan/deployguard/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	engine := usecase.NewBackupEngine(usecase.BackupConfig{
		SourcePath: cfg.DatabasePath,
		Dir:        cfg.Backup.Dir,
		Prefix:     cfg.Backup.Prefix,
		MaxCount:   cfg.Backup.MaxCount,
	}, repository.OpenSQLite, nil)

	health := usecase.NewHealthUseCase(usecase.HealthConfig{
		DatabasePath:       cfg.DatabasePath,
		UploadsDir:         cfg.UploadsDir,
		Environment:        cfg.Environment,
		OnManagedHost:      cfg.OnManagedHost,
		DeployTimestamp:    cfg.DeployTimestamp,
		DurableMountPrefix: cfg.DurableMountPrefix,
	}, repository.OpenSQLite, engine)

	router := gin.Default()
	router.Use(handler.RequestID())
	handler.NewHealthHandler(health).RegisterRoutes(router)

	log.Printf("Starting health endpoint on port %s (env=%s, hosted=%v)", cfg.Port, cfg.Environment, cfg.OnManagedHost)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
