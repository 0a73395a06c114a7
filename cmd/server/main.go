package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/api"
	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/apk-metadata/apk-metadata-go/internal/config"
	"github.com/apk-metadata/apk-metadata-go/internal/ingest"
	"github.com/apk-metadata/apk-metadata-go/internal/middleware"
	"github.com/apk-metadata/apk-metadata-go/internal/queue"
	"github.com/apk-metadata/apk-metadata-go/internal/repository"
	"github.com/apk-metadata/apk-metadata-go/internal/watcher"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	fmt.Printf("APK Metadata Service\nVersion: %s\nBuild Time: %s\n\n", Version, BuildTime)

	configPath := "./configs/config.yaml"
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		configPath = os.Args[2]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.InitLogger(&cfg.Log)
	logger.Infof("Starting APK Metadata Service %s", Version)
	logger.Infof("Config loaded from: %s", configPath)

	db, err := repository.InitDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to init database: %v", err)
	}
	logger.Info("Database connected successfully")

	loader := catalog.NewLoader(cfg.Catalogs.Smali, cfg.Catalogs.Wide, cfg.Catalogs.Arm, cfg.Catalogs.Kit)

	// Catalogs must be loadable before we accept any work; a malformed
	// catalog would fail every record reset downstream.
	promMetrics := middleware.NewPrometheusMetrics(logger, "apk_metadata")
	for _, category := range catalog.Categories {
		cat, err := loader.Load(category)
		if err != nil {
			logger.Fatalf("Failed to load %s catalog: %v", category, err)
		}
		promMetrics.SetCatalogSections(string(category), len(cat.Sections()))
		logger.WithField("category", category).Infof("Catalog loaded with %d sections", len(cat.Sections()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampleRepo := repository.NewSampleRepository(db, logger)
	ingestSvc := ingest.NewService(sampleRepo, logger, promMetrics, cfg.Ingest.ArchiveDir)

	// Report files either go through RabbitMQ or straight into the
	// ingest service, depending on deployment.
	var handleReport watcher.FileHandler
	var consumer *queue.Consumer

	if cfg.RabbitMQ.Enabled {
		mq, err := queue.NewRabbitMQ(&queue.RabbitMQConfig{
			Host:     cfg.RabbitMQ.Host,
			Port:     cfg.RabbitMQ.Port,
			User:     cfg.RabbitMQ.User,
			Password: cfg.RabbitMQ.Password,
			VHost:    cfg.RabbitMQ.VHost,
		}, cfg.RabbitMQ.Queue, cfg.Ingest.Concurrency, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mq.Close()

		producer := queue.NewProducer(mq, logger)
		consumer = queue.NewConsumer(mq, func(ctx context.Context, msg *queue.IngestMessage) error {
			return ingestSvc.IngestFile(ctx, msg.ReportPath)
		}, cfg.Ingest.Concurrency, logger)

		if err := consumer.Start(ctx); err != nil {
			logger.Fatalf("Failed to start consumer: %v", err)
		}
		defer consumer.Stop()

		handleReport = func(ctx context.Context, path string) error {
			sha256, err := ingest.SHAFromReportPath(path)
			if err != nil {
				return err
			}
			return producer.PublishIngest(ctx, sha256, path)
		}
	} else {
		handleReport = ingestSvc.IngestFile
	}

	fw, err := watcher.NewFileWatcher(cfg.Ingest.ReportDir, "*.json", handleReport, logger)
	if err != nil {
		logger.Fatalf("Failed to create report watcher: %v", err)
	}
	if err := fw.Start(ctx); err != nil {
		logger.Fatalf("Failed to start report watcher: %v", err)
	}
	defer fw.Stop()

	router := api.SetupRouter(cfg, logger, db, loader, promMetrics)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("HTTP server listening on :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown error")
	}

	logger.Info("Server stopped")
}
