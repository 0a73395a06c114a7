package api

import (
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/api/handlers"
	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/apk-metadata/apk-metadata-go/internal/config"
	"github.com/apk-metadata/apk-metadata-go/internal/middleware"
	"github.com/apk-metadata/apk-metadata-go/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter wires the read-only query API. Catalog mutation stays with
// the import CLI; the API never writes.
func SetupRouter(cfg *config.Config, logger *logrus.Logger, db *gorm.DB, loader *catalog.Loader, promMetrics *middleware.PrometheusMetrics) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	if promMetrics != nil {
		r.Use(promMetrics.HTTPMiddleware())
		r.GET("/metrics", promMetrics.Handler())
	}

	sampleRepo := repository.NewSampleRepository(db, logger)
	sampleHandler := handlers.NewSampleHandler(sampleRepo, logger)
	catalogHandler := handlers.NewCatalogHandler(loader, logger, promMetrics)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api")
	{
		v1.GET("/samples", sampleHandler.ListSamples)
		v1.GET("/samples/:sha256", sampleHandler.GetSample)
		v1.GET("/samples/:sha256/report", sampleHandler.GetSampleReport)
		v1.GET("/catalogs/:category", catalogHandler.GetCatalog)
	}

	return r
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		}).Debug("HTTP request")
	}
}
