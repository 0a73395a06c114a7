package handlers

import (
	"net/http"

	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/apk-metadata/apk-metadata-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler exposes the current pattern catalog contents.
type CatalogHandler struct {
	loader  *catalog.Loader
	logger  *logrus.Logger
	metrics *middleware.PrometheusMetrics
}

func NewCatalogHandler(loader *catalog.Loader, logger *logrus.Logger, metrics *middleware.PrometheusMetrics) *CatalogHandler {
	return &CatalogHandler{loader: loader, logger: logger, metrics: metrics}
}

// GetCatalog lists the detector sections of one category.
// GET /api/catalogs/:category
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	category := catalog.Category(c.Param("category"))

	valid := false
	for _, known := range catalog.Categories {
		if category == known {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown catalog category"})
		return
	}

	cat, err := h.loader.Load(category)
	if err != nil {
		h.logger.WithError(err).WithField("category", category).Error("Failed to load catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	sections := cat.Sections()
	h.metrics.SetCatalogSections(string(category), len(sections))

	type sectionDoc struct {
		ID      catalog.SectionID `json:"id"`
		Pattern string            `json:"pattern"`
	}
	docs := make([]sectionDoc, 0, len(sections))
	for _, id := range sections {
		pattern, _ := cat.PatternOf(id)
		docs = append(docs, sectionDoc{ID: id, Pattern: pattern})
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"sections": docs,
	})
}
