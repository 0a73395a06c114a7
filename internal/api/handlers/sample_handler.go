package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/apk-metadata/apk-metadata-go/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SampleHandler serves stored sample metadata.
type SampleHandler struct {
	repo   repository.SampleRepository
	logger *logrus.Logger
}

func NewSampleHandler(repo repository.SampleRepository, logger *logrus.Logger) *SampleHandler {
	return &SampleHandler{repo: repo, logger: logger}
}

// ListSamples returns stored samples, newest first.
// GET /api/samples?page=1&page_size=20
func (h *SampleHandler) ListSamples(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	samples, total, err := h.repo.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list samples")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list samples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"samples":   samples,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSample returns one sample row by sha256.
// GET /api/samples/:sha256
func (h *SampleHandler) GetSample(c *gin.Context) {
	sha256 := c.Param("sha256")

	s, err := h.repo.FindBySHA256(c.Request.Context(), sha256)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sample not found"})
			return
		}
		h.logger.WithError(err).WithField("sha256", sha256).Error("Failed to load sample")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sample"})
		return
	}

	c.JSON(http.StatusOK, s)
}

// GetSampleReport reassembles the report document from the stored row.
// GET /api/samples/:sha256/report
func (h *SampleHandler) GetSampleReport(c *gin.Context) {
	sha256 := c.Param("sha256")

	s, err := h.repo.FindBySHA256(c.Request.Context(), sha256)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sample not found"})
			return
		}
		h.logger.WithError(err).WithField("sha256", sha256).Error("Failed to load sample")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sample"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sanitized_basename":  s.SanitizedBasename,
		"file_nb_classes":     s.FileNbClasses,
		"file_nb_dir":         s.FileNbDir,
		"file_size":           s.FileSize,
		"file_small":          s.FileSmall,
		"filetype":            s.Filetype,
		"file_innerzips":      s.FileInnerzips,
		"manifest_properties": json.RawMessage(s.ManifestProperties),
		"smali_properties":    json.RawMessage(s.SmaliProperties),
		"wide_properties":     json.RawMessage(s.WideProperties),
		"arm_properties":      json.RawMessage(s.ArmProperties),
		"dex_properties":      json.RawMessage(s.DexProperties),
		"kits":                json.RawMessage(s.Kits),
	})
}
