// Package ingest turns dropped report files into stored sample rows.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/domain"
	"github.com/apk-metadata/apk-metadata-go/internal/middleware"
	"github.com/apk-metadata/apk-metadata-go/internal/report"
	"github.com/apk-metadata/apk-metadata-go/internal/repository"
	"github.com/apk-metadata/apk-metadata-go/internal/retry"
	"github.com/sirupsen/logrus"
)

var sha256Re = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Service ingests one report file at a time: validate the filename,
// parse the document, store the row. Each ingest builds its own record;
// nothing is shared across in-flight samples.
type Service struct {
	repo       repository.SampleRepository
	logger     *logrus.Logger
	metrics    *middleware.PrometheusMetrics
	archiveDir string
}

func NewService(repo repository.SampleRepository, logger *logrus.Logger, metrics *middleware.PrometheusMetrics, archiveDir string) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		metrics:    metrics,
		archiveDir: archiveDir,
	}
}

// IngestFile processes one <sha256>.json report. A duplicate sha256 in
// the store is terminal success; transient store errors are retried.
func (s *Service) IngestFile(ctx context.Context, path string) error {
	start := time.Now()

	sha256, err := SHAFromReportPath(path)
	if err != nil {
		s.metrics.ObserveIngest("invalid", time.Since(start))
		return err
	}

	doc, err := report.Read(path)
	if err != nil {
		s.metrics.ObserveIngest("invalid", time.Since(start))
		return err
	}

	row, err := domain.NewSampleRow(doc.ToRecord(sha256))
	if err != nil {
		s.metrics.ObserveIngest("invalid", time.Since(start))
		return err
	}

	cfg := &retry.Config{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Strategy:        retry.StrategyExponential,
		Logger:          s.logger,
	}
	if err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		return s.repo.Save(ctx, row)
	}); err != nil {
		s.metrics.ObserveIngest("failed", time.Since(start))
		return fmt.Errorf("store sample %s: %w", sha256, err)
	}

	s.logger.WithFields(logrus.Fields{
		"sha256":   sha256,
		"basename": row.SanitizedBasename,
		"filetype": row.Filetype,
	}).Info("Sample report ingested")
	s.metrics.ObserveIngest("stored", time.Since(start))

	s.archive(path)
	return nil
}

// SHAFromReportPath derives the sample identity from the report
// filename.
func SHAFromReportPath(path string) (string, error) {
	base := filepath.Base(path)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	if !sha256Re.MatchString(stem) {
		return "", fmt.Errorf("report filename %q is not <sha256>.json", base)
	}
	return stem, nil
}

// archive moves an ingested report out of the drop dir. Failure to move
// is logged, not fatal: re-ingesting later is a no-op.
func (s *Service) archive(path string) {
	if s.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		s.logger.WithError(err).Warn("Cannot create archive directory")
		return
	}
	dst := filepath.Join(s.archiveDir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		s.logger.WithError(err).WithField("report", path).Warn("Cannot archive report")
	}
}
