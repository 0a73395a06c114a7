package repository

import (
	"context"

	"github.com/apk-metadata/apk-metadata-go/internal/domain"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SampleRepository persists sample rows keyed by sha256.
type SampleRepository interface {
	// Save inserts the row. A row with the same sha256 already being
	// present is expected and makes the write a silent no-op; any other
	// failure surfaces.
	Save(ctx context.Context, s *domain.Sample) error
	FindBySHA256(ctx context.Context, sha256 string) (*domain.Sample, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Sample, int64, error)
	Count(ctx context.Context) (int64, error)
}

type sampleRepo struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSampleRepository(db *gorm.DB, logger *logrus.Logger) SampleRepository {
	return &sampleRepo{db: db, logger: logger}
}

func (r *sampleRepo) Save(ctx context.Context, s *domain.Sample) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sha256"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.logger.WithField("sha256", s.SHA256).Debug("Sample is already in the database")
	}
	return nil
}

func (r *sampleRepo) FindBySHA256(ctx context.Context, sha256 string) (*domain.Sample, error) {
	var s domain.Sample
	err := r.db.WithContext(ctx).Where("sha256 = ?", sha256).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sampleRepo) List(ctx context.Context, page, pageSize int) ([]*domain.Sample, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Sample{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var samples []*domain.Sample
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&samples).Error
	if err != nil {
		return nil, 0, err
	}

	return samples, total, nil
}

func (r *sampleRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Sample{}).Count(&total).Error
	return total, err
}
