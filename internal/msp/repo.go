package msp

import (
	"context"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists published MSP rates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rate *models.MSPRate) error
	Latest(ctx context.Context, cropType string, asOf time.Time) (*models.MSPRate, error)
	History(ctx context.Context, cropType string, limit int) ([]models.MSPRate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an MSP rate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, rate *models.MSPRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// Latest returns the rate in effect at asOf: the newest effective_from not
// after asOf, later publications winning ties.
func (r *repositoryImpl) Latest(ctx context.Context, cropType string, asOf time.Time) (*models.MSPRate, error) {
	var rate models.MSPRate
	err := r.db.WithContext(ctx).
		Where("LOWER(crop_type) = ? AND effective_from <= ?", normalizeCrop(cropType), asOf).
		Order("effective_from DESC").
		Order("published_at DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repositoryImpl) History(ctx context.Context, cropType string, limit int) ([]models.MSPRate, error) {
	var rows []models.MSPRate
	err := r.db.WithContext(ctx).
		Where("LOWER(crop_type) = ?", normalizeCrop(cropType)).
		Order("effective_from DESC").
		Order("published_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func normalizeCrop(cropType string) string {
	return strings.ToLower(strings.TrimSpace(cropType))
}
