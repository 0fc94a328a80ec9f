package certification

import (
	"context"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for quality certifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cert *models.QualityCertification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.QualityCertification, error)
	FindPendingByBatch(ctx context.Context, batchID uuid.UUID) (*models.QualityCertification, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.QualityCertification, error)
	Decide(ctx context.Context, id uuid.UUID, decision decisionUpdate) (bool, error)
}

type decisionUpdate struct {
	InspectorID uuid.UUID
	Status      enums.CertificationStatus
	Grade       *string
	Remarks     *string
	DecidedAt   time.Time
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a certification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, cert *models.QualityCertification) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.QualityCertification, error) {
	var cert models.QualityCertification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *repositoryImpl) FindPendingByBatch(ctx context.Context, batchID uuid.UUID) (*models.QualityCertification, error) {
	var cert models.QualityCertification
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND status = ?", batchID, enums.CertificationStatusPending).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *repositoryImpl) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.QualityCertification, error) {
	var rows []models.QualityCertification
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("requested_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Decide(ctx context.Context, id uuid.UUID, decision decisionUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.QualityCertification{}).
		Where("id = ? AND status = ?", id, enums.CertificationStatusPending).
		Updates(map[string]any{
			"inspector_id": decision.InspectorID,
			"status":       decision.Status,
			"grade":        decision.Grade,
			"remarks":      decision.Remarks,
			"decided_at":   decision.DecidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
