package batches

import (
	"context"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for crop batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, batch *models.CropBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CropBatch, error)
	ListByFarmer(ctx context.Context, params listBatchesParams) ([]models.CropBatch, *pagination.Cursor, error)
	UpdateQuality(ctx context.Context, id uuid.UUID, from []enums.QualityStatus, to enums.QualityStatus, grade *string, now time.Time) (bool, error)
	CompareAndSetSaleStatus(ctx context.Context, id uuid.UUID, from, to enums.BatchSaleStatus, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a batch repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listBatchesParams struct {
	FarmerID   uuid.UUID
	SaleStatus *enums.BatchSaleStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, batch *models.CropBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.CropBatch, error) {
	var batch models.CropBatch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repositoryImpl) ListByFarmer(ctx context.Context, params listBatchesParams) ([]models.CropBatch, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.CropBatch{}).Where("farmer_id = ?", params.FarmerID)
	if params.SaleStatus != nil {
		query = query.Where("sale_status = ?", *params.SaleStatus)
	}
	query = pagination.Apply(query, "created_at", params.Cursor)

	var rows []models.CropBatch
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(b models.CropBatch) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	return page, next, nil
}

// UpdateQuality moves quality status only while the batch is still in one of
// the from states and not sold or cancelled.
func (r *repositoryImpl) UpdateQuality(ctx context.Context, id uuid.UUID, from []enums.QualityStatus, to enums.QualityStatus, grade *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"quality_status": to,
		"quality_grade":  grade,
		"updated_at":     now,
	}
	res := r.db.WithContext(ctx).
		Model(&models.CropBatch{}).
		Where("id = ? AND quality_status IN ?", id, from).
		Where("sale_status NOT IN ?", []enums.BatchSaleStatus{enums.BatchSaleStatusSold, enums.BatchSaleStatusCancelled}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repositoryImpl) CompareAndSetSaleStatus(ctx context.Context, id uuid.UUID, from, to enums.BatchSaleStatus, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CropBatch{}).
		Where("id = ? AND sale_status = ?", id, from).
		Updates(map[string]any{"sale_status": to, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
