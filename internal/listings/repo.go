package listings

import (
	"context"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for listings. Auction state columns
// are not written here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindOpenByBatch(ctx context.Context, batchID uuid.UUID) (*models.Listing, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.ListingStatus, version int64, now time.Time) (bool, error)
	List(ctx context.Context, params listParams) ([]models.Listing, *pagination.Cursor, error)
	FindBatches(ctx context.Context, ids []uuid.UUID) ([]models.CropBatch, error)
}

type listParams struct {
	Channels []enums.SaleChannel
	Statuses []enums.ListingStatus
	FarmerID *uuid.UUID
	CropType string
	Limit    int
	Cursor   *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a listing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repositoryImpl) FindOpenByBatch(ctx context.Context, batchID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND status IN ?", batchID, []enums.ListingStatus{enums.ListingStatusPending, enums.ListingStatusActive}).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// TransitionStatus is a compare-and-set on status and version. Every status
// change bumps the version so in-flight bids against the old state fail.
func (r *repositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.ListingStatus, version int64, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if to.IsClosed() {
		updates["closed_at"] = now
	}
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ? AND version = ?", id, from, version).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listParams) ([]models.Listing, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Listing{})
	if len(params.Channels) > 0 {
		query = query.Where("channel IN ?", params.Channels)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if params.FarmerID != nil {
		query = query.Where("farmer_id = ?", *params.FarmerID)
	}
	if params.CropType != "" {
		batchIDs := r.db.Model(&models.CropBatch{}).Select("id").Where("crop_type = ?", params.CropType)
		query = query.Where("batch_id IN (?)", batchIDs)
	}
	query = pagination.Apply(query, "created_at", params.Cursor)

	var rows []models.Listing
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(l models.Listing) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	})
	return page, next, nil
}

func (r *repositoryImpl) FindBatches(ctx context.Context, ids []uuid.UUID) ([]models.CropBatch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.CropBatch
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}
