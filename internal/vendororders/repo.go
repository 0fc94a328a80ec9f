package vendororders

import (
	"context"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists vendor orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.VendorOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
	List(ctx context.Context, params listParams) ([]models.VendorOrder, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.VendorOrderStatus, now time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vendor order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listParams struct {
	VendorID   *uuid.UUID
	CustomerID *uuid.UUID
	Statuses   []enums.VendorOrderStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.VendorOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error) {
	var order models.VendorOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.VendorOrder, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorOrder{})
	if params.VendorID != nil {
		query = query.Where("vendor_id = ?", *params.VendorID)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	query = pagination.Apply(query, "created_at", params.Cursor)

	var rows []models.VendorOrder
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(o models.VendorOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return page, next, nil
}

// UpdateStatus compare-and-sets the status and stamps the matching timestamp.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.VendorOrderStatus, now time.Time) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": now}
	switch to {
	case enums.VendorOrderStatusAccepted, enums.VendorOrderStatusRejected:
		updates["decided_at"] = now
	case enums.VendorOrderStatusCompleted:
		updates["completed_at"] = now
	case enums.VendorOrderStatusCancelled:
		updates["cancelled_at"] = now
	}
	res := r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
