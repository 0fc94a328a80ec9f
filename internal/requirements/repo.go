package requirements

import (
	"context"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists requirements and the offers made against them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRequirement(ctx context.Context, requirement *models.Requirement) error
	FindRequirement(ctx context.Context, id uuid.UUID) (*models.Requirement, error)
	LockRequirement(ctx context.Context, id uuid.UUID) (*models.Requirement, error)
	ListRequirements(ctx context.Context, params listRequirementsParams) ([]models.Requirement, *pagination.Cursor, error)
	SetRequirementStatus(ctx context.Context, id uuid.UUID, from, to enums.RequirementStatus, now time.Time) (bool, error)
	DueToExpire(ctx context.Context, now time.Time, limit int) ([]models.Requirement, error)
	CreateOffer(ctx context.Context, offer *models.RequirementOffer) error
	FindOffer(ctx context.Context, id uuid.UUID) (*models.RequirementOffer, error)
	FindOfferByListing(ctx context.Context, listingID uuid.UUID) (*models.RequirementOffer, error)
	ListOffers(ctx context.Context, requirementID uuid.UUID, status *enums.OfferStatus) ([]models.RequirementOffer, error)
	ListOffersByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.RequirementOffer, error)
	DecideOffer(ctx context.Context, id uuid.UUID, to enums.OfferStatus, now time.Time) (bool, error)
	AcceptedQuantity(ctx context.Context, requirementID uuid.UUID) (decimal.Decimal, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a requirement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listRequirementsParams struct {
	BuyerID       *uuid.UUID
	Status        *enums.RequirementStatus
	CropType      string
	DeadlineAfter *time.Time
	Limit         int
	Cursor        *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateRequirement(ctx context.Context, requirement *models.Requirement) error {
	return r.db.WithContext(ctx).Create(requirement).Error
}

func (r *repositoryImpl) FindRequirement(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	var requirement models.Requirement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&requirement).Error; err != nil {
		return nil, err
	}
	return &requirement, nil
}

// LockRequirement loads a requirement and holds its row until the transaction
// ends, so offer acceptances against it run one at a time. SQLite already
// serialises writers.
func (r *repositoryImpl) LockRequirement(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var requirement models.Requirement
	if err := query.First(&requirement).Error; err != nil {
		return nil, err
	}
	return &requirement, nil
}

func (r *repositoryImpl) ListRequirements(ctx context.Context, params listRequirementsParams) ([]models.Requirement, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Requirement{})
	if params.BuyerID != nil {
		query = query.Where("buyer_id = ?", *params.BuyerID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if crop := strings.TrimSpace(params.CropType); crop != "" {
		query = query.Where("LOWER(crop_type) = ?", strings.ToLower(crop))
	}
	if params.DeadlineAfter != nil {
		query = query.Where("deadline > ?", *params.DeadlineAfter)
	}
	query = pagination.Apply(query, "created_at", params.Cursor)

	var rows []models.Requirement
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(req models.Requirement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: req.CreatedAt, ID: req.ID}
	})
	return page, next, nil
}

func (r *repositoryImpl) SetRequirementStatus(ctx context.Context, id uuid.UUID, from, to enums.RequirementStatus, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Requirement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repositoryImpl) DueToExpire(ctx context.Context, now time.Time, limit int) ([]models.Requirement, error) {
	var rows []models.Requirement
	err := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ?", enums.RequirementStatusOpen, now).
		Order("deadline ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) CreateOffer(ctx context.Context, offer *models.RequirementOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repositoryImpl) FindOffer(ctx context.Context, id uuid.UUID) (*models.RequirementOffer, error) {
	var offer models.RequirementOffer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) FindOfferByListing(ctx context.Context, listingID uuid.UUID) (*models.RequirementOffer, error) {
	var offer models.RequirementOffer
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) ListOffers(ctx context.Context, requirementID uuid.UUID, status *enums.OfferStatus) ([]models.RequirementOffer, error) {
	query := r.db.WithContext(ctx).Where("requirement_id = ?", requirementID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.RequirementOffer
	err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListOffersByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.RequirementOffer, error) {
	var rows []models.RequirementOffer
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// DecideOffer moves a pending offer to its final status.
func (r *repositoryImpl) DecideOffer(ctx context.Context, id uuid.UUID, to enums.OfferStatus, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RequirementOffer{}).
		Where("id = ? AND status = ?", id, enums.OfferStatusPending).
		Updates(map[string]any{"status": to, "decided_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AcceptedQuantity sums accepted offers in Go so numeric precision does not
// depend on the driver's aggregate types.
func (r *repositoryImpl) AcceptedQuantity(ctx context.Context, requirementID uuid.UUID) (decimal.Decimal, error) {
	status := enums.OfferStatusAccepted
	offers, err := r.ListOffers(ctx, requirementID, &status)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, offer := range offers {
		total = total.Add(offer.Quantity)
	}
	return total, nil
}
