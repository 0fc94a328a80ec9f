package auction

import (
	"context"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository owns the highest-bid columns of listings and the bids table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListings(ctx context.Context, ids []uuid.UUID) ([]models.Listing, error)
	ApplyBid(ctx context.Context, listing *models.Listing, bid *models.Bid) (bool, error)
	ListBids(ctx context.Context, listingID uuid.UUID) ([]models.Bid, error)
	BidsByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error)
	DueToOpen(ctx context.Context, now time.Time, limit int) ([]models.Listing, error)
	DueToClose(ctx context.Context, now time.Time, limit int) ([]models.Listing, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an auction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repositoryImpl) FindListings(ctx context.Context, ids []uuid.UUID) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Listing
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// ApplyBid compare-and-sets the highest-bid columns against listing.Version
// and appends the bid. False means another writer got there first.
func (r *repositoryImpl) ApplyBid(ctx context.Context, listing *models.Listing, bid *models.Bid) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND version = ? AND status = ?", listing.ID, listing.Version, enums.ListingStatusActive).
		Updates(map[string]any{
			"highest_bid":       bid.Amount,
			"highest_bidder_id": bid.BidderID,
			"highest_bid_at":    bid.CreatedAt,
			"bid_count":         gorm.Expr("bid_count + 1"),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        bid.CreatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *repositoryImpl) ListBids(ctx context.Context, listingID uuid.UUID) ([]models.Bid, error) {
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("sequence ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) BidsByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error) {
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("bidder_id = ?", bidderID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) DueToOpen(ctx context.Context, now time.Time, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("channel = ? AND status = ? AND starts_at <= ?", enums.SaleChannelMarketplace, enums.ListingStatusPending, now).
		Order("starts_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) DueToClose(ctx context.Context, now time.Time, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("channel = ? AND status = ? AND ends_at <= ?", enums.SaleChannelMarketplace, enums.ListingStatusActive, now).
		Order("ends_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
