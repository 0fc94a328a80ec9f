package settlement

import (
	"context"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.Transaction) error
	FindBySource(ctx context.Context, sourceID uuid.UUID, sourceType enums.SettlementSourceType) (*models.Transaction, error)
	ListForActor(ctx context.Context, params listParams) ([]models.Transaction, *pagination.Cursor, error)
	AllForActor(ctx context.Context, actorID uuid.UUID) ([]models.Transaction, error)
}

type listParams struct {
	ActorID uuid.UUID
	Channel *enums.LedgerChannel
	Limit   int
	Cursor  *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repositoryImpl) FindBySource(ctx context.Context, sourceID uuid.UUID, sourceType enums.SettlementSourceType) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("source_id = ? AND source_type = ?", sourceID, sourceType).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) ListForActor(ctx context.Context, params listParams) ([]models.Transaction, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("payer_id = ? OR payee_id = ?", params.ActorID, params.ActorID)
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}
	query = pagination.Apply(query, "settled_at", params.Cursor)

	var rows []models.Transaction
	if err := query.Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.SettledAt, ID: t.ID}
	})
	return page, next, nil
}

func (r *repositoryImpl) AllForActor(ctx context.Context, actorID uuid.UUID) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("payer_id = ? OR payee_id = ?", actorID, actorID).
		Find(&rows).Error
	return rows, err
}
