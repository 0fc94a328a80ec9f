package batches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SaleStatusWriter is the only path that changes a batch's sale status. The
// write is a compare-and-set on the expected current status.
type SaleStatusWriter interface {
	TransitionSaleStatus(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, from, to enums.BatchSaleStatus) error
}

// Reader loads batches inside a caller's transaction.
type Reader interface {
	GetTx(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) (*models.CropBatch, error)
}

// QualityRecorder applies certification outcomes to a batch.
type QualityRecorder interface {
	MarkQualityPending(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) error
	RecordQualityResult(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, result QualityResult) error
}

// Service defines crop batch registry operations.
type Service interface {
	SaleStatusWriter
	Reader
	QualityRecorder
	Create(ctx context.Context, input CreateInput) (*models.CropBatch, error)
	Get(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error)
	ListByFarmer(ctx context.Context, params ListParams) (*ListResult, error)
	Withdraw(ctx context.Context, batchID, farmerID uuid.UUID) (*models.CropBatch, error)
	Release(ctx context.Context, batchID, farmerID uuid.UUID) (*models.CropBatch, error)
}

// CreateInput describes a newly harvested batch.
type CreateInput struct {
	FarmerID        uuid.UUID
	CropType        string
	Variety         *string
	Quantity        decimal.Decimal
	Unit            enums.CropUnit
	HarvestDate     time.Time
	StorageLocation string
}

// QualityResult is an inspection outcome. Grade is required when approved.
type QualityResult struct {
	Approved bool
	Grade    string
}

// ListParams configures pagination for a farmer's batches.
type ListParams struct {
	FarmerID   uuid.UUID
	SaleStatus *enums.BatchSaleStatus
	Limit      int
	Cursor     string
}

// ListResult wraps returned batches and the cursor for the next page.
type ListResult struct {
	Items  []models.CropBatch `json:"items"`
	Cursor string             `json:"cursor"`
}

var saleTransitions = map[enums.BatchSaleStatus][]enums.BatchSaleStatus{
	enums.BatchSaleStatusAvailable: {enums.BatchSaleStatusListed, enums.BatchSaleStatusCancelled},
	enums.BatchSaleStatusListed:    {enums.BatchSaleStatusAvailable, enums.BatchSaleStatusSold, enums.BatchSaleStatusUnsold},
	enums.BatchSaleStatusUnsold:    {enums.BatchSaleStatusAvailable},
}

var qualityOpenStates = []enums.QualityStatus{enums.QualityStatusUnchecked, enums.QualityStatusPending}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outbox.Emitter
	now    func() time.Time
}

// NewService wires the crop batch registry.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: emitter,
		now:    time.Now,
	}, nil
}

// CanTransition reports whether the registry permits from -> to.
func CanTransition(from, to enums.BatchSaleStatus) bool {
	for _, candidate := range saleTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.CropBatch, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	now := s.now().UTC()
	if err := validateCreate(input, now); err != nil {
		return nil, err
	}

	batch := &models.CropBatch{
		ID:              uuid.New(),
		FarmerID:        input.FarmerID,
		CropType:        strings.TrimSpace(input.CropType),
		Variety:         input.Variety,
		Quantity:        input.Quantity,
		Unit:            input.Unit,
		HarvestDate:     input.HarvestDate.UTC(),
		StorageLocation: strings.TrimSpace(input.StorageLocation),
		QualityStatus:   enums.QualityStatusUnchecked,
		SaleStatus:      enums.BatchSaleStatusAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, batch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create batch")
		}
		return s.emit(ctx, tx, enums.EventBatchCreated, batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func validateCreate(input CreateInput, now time.Time) error {
	if strings.TrimSpace(input.CropType) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	}
	if !input.Quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !input.Unit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported unit %q", input.Unit))
	}
	if input.HarvestDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "harvest date is required")
	}
	if input.HarvestDate.After(now) {
		return pkgerrors.New(pkgerrors.CodeValidation, "harvest date cannot be in the future")
	}
	return nil
}

func (s *service) Get(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error) {
	return s.load(ctx, s.repo, batchID)
}

func (s *service) GetTx(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) (*models.CropBatch, error) {
	return s.load(ctx, s.repo.WithTx(tx), batchID)
}

func (s *service) load(ctx context.Context, repo Repository, batchID uuid.UUID) (*models.CropBatch, error) {
	if batchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id required")
	}
	batch, err := repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
	}
	return batch, nil
}

func (s *service) ListByFarmer(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	query := listBatchesParams{
		FarmerID:   params.FarmerID,
		SaleStatus: params.SaleStatus,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByFarmer(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	if rows == nil {
		rows = []models.CropBatch{}
	}
	return &ListResult{Items: rows, Cursor: pagination.Encode(next)}, nil
}

func (s *service) Withdraw(ctx context.Context, batchID, farmerID uuid.UUID) (*models.CropBatch, error) {
	return s.farmerTransition(ctx, batchID, farmerID, enums.BatchSaleStatusAvailable, enums.BatchSaleStatusCancelled, enums.EventBatchWithdrawn)
}

func (s *service) Release(ctx context.Context, batchID, farmerID uuid.UUID) (*models.CropBatch, error) {
	return s.farmerTransition(ctx, batchID, farmerID, enums.BatchSaleStatusUnsold, enums.BatchSaleStatusAvailable, enums.EventBatchReleased)
}

func (s *service) farmerTransition(ctx context.Context, batchID, farmerID uuid.UUID, from, to enums.BatchSaleStatus, event enums.OutboxEventType) (*models.CropBatch, error) {
	if farmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var batch *models.CropBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.GetTx(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if current.FarmerID != farmerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "batch does not belong to farmer")
		}
		if current.SaleStatus != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("batch must be %s, is %s", from, current.SaleStatus)).
				WithDetails(map[string]any{"saleStatus": current.SaleStatus})
		}
		if err := s.TransitionSaleStatus(ctx, tx, batchID, from, to); err != nil {
			return err
		}
		current.SaleStatus = to
		batch = current
		return s.emit(ctx, tx, event, current)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) TransitionSaleStatus(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, from, to enums.BatchSaleStatus) error {
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("sale status cannot move from %s to %s", from, to))
	}
	repo := s.repo.WithTx(tx)
	ok, err := repo.CompareAndSetSaleStatus(ctx, batchID, from, to, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update batch sale status")
	}
	if ok {
		return nil
	}
	current, err := s.load(ctx, repo, batchID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "batch sale status changed").
		WithDetails(map[string]any{"expected": from, "actual": current.SaleStatus})
}

func (s *service) MarkQualityPending(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) error {
	return s.updateQuality(ctx, tx, batchID, enums.QualityStatusPending, nil)
}

func (s *service) RecordQualityResult(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, result QualityResult) error {
	if !result.Approved {
		return s.updateQuality(ctx, tx, batchID, enums.QualityStatusRejected, nil)
	}
	grade := strings.TrimSpace(result.Grade)
	if grade == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "grade is required for approval")
	}
	return s.updateQuality(ctx, tx, batchID, enums.QualityStatusApproved, &grade)
}

func (s *service) updateQuality(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, to enums.QualityStatus, grade *string) error {
	repo := s.repo.WithTx(tx)
	batch, err := s.load(ctx, repo, batchID)
	if err != nil {
		return err
	}
	if batch.SaleStatus.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("batch is %s; quality is frozen", batch.SaleStatus))
	}
	if !batch.QualityStatus.AcceptsResult() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("quality cannot move from %s to %s", batch.QualityStatus, to))
	}
	ok, err := repo.UpdateQuality(ctx, batchID, qualityOpenStates, to, grade, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update batch quality")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "batch changed concurrently")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, batch *models.CropBatch) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateCropBatch,
		AggregateID:   batch.ID,
		Actor:         &outbox.ActorRef{UserID: batch.FarmerID, Role: enums.ActorRoleFarmer.String()},
		OccurredAt:    s.now().UTC(),
		Data: payloads.BatchEvent{
			BatchID:       batch.ID,
			FarmerID:      batch.FarmerID,
			CropType:      batch.CropType,
			SaleStatus:    batch.SaleStatus,
			QualityStatus: batch.QualityStatus,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit batch event")
	}
	return nil
}
