package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/metrics"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const settleSavepoint = "settlement_insert"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Settler records the single transaction for a completed sale or order.
type Settler interface {
	Settle(ctx context.Context, tx *gorm.DB, input SettleInput) (*SettleResult, error)
}

// Service is the settlement ledger.
type Service interface {
	Settler
	History(ctx context.Context, params HistoryParams) (*HistoryResult, error)
	Summary(ctx context.Context, actorID uuid.UUID) (*Summary, error)
}

// SettleInput identifies the source being settled and who pays whom.
type SettleInput struct {
	SourceID    uuid.UUID
	SourceType  enums.SettlementSourceType
	Channel     enums.LedgerChannel
	PayerID     uuid.UUID
	PayeeID     uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// SettleResult carries the ledger row. AlreadySettled is true when the source
// had been settled before and no new row was written.
type SettleResult struct {
	Transaction    models.Transaction `json:"transaction"`
	AlreadySettled bool               `json:"already_settled"`
}

// HistoryParams configures an actor's itemized ledger.
type HistoryParams struct {
	ActorID uuid.UUID
	Channel *enums.LedgerChannel
	Limit   int
	Cursor  string
}

// HistoryItem is a transaction seen from one actor's side.
type HistoryItem struct {
	models.Transaction
	Direction      enums.TransactionDirection `json:"direction"`
	CounterpartyID uuid.UUID                  `json:"counterparty_id"`
}

// HistoryResult wraps history items and the cursor for the next page.
type HistoryResult struct {
	Items  []HistoryItem `json:"items"`
	Cursor string        `json:"cursor"`
}

// Summary is recomputed from every transaction the actor is party to.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outbox.Emitter
	metrics *metrics.MarketplaceMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the settlement ledger. Metrics are optional.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, m *metrics.MarketplaceMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter, metrics: m, logg: logg, now: time.Now}, nil
}

// Direction reports how txn looks to actorID.
func Direction(txn models.Transaction, actorID uuid.UUID) enums.TransactionDirection {
	if txn.PayeeID == actorID {
		return enums.TransactionDirectionIncome
	}
	return enums.TransactionDirectionExpense
}

func validateSettle(input SettleInput) error {
	if input.SourceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source id required")
	}
	if !input.SourceType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown settlement source")
	}
	if !input.Channel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown ledger channel")
	}
	if input.PayerID == uuid.Nil || input.PayeeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payer and payee required")
	}
	if input.PayerID == input.PayeeID {
		return pkgerrors.New(pkgerrors.CodeValidation, "payer and payee must differ")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "settlement amount must be positive")
	}
	return nil
}

// Settle writes the transaction inside tx, or in its own transaction when tx
// is nil. A second call for the same source returns the first row.
func (s *service) Settle(ctx context.Context, tx *gorm.DB, input SettleInput) (*SettleResult, error) {
	if err := validateSettle(input); err != nil {
		return nil, err
	}
	if tx == nil {
		var result *SettleResult
		err := s.tx.WithTx(ctx, func(inner *gorm.DB) error {
			var err error
			result, err = s.settle(ctx, inner, input)
			return err
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return s.settle(ctx, tx, input)
}

func (s *service) settle(ctx context.Context, tx *gorm.DB, input SettleInput) (*SettleResult, error) {
	repo := s.repo.WithTx(tx)
	existing, err := repo.FindBySource(ctx, input.SourceID, input.SourceType)
	if err == nil {
		return s.duplicate(ctx, existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement")
	}

	txn := models.Transaction{
		ID:          uuid.New(),
		SourceID:    input.SourceID,
		SourceType:  input.SourceType,
		Channel:     input.Channel,
		PayerID:     input.PayerID,
		PayeeID:     input.PayeeID,
		Amount:      input.Amount,
		Description: input.Description,
		SettledAt:   s.now().UTC(),
	}

	// A concurrent settlement of the same source trips the unique index; the
	// savepoint keeps the outer transaction usable so the winner can be read.
	if err := tx.SavePoint(settleSavepoint).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settlement savepoint")
	}
	if err := repo.Create(ctx, &txn); err != nil {
		if !db.IsUniqueViolation(err, "ux_transactions_source") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement")
		}
		if rbErr := tx.RollbackTo(settleSavepoint).Error; rbErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "rollback settlement savepoint")
		}
		winner, findErr := repo.FindBySource(ctx, input.SourceID, input.SourceType)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load settlement after conflict")
		}
		return s.duplicate(ctx, winner), nil
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventSettlementRecorded,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   txn.ID,
		OccurredAt:    txn.SettledAt,
		Data: payloads.SettlementRecordedEvent{
			TransactionID: txn.ID,
			SourceID:      txn.SourceID,
			SourceType:    txn.SourceType,
			Channel:       txn.Channel,
			PayerID:       txn.PayerID,
			PayeeID:       txn.PayeeID,
			Amount:        txn.Amount,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit settlement event")
	}
	if s.metrics != nil {
		s.metrics.ObserveSettlement(txn.Channel.String(), false)
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID.String(),
		"source_id":      txn.SourceID.String(),
		"source_type":    txn.SourceType,
		"channel":        txn.Channel,
		"amount":         txn.Amount.String(),
	})
	s.logg.Info(logCtx, "settlement recorded")
	return &SettleResult{Transaction: txn}, nil
}

func (s *service) duplicate(ctx context.Context, existing *models.Transaction) *SettleResult {
	if s.metrics != nil {
		s.metrics.ObserveSettlement(existing.Channel.String(), true)
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": existing.ID.String(),
		"source_id":      existing.SourceID.String(),
	})
	s.logg.Warn(logCtx, "source already settled")
	return &SettleResult{Transaction: *existing, AlreadySettled: true}
}

func (s *service) History(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	if params.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	query := listParams{ActorID: params.ActorID, Channel: params.Channel, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	rows, next, err := s.repo.ListForActor(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		counterparty := row.PayerID
		if row.PayerID == params.ActorID {
			counterparty = row.PayeeID
		}
		items = append(items, HistoryItem{
			Transaction:    row,
			Direction:      Direction(row, params.ActorID),
			CounterpartyID: counterparty,
		})
	}
	return &HistoryResult{Items: items, Cursor: pagination.Encode(next)}, nil
}

func (s *service) Summary(ctx context.Context, actorID uuid.UUID) (*Summary, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.AllForActor(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transactions")
	}
	summary := &Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		if Direction(row, actorID) == enums.TransactionDirectionIncome {
			summary.Income = summary.Income.Add(row.Amount)
		} else {
			summary.Expense = summary.Expense.Add(row.Amount)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	summary.Count = len(rows)
	return summary, nil
}
