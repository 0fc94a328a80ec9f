package vendororders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines vendor order operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderSummary, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, input StatusInput) (*StatusResult, error)
}

type party int

const (
	partyVendor party = 1 << iota
	partyCustomer
)

// orderTransitions lists which party may make each move.
var orderTransitions = map[enums.VendorOrderStatus]map[enums.VendorOrderStatus]party{
	enums.VendorOrderStatusPending: {
		enums.VendorOrderStatusAccepted:  partyVendor,
		enums.VendorOrderStatusRejected:  partyVendor,
		enums.VendorOrderStatusCancelled: partyCustomer,
	},
	enums.VendorOrderStatusAccepted: {
		enums.VendorOrderStatusCompleted: partyVendor,
		enums.VendorOrderStatusCancelled: partyVendor | partyCustomer,
	},
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outbox.Emitter
	settlement settlement.Settler
	now        func() time.Time
}

// NewService builds the vendor order service.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, settler settlement.Settler) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vendor order repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	if settler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settlement ledger required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     emitter,
		settlement: settler,
		now:        time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderSummary, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	item := strings.TrimSpace(input.ItemName)
	switch {
	case input.VendorID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	case input.VendorID == input.CustomerID:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendors cannot order from themselves")
	case !input.Kind.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported order kind %q", input.Kind))
	case item == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	case !input.Quantity.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	case !input.UnitPrice.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be greater than zero")
	}

	now := s.now().UTC()
	order := &models.VendorOrder{
		ID:          uuid.New(),
		VendorID:    input.VendorID,
		CustomerID:  input.CustomerID,
		Kind:        input.Kind,
		ItemName:    item,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		TotalAmount: input.UnitPrice.Mul(input.Quantity).Round(2),
		Status:      enums.VendorOrderStatusPending,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor order")
		}
		return s.emit(ctx, tx, enums.EventVendorOrderCreated, order, input.CustomerID, "")
	})
	if err != nil {
		return nil, err
	}
	return summarize(*order), nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, listParams{VendorID: &vendorID}, params, filters)
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, listParams{CustomerID: &customerID}, params, filters)
}

func (s *service) list(ctx context.Context, query listParams, params pagination.Params, filters ListFilters) (*OrderList, error) {
	statuses, err := statusesFor(filters)
	if err != nil {
		return nil, err
	}
	query.Statuses = statuses
	query.Limit = params.Limit
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	out := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, *summarize(row))
	}
	return &OrderList{Orders: out, NextCursor: pagination.Encode(next)}, nil
}

// statusesFor intersects the exact status filter with the category filter.
func statusesFor(filters ListFilters) ([]enums.VendorOrderStatus, error) {
	var statuses []enums.VendorOrderStatus
	if filters.Category != nil {
		for _, status := range enums.VendorOrderStatuses() {
			if status.Category() == *filters.Category {
				statuses = append(statuses, status)
			}
		}
		if len(statuses) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", *filters.Category))
		}
	}
	if filters.Status == nil {
		return statuses, nil
	}
	if filters.Category != nil && filters.Status.Category() != *filters.Category {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status does not belong to category")
	}
	return []enums.VendorOrderStatus{*filters.Status}, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) (*StatusResult, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported status %q", input.Target))
	}

	var result *StatusResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		var actor party
		if order.VendorID == input.ActorID {
			actor |= partyVendor
		}
		if order.CustomerID == input.ActorID {
			actor |= partyCustomer
		}
		if actor == 0 {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		allowed, ok := orderTransitions[order.Status][input.Target]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move from %s to %s", order.Status, input.Target))
		}
		if allowed&actor == 0 {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("not allowed to mark order %s", input.Target))
		}

		now := s.now().UTC()
		updated, err := repo.UpdateStatus(ctx, order.ID, order.Status, input.Target, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor order status")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeConflict, "order state changed")
		}
		order.Status = input.Target
		order.UpdatedAt = now
		switch input.Target {
		case enums.VendorOrderStatusAccepted, enums.VendorOrderStatusRejected:
			order.DecidedAt = &now
		case enums.VendorOrderStatusCompleted:
			order.CompletedAt = &now
		case enums.VendorOrderStatusCancelled:
			order.CancelledAt = &now
		}
		result = &StatusResult{Order: *summarize(*order)}

		if input.Target == enums.VendorOrderStatusCompleted {
			settled, err := s.settlement.Settle(ctx, tx, settlement.SettleInput{
				SourceID:    order.ID,
				SourceType:  enums.SettlementSourceVendorOrder,
				Channel:     enums.LedgerChannelVendorOrder,
				PayerID:     order.CustomerID,
				PayeeID:     order.VendorID,
				Amount:      order.TotalAmount,
				Description: fmt.Sprintf("%s: %s", order.Kind, order.ItemName),
			})
			if err != nil {
				return err
			}
			result.Transaction = &settled.Transaction
		}
		return s.emit(ctx, tx, enums.EventVendorOrderStatusChanged, order, input.ActorID, input.ActorRole.String())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.VendorOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor order")
	}
	return order, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, order *models.VendorOrder, actorID uuid.UUID, role string) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateVendorOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: role},
		OccurredAt:    order.UpdatedAt,
		Data: payloads.VendorOrderEvent{
			OrderID:    order.ID,
			VendorID:   order.VendorID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			Category:   order.Status.Category(),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit vendor order event")
	}
	return nil
}

func summarize(order models.VendorOrder) *OrderSummary {
	return &OrderSummary{VendorOrder: order, Category: order.Status.Category()}
}
