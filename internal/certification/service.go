package certification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type batchStore interface {
	batches.Reader
	batches.QualityRecorder
	Get(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error)
}

// Service records inspection requests and outcomes. Certification is an
// eligibility claim only; it never decides whether a batch can be sold.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.QualityCertification, error)
	Decide(ctx context.Context, input DecideInput) (*models.QualityCertification, error)
	CertifiedGrade(ctx context.Context, batchID uuid.UUID) (string, bool, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.QualityCertification, error)
}

// RequestInput opens an inspection for a farmer's batch.
type RequestInput struct {
	BatchID  uuid.UUID
	FarmerID uuid.UUID
}

// DecideInput is an inspector's verdict on a pending certification.
type DecideInput struct {
	CertificationID uuid.UUID
	InspectorID     uuid.UUID
	InspectorRole   enums.ActorRole
	Approve         bool
	Grade           string
	Remarks         string
}

type service struct {
	repo    Repository
	batches batchStore
	tx      txRunner
	outbox  outbox.Emitter
	now     func() time.Time
}

// NewService wires the certification gate.
func NewService(repo Repository, batchStore batchStore, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "certification repository required")
	}
	if batchStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch registry required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	return &service{repo: repo, batches: batchStore, tx: tx, outbox: emitter, now: time.Now}, nil
}

func (s *service) Request(ctx context.Context, input RequestInput) (*models.QualityCertification, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var cert *models.QualityCertification
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		batch, err := s.batches.GetTx(ctx, tx, input.BatchID)
		if err != nil {
			return err
		}
		if batch.FarmerID != input.FarmerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "batch does not belong to farmer")
		}
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindPendingByBatch(ctx, batch.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "a certification is already pending for this batch")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending certification")
		}
		if err := s.batches.MarkQualityPending(ctx, tx, batch.ID); err != nil {
			return err
		}

		cert = &models.QualityCertification{
			ID:          uuid.New(),
			BatchID:     batch.ID,
			FarmerID:    batch.FarmerID,
			Status:      enums.CertificationStatusPending,
			RequestedAt: s.now().UTC(),
		}
		if err := repo.Create(ctx, cert); err != nil {
			if db.IsUniqueViolation(err, "ux_quality_certifications_pending") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a certification is already pending for this batch")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certification")
		}
		return s.emit(ctx, tx, enums.EventCertificationRequested, cert, input.FarmerID, enums.ActorRoleFarmer)
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.QualityCertification, error) {
	if input.InspectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.InspectorRole.CanInspect() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only inspectors can decide certifications")
	}
	grade := strings.TrimSpace(input.Grade)
	if input.Approve && grade == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grade is required for approval")
	}

	var cert *models.QualityCertification
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, input.CertificationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "certification not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certification")
		}
		if current.Status != enums.CertificationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "certification already decided")
		}

		update := decisionUpdate{
			InspectorID: input.InspectorID,
			Status:      enums.CertificationStatusRejected,
			DecidedAt:   s.now().UTC(),
		}
		if input.Approve {
			update.Status = enums.CertificationStatusApproved
			update.Grade = &grade
		}
		if remarks := strings.TrimSpace(input.Remarks); remarks != "" {
			update.Remarks = &remarks
		}
		ok, err := repo.Decide(ctx, current.ID, update)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "certification changed concurrently")
		}

		result := batches.QualityResult{Approved: input.Approve, Grade: grade}
		if err := s.batches.RecordQualityResult(ctx, tx, current.BatchID, result); err != nil {
			return err
		}

		current.InspectorID = &input.InspectorID
		current.Status = update.Status
		current.Grade = update.Grade
		current.Remarks = update.Remarks
		current.DecidedAt = &update.DecidedAt
		cert = current
		return s.emit(ctx, tx, enums.EventCertificationDecided, current, input.InspectorID, input.InspectorRole)
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *service) CertifiedGrade(ctx context.Context, batchID uuid.UUID) (string, bool, error) {
	batch, err := s.batches.Get(ctx, batchID)
	if err != nil {
		return "", false, err
	}
	if batch.QualityStatus != enums.QualityStatusApproved || batch.QualityGrade == nil {
		return "", false, nil
	}
	return *batch.QualityGrade, true, nil
}

func (s *service) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.QualityCertification, error) {
	if _, err := s.batches.Get(ctx, batchID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certifications")
	}
	if rows == nil {
		rows = []models.QualityCertification{}
	}
	return rows, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, cert *models.QualityCertification, actorID uuid.UUID, role enums.ActorRole) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateCertification,
		AggregateID:   cert.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: role.String()},
		OccurredAt:    s.now().UTC(),
		Data: payloads.CertificationEvent{
			CertificationID: cert.ID,
			BatchID:         cert.BatchID,
			Status:          cert.Status,
			Grade:           cert.Grade,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit certification event")
	}
	return nil
}
