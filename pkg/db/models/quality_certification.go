package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// QualityCertification is one inspection request against a batch.
type QualityCertification struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchID     uuid.UUID                 `gorm:"column:batch_id;type:uuid;not null" json:"batch_id"`
	FarmerID    uuid.UUID                 `gorm:"column:farmer_id;type:uuid;not null" json:"farmer_id"`
	InspectorID *uuid.UUID                `gorm:"column:inspector_id;type:uuid" json:"inspector_id,omitempty"`
	Status      enums.CertificationStatus `gorm:"column:status;type:certification_status;not null;default:'pending'" json:"status"`
	Grade       *string                   `gorm:"column:grade" json:"grade,omitempty"`
	Remarks     *string                   `gorm:"column:remarks" json:"remarks,omitempty"`
	RequestedAt time.Time                 `gorm:"column:requested_at;not null" json:"requested_at"`
	DecidedAt   *time.Time                `gorm:"column:decided_at" json:"decided_at,omitempty"`
}
