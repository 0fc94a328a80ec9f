package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// Transaction is an immutable settlement record. (SourceID, SourceType) is unique.
type Transaction struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SourceID    uuid.UUID                  `gorm:"column:source_id;type:uuid;not null" json:"source_id"`
	SourceType  enums.SettlementSourceType `gorm:"column:source_type;type:settlement_source_type;not null" json:"source_type"`
	Channel     enums.LedgerChannel        `gorm:"column:channel;type:ledger_channel;not null" json:"channel"`
	PayerID     uuid.UUID                  `gorm:"column:payer_id;type:uuid;not null" json:"payer_id"`
	PayeeID     uuid.UUID                  `gorm:"column:payee_id;type:uuid;not null" json:"payee_id"`
	Amount      decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Description string                     `gorm:"column:description;not null;default:''" json:"description"`
	SettledAt   time.Time                  `gorm:"column:settled_at;not null" json:"settled_at"`
}
