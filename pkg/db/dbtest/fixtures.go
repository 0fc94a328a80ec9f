package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// SeedBatch inserts an available, unchecked batch owned by farmerID.
func SeedBatch(t testing.TB, client *db.Client, farmerID uuid.UUID, cropType string, quantity decimal.Decimal, unit enums.CropUnit) *models.CropBatch {
	t.Helper()
	now := time.Now().UTC()
	batch := &models.CropBatch{
		ID:            uuid.New(),
		FarmerID:      farmerID,
		CropType:      cropType,
		Quantity:      quantity,
		Unit:          unit,
		HarvestDate:   now.Add(-48 * time.Hour),
		QualityStatus: enums.QualityStatusUnchecked,
		SaleStatus:    enums.BatchSaleStatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch
}

// ReloadBatch reads the batch row back from the database.
func ReloadBatch(t testing.TB, client *db.Client, id uuid.UUID) models.CropBatch {
	t.Helper()
	var batch models.CropBatch
	if err := client.DB().Where("id = ?", id).First(&batch).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	return batch
}

// ReloadListing reads the listing row back from the database.
func ReloadListing(t testing.TB, client *db.Client, id uuid.UUID) models.Listing {
	t.Helper()
	var listing models.Listing
	if err := client.DB().Where("id = ?", id).First(&listing).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	return listing
}

// CountRows counts rows of model matching an optional where clause.
func CountRows(t testing.TB, client *db.Client, model any, where string, args ...any) int64 {
	t.Helper()
	query := client.DB().Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}
