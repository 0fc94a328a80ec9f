package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kisanmandi/mandi-backend/api/responses"
	"github.com/kisanmandi/mandi-backend/api/validators"
	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type createBatchRequest struct {
	CropType        string    `json:"crop_type" validate:"required,max=64"`
	Variety         *string   `json:"variety" validate:"omitempty,max=64"`
	Quantity        string    `json:"quantity" validate:"required,decimal"`
	Unit            string    `json:"unit" validate:"required,oneof=kg quintal tonne"`
	HarvestDate     time.Time `json:"harvest_date" validate:"required"`
	StorageLocation string    `json:"storage_location" validate:"required,max=255"`
}

// BatchCreate registers a harvested batch for the calling farmer.
func BatchCreate(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseDecimal("quantity", payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := enums.ParseCropUnit(payload.Unit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
			return
		}

		batch, err := svc.Create(r.Context(), batches.CreateInput{
			FarmerID:        caller.ID,
			CropType:        validators.NormalizeCropType(payload.CropType),
			Variety:         payload.Variety,
			Quantity:        quantity,
			Unit:            unit,
			HarvestDate:     payload.HarvestDate,
			StorageLocation: validators.SanitizeString(payload.StorageLocation, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

// BatchList pages through the calling farmer's batches.
func BatchList(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := queryEnum(r, "sale_status", enums.ParseBatchSaleStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByFarmer(r.Context(), batches.ListParams{
			FarmerID:   caller.ID,
			SaleStatus: status,
			Limit:      page.Limit,
			Cursor:     page.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func BatchDetail(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}
		batchID, err := pathUUID(r, "batchId", "batch id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batch, err := svc.Get(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// BatchWithdraw takes an available batch off sale for good.
func BatchWithdraw(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return batchTransition(svc, logg, batches.Service.Withdraw)
}

// BatchRelease returns an unsold batch to available.
func BatchRelease(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return batchTransition(svc, logg, batches.Service.Release)
}

func batchTransition(svc batches.Service, logg *logger.Logger, move func(batches.Service, context.Context, uuid.UUID, uuid.UUID) (*models.CropBatch, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batchID, err := pathUUID(r, "batchId", "batch id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batch, err := move(svc, r.Context(), batchID, caller.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}
