package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kisanmandi/mandi-backend/api/responses"
	"github.com/kisanmandi/mandi-backend/api/validators"
	"github.com/kisanmandi/mandi-backend/internal/msp"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type mspSubmitRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid"`
}

type publishRateRequest struct {
	CropType      string     `json:"crop_type" validate:"required,max=64"`
	Unit          string     `json:"unit" validate:"required,oneof=kg quintal tonne"`
	Rate          string     `json:"rate" validate:"required,decimal"`
	Season        *string    `json:"season" validate:"omitempty,max=32"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

// MSPSubmit sells the farmer's whole batch at the published support price.
func MSPSubmit(svc msp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "msp service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload mspSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		procurement, err := svc.Submit(r.Context(), msp.SubmitInput{
			BatchID:  uuid.MustParse(payload.BatchID),
			FarmerID: caller.ID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, procurement)
	}
}

func MSPRatePublish(svc msp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "msp service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload publishRateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rateValue, err := validators.ParseDecimal("rate", payload.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := enums.ParseCropUnit(payload.Unit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
			return
		}

		rate, err := svc.PublishRate(r.Context(), msp.PublishRateInput{
			OfficerID:     caller.ID,
			Role:          caller.Role,
			CropType:      validators.NormalizeCropType(payload.CropType),
			Unit:          unit,
			Rate:          rateValue,
			Season:        payload.Season,
			EffectiveFrom: payload.EffectiveFrom,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rate)
	}
}

// MSPRateGet returns the rate currently in effect for a crop.
func MSPRateGet(svc msp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "msp service unavailable"))
			return
		}
		crop, err := cropParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.GetRate(r.Context(), crop)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

func MSPRateHistory(svc msp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "msp service unavailable"))
			return
		}
		crop, err := cropParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rates, err := svc.RateHistory(r.Context(), crop)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rates})
	}
}

func cropParam(r *http.Request) (string, error) {
	raw, err := url.PathUnescape(chi.URLParam(r, "cropType"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid crop type")
	}
	crop := validators.NormalizeCropType(raw)
	if crop == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	}
	return crop, nil
}
