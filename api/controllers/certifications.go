package controllers

import (
	"net/http"

	"github.com/kisanmandi/mandi-backend/api/responses"
	"github.com/kisanmandi/mandi-backend/api/validators"
	"github.com/kisanmandi/mandi-backend/internal/certification"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type certificationDecisionRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Grade   string `json:"grade" validate:"omitempty,max=16"`
	Remarks string `json:"remarks" validate:"omitempty,max=1000"`
}

// CertificationRequest opens a quality inspection on the farmer's batch.
func CertificationRequest(svc certification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
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
		cert, err := svc.Request(r.Context(), certification.RequestInput{BatchID: batchID, FarmerID: caller.ID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cert)
	}
}

func CertificationList(svc certification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}
		batchID, err := pathUUID(r, "batchId", "batch id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		certs, err := svc.ListByBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, certs)
	}
}

// CertificationDecide records an inspector's verdict.
func CertificationDecide(svc certification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		certID, err := pathUUID(r, "certificationId", "certification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload certificationDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cert, err := svc.Decide(r.Context(), certification.DecideInput{
			CertificationID: certID,
			InspectorID:     caller.ID,
			InspectorRole:   caller.Role,
			Approve:         *payload.Approve,
			Grade:           validators.SanitizeString(payload.Grade, 16),
			Remarks:         validators.SanitizeString(payload.Remarks, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cert)
	}
}
