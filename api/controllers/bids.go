package controllers

import (
	"net/http"

	"github.com/kisanmandi/mandi-backend/api/responses"
	"github.com/kisanmandi/mandi-backend/api/validators"
	"github.com/kisanmandi/mandi-backend/internal/auction"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type placeBidRequest struct {
	Amount          string `json:"amount" validate:"required,decimal"`
	// ExpectedVersion is the listing version the bidder last read.
	ExpectedVersion *int64 `json:"expected_version" validate:"required,min=0"`
}

// BidPlace submits a bid on an active marketplace auction.
func BidPlace(svc auction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := pathUUID(r, "listingId", "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload placeBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := validators.ParseDecimal("amount", payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceBid(r.Context(), auction.PlaceBidInput{
			ListingID:       listingID,
			BidderID:        caller.ID,
			BidderRole:      caller.Role,
			Amount:          amount,
			ExpectedVersion: payload.ExpectedVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// BidList returns every accepted bid on a listing in sequence order.
func BidList(svc auction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}
		listingID, err := pathUUID(r, "listingId", "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bids, err := svc.ListBids(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": bids})
	}
}

// BidMine is the caller's bid dashboard with derived statuses.
func BidMine(svc auction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bids, err := svc.MyBids(r.Context(), caller.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": bids})
	}
}

// AuctionClose lets an admin close an auction whose end time has passed
// without waiting for the cron sweep.
func AuctionClose(svc auction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}
		listingID, err := pathUUID(r, "listingId", "listing id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Close(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
