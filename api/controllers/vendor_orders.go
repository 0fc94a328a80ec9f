package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kisanmandi/mandi-backend/api/responses"
	"github.com/kisanmandi/mandi-backend/api/validators"
	"github.com/kisanmandi/mandi-backend/internal/vendororders"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type createVendorOrderRequest struct {
	VendorID  string  `json:"vendor_id" validate:"required,uuid"`
	Kind      string  `json:"kind" validate:"required,oneof=rental sale"`
	ItemName  string  `json:"item_name" validate:"required,max=200"`
	Quantity  string  `json:"quantity" validate:"required,decimal"`
	UnitPrice string  `json:"unit_price" validate:"required,decimal"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

type vendorOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected cancelled completed"`
}

// VendorOrderCreate places a rental or sale order with a vendor.
func VendorOrderCreate(svc vendororders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor order service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createVendorOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := enums.ParseVendorOrderKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}
		quantity, err := validators.ParseDecimal("quantity", payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unitPrice, err := validators.ParseDecimal("unit_price", payload.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), vendororders.CreateInput{
			CustomerID: caller.ID,
			VendorID:   uuid.MustParse(payload.VendorID),
			Kind:       kind,
			ItemName:   validators.SanitizeString(payload.ItemName, 200),
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			Notes:      payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// VendorOrderList shows vendors their incoming orders and everyone else
// the orders they placed.
func VendorOrderList(svc vendororders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor order service unavailable"))
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
		status, err := queryEnum(r, "status", enums.ParseVendorOrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := queryEnum(r, "category", enums.ParseVendorOrderCategory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := vendororders.ListFilters{Status: status, Category: category}

		list := svc.ListForCustomer
		if caller.Role == enums.ActorRoleVendor {
			list = svc.ListForVendor
		}
		result, err := list(r.Context(), caller.ID, page, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func VendorOrderStatus(svc vendororders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor order service unavailable"))
			return
		}
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload vendorOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseVendorOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		result, err := svc.UpdateStatus(r.Context(), vendororders.StatusInput{
			OrderID:   orderID,
			ActorID:   caller.ID,
			ActorRole: caller.Role,
			Target:    target,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
