package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/api/middleware"
	"github.com/kisanmandi/mandi-backend/internal/auction"
	"github.com/kisanmandi/mandi-backend/internal/requirements"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/internal/vendororders"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/kisanmandi/mandi-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func newRequest(t *testing.T, method, target string, body any, userID uuid.UUID, role enums.ActorRole, params map[string]string) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID.String())
		ctx = middleware.WithRole(ctx, string(role))
	}
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

type stubAuctionService struct {
	auction.Service
	input  *auction.PlaceBidInput
	result *auction.BidResult
	err    error
}

func (s *stubAuctionService) PlaceBid(ctx context.Context, input auction.PlaceBidInput) (*auction.BidResult, error) {
	s.input = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestBidPlaceForwardsCallerAndAmount(t *testing.T) {
	buyerID := uuid.New()
	listingID := uuid.New()
	svc := &stubAuctionService{result: &auction.BidResult{ListingVersion: 3, Status: enums.BidderStatusWinning}}
	version := int64(2)

	req := newRequest(t, http.MethodPost, "/api/v1/listings/"+listingID.String()+"/bids",
		map[string]any{"amount": "1250.50", "expected_version": version},
		buyerID, enums.ActorRoleBuyer, map[string]string{"listingId": listingID.String()})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input == nil {
		t.Fatal("expected service to be called")
	}
	if svc.input.BidderID != buyerID || svc.input.ListingID != listingID {
		t.Fatalf("unexpected ids forwarded: %+v", svc.input)
	}
	if svc.input.BidderRole != enums.ActorRoleBuyer {
		t.Fatalf("expected buyer role, got %s", svc.input.BidderRole)
	}
	if !svc.input.Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("unexpected amount %s", svc.input.Amount)
	}
	if svc.input.ExpectedVersion == nil || *svc.input.ExpectedVersion != version {
		t.Fatalf("expected version to be forwarded")
	}
}

func TestBidPlaceRejectsNonDecimalAmount(t *testing.T) {
	listingID := uuid.New()
	svc := &stubAuctionService{}
	req := newRequest(t, http.MethodPost, "/", map[string]any{"amount": "lots"},
		uuid.New(), enums.ActorRoleBuyer, map[string]string{"listingId": listingID.String()})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.input != nil {
		t.Fatal("service must not be called for invalid payloads")
	}
}

func TestBidPlaceRequiresExpectedVersion(t *testing.T) {
	listingID := uuid.New()
	svc := &stubAuctionService{}
	req := newRequest(t, http.MethodPost, "/", map[string]any{"amount": "120"},
		uuid.New(), enums.ActorRoleBuyer, map[string]string{"listingId": listingID.String()})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.input != nil {
		t.Fatal("a bid without the version it was placed against must not reach the engine")
	}
}

func TestBidPlaceMapsStateConflict(t *testing.T) {
	listingID := uuid.New()
	svc := &stubAuctionService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "auction is not active")}
	req := newRequest(t, http.MethodPost, "/", map[string]any{"amount": "100", "expected_version": 0},
		uuid.New(), enums.ActorRoleBuyer, map[string]string{"listingId": listingID.String()})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", code)
	}
}

func TestBidPlaceRequiresUserContext(t *testing.T) {
	listingID := uuid.New()
	svc := &stubAuctionService{}
	req := newRequest(t, http.MethodPost, "/", map[string]any{"amount": "100"},
		uuid.Nil, "", map[string]string{"listingId": listingID.String()})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestBidPlaceRejectsMalformedListingID(t *testing.T) {
	svc := &stubAuctionService{}
	req := newRequest(t, http.MethodPost, "/", map[string]any{"amount": "100"},
		uuid.New(), enums.ActorRoleBuyer, map[string]string{"listingId": "not-a-uuid"})
	rec := httptest.NewRecorder()

	BidPlace(svc, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

type stubVendorOrderService struct {
	vendororders.Service
	vendorCalls   int
	customerCalls int
	filters       vendororders.ListFilters
}

func (s *stubVendorOrderService) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters vendororders.ListFilters) (*vendororders.OrderList, error) {
	s.vendorCalls++
	s.filters = filters
	return &vendororders.OrderList{}, nil
}

func (s *stubVendorOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters vendororders.ListFilters) (*vendororders.OrderList, error) {
	s.customerCalls++
	s.filters = filters
	return &vendororders.OrderList{}, nil
}

func TestVendorOrderListRoutesByRole(t *testing.T) {
	svc := &stubVendorOrderService{}
	handler := VendorOrderList(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, newRequest(t, http.MethodGet, "/api/v1/vendor-orders?category=open", nil, uuid.New(), enums.ActorRoleVendor, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.vendorCalls != 1 || svc.customerCalls != 0 {
		t.Fatalf("vendor should see incoming orders, calls vendor=%d customer=%d", svc.vendorCalls, svc.customerCalls)
	}
	if svc.filters.Category == nil || *svc.filters.Category != enums.VendorOrderCategoryOpen {
		t.Fatalf("expected open category filter")
	}

	rec = httptest.NewRecorder()
	handler(rec, newRequest(t, http.MethodGet, "/api/v1/vendor-orders", nil, uuid.New(), enums.ActorRoleFarmer, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.customerCalls != 1 {
		t.Fatalf("farmer should see placed orders")
	}
}

func TestVendorOrderListRejectsUnknownStatus(t *testing.T) {
	svc := &stubVendorOrderService{}
	rec := httptest.NewRecorder()
	VendorOrderList(svc, testLogger())(rec, newRequest(t, http.MethodGet, "/api/v1/vendor-orders?status=shipped", nil, uuid.New(), enums.ActorRoleBuyer, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.customerCalls != 0 {
		t.Fatal("service must not be called")
	}
}

type stubRequirementService struct {
	requirements.Service
	statusInput *requirements.OfferStatusInput
}

func (s *stubRequirementService) SetOfferStatus(ctx context.Context, input requirements.OfferStatusInput) (*requirements.OfferDecision, error) {
	s.statusInput = &input
	return &requirements.OfferDecision{}, nil
}

func TestOfferStatusOnlyAcceptsDecisions(t *testing.T) {
	offerID := uuid.New()
	svc := &stubRequirementService{}
	handler := OfferStatus(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, newRequest(t, http.MethodPost, "/", map[string]any{"status": "pending"},
		uuid.New(), enums.ActorRoleBuyer, map[string]string{"offerId": offerID.String()}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.statusInput != nil {
		t.Fatal("pending is not a decision")
	}

	buyerID := uuid.New()
	rec = httptest.NewRecorder()
	handler(rec, newRequest(t, http.MethodPost, "/", map[string]any{"status": "accepted"},
		buyerID, enums.ActorRoleBuyer, map[string]string{"offerId": offerID.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.statusInput == nil || svc.statusInput.Status != enums.OfferStatusAccepted || svc.statusInput.BuyerID != buyerID {
		t.Fatalf("unexpected decision forwarded: %+v", svc.statusInput)
	}
}

type stubSettlementService struct {
	settlement.Service
	params *settlement.HistoryParams
}

func (s *stubSettlementService) History(ctx context.Context, params settlement.HistoryParams) (*settlement.HistoryResult, error) {
	s.params = &params
	return &settlement.HistoryResult{}, nil
}

func TestTransactionHistoryFiltersByChannel(t *testing.T) {
	svc := &stubSettlementService{}
	actorID := uuid.New()
	rec := httptest.NewRecorder()
	TransactionHistory(svc, testLogger())(rec, newRequest(t, http.MethodGet, "/api/v1/transactions?channel=msp&limit=10", nil, actorID, enums.ActorRoleFarmer, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.params == nil || svc.params.ActorID != actorID || svc.params.Limit != 10 {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	if svc.params.Channel == nil || *svc.params.Channel != enums.LedgerChannelMSP {
		t.Fatal("expected msp channel filter")
	}

	rec = httptest.NewRecorder()
	TransactionHistory(svc, testLogger())(rec, newRequest(t, http.MethodGet, "/api/v1/transactions?channel=barter", nil, actorID, enums.ActorRoleFarmer, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown channel, got %d", rec.Code)
	}
}

func TestHandlersReportMissingService(t *testing.T) {
	rec := httptest.NewRecorder()
	TransactionSummary(nil, testLogger())(rec, newRequest(t, http.MethodGet, "/", nil, uuid.New(), enums.ActorRoleFarmer, nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
