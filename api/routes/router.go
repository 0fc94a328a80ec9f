package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kisanmandi/mandi-backend/api/controllers"
	"github.com/kisanmandi/mandi-backend/api/middleware"
	"github.com/kisanmandi/mandi-backend/internal/auction"
	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/internal/certification"
	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/internal/msp"
	"github.com/kisanmandi/mandi-backend/internal/requirements"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/internal/vendororders"
	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/metrics"
	pkgredis "github.com/kisanmandi/mandi-backend/pkg/redis"
)

// Cache backs request idempotency and rate limiting.
type Cache interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Dependencies are the collaborators the HTTP surface is built from.
// Nil services surface as 500s on their routes.
type Dependencies struct {
	Readiness map[string]controllers.Pinger
	Cache     Cache
	Metrics   prometheus.Gatherer

	Batches        batches.Service
	Certifications certification.Service
	Listings       listings.Service
	Auctions       auction.Service
	MSP            msp.Service
	Requirements   requirements.Service
	Settlement     settlement.Service
	VendorOrders   vendororders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", metrics.Handler(deps.Metrics))
	}

	bidPolicy := middleware.NewRateLimitPolicy("bid", cfg.RateLimit.BidWindow, cfg.RateLimit.BidLimit)

	farmer := middleware.RequireRole(logg, enums.ActorRoleFarmer)
	buyer := middleware.RequireRole(logg, enums.ActorRoleBuyer)
	inspector := middleware.RequireRole(logg, enums.ActorRoleOfficer, enums.ActorRoleAdmin)
	admin := middleware.RequireRole(logg, enums.ActorRoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Cache, logg))

		r.Route("/batches", func(r chi.Router) {
			r.Use(farmer)
			r.Post("/", controllers.BatchCreate(deps.Batches, logg))
			r.Get("/", controllers.BatchList(deps.Batches, logg))
			r.Get("/{batchId}", controllers.BatchDetail(deps.Batches, logg))
			r.Post("/{batchId}/withdraw", controllers.BatchWithdraw(deps.Batches, logg))
			r.Post("/{batchId}/release", controllers.BatchRelease(deps.Batches, logg))
			r.Post("/{batchId}/certifications", controllers.CertificationRequest(deps.Certifications, logg))
			r.Get("/{batchId}/certifications", controllers.CertificationList(deps.Certifications, logg))
		})
		r.With(inspector).Post("/certifications/{certificationId}/decision", controllers.CertificationDecide(deps.Certifications, logg))

		r.Route("/listings", func(r chi.Router) {
			r.With(farmer).Post("/", controllers.ListingCreate(deps.Listings, logg))
			r.Get("/", controllers.ListingMarketplace(deps.Listings, logg))
			r.With(farmer).Get("/mine", controllers.ListingMine(deps.Listings, logg))
			r.Get("/{listingId}", controllers.ListingDetail(deps.Listings, logg))
			r.With(farmer).Post("/{listingId}/cancel", controllers.ListingCancel(deps.Listings, logg))
			r.With(admin).Post("/{listingId}/close", controllers.AuctionClose(deps.Auctions, logg))
			r.With(buyer, middleware.RateLimit(bidPolicy, deps.Cache, logg)).
				Post("/{listingId}/bids", controllers.BidPlace(deps.Auctions, logg))
			r.Get("/{listingId}/bids", controllers.BidList(deps.Auctions, logg))
		})
		r.With(buyer).Get("/bids/me", controllers.BidMine(deps.Auctions, logg))

		r.Route("/msp", func(r chi.Router) {
			r.With(farmer).Post("/submissions", controllers.MSPSubmit(deps.MSP, logg))
			r.With(inspector).Post("/rates", controllers.MSPRatePublish(deps.MSP, logg))
			r.Get("/rates/{cropType}", controllers.MSPRateGet(deps.MSP, logg))
			r.Get("/rates/{cropType}/history", controllers.MSPRateHistory(deps.MSP, logg))
		})

		r.Route("/requirements", func(r chi.Router) {
			r.With(buyer).Post("/", controllers.RequirementCreate(deps.Requirements, logg))
			r.Get("/", controllers.RequirementListOpen(deps.Requirements, logg))
			r.With(buyer).Get("/mine", controllers.RequirementListMine(deps.Requirements, logg))
			r.Get("/{requirementId}", controllers.RequirementDetail(deps.Requirements, logg))
			r.With(buyer).Post("/{requirementId}/fulfill", controllers.RequirementFulfill(deps.Requirements, logg))
			r.With(farmer).Post("/{requirementId}/offers", controllers.OfferSubmit(deps.Requirements, logg))
			r.With(buyer).Get("/{requirementId}/offers", controllers.OfferList(deps.Requirements, logg))
		})
		r.With(farmer).Get("/offers/mine", controllers.OfferMine(deps.Requirements, logg))
		r.With(buyer).Post("/offers/{offerId}/status", controllers.OfferStatus(deps.Requirements, logg))

		r.Route("/vendor-orders", func(r chi.Router) {
			r.Post("/", controllers.VendorOrderCreate(deps.VendorOrders, logg))
			r.Get("/", controllers.VendorOrderList(deps.VendorOrders, logg))
			r.Post("/{orderId}/status", controllers.VendorOrderStatus(deps.VendorOrders, logg))
		})

		r.Get("/transactions", controllers.TransactionHistory(deps.Settlement, logg))
		r.Get("/transactions/summary", controllers.TransactionSummary(deps.Settlement, logg))
	})

	return r
}
