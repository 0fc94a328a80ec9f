package app

import (
	"fmt"

	"github.com/kisanmandi/mandi-backend/internal/auction"
	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/internal/certification"
	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/internal/msp"
	"github.com/kisanmandi/mandi-backend/internal/requirements"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/internal/vendororders"
	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/metrics"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
)

// Services is the wired sale-lifecycle graph shared by the api and cron processes.
type Services struct {
	Outbox         *outbox.Service
	Batches        batches.Service
	Certifications certification.Service
	Listings       listings.Service
	Auctions       auction.Service
	MSP            msp.Service
	Requirements   requirements.Service
	Settlement     settlement.Service
	VendorOrders   vendororders.Service
}

// NewServices builds every engine over one database client. The listing
// router dispatches to the marketplace, MSP and requirement engines, and the
// MSP and requirement services route their listings back through it.
func NewServices(client *db.Client, cfg *config.Config, logg *logger.Logger, m *metrics.MarketplaceMetrics) (*Services, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	conn := client.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	ledger, err := settlement.NewService(settlement.NewRepository(conn), client, emitter, m, logg)
	if err != nil {
		return nil, fmt.Errorf("settlement service: %w", err)
	}
	registry, err := batches.NewService(batches.NewRepository(conn), client, emitter)
	if err != nil {
		return nil, fmt.Errorf("batch service: %w", err)
	}
	certs, err := certification.NewService(certification.NewRepository(conn), registry, client, emitter)
	if err != nil {
		return nil, fmt.Errorf("certification service: %w", err)
	}

	listingRepo := listings.NewRepository(conn)
	status := listings.NewStatusWriter(listingRepo)
	auctions, err := auction.NewService(auction.ServiceParams{
		Repo:       auction.NewRepository(conn),
		Batches:    registry,
		Listings:   status,
		Settlement: ledger,
		Tx:         client,
		Outbox:     emitter,
		Metrics:    m,
		Logger:     logg,
		Config:     cfg.Auction,
	})
	if err != nil {
		return nil, fmt.Errorf("auction service: %w", err)
	}

	mspRepo := msp.NewRepository(conn)
	requirementRepo := requirements.NewRepository(conn)
	router, err := listings.NewService(listings.ServiceParams{
		Repo:    listingRepo,
		Batches: registry,
		Status:  status,
		Tx:      client,
		Outbox:  emitter,
		Engines: map[enums.SaleChannel]listings.ChannelEngine{
			enums.SaleChannelMarketplace: auctions,
			enums.SaleChannelMSP:         msp.NewChannelEngine(mspRepo),
			enums.SaleChannelRequirement: requirements.NewChannelEngine(requirementRepo),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}

	procurement, err := msp.NewService(msp.ServiceParams{
		Repo:       mspRepo,
		Batches:    registry,
		Listings:   router,
		Status:     status,
		Sales:      registry,
		Settlement: ledger,
		Tx:         client,
		Outbox:     emitter,
	})
	if err != nil {
		return nil, fmt.Errorf("msp service: %w", err)
	}
	demand, err := requirements.NewService(requirements.ServiceParams{
		Repo:       requirementRepo,
		Listings:   router,
		Status:     status,
		Batches:    registry,
		Settlement: ledger,
		Tx:         client,
		Outbox:     emitter,
		Logger:     logg,
		Config:     cfg.Requirement,
	})
	if err != nil {
		return nil, fmt.Errorf("requirement service: %w", err)
	}
	orders, err := vendororders.NewService(vendororders.NewRepository(conn), client, emitter, ledger)
	if err != nil {
		return nil, fmt.Errorf("vendor order service: %w", err)
	}

	return &Services{
		Outbox:         emitter,
		Batches:        registry,
		Certifications: certs,
		Listings:       router,
		Auctions:       auctions,
		MSP:            procurement,
		Requirements:   demand,
		Settlement:     ledger,
		VendorOrders:   orders,
	}, nil
}
