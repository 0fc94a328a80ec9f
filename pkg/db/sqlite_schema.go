package db

import (
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors pkg/migrate/migrations for SQLite, which has no enum
// types or gen_random_uuid(). IDs are always assigned by the services.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS crop_batches (
		id TEXT PRIMARY KEY,
		farmer_id TEXT NOT NULL,
		crop_type TEXT NOT NULL,
		variety TEXT,
		quantity NUMERIC NOT NULL CHECK (quantity > 0),
		unit TEXT NOT NULL,
		harvest_date DATETIME NOT NULL,
		storage_location TEXT NOT NULL DEFAULT '',
		quality_status TEXT NOT NULL DEFAULT 'unchecked',
		quality_grade TEXT,
		sale_status TEXT NOT NULL DEFAULT 'available',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS quality_certifications (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL REFERENCES crop_batches(id),
		farmer_id TEXT NOT NULL,
		inspector_id TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		grade TEXT,
		remarks TEXT,
		requested_at DATETIME NOT NULL,
		decided_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_quality_certifications_pending
		ON quality_certifications (batch_id) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL REFERENCES crop_batches(id),
		farmer_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		minimum_price NUMERIC,
		min_increment NUMERIC,
		starts_at DATETIME,
		ends_at DATETIME,
		msp_rate NUMERIC,
		requirement_id TEXT,
		highest_bid NUMERIC,
		highest_bidder_id TEXT,
		highest_bid_at DATETIME,
		bid_count INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 0,
		closed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_listings_open_batch
		ON listings (batch_id) WHERE status IN ('pending', 'active')`,
	`CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL REFERENCES listings(id),
		bidder_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		sequence INTEGER NOT NULL,
		created_at DATETIME,
		UNIQUE (listing_id, sequence)
	)`,
	`CREATE TABLE IF NOT EXISTS msp_rates (
		id TEXT PRIMARY KEY,
		crop_type TEXT NOT NULL,
		unit TEXT NOT NULL,
		rate NUMERIC NOT NULL,
		season TEXT,
		published_by TEXT NOT NULL,
		effective_from DATETIME NOT NULL,
		published_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS requirements (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		crop_type TEXT NOT NULL,
		quantity NUMERIC NOT NULL,
		unit TEXT NOT NULL,
		target_price NUMERIC,
		deadline DATETIME NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS requirement_offers (
		id TEXT PRIMARY KEY,
		requirement_id TEXT NOT NULL REFERENCES requirements(id),
		batch_id TEXT NOT NULL REFERENCES crop_batches(id),
		listing_id TEXT NOT NULL REFERENCES listings(id),
		farmer_id TEXT NOT NULL,
		price_per_unit NUMERIC NOT NULL,
		quantity NUMERIC NOT NULL,
		available_date DATETIME,
		message TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		source_type TEXT NOT NULL,
		channel TEXT NOT NULL,
		payer_id TEXT NOT NULL,
		payee_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		settled_at DATETIME NOT NULL,
		UNIQUE (source_id, source_type)
	)`,
	`CREATE TABLE IF NOT EXISTS vendor_orders (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		item_name TEXT NOT NULL,
		quantity NUMERIC NOT NULL,
		unit_price NUMERIC NOT NULL,
		total_amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		decided_at DATETIME,
		completed_at DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// ApplySQLiteSchema creates every table on a SQLite connection. It is
// idempotent and used by tests and MANDI_USE_SQLITE local runs.
func ApplySQLiteSchema(conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
