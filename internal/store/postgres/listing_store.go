// Package postgres provides Postgres-backed persistence for the canonical
// listing store and run metadata.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// ListingStore reconciles scraped records into the listings table shared
// with the rest of the marketplace application.
//
// Expected schema (managed by the main application's migrations):
//
//	CREATE TABLE listings (
//	    id BIGSERIAL PRIMARY KEY,
//	    name TEXT, link TEXT, image TEXT, address TEXT,
//	    price NUMERIC, area INT, bedrooms INT, bathrooms INT, parking INT,
//	    type TEXT, for_sale BOOLEAN, content TEXT, photos JSONB,
//	    agency TEXT, ref TEXT UNIQUE, agent_id BIGINT,
//	    published BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at TIMESTAMPTZ DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ DEFAULT NOW()
//	);
//
//	CREATE TABLE scrape_runs (
//	    id BIGSERIAL PRIMARY KEY,
//	    run_id UUID NOT NULL,
//	    agency TEXT NOT NULL,
//	    total_listings INT NOT NULL,
//	    total_pages INT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type ListingStore struct {
	pool db
}

// NewListingStore creates a Postgres-backed ListingStore using the provided config.
func NewListingStore(ctx context.Context, cfg Config) (*ListingStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ListingStore{pool: pool}, nil
}

// NewListingStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewListingStoreWithPool(pool db) (*ListingStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &ListingStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *ListingStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertListingSQL = `
INSERT INTO listings (
	name, link, image, address, price, area, bedrooms, bathrooms, parking,
	type, for_sale, content, photos, agency, ref, agent_id, published,
	created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW()
)
ON CONFLICT (ref) DO UPDATE SET
	name = EXCLUDED.name,
	link = EXCLUDED.link,
	image = EXCLUDED.image,
	address = EXCLUDED.address,
	price = EXCLUDED.price,
	area = EXCLUDED.area,
	bedrooms = EXCLUDED.bedrooms,
	bathrooms = EXCLUDED.bathrooms,
	parking = EXCLUDED.parking,
	type = EXCLUDED.type,
	for_sale = EXCLUDED.for_sale,
	content = EXCLUDED.content,
	photos = EXCLUDED.photos,
	agency = EXCLUDED.agency,
	updated_at = NOW()
WHERE listings.agent_id IS NULL`

// UpsertListings writes records keyed by ref inside one transaction.
// Existing agency-owned rows are updated in place; identity, created_at,
// agent_id and published survive the update. Rows owned by an agent
// (agent_id set) are left untouched.
func (s *ListingStore) UpsertListings(ctx context.Context, listings []ingest.ScrapedListing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	written := 0
	for _, listing := range listings {
		if listing.Ref == "" {
			continue
		}
		photosJSON, err := marshalPhotos(listing.Photos)
		if err != nil {
			return 0, fmt.Errorf("marshal photos for ref %s: %w", listing.Ref, err)
		}
		tag, err := tx.Exec(ctx, upsertListingSQL,
			listing.Name,
			listing.Link,
			listing.Image,
			listing.Address,
			listing.Price,
			listing.Area,
			listing.Bedrooms,
			listing.Bathrooms,
			listing.Parking,
			listing.Type,
			listing.ForSale,
			listing.Content,
			photosJSON,
			listing.Agency,
			listing.Ref,
			listing.AgentID,
			listing.Published,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert listing ref %s: %w", listing.Ref, err)
		}
		written += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return written, nil
}

// SaveRunMetadata appends one audit row for a completed agency run.
func (s *ListingStore) SaveRunMetadata(ctx context.Context, meta ingest.RunMetadata) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO scrape_runs (run_id, agency, total_listings, total_pages, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		meta.RunID,
		meta.Agency,
		meta.TotalListings,
		meta.TotalPages,
		meta.Created,
	)
	if err != nil {
		return fmt.Errorf("insert run metadata: %w", err)
	}
	return nil
}

// PurgePlaceholders deletes agency-sourced rows that never received a name,
// leftovers of incomplete earlier runs. The agent_id guard keeps
// user-submitted listings out of reach.
func (s *ListingStore) PurgePlaceholders(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
DELETE FROM listings WHERE name IS NULL AND agent_id IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("purge placeholder listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func marshalPhotos(photos []string) (any, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(photos)
	if err != nil {
		return nil, err
	}
	return data, nil
}
