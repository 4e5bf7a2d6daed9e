package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the prefixed tables if they do not exist. Run once at
// startup; safe to call repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				name VARCHAR(255) NOT NULL DEFAULT '',
				avatar_url VARCHAR(500),
				is_premium BOOLEAN NOT NULL DEFAULT FALSE,
				prompts_used INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Users),
		// owner_id is the auth provider's subject; the local users mirror is
		// written lazily, so no FK to it.
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				owner_id UUID,
				kind VARCHAR(10) NOT NULL,
				title VARCHAR(255) NOT NULL,
				content JSONB NOT NULL DEFAULT '{}',
				current_version INTEGER NOT NULL DEFAULT 1,
				schema_version VARCHAR(10) NOT NULL DEFAULT '1.0.0',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Documents),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_owner_updated
			ON %s (owner_id, updated_at DESC)
		`, tables.Documents, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				version INTEGER NOT NULL,
				parent_version INTEGER,
				snapshot JSONB NOT NULL,
				diff JSONB,
				author VARCHAR(10) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT uq_%s_document_version UNIQUE (document_id, version)
			)
		`, tables.Versions, tables.Documents, tables.Versions),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
