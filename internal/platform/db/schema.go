package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for accounts, transaction types, journal entries and
// journal line items.
//
//go:embed schema.sql
var Schema string

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("platform/db: ensure schema: %w", err)
	}
	return nil
}
