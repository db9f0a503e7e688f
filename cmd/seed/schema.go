package main

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		unit TEXT,
		current_stock INTEGER NOT NULL DEFAULT 0,
		unit_price NUMERIC(14, 2)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		item_id BIGINT NOT NULL REFERENCES items(id),
		direction TEXT NOT NULL CHECK (direction IN ('in', 'out')),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		txn_date DATE NOT NULL,
		note TEXT,
		user_id BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date_item ON transactions (txn_date, item_id)`,
}

func createSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
