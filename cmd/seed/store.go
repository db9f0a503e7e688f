package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/pkg/logger"
)

const upsertItemSQL = `
	INSERT INTO items (id, name, category, unit, current_stock, unit_price)
	VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		unit = EXCLUDED.unit,
		current_stock = EXCLUDED.current_stock,
		unit_price = EXCLUDED.unit_price`

const insertTransactionSQL = `
	INSERT INTO transactions (item_id, direction, quantity, txn_date, note, user_id)
	VALUES ($1, $2, $3, $4, $5, $6)`

func upsertItems(ctx context.Context, tx *sql.Tx, items []domain.Item) error {
	stmt, err := tx.PrepareContext(ctx, upsertItemSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name, item.Category, item.Unit, item.CurrentStock, item.UnitPrice); err != nil {
			return fmt.Errorf("failed to upsert item %d: %w", item.ID, err)
		}
	}

	// explicit ids leave the sequence behind
	if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('items', 'id'), COALESCE((SELECT MAX(id) FROM items), 1))`); err != nil {
		return fmt.Errorf("failed to sync item sequence: %w", err)
	}

	logger.Log.Info().Int("rows", len(items)).Msg("items seeded")
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, txs []domain.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, insertTransactionSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction statement: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx, t.ItemID, string(t.Direction), t.Quantity, t.Date.Format(dateLayout), t.Note, t.UserID); err != nil {
			return fmt.Errorf("failed to insert transaction %d for item %d: %w", i, t.ItemID, err)
		}
		if (i+1)%5000 == 0 {
			logger.Log.Debug().Int("rows", i+1).Msg("transactions inserted")
		}
	}

	logger.Log.Info().Int("rows", len(txs)).Msg("transactions seeded")
	return nil
}
