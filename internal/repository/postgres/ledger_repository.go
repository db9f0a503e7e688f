package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/internal/repository"
)

var itemColumns = []string{"id", "name", "COALESCE(category, '') AS category", "COALESCE(unit, '') AS unit", "current_stock", "unit_price"}

var transactionColumns = []string{"id", "item_id", "direction", "quantity", "txn_date", "note", "user_id"}

type ledgerRepository struct {
	db      *DB
	builder squirrel.StatementBuilderType
}

func NewLedgerRepository(db *DB) repository.LedgerRepository {
	return &ledgerRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ledgerRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	query, args, err := r.builder.Select(itemColumns...).From("items").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building items query: %w", err)
	}

	items := []domain.Item{}
	err = r.db.withSlot(ctx, func() error {
		return r.db.SelectContext(ctx, &items, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return items, nil
}

func (r *ledgerRepository) GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}

	query, args, err := r.builder.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building items query: %w", err)
	}

	items := []domain.Item{}
	err = r.db.withSlot(ctx, func() error {
		return r.db.SelectContext(ctx, &items, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error getting items by ids: %w", err)
	}
	return items, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query, args, err := buildTransactionQuery(r.builder, filter)
	if err != nil {
		return nil, fmt.Errorf("error building transactions query: %w", err)
	}

	txs := []domain.Transaction{}
	err = r.db.withSlot(ctx, func() error {
		return r.db.SelectContext(ctx, &txs, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return txs, nil
}

// buildTransactionQuery renders the ledger read for filter. Zero bounds and
// empty fields are left unconstrained.
func buildTransactionQuery(builder squirrel.StatementBuilderType, filter domain.TransactionFilter) (string, []interface{}, error) {
	q := builder.Select(transactionColumns...).From("transactions")

	if len(filter.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemIDs})
	}
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"txn_date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.Lt{"txn_date": filter.To})
	}
	if filter.Direction != "" {
		q = q.Where(squirrel.Eq{"direction": string(filter.Direction)})
	}

	return q.OrderBy("txn_date", "id").ToSql()
}
