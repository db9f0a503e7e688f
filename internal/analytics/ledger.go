package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/internal/repository"
)

const dateLayout = "2006-01-02"

// Ledger stages reported in DataAccessError.
const (
	StageListTransactions = "list_transactions"
	StageLookupItems      = "lookup_items"
	StageListItems        = "list_items"
)

// Snapshot is one consistent read of the item store and ledger window.
type Snapshot struct {
	Today      time.Time
	WindowDays int
	Items      []domain.Item
	Histories  []domain.ItemHistory
}

// LedgerReader turns raw ledger rows into per-item daily series.
type LedgerReader struct {
	repo repository.LedgerRepository
}

func NewLedgerReader(repo repository.LedgerRepository) *LedgerReader {
	return &LedgerReader{repo: repo}
}

// LoadHistory returns a zero-filled history for every item that has at least
// one transaction in [today-windowDays, today), ordered by item id.
func (r *LedgerReader) LoadHistory(ctx context.Context, today time.Time, windowDays int) ([]domain.ItemHistory, error) {
	if windowDays <= 0 {
		return nil, domain.NewValidationError("window_days", "must be greater than 0")
	}
	from, to := Window(today, windowDays)

	txs, err := r.repo.ListTransactions(ctx, domain.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, wrapDataAccess(ctx, StageListTransactions, err)
	}
	if len(txs) == 0 {
		return []domain.ItemHistory{}, nil
	}

	items, err := r.repo.GetItemsByIDs(ctx, distinctItemIDs(txs))
	if err != nil {
		return nil, wrapDataAccess(ctx, StageLookupItems, err)
	}

	return BuildHistories(items, txs, today, windowDays), nil
}

// LoadSnapshot reads every item plus the histories of the active ones.
func (r *LedgerReader) LoadSnapshot(ctx context.Context, today time.Time, windowDays int) (*Snapshot, error) {
	if windowDays <= 0 {
		return nil, domain.NewValidationError("window_days", "must be greater than 0")
	}
	items, err := r.repo.ListItems(ctx)
	if err != nil {
		return nil, wrapDataAccess(ctx, StageListItems, err)
	}

	from, to := Window(today, windowDays)
	txs, err := r.repo.ListTransactions(ctx, domain.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, wrapDataAccess(ctx, StageListTransactions, err)
	}

	return &Snapshot{
		Today:      DateOnly(today),
		WindowDays: windowDays,
		Items:      items,
		Histories:  BuildHistories(items, txs, today, windowDays),
	}, nil
}

// BuildHistories buckets txs per item and per day over the window ending
// before today. Items without transactions in the window are left out;
// transactions outside the window or for unknown items are ignored.
func BuildHistories(items []domain.Item, txs []domain.Transaction, today time.Time, windowDays int) []domain.ItemHistory {
	if windowDays <= 0 {
		return []domain.ItemHistory{}
	}
	from, _ := Window(today, windowDays)

	itemsByID := make(map[int64]domain.Item, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
	}

	buckets := make(map[int64][]domain.DailyBucket)
	for _, tx := range txs {
		item, ok := itemsByID[tx.ItemID]
		if !ok {
			continue
		}
		idx := dayIndex(from, tx.Date)
		if idx < 0 || idx >= windowDays {
			continue
		}

		series, ok := buckets[item.ID]
		if !ok {
			series = emptyBuckets(from, windowDays)
			buckets[item.ID] = series
		}

		switch tx.Direction {
		case domain.DirectionIn:
			series[idx].QuantityIn += tx.Quantity
		case domain.DirectionOut:
			series[idx].QuantityOut += tx.Quantity
		}
	}

	histories := make([]domain.ItemHistory, 0, len(buckets))
	for id, series := range buckets {
		item := itemsByID[id]
		histories = append(histories, domain.ItemHistory{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Category:     categoryOrDefault(item.Category),
			CurrentStock: item.CurrentStock,
			DailyBuckets: series,
		})
	}
	sort.Slice(histories, func(i, j int) bool { return histories[i].ItemID < histories[j].ItemID })

	return histories
}

// HistoryIndex maps item id to its position in histories.
func HistoryIndex(histories []domain.ItemHistory) map[int64]int {
	index := make(map[int64]int, len(histories))
	for i, h := range histories {
		index[h.ItemID] = i
	}
	return index
}

// Window returns the half-open range [today-windowDays, today) at day precision.
func Window(today time.Time, windowDays int) (time.Time, time.Time) {
	to := DateOnly(today)
	return to.AddDate(0, 0, -windowDays), to
}

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func emptyBuckets(from time.Time, windowDays int) []domain.DailyBucket {
	series := make([]domain.DailyBucket, windowDays)
	for i := range series {
		series[i].Date = from.AddDate(0, 0, i).Format(dateLayout)
	}
	return series
}

// dayIndex counts calendar days from start to t. Both sides are UTC
// midnights so the division is exact.
func dayIndex(start, t time.Time) int {
	return int(DateOnly(t).Sub(start).Hours() / 24)
}

func distinctItemIDs(txs []domain.Transaction) []int64 {
	seen := make(map[int64]struct{}, len(txs))
	ids := make([]int64, 0)
	for _, tx := range txs {
		if _, ok := seen[tx.ItemID]; ok {
			continue
		}
		seen[tx.ItemID] = struct{}{}
		ids = append(ids, tx.ItemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func categoryOrDefault(category string) string {
	if category == "" {
		return domain.DefaultCategory
	}
	return category
}

// wrapDataAccess tags a store failure with its stage and marks it retryable.
// A caller-side cancellation is passed through untouched.
func wrapDataAccess(ctx context.Context, stage string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return &domain.DataAccessError{Stage: stage, Err: err}
	}
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return &domain.DataAccessError{Stage: stage, Err: err}
}
