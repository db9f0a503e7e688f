// internal/domain/models.go
package domain

import "time"

// Direction tells whether a ledger entry added or removed stock.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Item is a stock-keeping unit as owned by the inventory store.
type Item struct {
	ID           int64    `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Category     string   `json:"category" db:"category"`
	Unit         string   `json:"unit" db:"unit"`
	CurrentStock int      `json:"current_stock" db:"current_stock"`
	UnitPrice    *float64 `json:"unit_price,omitempty" db:"unit_price"`
}

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID        int64     `json:"id" db:"id"`
	ItemID    int64     `json:"item_id" db:"item_id"`
	Direction Direction `json:"direction" db:"direction"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Date      time.Time `json:"date" db:"txn_date"`
	Note      *string   `json:"note,omitempty" db:"note"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
}

// TransactionFilter selects ledger entries in the half-open range [From, To).
type TransactionFilter struct {
	ItemIDs   []int64
	From      time.Time
	To        time.Time
	Direction Direction
}

// DailyBucket aggregates one item's ledger activity for a calendar date.
type DailyBucket struct {
	Date        string `json:"date"`
	QuantityIn  int    `json:"quantity_in"`
	QuantityOut int    `json:"quantity_out"`
}

// ItemHistory is the zero-filled daily series of an item over an analysis window.
type ItemHistory struct {
	ItemID       int64         `json:"item_id"`
	ItemName     string        `json:"item_name"`
	Category     string        `json:"category"`
	CurrentStock int           `json:"current_stock"`
	DailyBuckets []DailyBucket `json:"daily_buckets"`
}

// OutSeries returns the outgoing quantities in chronological order.
func (h ItemHistory) OutSeries() []float64 {
	series := make([]float64, len(h.DailyBuckets))
	for i, b := range h.DailyBuckets {
		series[i] = float64(b.QuantityOut)
	}
	return series
}

// DefaultCategory is used for items stored without a category.
const DefaultCategory = "Uncategorized"
