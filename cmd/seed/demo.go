package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

var demoCatalog = []struct {
	name     string
	category string
	unit     string
	price    float64
}{
	{"Copy paper A4", "Office", "ream", 4.5},
	{"Toner cartridge", "Office", "pcs", 62},
	{"Ballpoint pen", "Stationery", "box", 3.2},
	{"Archive box", "Storage", "pcs", 1.8},
	{"Nitrile gloves", "Safety", "box", 7.9},
	{"Hand sanitizer", "Hygiene", "bottle", 2.4},
	{"Cable ties", "Maintenance", "pack", 1.1},
	{"Printer ink", "Office", "pcs", 18.5},
}

// generateDemoLedger builds a deterministic ledger of days entries ending
// the day before today. Every fifth item goes quiet after the first month
// so dead stock shows up in the movement report.
func generateDemoLedger(seed int64, itemCount, days int, today time.Time) ([]domain.Item, []domain.Transaction) {
	if itemCount <= 0 || days <= 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(seed))
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	items := make([]domain.Item, 0, itemCount)
	var txs []domain.Transaction

	for i := 0; i < itemCount; i++ {
		entry := demoCatalog[i%len(demoCatalog)]
		price := entry.price

		item := domain.Item{
			ID:       int64(i + 1),
			Name:     entry.name,
			Category: entry.category,
			Unit:     entry.unit,
		}
		if i >= len(demoCatalog) {
			item.Name = fmt.Sprintf("%s #%d", entry.name, i/len(demoCatalog)+1)
		}
		item.UnitPrice = &price

		rate := 1 + rng.Intn(8)
		reorderAt := rate * 7
		stock := rate * 30

		txs = append(txs, domain.Transaction{
			ItemID:    item.ID,
			Direction: domain.DirectionIn,
			Quantity:  stock,
			Date:      start,
		})

		quiet := i%5 == 4
		for d := 0; d < days; d++ {
			date := start.AddDate(0, 0, d)
			if quiet && d > 30 {
				break
			}

			// weekends are slow
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				if rng.Intn(4) != 0 {
					continue
				}
			}

			qty := rng.Intn(2*rate + 1)
			// rare bulk withdrawals feed the anomaly detector
			if rng.Intn(60) == 0 {
				qty += rate * 6
			}
			if qty > stock {
				qty = stock
			}
			if qty > 0 {
				stock -= qty
				txs = append(txs, domain.Transaction{
					ItemID:    item.ID,
					Direction: domain.DirectionOut,
					Quantity:  qty,
					Date:      date,
				})
			}

			if stock < reorderAt && d < days-1 {
				restock := rate * 30
				stock += restock
				txs = append(txs, domain.Transaction{
					ItemID:    item.ID,
					Direction: domain.DirectionIn,
					Quantity:  restock,
					Date:      date.AddDate(0, 0, 1),
				})
			}
		}

		item.CurrentStock = stock
		items = append(items, item)
	}

	return items, txs
}
