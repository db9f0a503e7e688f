package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

const dateLayout = "2006-01-02"

// getColumnIndex returns the position of each wanted column in the header row.
func getColumnIndex(header []string, required, optional []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cols := make(map[string]int, len(required)+len(optional))
	for _, name := range required {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		cols[name] = i
	}
	for _, name := range optional {
		if i, ok := index[name]; ok {
			cols[name] = i
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseItems(header []string, records [][]string) ([]domain.Item, error) {
	cols, err := getColumnIndex(header,
		[]string{"id", "name", "current_stock"},
		[]string{"category", "unit", "unit_price"})
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(records))
	for n, record := range records {
		line := n + 2

		id, err := strconv.ParseInt(field(record, cols, "id"), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("line %d: invalid id %q", line, field(record, cols, "id"))
		}

		name := field(record, cols, "name")
		if name == "" {
			return nil, fmt.Errorf("line %d: name is required", line)
		}

		stock, err := strconv.Atoi(field(record, cols, "current_stock"))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("line %d: invalid current_stock %q", line, field(record, cols, "current_stock"))
		}

		item := domain.Item{
			ID:           id,
			Name:         name,
			Category:     field(record, cols, "category"),
			Unit:         field(record, cols, "unit"),
			CurrentStock: stock,
		}

		if raw := field(record, cols, "unit_price"); raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil || price < 0 {
				return nil, fmt.Errorf("line %d: invalid unit_price %q", line, raw)
			}
			item.UnitPrice = &price
		}

		items = append(items, item)
	}
	return items, nil
}

func parseTransactions(header []string, records [][]string) ([]domain.Transaction, error) {
	cols, err := getColumnIndex(header,
		[]string{"item_id", "direction", "quantity", "date"},
		[]string{"note", "user_id"})
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(records))
	for n, record := range records {
		line := n + 2

		itemID, err := strconv.ParseInt(field(record, cols, "item_id"), 10, 64)
		if err != nil || itemID <= 0 {
			return nil, fmt.Errorf("line %d: invalid item_id %q", line, field(record, cols, "item_id"))
		}

		direction := domain.Direction(strings.ToLower(field(record, cols, "direction")))
		if !direction.Valid() {
			return nil, fmt.Errorf("line %d: invalid direction %q", line, field(record, cols, "direction"))
		}

		qty, err := strconv.Atoi(field(record, cols, "quantity"))
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, field(record, cols, "quantity"))
		}

		date, err := time.Parse(dateLayout, field(record, cols, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, field(record, cols, "date"))
		}

		tx := domain.Transaction{
			ItemID:    itemID,
			Direction: direction,
			Quantity:  qty,
			Date:      date,
		}

		if note := field(record, cols, "note"); note != "" {
			tx.Note = &note
		}
		if raw := field(record, cols, "user_id"); raw != "" {
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid user_id %q", line, raw)
			}
			tx.UserID = &userID
		}

		txs = append(txs, tx)
	}
	return txs, nil
}
