package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/andresuchdata/inventory-analytics/internal/storage"
	"github.com/xuri/excelize/v2"
)

// readTable splits a CSV or XLSX export into its header row and data rows.
// XLSX files are read from their first sheet.
func readTable(name string, data []byte) ([]string, [][]string, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		rows, err = readXLSX(data)
	} else {
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header row", name)
	}

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, row)
	}
	return rows[0], records, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// tableSource resolves import names either on the local filesystem or, when
// a store is configured, as object keys.
type tableSource struct {
	store storage.ObjectStore
}

func (s tableSource) read(ctx context.Context, name string) ([]byte, error) {
	if s.store != nil {
		return s.store.GetObject(ctx, name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return data, nil
}

// names expands a prefix into every CSV or XLSX object below it, sorted by
// key so monthly exports load in order. Without a store the name is used as is.
func (s tableSource) names(ctx context.Context, name string, prefix bool) ([]string, error) {
	if !prefix || s.store == nil {
		return []string{name}, nil
	}

	objects, err := s.store.ListObjects(ctx, name)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, object := range objects {
		switch strings.ToLower(path.Ext(object.Key)) {
		case ".csv", ".xlsx":
			keys = append(keys, object.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
