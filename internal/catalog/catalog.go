// Package catalog imports menu items from gzipped CSV files on local disk or S3.
//
// Each file holds rows of "id,name,category,price,available". A header row whose
// first column is "id" is skipped, and a blank availability column means available.
package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bistro/internal/model"

	"github.com/shopspring/decimal"
)

// Loader reads one catalog file.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.MenuItem, error)
}

// Store receives the merged catalog.
type Store interface {
	Upsert(ctx context.Context, items []model.MenuItem) error
}

// ErrMalformedRow is returned for a row that cannot be parsed into a menu item.
var ErrMalformedRow = errors.New("malformed catalog row")

// readGzipCSV decodes a gzipped CSV stream into menu items.
func readGzipCSV(ctx context.Context, r io.Reader, source string) ([]model.MenuItem, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var items []model.MenuItem
	for line := 1; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", source, err)
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "id") {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		item, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func parseRecord(record []string) (model.MenuItem, error) {
	if len(record) < 4 || len(record) > 5 {
		return model.MenuItem{}, fmt.Errorf("%w: expected 4 or 5 columns, got %d", ErrMalformedRow, len(record))
	}

	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	item := model.MenuItem{
		ID:        record[0],
		Name:      record[1],
		Category:  record[2],
		Available: true,
	}
	if item.ID == "" || item.Name == "" {
		return model.MenuItem{}, fmt.Errorf("%w: id and name are required", ErrMalformedRow)
	}

	price, err := decimal.NewFromString(record[3])
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("%w: invalid price %q", ErrMalformedRow, record[3])
	}
	if price.IsNegative() {
		return model.MenuItem{}, fmt.Errorf("%w: negative price %s", ErrMalformedRow, price)
	}
	item.Price = price

	if len(record) == 5 && record[4] != "" {
		available, err := strconv.ParseBool(record[4])
		if err != nil {
			return model.MenuItem{}, fmt.Errorf("%w: invalid availability %q", ErrMalformedRow, record[4])
		}
		item.Available = available
	}

	return item, nil
}
