package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"bistro/internal/config"
)

// Sample catalog files for local runs:
//
//	menu_base.csv.gz      the standing menu
//	menu_specials.csv.gz  seasonal additions plus a price override for M002
//
// Importing both in that order leaves Garlic Bread at 4.50 and the lobster
// dish unavailable.
func main() {
	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create directory")
	}

	header := []string{"id", "name", "category", "price", "available"}
	files := map[string][][]string{
		"menu_base.csv.gz": {
			{"M001", "Margherita", "pizza", "12.50", "true"},
			{"M002", "Garlic Bread", "starters", "5.00", "true"},
			{"M003", "Tiramisu", "desserts", "7.50", "true"},
			{"M004", "Lobster Linguine", "mains", "32.00", "false"},
			{"M005", "Diavola", "pizza", "14.00", "true"},
			{"M006", "Sparkling Water", "drinks", "2.50", ""},
		},
		"menu_specials.csv.gz": {
			{"M002", "Garlic Bread", "starters", "4.50", "true"},
			{"S101", "Pumpkin Risotto", "mains", "18.00", "true"},
			{"S102", "Affogato", "desserts", "6.00", "true"},
		},
	}

	for filename, rows := range files {
		path := filepath.Join(dataDir, filename)

		if err := writeCatalogFile(path, header, rows); err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("failed to write catalog file")
		}

		logger.Info().Str("file", path).Int("items", len(rows)).Msg("catalog file created")
	}

	logger.Info().Msg("run the API with CATALOG_FILES=data/catalog/menu_base.csv.gz,data/catalog/menu_specials.csv.gz")
}

func writeCatalogFile(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
