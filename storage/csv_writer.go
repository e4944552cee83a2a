package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"aoe2-units/models"
	"aoe2-units/utils"
)

// CSVWriter handles writing raw stats rows to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// SaveRaw implements RawStorage
func (w *CSVWriter) SaveRaw(raw []*models.RawUnit) error {
	return w.WriteRawUnits(raw)
}

// WriteRawUnits writes the schema header followed by one line per raw row
func (w *CSVWriter) WriteRawUnits(raw []*models.RawUnit) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(models.SchemaNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range raw {
		row := make([]string, len(models.Schema))
		for i := range row {
			row[i] = r.Cell(i)
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row %d: %v", r.Row, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}

	w.logger.Info("Raw stats written to: %s (%d rows)", w.filePath, len(raw))
	return nil
}
