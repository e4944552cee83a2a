package services

import (
	"errors"
	"fmt"

	"aoe2-units/models"
	"aoe2-units/utils"
)

// DataCleaner converts raw stats rows into typed Unit records
type DataCleaner struct {
	logger *utils.Logger
}

// NewDataCleaner creates a new DataCleaner
func NewDataCleaner(logger *utils.Logger) *DataCleaner {
	return &DataCleaner{logger: logger}
}

// Clean parses every cell according to models.Schema. A single bad cell
// fails the whole batch; the returned error lists every bad cell found.
func (c *DataCleaner) Clean(raw []*models.RawUnit) ([]*models.Unit, error) {
	seen := utils.NewTracker()
	units := make([]*models.Unit, 0, len(raw))
	var errs []error

	for _, r := range raw {
		unit, err := c.cleanRow(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !seen.Add(unit.Key) {
			c.logger.Warn("Duplicate unit key %q at row %d", unit.Key, r.Row)
		}
		units = append(units, unit)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%d of %d rows could not be parsed: %w", len(errs), len(raw), errors.Join(errs...))
	}

	c.logger.Info("Parsed %d units from %d raw rows", len(units), len(raw))
	return units, nil
}

func (c *DataCleaner) cleanRow(r *models.RawUnit) (*models.Unit, error) {
	unit := &models.Unit{}
	var errs []error

	for i, field := range models.Schema {
		cell := r.Cell(i)
		v, err := models.ParseTyped(cell, field.Kind)
		if err != nil {
			errs = append(errs, &models.ParseError{
				Row:   r.Row,
				Field: field.Name,
				Kind:  field.Kind,
				Raw:   cell,
				Err:   err,
			})
			continue
		}
		field.Assign(unit, v)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	unit.Key = models.GenerateKey(unit.Name)
	return unit, nil
}
