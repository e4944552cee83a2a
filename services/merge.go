package services

import (
	"errors"
	"fmt"

	"aoe2-units/models"
)

// UnitLookup finds a unit by key; *storage.UnitStore satisfies it.
type UnitLookup interface {
	Get(key string) (*models.Unit, error)
}

// PropagateElite copies strong_against and weak_against from every base unit
// to its elite_ variant. Elite units without a base are reported as
// ErrNotFound after all other pairs have been merged.
func PropagateElite(units []*models.Unit, lookup UnitLookup) error {
	var errs []error
	for _, unit := range units {
		if !unit.IsElite() {
			continue
		}
		base, err := lookup.Get(unit.BaseKey())
		if err != nil {
			errs = append(errs, fmt.Errorf("base of %s: %w", unit.Key, err))
			continue
		}
		unit.StrongAgainst = base.StrongAgainst.Clone()
		unit.WeakAgainst = base.WeakAgainst.Clone()
	}
	return errors.Join(errs...)
}
