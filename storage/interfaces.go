package storage

import "aoe2-units/models"

// RawStorage stores the stats table rows as scraped
type RawStorage interface {
	SaveRaw(raw []*models.RawUnit) error
}

// UnitSink stores the final, enriched unit collection
type UnitSink interface {
	SaveUnits(units []*models.Unit) error
	Close() error
}
