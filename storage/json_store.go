package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aoe2-units/models"
	"aoe2-units/utils"
)

// UnitStore owns the unit collection for one run: loaded once, mutated in
// place, saved once.
type UnitStore struct {
	units  []*models.Unit
	index  map[string]*models.Unit
	logger *utils.Logger
}

// NewUnitStore creates an empty store
func NewUnitStore(logger *utils.Logger) *UnitStore {
	return &UnitStore{
		index:  make(map[string]*models.Unit),
		logger: logger,
	}
}

// Load replaces the collection with the JSON array stored at path
func (s *UnitStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read units file: %w", err)
	}

	var units []*models.Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return fmt.Errorf("failed to decode units file %s: %w", path, err)
	}
	for i, u := range units {
		if u == nil {
			return fmt.Errorf("units file %s: element %d is null", path, i)
		}
	}

	s.units = nil
	s.index = make(map[string]*models.Unit, len(units))
	s.Add(units...)

	s.logger.Info("Loaded %d units from %s", len(units), path)
	return nil
}

// Save writes the collection as indented JSON, replacing the file at path
func (s *UnitStore) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	units := s.units
	if units == nil {
		units = []*models.Unit{}
	}
	data, err := json.MarshalIndent(units, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode units: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write units file: %w", err)
	}

	s.logger.Info("Saved %d units to %s", len(s.units), path)
	return nil
}

// Add appends units in order. A later unit with an existing key takes over
// that key in the index.
func (s *UnitStore) Add(units ...*models.Unit) {
	for _, u := range units {
		if _, exists := s.index[u.Key]; exists {
			s.logger.Warn("Duplicate unit key %q, lookups will return the latest", u.Key)
		}
		s.index[u.Key] = u
		s.units = append(s.units, u)
	}
}

// Get returns the unit with the given key
func (s *UnitStore) Get(key string) (*models.Unit, error) {
	u, ok := s.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrNotFound, key)
	}
	return u, nil
}

// Units returns the collection in insertion order
func (s *UnitStore) Units() []*models.Unit {
	return s.units
}

// Len returns the number of units
func (s *UnitStore) Len() int {
	return len(s.units)
}
