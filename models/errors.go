package models

import "errors"

// ErrNotFound is returned when a unit key has no record.
var ErrNotFound = errors.New("unit not found")
