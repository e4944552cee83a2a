package services

import (
	"errors"
	"testing"

	"aoe2-units/models"
	"aoe2-units/utils"

	"github.com/stretchr/testify/require"
)

func rawRow(row int, cells ...string) *models.RawUnit {
	return &models.RawUnit{Row: row, Cells: cells}
}

var archerCells = []string{
	"Archer", "Archer", "Foot", "Archery Range", "Feudal",
	"0", "25", "45", "70", "35", "2", "0.35", "0.96", "6", "4",
	"-", "4", "4", "80%", "0", "0",
}

func TestCleanParsesTypedFields(t *testing.T) {
	cleaner := NewDataCleaner(utils.NewNopLogger())

	units, err := cleaner.Clean([]*models.RawUnit{rawRow(1, archerCells...)})
	require.NoError(t, err)
	require.Len(t, units, 1)

	u := units[0]
	require.Equal(t, "archer", u.Key)
	require.Equal(t, "Archery Range", u.Building)
	require.Equal(t, 25, *u.Wood)
	require.Equal(t, 70, *u.TotalCost)
	require.Equal(t, 0.96, *u.MovementSpeed)
	require.Nil(t, u.RangeMin)
	require.Equal(t, 0.8, *u.Accuracy)
	require.Nil(t, u.WikiURL)
	require.Equal(t, models.LabelsUnset, u.StrongAgainst.State())
}

func TestCleanFailsWholeBatchOnBadCell(t *testing.T) {
	cleaner := NewDataCleaner(utils.NewNopLogger())

	bad := append([]string{}, archerCells...)
	bad[14] = "lots"
	_, err := cleaner.Clean([]*models.RawUnit{
		rawRow(1, archerCells...),
		rawRow(2, bad...),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrParse))

	var parseErr *models.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 2, parseErr.Row)
	require.Equal(t, "hp", parseErr.Field)
	require.Equal(t, "lots", parseErr.Raw)
}
