package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTyped(t *testing.T) {
	testCases := []struct {
		raw      string
		kind     FieldKind
		expected any
	}{
		{raw: "", kind: Integer, expected: nil},
		{raw: "-", kind: Real, expected: nil},
		{raw: "-", kind: Percent, expected: nil},
		{raw: "45%", kind: Real, expected: 0.45},
		{raw: "80%", kind: Percent, expected: 0.8},
		{raw: "Infantry", kind: Text, expected: "Infantry"},
		{raw: "", kind: Text, expected: ""},
		{raw: "-", kind: Text, expected: "-"},
		{raw: "12", kind: Integer, expected: 12},
		{raw: "0.96", kind: Real, expected: 0.96},
		{raw: "1", kind: Percent, expected: 1.0},
	}

	for _, test := range testCases {
		v, err := ParseTyped(test.raw, test.kind)
		require.NoError(t, err, "%q as %s", test.raw, test.kind)
		require.Equal(t, test.expected, v, "%q as %s", test.raw, test.kind)
	}
}

func TestParseTypedRejects(t *testing.T) {
	testCases := []struct {
		raw  string
		kind FieldKind
	}{
		{raw: "twelve", kind: Integer},
		{raw: "1.5", kind: Integer},
		{raw: "fast", kind: Real},
		{raw: "50%", kind: Integer},
		{raw: "x%", kind: Percent},
	}

	for _, test := range testCases {
		_, err := ParseTyped(test.raw, test.kind)
		require.Error(t, err, "%q as %s", test.raw, test.kind)
	}
}

func TestParseErrorMatchesSentinel(t *testing.T) {
	_, cause := ParseTyped("abc", Integer)
	err := error(&ParseError{Row: 3, Field: "hp", Kind: Integer, Raw: "abc", Err: cause})

	require.True(t, errors.Is(err, ErrParse))
	require.Contains(t, err.Error(), "row 3")
	require.Contains(t, err.Error(), "hp")
}

func TestSchemaOrder(t *testing.T) {
	names := SchemaNames()
	require.Len(t, names, 21)
	require.Equal(t, "name", names[0])
	require.Equal(t, "accuracy", names[18])
	require.Equal(t, "armor_pierce", names[20])
	require.Equal(t, Percent, Schema[18].Kind)
}

func TestFieldSpecAssign(t *testing.T) {
	u := &Unit{}
	for _, f := range Schema {
		switch f.Name {
		case "name":
			f.Assign(u, "Archer")
		case "hp":
			f.Assign(u, 4)
		case "accuracy":
			f.Assign(u, 0.8)
		case "range_min":
			f.Assign(u, nil)
		}
	}

	require.Equal(t, "Archer", u.Name)
	require.NotNil(t, u.HP)
	require.Equal(t, 4, *u.HP)
	require.NotNil(t, u.Accuracy)
	require.Equal(t, 0.8, *u.Accuracy)
	require.Nil(t, u.RangeMin)
}
