package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// FieldKind tells ParseTyped how to read a raw cell.
type FieldKind int

const (
	Text FieldKind = iota
	Integer
	Real
	// Percent is a real number stored as a fraction; "45%" becomes 0.45.
	Percent
)

func (k FieldKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Percent:
		return "percent"
	}
	return "text"
}

// ParseError describes a stats cell that could not be read as its declared kind.
type ParseError struct {
	Row   int
	Field string
	Kind  FieldKind
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: field %s: cannot parse %q as %s: %v", e.Row, e.Field, e.Raw, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ParseTyped converts a raw cell to the value of the given kind. It returns
// nil for an empty cell or the "-" placeholder, a string for Text, an int for
// Integer and a float64 for Real and Percent.
func ParseTyped(raw string, kind FieldKind) (any, error) {
	if kind == Text {
		return raw, nil
	}
	if raw == "" || raw == "-" {
		return nil, nil
	}

	if number, ok := strings.CutSuffix(raw, "%"); ok {
		if kind == Integer {
			return nil, errors.New("percentage in integer field")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
		if err != nil {
			return nil, err
		}
		return f / 100.0, nil
	}

	switch kind {
	case Integer:
		return strconv.Atoi(raw)
	default:
		return strconv.ParseFloat(raw, 64)
	}
}

// FieldSpec describes one column of the stats table.
type FieldSpec struct {
	Name   string
	Kind   FieldKind
	assign func(u *Unit, v any)
}

// Assign stores a value produced by ParseTyped into the unit.
func (f FieldSpec) Assign(u *Unit, v any) {
	f.assign(u, v)
}

// Schema lists the stats table columns in page order.
var Schema = []FieldSpec{
	text("name", func(u *Unit) *string { return &u.Name }),
	text("type1", func(u *Unit) *string { return &u.Type1 }),
	text("type2", func(u *Unit) *string { return &u.Type2 }),
	text("building", func(u *Unit) *string { return &u.Building }),
	text("age", func(u *Unit) *string { return &u.Age }),
	integer("food", func(u *Unit) **int { return &u.Food }),
	integer("wood", func(u *Unit) **int { return &u.Wood }),
	integer("gold", func(u *Unit) **int { return &u.Gold }),
	integer("total_cost", func(u *Unit) **int { return &u.TotalCost }),
	decimal("build_time", Real, func(u *Unit) **float64 { return &u.BuildTime }),
	decimal("attack_speed", Real, func(u *Unit) **float64 { return &u.AttackSpeed }),
	decimal("delay", Real, func(u *Unit) **float64 { return &u.Delay }),
	decimal("movement_speed", Real, func(u *Unit) **float64 { return &u.MovementSpeed }),
	integer("line_of_sight", func(u *Unit) **int { return &u.LineOfSight }),
	integer("hp", func(u *Unit) **int { return &u.HP }),
	decimal("range_min", Real, func(u *Unit) **float64 { return &u.RangeMin }),
	decimal("range", Real, func(u *Unit) **float64 { return &u.Range }),
	integer("damage", func(u *Unit) **int { return &u.Damage }),
	decimal("accuracy", Percent, func(u *Unit) **float64 { return &u.Accuracy }),
	integer("armor_melee", func(u *Unit) **int { return &u.ArmorMelee }),
	integer("armor_pierce", func(u *Unit) **int { return &u.ArmorPierce }),
}

// SchemaNames returns the column names in Schema order.
func SchemaNames() []string {
	names := make([]string, len(Schema))
	for i, f := range Schema {
		names[i] = f.Name
	}
	return names
}

func text(name string, field func(*Unit) *string) FieldSpec {
	return FieldSpec{Name: name, Kind: Text, assign: func(u *Unit, v any) {
		s, _ := v.(string)
		*field(u) = s
	}}
}

func integer(name string, field func(*Unit) **int) FieldSpec {
	return FieldSpec{Name: name, Kind: Integer, assign: func(u *Unit, v any) {
		n, ok := v.(int)
		if !ok {
			*field(u) = nil
			return
		}
		*field(u) = &n
	}}
}

func decimal(name string, kind FieldKind, field func(*Unit) **float64) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, assign: func(u *Unit, v any) {
		f, ok := v.(float64)
		if !ok {
			*field(u) = nil
			return
		}
		*field(u) = &f
	}}
}
