package models

import (
	"encoding/json"
	"slices"
	"strings"
)

const (
	FieldStrongAgainst = "strong_against"
	FieldWeakAgainst   = "weak_against"

	// ElitePrefix marks the upgraded variant of a base unit, e.g. elite_skirmisher.
	ElitePrefix = "elite_"
)

// Unit is one typed record of the stats table plus the wiki enrichment.
// Field order follows Schema.
type Unit struct {
	Name          string   `json:"name"`
	Type1         string   `json:"type1"`
	Type2         string   `json:"type2"`
	Building      string   `json:"building"`
	Age           string   `json:"age"`
	Food          *int     `json:"food"`
	Wood          *int     `json:"wood"`
	Gold          *int     `json:"gold"`
	TotalCost     *int     `json:"total_cost"`
	BuildTime     *float64 `json:"build_time"`
	AttackSpeed   *float64 `json:"attack_speed"`
	Delay         *float64 `json:"delay"`
	MovementSpeed *float64 `json:"movement_speed"`
	LineOfSight   *int     `json:"line_of_sight"`
	HP            *int     `json:"hp"`
	RangeMin      *float64 `json:"range_min"`
	Range         *float64 `json:"range"`
	Damage        *int     `json:"damage"`
	Accuracy      *float64 `json:"accuracy"`
	ArmorMelee    *int     `json:"armor_melee"`
	ArmorPierce   *int     `json:"armor_pierce"`

	Key           string  `json:"key"`
	WikiURL       *string `json:"wiki_url"`
	StrongAgainst Labels  `json:"strong_against,omitzero"`
	WeakAgainst   Labels  `json:"weak_against,omitzero"`
}

// GenerateKey lowercases the name and replaces every space with an underscore.
func GenerateKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// IsElite reports whether the unit is the elite variant of another unit.
func (u *Unit) IsElite() bool {
	return strings.HasPrefix(u.Key, ElitePrefix)
}

// BaseKey returns the key of the base unit for an elite unit.
func (u *Unit) BaseKey() string {
	return strings.TrimPrefix(u.Key, ElitePrefix)
}

// Labels returns the label attribute with the given JSON name.
func (u *Unit) Labels(name string) (Labels, bool) {
	switch name {
	case FieldStrongAgainst:
		return u.StrongAgainst, true
	case FieldWeakAgainst:
		return u.WeakAgainst, true
	}
	return Labels{}, false
}

// LabelState distinguishes "never fetched" from "fetched and found nothing".
type LabelState int

const (
	LabelsUnset LabelState = iota
	LabelsEmpty
	LabelsPopulated
)

func (s LabelState) String() string {
	switch s {
	case LabelsEmpty:
		return "empty"
	case LabelsPopulated:
		return "populated"
	}
	return "unset"
}

// Labels is an ordered list of unit names or classes taken from the wiki.
// The zero value is unset and is left out of the JSON output.
type Labels struct {
	values []string
	set    bool
}

func NewLabels(values ...string) Labels {
	if values == nil {
		values = []string{}
	}
	return Labels{values: slices.Clone(values), set: true}
}

func (l Labels) State() LabelState {
	switch {
	case !l.set:
		return LabelsUnset
	case len(l.values) == 0:
		return LabelsEmpty
	}
	return LabelsPopulated
}

func (l Labels) Values() []string {
	return slices.Clone(l.values)
}

func (l Labels) Len() int {
	return len(l.values)
}

func (l Labels) Clone() Labels {
	return Labels{values: slices.Clone(l.values), set: l.set}
}

func (l Labels) Equal(other Labels) bool {
	return l.set == other.set && slices.Equal(l.values, other.values)
}

func (l Labels) IsZero() bool {
	return !l.set
}

func (l Labels) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	values := l.values
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func (l *Labels) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = Labels{}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*l = NewLabels(values...)
	return nil
}
