package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Allergen is one of the fixed allergen tags a recipe can carry
type Allergen string

const (
	AllergenDairy     Allergen = "Dairy"
	AllergenEggs      Allergen = "Eggs"
	AllergenFish      Allergen = "Fish"
	AllergenPeanuts   Allergen = "Peanuts"
	AllergenSesame    Allergen = "Sesame"
	AllergenShellfish Allergen = "Shellfish"
	AllergenSoy       Allergen = "Soy"
	AllergenTreeNuts  Allergen = "TreeNuts"
	AllergenWheat     Allergen = "Wheat"
)

// Allergens lists every known allergen in declaration order
var Allergens = []Allergen{
	AllergenDairy,
	AllergenEggs,
	AllergenFish,
	AllergenPeanuts,
	AllergenSesame,
	AllergenShellfish,
	AllergenSoy,
	AllergenTreeNuts,
	AllergenWheat,
}

// Valid reports whether a is one of the known allergens
func (a Allergen) Valid() bool {
	for _, known := range Allergens {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAllergens converts raw tags into allergens, rejecting unknown values
func ParseAllergens(raw []string) ([]Allergen, error) {
	out := make([]Allergen, 0, len(raw))
	for _, r := range raw {
		a := Allergen(r)
		if !a.Valid() {
			return nil, fmt.Errorf("unknown allergen %q", r)
		}
		out = append(out, a)
	}
	return out, nil
}

// AllergenList stores allergens as a JSON array column
type AllergenList []Allergen

// Value implements the driver.Valuer interface
func (l AllergenList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *AllergenList) Scan(value interface{}) error {
	if value == nil {
		*l = AllergenList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported allergen list type %T", value)
	}

	return json.Unmarshal(bytes, l)
}
