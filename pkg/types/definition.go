package types

// DefaultFactor is the factor assumed when a definition does not declare one.
const DefaultFactor = 1.0

// UnitDefinition describes a single unit as declared in a definition file.
// Factor is the multiplicative ratio from this unit to its category's base
// unit. Derived, when non-empty, is a chain "unit (op unit)+" with op being
// "*" or "/", referencing other unit keys.
type UnitDefinition struct {
	Name    string  `json:"name" yaml:"name" toml:"name"`
	Symbol  string  `json:"symbol" yaml:"symbol" toml:"symbol"`
	Factor  float64 `json:"factor" yaml:"factor" toml:"factor"`
	Derived string  `json:"derived,omitempty" yaml:"derived,omitempty" toml:"derived,omitempty"`
}

// IsDerived reports whether the unit is defined in terms of other units.
func (d UnitDefinition) IsDerived() bool {
	return d.Derived != ""
}

// Unit pairs a unit key with its definition. The key is the stable
// identifier used in expressions; Symbol is for display only.
type Unit struct {
	Key string `json:"key" yaml:"key"`
	UnitDefinition
}

// Category groups the units of one physical dimension. The first unit is
// the category's base unit.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Units []Unit `json:"units" yaml:"units"`
}

// Base returns the category's base unit key, or "" for an empty category.
func (c Category) Base() string {
	if len(c.Units) == 0 {
		return ""
	}
	return c.Units[0].Key
}

// Unit returns the unit with the given key.
func (c Category) Unit(key string) (Unit, bool) {
	for _, u := range c.Units {
		if u.Key == key {
			return u, true
		}
	}
	return Unit{}, false
}

// Definitions is the full set of unit categories in declaration order.
// Order matters: it decides each category's base unit and the order in
// which derived units are resolved.
type Definitions struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category returns the category with the given name.
func (d Definitions) Category(name string) (Category, bool) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Add appends a unit to the named category, creating the category at the
// end if it does not exist yet.
func (d *Definitions) Add(category, key string, def UnitDefinition) {
	for i := range d.Categories {
		if d.Categories[i].Name == category {
			d.Categories[i].Units = append(d.Categories[i].Units, Unit{Key: key, UnitDefinition: def})
			return
		}
	}
	d.Categories = append(d.Categories, Category{
		Name:  category,
		Units: []Unit{{Key: key, UnitDefinition: def}},
	})
}

// Merge combines other into d. Categories from other are appended, except
// that a category already present in d is replaced in place.
func (d *Definitions) Merge(other Definitions) {
	for _, oc := range other.Categories {
		replaced := false
		for i := range d.Categories {
			if d.Categories[i].Name == oc.Name {
				d.Categories[i] = oc
				replaced = true
				break
			}
		}
		if !replaced {
			d.Categories = append(d.Categories, oc)
		}
	}
}

// UnitCount returns the number of units across all categories.
func (d Definitions) UnitCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Units)
	}
	return n
}
