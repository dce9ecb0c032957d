package catalog

import (
	"github.com/autoparts/storefront/internal/domain/shared"
)

// Level identifies one select of the catalog filter panel
type Level int

const (
	LevelCategory Level = iota
	LevelBrand
	LevelBrandModel
	LevelModelType
	LevelModelTypeYear
)

var levelNames = map[Level]string{
	LevelCategory:      "category",
	LevelBrand:         "brand",
	LevelBrandModel:    "brandModel",
	LevelModelType:     "modelType",
	LevelModelTypeYear: "modelTypeYear",
}

// String returns the query parameter name of the level
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel maps a query parameter name to its level
func ParseLevel(name string) (Level, error) {
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, shared.ErrInvalidInput.WithMessage("unknown filter: " + name)
}

// Child returns the level that depends on l, if any.
// Only brand -> brandModel -> modelType cascade.
func (l Level) Child() (Level, bool) {
	switch l {
	case LevelBrand:
		return LevelBrandModel, true
	case LevelBrandModel:
		return LevelModelType, true
	default:
		return 0, false
	}
}

// Parent returns the level l depends on, if any
func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelBrandModel:
		return LevelBrand, true
	case LevelModelType:
		return LevelBrandModel, true
	default:
		return 0, false
	}
}

// Option is one selectable value
type Option struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// LevelState is the state of one select.
// OptionsFor is the parent value the options were loaded for.
type LevelState struct {
	Value      string   `json:"value"`
	Enabled    bool     `json:"enabled"`
	Options    []Option `json:"options"`
	OptionsFor string   `json:"options_for,omitempty"`
}

// FilterState is the whole cascading filter panel
type FilterState struct {
	Category      LevelState `json:"category"`
	Brand         LevelState `json:"brand"`
	BrandModel    LevelState `json:"brandModel"`
	ModelType     LevelState `json:"modelType"`
	ModelTypeYear LevelState `json:"modelTypeYear"`
}

// NewFilterState returns the initial panel: independent selects enabled,
// dependent selects disabled and empty.
func NewFilterState() FilterState {
	return FilterState{
		Category:      LevelState{Enabled: true, Options: []Option{}},
		Brand:         LevelState{Enabled: true, Options: []Option{}},
		BrandModel:    LevelState{Options: []Option{}},
		ModelType:     LevelState{Options: []Option{}},
		ModelTypeYear: LevelState{Enabled: true, Options: []Option{}},
	}
}

// Get returns the state of one level
func (s FilterState) Get(l Level) LevelState {
	if ref := s.ref(l); ref != nil {
		return *ref
	}
	return LevelState{}
}

// Apply is the single transition of the panel. Setting a level to a new
// value clears and disables every descendant, then enables the direct child
// when the new value is a real filter. Re-applying the current value is a
// no-op so loaded child options survive.
func (s FilterState) Apply(l Level, value string) (FilterState, error) {
	target := s.ref(l)
	if target == nil {
		return s, shared.ErrInvalidInput.WithMessage("unknown filter level")
	}
	if !target.Enabled {
		return s, shared.ErrInvalidState.WithMessage(l.String() + " is disabled until its parent is selected")
	}

	value = FilterValue(value)
	if value == target.Value {
		return s, nil
	}

	next := s.clone()
	next.ref(l).Value = value

	for child, ok := l.Child(); ok; child, ok = child.Child() {
		c := next.ref(child)
		c.Value = ""
		c.Enabled = false
		c.Options = []Option{}
		c.OptionsFor = ""
	}

	if child, ok := l.Child(); ok && value != "" {
		next.ref(child).Enabled = true
	}
	return next, nil
}

// SetOptions installs options for a level. For dependent levels the list
// is only accepted when parentValue still matches the parent's current
// value; a list loaded for an earlier parent is dropped and false returned.
func (s *FilterState) SetOptions(l Level, parentValue string, options []Option) bool {
	target := s.ref(l)
	if target == nil {
		return false
	}
	if parent, ok := l.Parent(); ok {
		if !target.Enabled || s.ref(parent).Value != parentValue {
			return false
		}
	}
	if options == nil {
		options = []Option{}
	}
	target.Options = options
	target.OptionsFor = parentValue
	return true
}

// Lookup finds an option of level l by its display name
func (s FilterState) Lookup(l Level, name string) (Option, bool) {
	target := s.ref(l)
	if target == nil {
		return Option{}, false
	}
	for _, o := range target.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// NeedsOptions reports whether a dependent level is enabled but its option
// list was not loaded for the parent's current value.
func (s FilterState) NeedsOptions(l Level) bool {
	parent, ok := l.Parent()
	if !ok {
		return false
	}
	target := s.ref(l)
	return target.Enabled && target.OptionsFor != s.ref(parent).Value
}

// Selection returns the selected values as a query fragment
func (s FilterState) Selection() Selection {
	return Selection{
		Category:      s.Category.Value,
		Brand:         s.Brand.Value,
		BrandModel:    s.BrandModel.Value,
		ModelType:     s.ModelType.Value,
		ModelTypeYear: s.ModelTypeYear.Value,
	}
}

func (s *FilterState) ref(l Level) *LevelState {
	switch l {
	case LevelCategory:
		return &s.Category
	case LevelBrand:
		return &s.Brand
	case LevelBrandModel:
		return &s.BrandModel
	case LevelModelType:
		return &s.ModelType
	case LevelModelTypeYear:
		return &s.ModelTypeYear
	default:
		return nil
	}
}

func (s FilterState) clone() FilterState {
	c := s
	for _, l := range []Level{LevelCategory, LevelBrand, LevelBrandModel, LevelModelType, LevelModelTypeYear} {
		src := s.ref(l)
		dst := c.ref(l)
		dst.Options = append([]Option(nil), src.Options...)
	}
	return c
}

// Selection is the set of chosen filter values, as sent by a client
type Selection struct {
	Category      string `json:"category" form:"category"`
	Brand         string `json:"brand" form:"brand"`
	BrandModel    string `json:"brandModel" form:"brandModel"`
	ModelType     string `json:"modelType" form:"modelType"`
	ModelTypeYear string `json:"modelTypeYear" form:"modelTypeYear"`
}

// Value returns the selected value of a level
func (sel Selection) Value(l Level) string {
	switch l {
	case LevelCategory:
		return sel.Category
	case LevelBrand:
		return sel.Brand
	case LevelBrandModel:
		return sel.BrandModel
	case LevelModelType:
		return sel.ModelType
	case LevelModelTypeYear:
		return sel.ModelTypeYear
	default:
		return ""
	}
}
