// Package normalize projects raw content objects into the uniform item,
// recipe and entity records of the exported dataset.
package normalize

import (
	"encoding/json"
	"sort"
)

// IconRef holds an icon's virtual path until the atlas assigns it a cell.
type IconRef struct {
	Icon    string `json:"-"`
	IconCol int    `json:"icon_col"`
	IconRow int    `json:"icon_row"`
}

func (r *IconRef) IconPath() string { return r.Icon }

func (r *IconRef) SetIconCell(col, row int) {
	r.IconCol = col
	r.IconRow = row
}

// IconSet collects every icon path referenced by one normalizer.
type IconSet map[string]struct{}

func (s IconSet) Add(path string) {
	if path != "" {
		s[path] = struct{}{}
	}
}

func (s IconSet) Merge(other IconSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

func (s IconSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type Item struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Group    string `json:"group"`
	Subgroup string `json:"subgroup"`
	Order    string `json:"order"`
	IconRef
	StackSize     int      `json:"stack_size,omitempty"`
	FuelValue     *float64 `json:"fuel_value,omitempty"`
	FuelCategory  string   `json:"fuel_category,omitempty"`
	PlaceResult   string   `json:"place_result,omitempty"`
	LocalizedName string   `json:"localized_name,omitempty"`
}

// Amount is one ingredient or result. Exactly one of Amount or the
// AmountMin/AmountMax range is normally set; entries that carry neither
// keep only their name.
type Amount struct {
	Type           string   `json:"type,omitempty"`
	Name           string   `json:"name"`
	Amount         *float64 `json:"amount,omitempty"`
	AmountMin      *float64 `json:"amount_min,omitempty"`
	AmountMax      *float64 `json:"amount_max,omitempty"`
	Probability    *float64 `json:"probability,omitempty"`
	CatalystAmount *float64 `json:"catalyst_amount,omitempty"`
}

func (a Amount) HasAmount() bool { return a.Amount != nil }
func (a Amount) HasRange() bool  { return a.AmountMin != nil && a.AmountMax != nil }

type Recipe struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	EnergyRequired float64  `json:"energy_required"`
	Ingredients    []Amount `json:"ingredients"`
	Results        []Amount `json:"results"`
	Subgroup       string   `json:"subgroup"`
	Order          string   `json:"order"`
	IconRef
	MainProduct   string `json:"main_product,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	LocalizedName string `json:"localized_name,omitempty"`
}

// Entity is a production entity with the attribute subset of its type.
type Entity struct {
	Name string
	Type string
	IconRef
	LocalizedName string
	Attrs         map[string]any
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+4)
	for k, v := range e.Attrs {
		out[k] = v
	}
	out["name"] = e.Name
	out["icon_col"] = e.IconCol
	out["icon_row"] = e.IconRow
	if e.LocalizedName != "" {
		out["localized_name"] = e.LocalizedName
	}
	return json.Marshal(out)
}

func (e *Entity) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	e.Name, _ = m["name"].(string)
	e.LocalizedName, _ = m["localized_name"].(string)
	if c, ok := m["icon_col"].(float64); ok {
		e.IconCol = int(c)
	}
	if r, ok := m["icon_row"].(float64); ok {
		e.IconRow = int(r)
	}
	for _, k := range []string{"name", "localized_name", "icon_col", "icon_row"} {
		delete(m, k)
	}
	e.Attrs = m
	return nil
}

// Group is one entry of the two-level display taxonomy.
type Group struct {
	Order     string            `json:"order"`
	Subgroups map[string]string `json:"subgroups"`
}
