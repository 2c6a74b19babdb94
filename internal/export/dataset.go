package export

import (
	"encoding/json"

	"craftexport.ai/internal/modinfo"
	"craftexport.ai/internal/normalize"
)

// Dataset is the render-ready output of one export.
type Dataset struct {
	Items            map[string]*normalize.Item              `json:"items"`
	Fluids           []string                                `json:"fluids"`
	Fuel             []string                                `json:"fuel"`
	Modules          []string                                `json:"modules"`
	Groups           map[string]normalize.Group              `json:"groups"`
	NormalRecipes    map[string]*normalize.Recipe            `json:"normalRecipes"`
	AlternateRecipes map[string]*normalize.Recipe            `json:"alternateRecipes"`
	Sprites          Sprites                                 `json:"sprites"`
	Icons            []Icon                                  `json:"icons"`
	Width            int                                     `json:"width"`
	Version          string                                  `json:"version"`
	Entities         map[string]map[string]*normalize.Entity `json:"-"`
}

type Sprites struct {
	Extra map[string]SpriteCell `json:"extra"`
	// Hash identifies the ordered icon list.
	Hash string `json:"hash"`
}

type SpriteCell struct {
	Name    string `json:"name"`
	IconCol int    `json:"icon_col"`
	IconRow int    `json:"icon_row"`
}

// Icon is one atlas cell and where its image comes from. Source is nil
// when the path could not be resolved.
type Icon struct {
	Path   string          `json:"path"`
	Col    int             `json:"col"`
	Row    int             `json:"row"`
	Source *modinfo.Source `json:"source,omitempty"`
}

type datasetAlias Dataset

// MarshalJSON writes each entity bucket as a top-level key named by its type.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal((*datasetAlias)(d))
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for typ, bucket := range d.Entities {
		b, err := json.Marshal(bucket)
		if err != nil {
			return nil, err
		}
		m[typ] = b
	}
	return json.Marshal(m)
}

func (d *Dataset) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, (*datasetAlias)(d)); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	d.Entities = map[string]map[string]*normalize.Entity{}
	for typ := range normalize.EntityFields {
		raw, ok := m[typ]
		if !ok {
			continue
		}
		var bucket map[string]*normalize.Entity
		if err := json.Unmarshal(raw, &bucket); err != nil {
			return err
		}
		for _, e := range bucket {
			e.Type = typ
		}
		d.Entities[typ] = bucket
	}
	return nil
}

// EntityCount totals every entity bucket.
func (d *Dataset) EntityCount() int {
	n := 0
	for _, b := range d.Entities {
		n += len(b)
	}
	return n
}
