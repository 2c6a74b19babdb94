package normalize

import (
	"maps"

	"craftexport.ai/internal/content"
)

// Variant names a recipe form and the raw key holding its overrides.
type Variant struct {
	Name string
	Key  string
}

var (
	Standard  = Variant{Name: "normal", Key: "normal"}
	Alternate = Variant{Name: "alternate", Key: "expensive"}

	Variants = []Variant{Standard, Alternate}
)

// MergeVariant returns a new object: base with the variant's override
// record laid over its top level and every variant marker removed.
// base is not modified.
func MergeVariant(base content.Object, v Variant) content.Object {
	return Overlay(base, base.Map(v.Key), markerKeys()...)
}

// Overlay copies base, replaces top-level keys with those of override and
// drops the listed keys.
func Overlay(base, override content.Object, drop ...string) content.Object {
	out := maps.Clone(base)
	if out == nil {
		out = content.Object{}
	}
	maps.Copy(out, override)
	for _, k := range drop {
		delete(out, k)
	}
	return out
}

func markerKeys() []string {
	keys := make([]string, 0, len(Variants))
	for _, v := range Variants {
		keys = append(keys, v.Key)
	}
	return keys
}
