package normalize

import (
	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/locale"
	"craftexport.ai/internal/units"
)

const moduleSpecField = "module_specification"

// EntityFields lists, per entity type, the raw fields carried into the output.
var EntityFields = map[string][]string{
	"assembling-machine": {"allowed_effects", "crafting_categories", "crafting_speed", "energy_source", "energy_usage", "ingredient_count", moduleSpecField},
	"beacon":             {"allowed_effects", "distribution_effectivity", "energy_usage", moduleSpecField, "supply_area_distance"},
	"boiler":             {"energy_consumption", "energy_source", "target_temperature"},
	"furnace":            {"allowed_effects", "crafting_categories", "crafting_speed", "energy_source", "energy_usage", moduleSpecField},
	"lab":                {"allowed_effects", "energy_usage", "inputs", moduleSpecField, "researching_speed"},
	"mining-drill":       {"allowed_effects", "energy_source", "energy_usage", "mining_power", "mining_speed", moduleSpecField, "resource_categories"},
	"offshore-pump":      {"fluid", "pumping_speed"},
	"reactor":            {"consumption", "energy_source"},
	"resource":           {"category", "minable"},
	"rocket-silo":        {"allowed_effects", "crafting_categories", "crafting_speed", "energy_usage", "ingredient_count", moduleSpecField, "rocket_parts_required"},
	"transport-belt":     {"speed"},
}

// Fields holding an energy string such as "90kW" that are emitted as numbers.
var energyFields = map[string]bool{
	"energy_usage":       true,
	"energy_consumption": true,
	"consumption":        true,
}

type EntitySet struct {
	ByType   map[string]map[string]*Entity
	Icons    IconSet
	Failures int
}

type EntityNormalizer struct {
	cfg config.Config
	loc *locale.Localizer
	rep diag.Reporter
}

func NewEntityNormalizer(cfg config.Config, loc *locale.Localizer, sink diag.Sink) *EntityNormalizer {
	return &EntityNormalizer{cfg: cfg, loc: loc, rep: diag.Reporter{Sink: sink, Stage: "entities"}}
}

func (n *EntityNormalizer) Run(tree content.Tree) *EntitySet {
	set := &EntitySet{ByType: map[string]map[string]*Entity{}, Icons: IconSet{}}
	for _, typ := range content.SortedKeys(EntityFields) {
		bucket := map[string]*Entity{}
		for _, name := range content.SortedKeys(tree.Type(typ)) {
			e, res := n.Normalize(typ, tree[typ][name])
			switch res {
			case Malformed:
				set.Failures++
				continue
			case Omit:
				continue
			}
			bucket[name] = e
			set.Icons.Add(e.Icon)
		}
		set.ByType[typ] = bucket
	}
	return set
}

// Normalize projects one raw entity of the given type.
func (n *EntityNormalizer) Normalize(typ string, o content.Object) (*Entity, Outcome) {
	fields, ok := EntityFields[typ]
	if !ok {
		return nil, Omit
	}
	name := o.Name()
	e := &Entity{Name: name, Type: typ, Attrs: map[string]any{}}

	e.Icon = o.String("icon")
	if e.Icon == "" {
		n.rep.Emit(diag.KindSubstitute, typ+"/"+name, "no icon, using %q", n.cfg.MissingIcon)
		e.Icon = n.cfg.MissingIcon
	}

	for _, f := range fields {
		v, present := o[f]
		switch {
		case f == moduleSpecField:
			e.Attrs["module_slots"] = moduleSlots(content.AsObject(v))
		case !present:
		case energyFields[f]:
			s, _ := v.(string)
			w, err := units.ParseEnergy(s)
			if err != nil {
				n.rep.Emit(diag.KindMalformed, typ+"/"+name, "%s: %v", f, err)
				return nil, Malformed
			}
			e.Attrs[f] = w
		case f == "minable":
			e.Attrs[f] = canonicalMinable(content.AsObject(v))
		default:
			e.Attrs[f] = v
		}
	}

	if s, ok := n.loc.Localize(o, nil); ok {
		e.LocalizedName = s
	}
	return e, Keep
}

func moduleSlots(spec content.Object) int {
	if n, ok := spec.Number("module_slots"); ok {
		return int(n)
	}
	return 0
}

// canonicalMinable rewrites a single "result" into a one-entry results list,
// matching recipe result canonicalization. The entry amount is "count", or 1
// when absent.
func canonicalMinable(m content.Object) content.Object {
	if m == nil {
		return nil
	}
	out := Overlay(m, nil, "result", "count", "results")
	results := []Amount{}
	if m.Has("results") {
		results = CanonicalEntries(m.List("results"))
	} else if res := m.String("result"); res != "" {
		count := 1.0
		if c, ok := m.Number("count"); ok {
			count = c
		}
		results = []Amount{{Name: res, Amount: &count}}
	}
	out["results"] = results
	return out
}
