package normalize

import (
	"sort"

	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/locale"
	"craftexport.ai/internal/units"
)

const chemicalFuel = "chemical"

type ItemSet struct {
	Items   map[string]*Item
	Fluids  []string
	Fuel    []string
	Modules []string
	Icons   IconSet
	// Failures counts items dropped for malformed fields.
	Failures int
}

// Subgroups lists the subgroups used by the kept items.
func (s *ItemSet) Subgroups() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range s.Items {
		if !seen[it.Subgroup] {
			seen[it.Subgroup] = true
			out = append(out, it.Subgroup)
		}
	}
	sort.Strings(out)
	return out
}

type ItemNormalizer struct {
	cfg config.Config
	tax Taxonomy
	loc *locale.Localizer
	rep diag.Reporter
}

func NewItemNormalizer(cfg config.Config, tax Taxonomy, loc *locale.Localizer, sink diag.Sink) *ItemNormalizer {
	return &ItemNormalizer{cfg: cfg, tax: tax, loc: loc, rep: diag.Reporter{Sink: sink, Stage: "items"}}
}

func (n *ItemNormalizer) Run(tree content.Tree) *ItemSet {
	set := &ItemSet{Items: map[string]*Item{}, Icons: IconSet{}}
	for _, typ := range content.ItemTypes {
		for _, name := range content.SortedKeys(tree.Type(typ)) {
			if _, dup := set.Items[name]; dup {
				continue
			}
			it, res := n.Normalize(tree[typ][name])
			switch res {
			case Malformed:
				set.Failures++
				continue
			case Omit:
				continue
			}
			set.Items[name] = it
			set.Icons.Add(it.Icon)
			switch it.Type {
			case "fluid":
				set.Fluids = append(set.Fluids, name)
			case "module":
				set.Modules = append(set.Modules, name)
			}
			if it.FuelValue != nil && it.FuelCategory == chemicalFuel {
				set.Fuel = append(set.Fuel, name)
			}
		}
	}
	sort.Strings(set.Fluids)
	sort.Strings(set.Fuel)
	sort.Strings(set.Modules)
	return set
}

// Outcome tells the caller whether a normalized record is kept.
type Outcome int

const (
	Keep Outcome = iota
	Omit
	// Malformed: a field failed to parse; the object is dropped and counted.
	Malformed
)

// Normalize projects one raw item-like object.
func (n *ItemNormalizer) Normalize(o content.Object) (*Item, Outcome) {
	name := o.Name()
	it := &Item{
		Name:        name,
		Type:        o.Type(),
		Subgroup:    o.String("subgroup"),
		Order:       o.String("order"),
		PlaceResult: o.String("place_result"),
	}
	if it.Subgroup == "" {
		it.Subgroup = DefaultSubgroup
	}
	if n.cfg.Excluded(it.Subgroup) {
		n.rep.Emit(diag.KindSkip, name, "subgroup %q is excluded", it.Subgroup)
		return nil, Omit
	}
	group, ok := n.tax.GroupOf(it.Subgroup)
	if !ok {
		n.rep.Emit(diag.KindSkip, name, "subgroup %q has no known group", it.Subgroup)
		return nil, Omit
	}
	it.Group = group

	icon, layered := iconOf(o)
	switch {
	case icon == "":
		n.rep.Emit(diag.KindSkip, name, "no icon")
		return nil, Omit
	case layered:
		n.rep.Emit(diag.KindSubstitute, name, "using first icon layer %q", icon)
	}
	it.Icon = icon

	if stack, ok := o.Number("stack_size"); ok {
		it.StackSize = int(stack)
	}

	fuel := o.String("fuel_value")
	if cat := o.String("fuel_category"); fuel != "" && cat != "" {
		v, err := units.ParseEnergy(fuel)
		if err != nil {
			n.rep.Emit(diag.KindMalformed, name, "fuel_value: %v", err)
			return nil, Malformed
		}
		it.FuelValue = &v
		it.FuelCategory = cat
	}

	if s, ok := n.loc.Localize(o, nil); ok {
		it.LocalizedName = s
	}
	return it, Keep
}

// iconOf returns the direct icon, or the first layer's icon when only
// layers are given (layered is then true).
func iconOf(o content.Object) (icon string, layered bool) {
	if s := o.String("icon"); s != "" {
		return s, false
	}
	layers := o.List("icons")
	if len(layers) == 0 {
		return "", false
	}
	first := content.AsObject(layers[0])
	if s := first.String("icon"); s != "" {
		return s, true
	}
	return "", false
}
