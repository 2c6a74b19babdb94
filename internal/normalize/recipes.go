package normalize

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/locale"
)

const (
	DefaultEnergyRequired = 0.5
	DefaultCategory       = "crafting"
)

// RecipeSet holds both recipe variants keyed by recipe name.
type RecipeSet struct {
	Normal    map[string]*Recipe
	Alternate map[string]*Recipe
	Icons     IconSet
}

func (s *RecipeSet) ByVariant(v Variant) map[string]*Recipe {
	if v == Alternate {
		return s.Alternate
	}
	return s.Normal
}

func (s *RecipeSet) Subgroups() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range []map[string]*Recipe{s.Normal, s.Alternate} {
		for _, r := range m {
			if !seen[r.Subgroup] {
				seen[r.Subgroup] = true
				out = append(out, r.Subgroup)
			}
		}
	}
	return out
}

type RecipeNormalizer struct {
	cfg   config.Config
	items map[string]*Item
	raw   map[string]content.Object
	loc   *locale.Localizer
	rep   diag.Reporter
}

// NewRecipeNormalizer binds the normalized item table (for principal output
// lookup) and the raw item index (for localization fallbacks).
func NewRecipeNormalizer(cfg config.Config, items map[string]*Item, raw map[string]content.Object, loc *locale.Localizer, sink diag.Sink) *RecipeNormalizer {
	return &RecipeNormalizer{
		cfg:   cfg,
		items: items,
		raw:   raw,
		loc:   loc,
		rep:   diag.Reporter{Sink: sink, Stage: "recipes"},
	}
}

func (n *RecipeNormalizer) Run(tree content.Tree) *RecipeSet {
	set := &RecipeSet{
		Normal:    map[string]*Recipe{},
		Alternate: map[string]*Recipe{},
		Icons:     IconSet{},
	}
	for _, name := range content.SortedKeys(tree.Type("recipe")) {
		raw := tree["recipe"][name]
		for _, v := range Variants {
			r, res := n.Normalize(raw, v)
			if res != Keep {
				continue
			}
			set.ByVariant(v)[name] = r
			set.Icons.Add(r.Icon)
		}
	}
	return set
}

// Normalize builds one variant of a raw recipe.
func (n *RecipeNormalizer) Normalize(raw content.Object, v Variant) (*Recipe, Outcome) {
	name := raw.Name()
	subject := name + "/" + v.Name
	merged := MergeVariant(raw, v)

	r := &Recipe{
		Name:        name,
		Category:    merged.String("category"),
		Ingredients: CanonicalEntries(merged.List("ingredients")),
		Results:     canonicalResults(merged),
		Subgroup:    merged.String("subgroup"),
		Order:       merged.String("order"),
		MainProduct: merged.String("main_product"),
	}
	r.EnergyRequired = DefaultEnergyRequired
	if e, ok := merged.Number("energy_required"); ok {
		r.EnergyRequired = e
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	icon, layered := iconOf(merged)
	if layered {
		n.rep.Emit(diag.KindSubstitute, subject, "using first icon layer %q", icon)
	}
	r.Icon = icon

	principal := n.principal(r, subject)
	if principal != nil {
		if r.Subgroup == "" {
			r.Subgroup = principal.Subgroup
		}
		if r.Order == "" {
			r.Order = principal.Order
		}
		if r.Icon == "" {
			r.Icon = principal.Icon
		}
	}
	if r.Icon == "" || r.Subgroup == "" || r.Order == "" {
		n.rep.Emit(diag.KindSkip, subject, "cannot resolve icon/subgroup/order%s", n.hint(r))
		return nil, Omit
	}
	if n.cfg.Excluded(r.Subgroup) {
		n.rep.Emit(diag.KindSkip, subject, "subgroup %q is excluded", r.Subgroup)
		return nil, Omit
	}

	var fallback content.Object
	if principal != nil {
		fallback = n.raw[principal.Name]
	}
	if s, ok := n.loc.Localize(raw, fallback); ok {
		r.LocalizedName = s
	}
	return r, Keep
}

// principal infers the item a recipe is displayed as.
func (n *RecipeNormalizer) principal(r *Recipe, subject string) *Item {
	var out *Item
	var single string
	if len(r.Results) == 1 {
		single = r.Results[0].Name
		out = n.items[single]
	}
	if mp := r.MainProduct; mp != "" && mp != single {
		if single != "" {
			n.rep.Emit(diag.KindSubstitute, subject, "main_product %q disagrees with result %q", mp, single)
		}
		if it, ok := n.items[mp]; ok {
			out = it
			r.DisplayName = it.Name
		}
	}
	if out == nil {
		if it, ok := n.items[r.Name]; ok {
			n.rep.Emit(diag.KindSubstitute, subject, "principal output taken from same-named item")
			out = it
		}
	}
	return out
}

// hint suggests the closest known item when a single result is unknown.
func (n *RecipeNormalizer) hint(r *Recipe) string {
	if len(r.Results) != 1 {
		return ""
	}
	want := r.Results[0].Name
	if _, ok := n.items[want]; ok {
		return ""
	}
	best, bestDist := "", len(want)/3+1
	for name := range n.items {
		d := levenshtein.ComputeDistance(want, name)
		if d < bestDist || (d == bestDist && best != "" && name < best) {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (unknown result %q, closest item %q)", want, best)
}

// canonicalResults prefers a results list; a scalar result only counts when
// no list is given.
func canonicalResults(o content.Object) []Amount {
	if o.Has("results") {
		return CanonicalEntries(o.List("results"))
	}
	if res := o.String("result"); res != "" {
		count := 1.0
		if c, ok := o.Number("result_count"); ok {
			count = c
		}
		return []Amount{{Name: res, Amount: &count}}
	}
	return []Amount{}
}

// CanonicalEntries rewrites positional [name, amount] entries to named form
// and passes named entries through. Unrecognized entries are dropped.
func CanonicalEntries(list []any) []Amount {
	out := make([]Amount, 0, len(list))
	for _, e := range list {
		if a, ok := canonicalEntry(e); ok {
			out = append(out, a)
		}
	}
	return out
}

func canonicalEntry(e any) (Amount, bool) {
	if pos, ok := e.([]any); ok {
		name, ok := locale.EntryName(pos)
		if !ok {
			return Amount{}, false
		}
		a := Amount{Name: name}
		if len(pos) > 1 {
			a.Amount = number(pos[1])
		}
		return a, true
	}
	o := content.AsObject(e)
	if o == nil || o.Name() == "" {
		return Amount{}, false
	}
	return Amount{
		Type:           o.String("type"),
		Name:           o.Name(),
		Amount:         number(o["amount"]),
		AmountMin:      number(o["amount_min"]),
		AmountMax:      number(o["amount_max"]),
		Probability:    number(o["probability"]),
		CatalystAmount: number(o["catalyst_amount"]),
	}, true
}

func number(v any) *float64 {
	f, ok := content.AsNumber(v)
	if !ok {
		return nil
	}
	return &f
}
