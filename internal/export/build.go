package export

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"craftexport.ai/internal/atlas"
	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/locale"
	"craftexport.ai/internal/modinfo"
	"craftexport.ai/internal/normalize"
)

// Names of the two utility icons that are always part of the atlas.
const (
	SpriteModuleSlot = "slot_icon_module"
	SpriteClock      = "clock"
)

// IconResolver finds the physical source of a virtual icon path.
type IconResolver interface {
	Resolve(virtual string) (modinfo.Source, error)
}

type Input struct {
	Content     content.Tree
	Locale      content.LocaleTable
	Icons       IconResolver
	CoreVersion string
}

type Report struct {
	Items            int `json:"items"`
	NormalRecipes    int `json:"normal_recipes"`
	AlternateRecipes int `json:"alternate_recipes"`
	Entities         int `json:"entities"`
	Icons            int `json:"icons"`
	UnresolvedIcons  int `json:"unresolved_icons"`
	// Failures counts objects dropped for malformed fields.
	Failures     int  `json:"failures"`
	LocalePasses int  `json:"locale_passes"`
	LocaleCapped bool `json:"locale_capped"`

	Diagnostics map[diag.Kind]int `json:"diagnostics"`
}

// Build runs every normalization stage and lays out the icon atlas. Content
// problems never fail the build; they surface as diagnostics on sink.
func Build(in Input, cfg config.Config, sink diag.Sink) (*Dataset, Report, error) {
	counts := &diag.Recorder{}
	sink = diag.Multi(sink, counts)
	rep := diag.Reporter{Sink: sink, Stage: "export"}
	var report Report

	table := in.Locale.Clone()
	st := locale.Resolve(table, cfg.LocaleMaxPasses, sink)
	report.LocalePasses, report.LocaleCapped = st.Passes, st.Capped

	rawItems := in.Content.ItemIndex()
	loc := locale.NewLocalizer(table, rawItems, sink)
	tax := normalize.NewTaxonomy(in.Content)

	items := normalize.NewItemNormalizer(cfg, tax, loc, sink).Run(in.Content)

	// Recipes and entities only read the item table; each hands back its own
	// icon set once finished.
	var (
		recipes  *normalize.RecipeSet
		entities *normalize.EntitySet
	)
	runRecipes := func() error {
		recipes = normalize.NewRecipeNormalizer(cfg, items.Items, rawItems, loc, sink).Run(in.Content)
		return nil
	}
	runEntities := func() error {
		entities = normalize.NewEntityNormalizer(cfg, loc, sink).Run(in.Content)
		return nil
	}
	if cfg.Parallel {
		var g errgroup.Group
		g.Go(runRecipes)
		g.Go(runEntities)
		if err := g.Wait(); err != nil {
			return nil, report, err
		}
	} else {
		_ = runRecipes()
		_ = runEntities()
	}

	extra := utilitySprites(in.Content, cfg)
	icons := normalize.IconSet{}
	icons.Merge(items.Icons)
	icons.Merge(recipes.Icons)
	icons.Merge(entities.Icons)
	for _, p := range extra {
		icons.Add(p)
	}
	layout := atlas.Build(icons.Sorted())

	d := &Dataset{
		Items:            items.Items,
		Fluids:           nonNil(items.Fluids),
		Fuel:             nonNil(items.Fuel),
		Modules:          nonNil(items.Modules),
		NormalRecipes:    recipes.Normal,
		AlternateRecipes: recipes.Alternate,
		Entities:         entities.ByType,
		Width:            layout.Width,
		Version:          in.CoreVersion,
		Sprites:          Sprites{Extra: map[string]SpriteCell{}, Hash: layout.Digest()},
	}

	var recs []atlas.Iconic
	for _, it := range d.Items {
		recs = append(recs, &it.IconRef)
	}
	for _, m := range []map[string]*normalize.Recipe{d.NormalRecipes, d.AlternateRecipes} {
		for _, r := range m {
			recs = append(recs, &r.IconRef)
		}
	}
	for _, bucket := range d.Entities {
		for _, e := range bucket {
			recs = append(recs, &e.IconRef)
		}
	}
	for _, p := range layout.Apply(recs...) {
		rep.Emit(diag.KindNote, p, "icon has no atlas cell")
	}
	for name, p := range extra {
		col, row, _ := layout.Cell(p)
		d.Sprites.Extra[name] = SpriteCell{Name: name, IconCol: col, IconRow: row}
	}

	d.Icons = make([]Icon, len(layout.Entries))
	for i, e := range layout.Entries {
		d.Icons[i] = Icon{Path: e.Path, Col: e.Col, Row: e.Row}
		if in.Icons == nil {
			continue
		}
		src, err := in.Icons.Resolve(e.Path)
		if err != nil {
			report.UnresolvedIcons++
			rep.Emit(diag.KindSubstitute, e.Path, "icon source unresolved: %v", err)
			continue
		}
		d.Icons[i].Source = &src
	}

	subgroups := append(items.Subgroups(), recipes.Subgroups()...)
	sort.Strings(subgroups)
	d.Groups = tax.Build(dedupSorted(subgroups), sink)

	if d.Version != "" {
		if _, err := semver.NewVersion(d.Version); err != nil {
			rep.Emit(diag.KindNote, d.Version, "core version is not semver: %v", err)
		}
	}

	report.Items = len(d.Items)
	report.NormalRecipes = len(d.NormalRecipes)
	report.AlternateRecipes = len(d.AlternateRecipes)
	report.Entities = d.EntityCount()
	report.Icons = len(d.Icons)
	report.Failures = items.Failures + entities.Failures
	report.Diagnostics = counts.Counts()
	return d, report, nil
}

// utilitySprites returns the two mandatory icons keyed by sprite name.
func utilitySprites(tree content.Tree, cfg config.Config) map[string]string {
	out := map[string]string{
		SpriteModuleSlot: cfg.UtilitySprites.ModuleSlot,
		SpriteClock:      cfg.UtilitySprites.Clock,
	}
	def, ok := tree.Get("utility-sprites", "default")
	if !ok {
		return out
	}
	for name := range out {
		if f := def.Map(name).String("filename"); f != "" {
			out[name] = f
		}
	}
	return out
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
