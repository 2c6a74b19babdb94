package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftexport.ai/internal/diag"
)

func TestItemNormalizer_KeepsAndDropsByPolicy(t *testing.T) {
	f := newFixture()
	set := f.items

	assert.ElementsMatch(t, []string{
		"iron-plate", "iron-gear-wheel", "coal", "uranium-fuel-cell", "wooden-chest",
		"misc", "water", "petroleum-gas", "speed-module",
	}, keys(set.Items))
	assert.Equal(t, 1, set.Failures)

	skipped := map[string]bool{}
	for _, d := range f.rec.Filter("items", diag.KindSkip) {
		skipped[d.Subject] = true
	}
	assert.Equal(t, map[string]bool{"ghost": true, "water-barrel": true, "lonely": true}, skipped)

	malformed := f.rec.Filter("items", diag.KindMalformed)
	require.Len(t, malformed, 1)
	assert.Equal(t, "bad-fuel", malformed[0].Subject)
}

func TestItemNormalizer_SortedNameLists(t *testing.T) {
	set := newFixture().items
	assert.Equal(t, []string{"petroleum-gas", "water"}, set.Fluids)
	assert.Equal(t, []string{"coal"}, set.Fuel)
	assert.Equal(t, []string{"speed-module"}, set.Modules)
}

func TestItemNormalizer_Fields(t *testing.T) {
	set := newFixture().items

	coal := set.Items["coal"]
	require.NotNil(t, coal)
	assert.Equal(t, "intermediate-products", coal.Group)
	assert.Equal(t, "raw-material", coal.Subgroup)
	assert.Equal(t, 50, coal.StackSize)
	require.NotNil(t, coal.FuelValue)
	assert.Equal(t, 4e6, *coal.FuelValue)
	assert.Equal(t, "Coal", coal.LocalizedName)

	cell := set.Items["uranium-fuel-cell"]
	require.NotNil(t, cell.FuelValue)
	assert.Equal(t, 8e9, *cell.FuelValue)
	assert.Equal(t, "nuclear", cell.FuelCategory)

	misc := set.Items["misc"]
	assert.Equal(t, DefaultSubgroup, misc.Subgroup)
	assert.Equal(t, "other", misc.Group)
	assert.Empty(t, misc.LocalizedName)
}

func TestItemNormalizer_FirstIconLayerStandsIn(t *testing.T) {
	f := newFixture()
	chest := f.items.Items["wooden-chest"]
	require.NotNil(t, chest)
	assert.Equal(t, "a.png", chest.Icon)
	assert.Equal(t, "Wooden chest", chest.LocalizedName)
	assert.Contains(t, f.items.Icons, "a.png")

	subs := f.rec.Filter("items", diag.KindSubstitute)
	require.Len(t, subs, 1)
	assert.Equal(t, "wooden-chest", subs[0].Subject)
}

func TestItemSet_Subgroups(t *testing.T) {
	set := newFixture().items
	assert.Equal(t, []string{"fluid-recipes", "intermediate", "other", "raw-material", "storage"}, set.Subgroups())
}

func TestTaxonomy_Build(t *testing.T) {
	f := newFixture()
	var rec diag.Recorder
	groups := NewTaxonomy(f.tree).Build([]string{"raw-material", "storage", "orphan", "nope"}, &rec)

	require.Contains(t, groups, "intermediate-products")
	assert.Equal(t, Group{Order: "c", Subgroups: map[string]string{"raw-material": "b"}}, groups["intermediate-products"])
	assert.Equal(t, Group{Order: "a", Subgroups: map[string]string{"storage": "a"}}, groups["logistics"])
	assert.Len(t, groups, 2)
	assert.Len(t, rec.Filter("groups", diag.KindSkip), 2)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
