package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
)

func TestRecipeNormalizer_CanonicalizesScalarResult(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "iron-gear-wheel",
		"result":      "iron-gear-wheel",
		"ingredients": []any{[]any{"iron-plate", 2.0}},
	}
	r, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Keep, res)

	assert.Equal(t, []Amount{{Name: "iron-gear-wheel", Amount: ptr(1)}}, r.Results)
	assert.Equal(t, []Amount{{Name: "iron-plate", Amount: ptr(2)}}, r.Ingredients)
	assert.Equal(t, 0.5, r.EnergyRequired)
	assert.Equal(t, "crafting", r.Category)
	assert.Equal(t, "intermediate", r.Subgroup)
	assert.Equal(t, "c", r.Order)
	assert.Equal(t, "__base__/graphics/icons/iron-gear-wheel.png", r.Icon)
	assert.Equal(t, "Iron gear wheel", r.LocalizedName)
}

func TestRecipeNormalizer_ResultCount(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "plates", "result": "iron-plate", "result_count": 5.0,
		"energy_required": 3.2, "category": "smelting",
		"ingredients": []any{map[string]any{"type": "item", "name": "coal", "amount": 1.0}},
	}
	r, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Keep, res)
	assert.Equal(t, []Amount{{Name: "iron-plate", Amount: ptr(5)}}, r.Results)
	assert.Equal(t, []Amount{{Type: "item", Name: "coal", Amount: ptr(1)}}, r.Ingredients)
	assert.Equal(t, 3.2, r.EnergyRequired)
	assert.Equal(t, "smelting", r.Category)
}

func TestRecipeNormalizer_UnresolvableRecipeIsAbsent(t *testing.T) {
	f := newFixture()
	f.tree["recipe"] = map[string]content.Object{
		"mystery": {"type": "recipe", "name": "mystery", "result": "mystery-thing", "ingredients": []any{}},
	}
	set := f.recipes().Run(f.tree)
	assert.Empty(t, set.Normal)
	assert.Empty(t, set.Alternate)
	assert.Len(t, f.rec.Filter("recipes", diag.KindSkip), 2)
}

func TestRecipeNormalizer_SuggestsClosestItem(t *testing.T) {
	f := newFixture()
	raw := content.Object{"type": "recipe", "name": "typo", "result": "iron-gear-wheal"}
	_, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Omit, res)

	skips := f.rec.Filter("recipes", diag.KindSkip)
	require.Len(t, skips, 1)
	assert.Contains(t, skips[0].Message, `closest item "iron-gear-wheel"`)
}

func TestRecipeNormalizer_VariantsMergeOverrides(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "iron-gear-wheel",
		"normal": map[string]any{
			"result":      "iron-gear-wheel",
			"ingredients": []any{[]any{"iron-plate", 2.0}},
		},
		"expensive": map[string]any{
			"result":          "iron-gear-wheel",
			"energy_required": 1.0,
			"ingredients":     []any{[]any{"iron-plate", 4.0}},
		},
	}
	f.tree["recipe"] = map[string]content.Object{"iron-gear-wheel": raw}
	set := f.recipes().Run(f.tree)

	normal := set.Normal["iron-gear-wheel"]
	alt := set.Alternate["iron-gear-wheel"]
	require.NotNil(t, normal)
	require.NotNil(t, alt)
	assert.Equal(t, ptr(2), normal.Ingredients[0].Amount)
	assert.Equal(t, 0.5, normal.EnergyRequired)
	assert.Equal(t, ptr(4), alt.Ingredients[0].Amount)
	assert.Equal(t, 1.0, alt.EnergyRequired)

	assert.Contains(t, raw, "normal")
	assert.Contains(t, raw, "expensive")
	assert.NotContains(t, raw, "result")
	assert.Contains(t, set.Icons, "__base__/graphics/icons/iron-gear-wheel.png")
}

func TestRecipeNormalizer_VariantResultsReplaceBaseResult(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "iron-gear-wheel",
		"result":      "iron-gear-wheel",
		"ingredients": []any{[]any{"iron-plate", 2.0}},
		"expensive": map[string]any{
			"results": []any{map[string]any{"name": "iron-plate", "amount": 3.0}},
		},
	}

	alt, res := f.recipes().Normalize(raw, Alternate)
	require.Equal(t, Keep, res)
	assert.Equal(t, []Amount{{Name: "iron-plate", Amount: ptr(3)}}, alt.Results)
	assert.Equal(t, "raw-material", alt.Subgroup)

	normal, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Keep, res)
	assert.Equal(t, []Amount{{Name: "iron-gear-wheel", Amount: ptr(1)}}, normal.Results)
}

func TestRecipeNormalizer_MainProductWins(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "odd-water",
		"results":      []any{map[string]any{"type": "fluid", "name": "water", "amount": 10.0}},
		"main_product": "petroleum-gas",
	}
	r, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Keep, res)
	assert.Equal(t, "petroleum-gas", r.DisplayName)
	assert.Equal(t, "__base__/graphics/icons/fluid/petroleum-gas.png", r.Icon)
	assert.Equal(t, "b", r.Order)

	subs := f.rec.Filter("recipes", diag.KindSubstitute)
	require.Len(t, subs, 1)
	assert.Contains(t, subs[0].Message, "disagrees")
}

func TestRecipeNormalizer_SameNamedItemFallback(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "coal",
		"results": []any{[]any{"coal", 1.0}, []any{"iron-plate", 1.0}},
	}
	r, res := f.recipes().Normalize(raw, Alternate)
	require.Equal(t, Keep, res)
	assert.Equal(t, "__base__/graphics/icons/coal.png", r.Icon)
	assert.Equal(t, "raw-material", r.Subgroup)
	assert.Equal(t, "Coal", r.LocalizedName)
	assert.Len(t, f.rec.Filter("recipes", diag.KindSubstitute), 1)
}

func TestRecipeNormalizer_ExcludedSubgroup(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "fill-water-barrel", "subgroup": "fill-barrel", "order": "a",
		"icon": "__base__/graphics/icons/fluid/barreling/water-barrel.png",
		"results": []any{[]any{"water-barrel", 1.0}},
	}
	_, res := f.recipes().Normalize(raw, Standard)
	assert.Equal(t, Omit, res)
}

func TestRecipeNormalizer_KeepsRangeEntries(t *testing.T) {
	f := newFixture()
	raw := content.Object{
		"type": "recipe", "name": "basic-oil-processing", "subgroup": "fluid-recipes", "order": "a",
		"icon": "__base__/graphics/icons/fluid/basic-oil-processing.png",
		"results": []any{
			map[string]any{"name": "iron-plate", "amount_min": 1.0, "amount_max": 3.0, "probability": 0.5},
			map[string]any{"name": "coal"},
			[]any{"water"},
		},
	}
	r, res := f.recipes().Normalize(raw, Standard)
	require.Equal(t, Keep, res)
	require.Len(t, r.Results, 3)

	assert.True(t, r.Results[0].HasRange())
	assert.False(t, r.Results[0].HasAmount())
	assert.Equal(t, ptr(0.5), r.Results[0].Probability)
	assert.False(t, r.Results[1].HasAmount())
	assert.False(t, r.Results[1].HasRange())
	assert.Equal(t, Amount{Name: "water"}, r.Results[2])
	assert.Equal(t, "Basic oil processing", r.LocalizedName)
}

func TestMergeVariant_DoesNotMutateBase(t *testing.T) {
	base := content.Object{
		"name": "r", "category": "crafting",
		"normal":    map[string]any{"category": "advanced"},
		"expensive": false,
	}
	got := MergeVariant(base, Standard)
	assert.Equal(t, content.Object{"name": "r", "category": "advanced"}, got)
	assert.Equal(t, "crafting", base["category"])

	got = MergeVariant(base, Alternate)
	assert.Equal(t, content.Object{"name": "r", "category": "crafting"}, got)
}
