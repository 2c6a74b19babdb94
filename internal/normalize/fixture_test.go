package normalize

import (
	"craftexport.ai/internal/config"
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/locale"
)

func testTree() content.Tree {
	return content.Tree{
		"item-group": {
			"intermediate-products": {"name": "intermediate-products", "order": "c"},
			"logistics":             {"name": "logistics", "order": "a"},
			"other":                 {"name": "other", "order": "z"},
		},
		"item-subgroup": {
			"raw-material":  {"name": "raw-material", "group": "intermediate-products", "order": "b"},
			"intermediate":  {"name": "intermediate", "group": "intermediate-products", "order": "c"},
			"storage":       {"name": "storage", "group": "logistics", "order": "a"},
			"other":         {"name": "other", "group": "other", "order": "z"},
			"fill-barrel":   {"name": "fill-barrel", "group": "intermediate-products", "order": "e"},
			"orphan":        {"name": "orphan", "group": "no-such-group", "order": "a"},
			"fluid-recipes": {"name": "fluid-recipes", "group": "intermediate-products", "order": "d"},
		},
		"item": {
			"iron-plate": {
				"type": "item", "name": "iron-plate", "subgroup": "raw-material", "order": "b",
				"icon": "__base__/graphics/icons/iron-plate.png", "stack_size": 100.0,
			},
			"iron-gear-wheel": {
				"type": "item", "name": "iron-gear-wheel", "subgroup": "intermediate", "order": "c",
				"icon": "__base__/graphics/icons/iron-gear-wheel.png", "stack_size": 100.0,
			},
			"coal": {
				"type": "item", "name": "coal", "subgroup": "raw-material", "order": "a",
				"icon": "__base__/graphics/icons/coal.png", "stack_size": 50.0,
				"fuel_value": "4MJ", "fuel_category": "chemical",
			},
			"uranium-fuel-cell": {
				"type": "item", "name": "uranium-fuel-cell", "subgroup": "intermediate", "order": "r",
				"icon": "__base__/graphics/icons/uranium-fuel-cell.png",
				"fuel_value": "8GJ", "fuel_category": "nuclear",
			},
			"wooden-chest": {
				"type": "item", "name": "wooden-chest", "subgroup": "storage", "order": "a",
				"icons":        []any{map[string]any{"icon": "a.png"}, map[string]any{"icon": "b.png"}},
				"place_result": "wooden-chest",
			},
			"ghost": {"type": "item", "name": "ghost", "subgroup": "storage", "order": "z"},
			"water-barrel": {
				"type": "item", "name": "water-barrel", "subgroup": "fill-barrel", "order": "a",
				"icon": "__base__/graphics/icons/fluid/barreling/water-barrel.png",
			},
			"lonely": {
				"type": "item", "name": "lonely", "subgroup": "orphan", "order": "a",
				"icon": "__base__/graphics/icons/lonely.png",
			},
			"bad-fuel": {
				"type": "item", "name": "bad-fuel", "subgroup": "raw-material", "order": "x",
				"icon": "__base__/graphics/icons/bad.png", "fuel_value": "3XJ", "fuel_category": "chemical",
			},
			"misc": {"type": "item", "name": "misc", "order": "m", "icon": "__base__/graphics/icons/misc.png"},
		},
		"fluid": {
			"water": {
				"type": "fluid", "name": "water", "subgroup": "fluid-recipes", "order": "a",
				"icon": "__base__/graphics/icons/fluid/water.png",
			},
			"petroleum-gas": {
				"type": "fluid", "name": "petroleum-gas", "subgroup": "fluid-recipes", "order": "b",
				"icon": "__base__/graphics/icons/fluid/petroleum-gas.png",
			},
		},
		"module": {
			"speed-module": {
				"type": "module", "name": "speed-module", "subgroup": "intermediate", "order": "s",
				"icon": "__base__/graphics/icons/speed-module.png", "stack_size": 50.0,
			},
		},
		"utility-sprites": {
			"default": {
				"type":             "utility-sprites",
				"name":             "default",
				"slot_icon_module": map[string]any{"filename": "__core__/graphics/icons/slot-icon-module.png"},
				"clock":            map[string]any{"filename": "__core__/graphics/clock-icon.png"},
			},
		},
	}
}

func testLocale() content.LocaleTable {
	return content.LocaleTable{
		"item-name": {
			"iron-plate":      "Iron plate",
			"iron-gear-wheel": "Iron gear wheel",
			"coal":            "Coal",
		},
		"fluid-name":  {"water": "Water", "petroleum-gas": "Petroleum gas"},
		"entity-name": {"wooden-chest": "Wooden chest", "assembling-machine-1": "Assembling machine 1"},
		"recipe-name": {"basic-oil-processing": "Basic oil processing"},
	}
}

type fixture struct {
	cfg   config.Config
	tree  content.Tree
	rec   *diag.Recorder
	loc   *locale.Localizer
	items *ItemSet
}

func newFixture() *fixture {
	f := &fixture{cfg: config.Default(), tree: testTree(), rec: &diag.Recorder{}}
	f.loc = locale.NewLocalizer(testLocale(), f.tree.ItemIndex(), f.rec)
	f.items = NewItemNormalizer(f.cfg, NewTaxonomy(f.tree), f.loc, f.rec).Run(f.tree)
	return f
}

func (f *fixture) recipes() *RecipeNormalizer {
	return NewRecipeNormalizer(f.cfg, f.items.Items, f.tree.ItemIndex(), f.loc, f.rec)
}

func (f *fixture) entities() *EntityNormalizer {
	return NewEntityNormalizer(f.cfg, f.loc, f.rec)
}

func ptr(f float64) *float64 { return &f }
