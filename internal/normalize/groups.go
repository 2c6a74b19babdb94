package normalize

import (
	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
)

const DefaultSubgroup = "other"

// Taxonomy answers subgroup -> group questions from the item-group and
// item-subgroup tables.
type Taxonomy struct {
	groups    map[string]content.Object
	subgroups map[string]content.Object
}

func NewTaxonomy(tree content.Tree) Taxonomy {
	return Taxonomy{
		groups:    tree.Type("item-group"),
		subgroups: tree.Type("item-subgroup"),
	}
}

func (t Taxonomy) GroupOf(subgroup string) (string, bool) {
	sg, ok := t.subgroups[subgroup]
	if !ok {
		return "", false
	}
	g := sg.String("group")
	if _, ok := t.groups[g]; !ok {
		return "", false
	}
	return g, true
}

// Build assembles the groups output for every subgroup in use.
func (t Taxonomy) Build(used []string, sink diag.Sink) map[string]Group {
	rep := diag.Reporter{Sink: sink, Stage: "groups"}
	out := map[string]Group{}
	for _, sub := range used {
		g, ok := t.GroupOf(sub)
		if !ok {
			rep.Emit(diag.KindSkip, sub, "subgroup has no known group")
			continue
		}
		grp, ok := out[g]
		if !ok {
			grp = Group{Order: t.groups[g].String("order"), Subgroups: map[string]string{}}
			out[g] = grp
		}
		grp.Subgroups[sub] = t.subgroups[sub].String("order")
	}
	return out
}
