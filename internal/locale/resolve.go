// Package locale expands templated display strings and derives localized
// names for content objects.
package locale

import (
	"regexp"
	"strings"

	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
)

// DefaultMaxPasses bounds template expansion. Content may reference itself
// cyclically, so hitting the bound is not an error.
const DefaultMaxPasses = 10

// __ITEM__iron-plate__ -> locale["item-name"]["iron-plate"]
var sectionRefRE = regexp.MustCompile(`__([A-Za-z]+)__([A-Za-z0-9._-]+?)__`)

type ResolveStats struct {
	Passes  int
	Changed int
	// Capped is set when expansion stopped at the pass bound.
	Capped bool
}

// Resolve expands section references in place until a pass changes nothing
// or maxPasses passes have run. Every pass substitutes against a snapshot of
// the table taken before the pass.
func Resolve(table content.LocaleTable, maxPasses int, sink diag.Sink) ResolveStats {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	rep := diag.Reporter{Sink: sink, Stage: "locale"}

	var st ResolveStats
	for st.Passes < maxPasses {
		st.Passes++
		snapshot := table.Clone()
		changed := 0
		for section, keys := range snapshot {
			for key, s := range keys {
				if !strings.Contains(s, "__") {
					continue
				}
				next := expand(snapshot, s)
				if next != s {
					table[section][key] = next
					changed++
				}
			}
		}
		st.Changed += changed
		if changed == 0 {
			return st
		}
	}
	st.Capped = true
	rep.Emit(diag.KindNote, "", "template expansion stopped after %d passes", maxPasses)
	return st
}

func expand(table content.LocaleTable, s string) string {
	return sectionRefRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := sectionRefRE.FindStringSubmatch(m)
		section := strings.ToLower(sub[1]) + "-name"
		if v, ok := table.Lookup(section, sub[2]); ok {
			return v
		}
		return m
	})
}
