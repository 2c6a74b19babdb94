package locale

import (
	"strconv"
	"strings"

	"craftexport.ai/internal/content"
	"craftexport.ai/internal/diag"
)

// NameSections is the order in which locale sections are searched for an
// object's plain name.
var NameSections = []string{
	"recipe-name",
	"item-name",
	"fluid-name",
	"equipment-name",
	"entity-name",
}

// Localizer derives display names from a resolved locale table.
type Localizer struct {
	table content.LocaleTable
	items map[string]content.Object
	rep   diag.Reporter
}

// NewLocalizer binds a resolved table to the raw item index used for the
// single-output recipe substitution.
func NewLocalizer(resolved content.LocaleTable, items map[string]content.Object, sink diag.Sink) *Localizer {
	return &Localizer{
		table: resolved,
		items: items,
		rep:   diag.Reporter{Sink: sink, Stage: "locale"},
	}
}

// Localize returns the display name for obj, trying fallback's plain name
// when obj has none. ok is false when no name was found.
func (l *Localizer) Localize(obj, fallback content.Object) (name string, ok bool) {
	if obj == nil {
		return "", false
	}
	subject := obj.Name()
	obj = l.displaySubject(obj)

	if ref, has := obj["localised_name"]; has {
		if s, ok := l.template(ref); ok {
			return s, true
		}
	}
	for _, o := range []content.Object{obj, fallback} {
		if o == nil {
			continue
		}
		if s, ok := l.plainName(o); ok {
			return s, true
		}
	}
	l.rep.Emit(diag.KindSubstitute, subject, "no localized name")
	return "", false
}

// A recipe without its own localised_name that produces exactly one known
// item is displayed under that item's name.
func (l *Localizer) displaySubject(obj content.Object) content.Object {
	if obj.Type() != "recipe" || obj.Has("localised_name") {
		return obj
	}
	out, ok := SingleOutput(obj)
	if !ok {
		return obj
	}
	if item, ok := l.items[out]; ok {
		return item
	}
	return obj
}

func (l *Localizer) plainName(o content.Object) (string, bool) {
	name := o.Name()
	if placed := o.String("place_result"); placed != "" {
		name = placed
	}
	for _, sec := range NameSections {
		if s, ok := l.table.Lookup(sec, name); ok {
			return s, true
		}
	}
	return "", false
}

// template resolves ["section.key", args...] where each argument is itself
// a reference ("section.key" or ["section.key", ...]) that fills __N__.
func (l *Localizer) template(ref any) (string, bool) {
	var head string
	var args []any
	switch v := ref.(type) {
	case string:
		head = v
	case []any:
		if len(v) == 0 {
			return "", false
		}
		head, _ = v[0].(string)
		args = v[1:]
	default:
		return "", false
	}
	s, ok := l.lookupRef(head)
	if !ok {
		return "", false
	}
	for i, a := range args {
		argRef, _ := a.(string)
		if nested, isList := a.([]any); isList && len(nested) > 0 {
			argRef, _ = nested[0].(string)
		}
		if v, ok := l.lookupRef(argRef); ok {
			s = strings.ReplaceAll(s, "__"+strconv.Itoa(i+1)+"__", v)
		}
	}
	return s, true
}

func (l *Localizer) lookupRef(ref string) (string, bool) {
	section, key, ok := strings.Cut(ref, ".")
	if !ok {
		return "", false
	}
	return l.table.Lookup(section, key)
}

// SingleOutput reports the name of a recipe's only declared product. A
// results list takes precedence over a scalar result.
func SingleOutput(recipe content.Object) (string, bool) {
	if recipe.Has("results") {
		results := recipe.List("results")
		if len(results) != 1 {
			return "", false
		}
		return EntryName(results[0])
	}
	if r := recipe.String("result"); r != "" {
		return r, true
	}
	return "", false
}

// EntryName reads the item name of an ingredient or result entry given either
// positionally or with named fields.
func EntryName(entry any) (string, bool) {
	switch e := entry.(type) {
	case []any:
		if len(e) == 0 {
			return "", false
		}
		s, ok := e[0].(string)
		return s, ok && s != ""
	default:
		o := content.AsObject(entry)
		if o == nil {
			return "", false
		}
		s := o.Name()
		return s, s != ""
	}
}
