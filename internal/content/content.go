package content

import (
	"encoding/json"
	"sort"
)

// Object is one raw record from the content tree. Normalizers only read it.
type Object map[string]any

// Tree maps content type -> object name -> object.
type Tree map[string]map[string]Object

// LocaleTable maps section -> key -> display string.
type LocaleTable map[string]map[string]string

// Item-like content types, in the order they are scanned.
var ItemTypes = []string{
	"ammo",
	"armor",
	"blueprint",
	"blueprint-book",
	"capsule",
	"copy-paste-tool",
	"deconstruction-item",
	"fluid",
	"gun",
	"item",
	"item-with-entity-data",
	"item-with-inventory",
	"item-with-label",
	"item-with-tags",
	"mining-tool",
	"module",
	"rail-planner",
	"repair-tool",
	"selection-tool",
	"spidertron-remote",
	"tool",
	"upgrade-item",
}

func (o Object) Name() string { return o.String("name") }
func (o Object) Type() string { return o.String("type") }

func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o Object) String(key string) string {
	s, _ := o[key].(string)
	return s
}

func (o Object) Number(key string) (float64, bool) {
	return AsNumber(o[key])
}

func (o Object) Map(key string) Object {
	return AsObject(o[key])
}

func (o Object) List(key string) []any {
	l, _ := o[key].([]any)
	return l
}

// AsObject accepts both Object and plain decoded JSON maps.
func AsObject(v any) Object {
	switch m := v.(type) {
	case Object:
		return m
	case map[string]any:
		return Object(m)
	}
	return nil
}

func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Type returns the objects of one content type (nil when absent).
func (t Tree) Type(name string) map[string]Object {
	return t[name]
}

// Get looks up one object.
func (t Tree) Get(typ, name string) (Object, bool) {
	o, ok := t[typ][name]
	return o, ok
}

// ItemIndex returns every item-like object keyed by name. When several
// item types share a name the first type in ItemTypes wins.
func (t Tree) ItemIndex() map[string]Object {
	out := map[string]Object{}
	for _, typ := range ItemTypes {
		for name, o := range t[typ] {
			if _, dup := out[name]; !dup {
				out[name] = o
			}
		}
	}
	return out
}

func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone copies a locale table so a resolver can work on it without touching the input.
func (l LocaleTable) Clone() LocaleTable {
	out := make(LocaleTable, len(l))
	for sec, keys := range l {
		m := make(map[string]string, len(keys))
		for k, v := range keys {
			m[k] = v
		}
		out[sec] = m
	}
	return out
}

func (l LocaleTable) Lookup(section, key string) (string, bool) {
	s, ok := l[section][key]
	return s, ok
}
