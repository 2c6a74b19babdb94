package content

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/language"
)

const (
	ContentFile = "data-raw.json"
	// LocaleFile is used when no per-language table exists under LocaleDir.
	LocaleFile = "locale.json"
	LocaleDir  = "locale"
)

var (
	//go:embed schemas/data-raw.schema.json
	contentSchemaJSON string
	//go:embed schemas/locale.schema.json
	localeSchemaJSON string
)

// Dump is the loaded input of one export.
type Dump struct {
	Content Tree
	Locale  LocaleTable
	// LocalePath is the locale file that was read, relative to the dump.
	LocalePath string
	// Digest is the sha256 of the raw content file.
	Digest string
}

// LoadDump reads data-raw.json and the locale table for lang from dir and
// checks both against their schemas.
func LoadDump(dir, lang string) (*Dump, error) {
	var d Dump

	raw, err := os.ReadFile(filepath.Join(dir, ContentFile))
	if err != nil {
		return nil, err
	}
	d.Digest = sha256Hex(raw)
	if d.Content, err = DecodeContent(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", ContentFile, err)
	}

	candidates, err := LocaleCandidates(lang)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		raw, err = os.ReadFile(filepath.Join(dir, c))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if d.Locale, err = DecodeLocale(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		d.LocalePath = c
		return &d, nil
	}
	return nil, fmt.Errorf("no locale for %q in %s: %w", lang, dir, fs.ErrNotExist)
}

// LocaleCandidates lists the locale files tried for lang, most specific
// first: locale/pt-BR.json, locale/pt.json, locale.json.
func LocaleCandidates(lang string) ([]string, error) {
	if lang == "" {
		return []string{LocaleFile}, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", lang, err)
	}
	out := []string{filepath.Join(LocaleDir, tag.String()+".json")}
	if base, conf := tag.Base(); conf != language.No && base.String() != tag.String() {
		out = append(out, filepath.Join(LocaleDir, base.String()+".json"))
	}
	return append(out, LocaleFile), nil
}

func DecodeContent(raw []byte) (Tree, error) {
	v, err := decodeValidated(raw, ContentFile, contentSchemaJSON)
	if err != nil {
		return nil, err
	}
	top := v.(map[string]any)
	tree := make(Tree, len(top))
	for typ, objs := range top {
		byName := objs.(map[string]any)
		m := make(map[string]Object, len(byName))
		for name, o := range byName {
			obj := Object(o.(map[string]any))
			// Some dumps omit the name and type on the object itself.
			if _, ok := obj["name"]; !ok {
				obj["name"] = name
			}
			if _, ok := obj["type"]; !ok {
				obj["type"] = typ
			}
			m[name] = obj
		}
		tree[typ] = m
	}
	return tree, nil
}

func DecodeLocale(raw []byte) (LocaleTable, error) {
	if _, err := decodeValidated(raw, LocaleFile, localeSchemaJSON); err != nil {
		return nil, err
	}
	var l LocaleTable
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return l, nil
}

func decodeValidated(raw []byte, name, schema string) (any, error) {
	sch, err := jsonschema.CompileString(name+".schema.json", schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if err := sch.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}
