package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"craftexport.ai/internal/atlas"
	"craftexport.ai/internal/diag"
	"craftexport.ai/internal/modinfo"
)

const ManifestFile = "icons.json"

// SourceOpener returns the bytes behind a resolved icon source.
type SourceOpener interface {
	Open(src modinfo.Source) (io.ReadCloser, error)
}

type ManifestEntry struct {
	File string `json:"file"`
	Path string `json:"path"`
	Col  int    `json:"col"`
	Row  int    `json:"row"`
}

type Manifest struct {
	Width int             `json:"width"`
	Rows  int             `json:"rows"`
	Hash  string          `json:"hash"`
	Icons []ManifestEntry `json:"icons"`
}

// ExtractIcons copies every resolved atlas icon into dir as
// "<index>_<stem>.png" and writes the manifest next to them. Icons without a
// source, or whose bytes cannot be read, are reported and left out.
func ExtractIcons(fsys afero.Fs, src SourceOpener, d *Dataset, dir string, sink diag.Sink) (Manifest, error) {
	rep := diag.Reporter{Sink: sink, Stage: "icons"}
	m := Manifest{
		Width: d.Width,
		Rows:  atlas.RowCount(len(d.Icons), d.Width),
		Hash:  d.Sprites.Hash,
		Icons: []ManifestEntry{},
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return m, err
	}

	for i, ic := range d.Icons {
		if ic.Source == nil {
			rep.Emit(diag.KindSkip, ic.Path, "no icon source")
			continue
		}
		name := fmt.Sprintf("%d_%s.png", i, atlas.Stem(ic.Path))
		if err := copyIcon(fsys, src, *ic.Source, filepath.Join(dir, name)); err != nil {
			rep.Emit(diag.KindSkip, ic.Path, "copy icon: %v", err)
			continue
		}
		m.Icons = append(m.Icons, ManifestEntry{File: name, Path: ic.Path, Col: ic.Col, Row: ic.Row})
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, err
	}
	if err := afero.WriteFile(fsys, filepath.Join(dir, ManifestFile), b, 0o644); err != nil {
		return m, err
	}
	return m, nil
}

func copyIcon(fsys afero.Fs, src SourceOpener, from modinfo.Source, dst string) error {
	in, err := src.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
