// Package modinfo knows where every content module lives and turns virtual
// "__module__/path" references into files on disk or archive members.
package modinfo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var (
	ErrBadPath       = errors.New("not a module path")
	ErrUnknownModule = errors.New("unknown module")
	ErrNoLocation    = errors.New("module has neither a directory nor an archive")
)

// Module describes one content module. A module is unpacked on disk
// (LocalPath) or packaged in an archive (ZipPath) whose members live under
// the ModName directory.
type Module struct {
	Name      string `yaml:"name" json:"name"`
	LocalPath string `yaml:"local_path,omitempty" json:"local_path,omitempty"`
	ZipPath   string `yaml:"zip_path,omitempty" json:"zip_path,omitempty"`
	ModName   string `yaml:"mod_name,omitempty" json:"mod_name,omitempty"`
}

type manifest struct {
	Modules []Module `yaml:"modules"`
}

const ManifestFile = "mods.yaml"

// LoadManifest reads the module list written next to a content dump.
func LoadManifest(fsys afero.Fs, p string) ([]Module, error) {
	raw, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	for i, mod := range m.Modules {
		if mod.Name == "" {
			return nil, fmt.Errorf("%s: module %d has no name", filepath.Base(p), i)
		}
	}
	return m.Modules, nil
}

type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceMember SourceKind = "archive_member"
)

// Source is the physical location of an icon.
type Source struct {
	Kind        SourceKind `json:"kind"`
	FullPath    string     `json:"full_path,omitempty"`
	ArchivePath string     `json:"archive_path,omitempty"`
	MemberPath  string     `json:"member_path,omitempty"`
}

// Registry resolves virtual paths against the known modules. Archive
// readers are opened lazily and kept until Close.
type Registry struct {
	fs      afero.Fs
	modules map[string]Module
	remaps  map[string]string

	mu       sync.Mutex
	archives map[string]*openArchive
}

type openArchive struct {
	f afero.File
	r *zip.Reader
}

func NewRegistry(fsys afero.Fs, mods []Module, remaps map[string]string) *Registry {
	r := &Registry{
		fs:       fsys,
		modules:  make(map[string]Module, len(mods)),
		remaps:   remaps,
		archives: map[string]*openArchive{},
	}
	for _, m := range mods {
		r.modules[m.Name] = m
	}
	return r
}

// SplitPath splits "__base__/graphics/x.png" into ("base", "graphics/x.png").
func SplitPath(virtual string) (module, rel string, err error) {
	if !strings.HasPrefix(virtual, "__") {
		return "", "", fmt.Errorf("%q: %w", virtual, ErrBadPath)
	}
	module, rel, ok := strings.Cut(virtual[2:], "__/")
	if !ok || module == "" || rel == "" {
		return "", "", fmt.Errorf("%q: %w", virtual, ErrBadPath)
	}
	return module, rel, nil
}

// Resolve maps a virtual icon path to its physical source. Remapped legacy
// paths are resolved through their replacement.
func (r *Registry) Resolve(virtual string) (Source, error) {
	if to, ok := r.remaps[virtual]; ok {
		virtual = to
	}
	module, rel, err := SplitPath(virtual)
	if err != nil {
		return Source{}, err
	}
	return r.locate(module, rel)
}

func (r *Registry) locate(module, rel string) (Source, error) {
	m, ok := r.modules[module]
	if !ok {
		return Source{}, fmt.Errorf("%q: %w", module, ErrUnknownModule)
	}
	switch {
	case m.LocalPath != "":
		return Source{Kind: SourceFile, FullPath: filepath.Join(m.LocalPath, filepath.FromSlash(rel))}, nil
	case m.ZipPath != "":
		return Source{Kind: SourceMember, ArchivePath: m.ZipPath, MemberPath: path.Join(m.ModName, rel)}, nil
	}
	return Source{}, fmt.Errorf("%q: %w", module, ErrNoLocation)
}

// Open returns the bytes behind a source.
func (r *Registry) Open(src Source) (io.ReadCloser, error) {
	switch src.Kind {
	case SourceFile:
		return r.fs.Open(src.FullPath)
	case SourceMember:
		zr, err := r.archive(src.ArchivePath)
		if err != nil {
			return nil, err
		}
		for _, f := range zr.File {
			if f.Name == src.MemberPath {
				return f.Open()
			}
		}
		return nil, fmt.Errorf("%s: %s: %w", src.ArchivePath, src.MemberPath, fs.ErrNotExist)
	}
	return nil, fmt.Errorf("unknown source kind %q", src.Kind)
}

func (r *Registry) archive(p string) (*zip.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.archives[p]; ok {
		return a.r, nil
	}
	f, err := r.fs.Open(p)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	zr, err := zip.NewReader(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	r.archives[p] = &openArchive{f: f, r: zr}
	return zr, nil
}

// Version reads the "version" key of a module's info.json.
func (r *Registry) Version(module string) (string, error) {
	src, err := r.locate(module, "info.json")
	if err != nil {
		return "", err
	}
	rc, err := r.Open(src)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	v := gjson.GetBytes(raw, "version")
	if !v.Exists() || v.String() == "" {
		return "", fmt.Errorf("%s info.json: no version", module)
	}
	return v.String(), nil
}

// CoreVersion tries "core" and then "base".
func (r *Registry) CoreVersion() (string, error) {
	var firstErr error
	for _, m := range []string{"core", "base"} {
		v, err := r.Version(m)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	for p, a := range r.archives {
		if cerr := a.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(r.archives, p)
	}
	return err
}
