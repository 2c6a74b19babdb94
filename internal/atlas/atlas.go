// Package atlas lays deduplicated icon paths out on a square-ish grid.
package atlas

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"path"
	"sort"
	"strings"
)

type Entry struct {
	Path string `json:"path"`
	Col  int    `json:"col"`
	Row  int    `json:"row"`
}

// Layout is the grid assignment of every icon path.
type Layout struct {
	Width   int
	Entries []Entry
	index   map[string]int
}

// Stem is the file name without directory or extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// SortPaths orders paths by stem, then by full path.
func SortPaths(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		si, sj := Stem(paths[i]), Stem(paths[j])
		if si != sj {
			return si < sj
		}
		return paths[i] < paths[j]
	})
}

// Build deduplicates paths, sorts them and assigns cells row by row in a
// grid floor(sqrt(N)) cells wide.
func Build(paths []string) *Layout {
	seen := make(map[string]bool, len(paths))
	uniq := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" && !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}
	SortPaths(uniq)

	l := &Layout{
		Width:   int(math.Floor(math.Sqrt(float64(len(uniq))))),
		Entries: make([]Entry, len(uniq)),
		index:   make(map[string]int, len(uniq)),
	}
	for i, p := range uniq {
		l.Entries[i] = Entry{Path: p, Col: i % l.Width, Row: i / l.Width}
		l.index[p] = i
	}
	return l
}

func (l *Layout) Cell(p string) (col, row int, ok bool) {
	i, ok := l.index[p]
	if !ok {
		return 0, 0, false
	}
	e := l.Entries[i]
	return e.Col, e.Row, true
}

// RowCount is the number of rows n cells occupy in a grid width cells wide.
func RowCount(n, width int) int {
	if width <= 0 {
		return 0
	}
	return (n + width - 1) / width
}

// Digest identifies the ordered path list; consumers key sheet caches on it.
func (l *Layout) Digest() string {
	h := sha256.New()
	for _, e := range l.Entries {
		h.Write([]byte(e.Path))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Iconic is a record whose icon path is replaced by a grid cell.
type Iconic interface {
	IconPath() string
	SetIconCell(col, row int)
}

// Apply writes the cell of each record's icon. It returns the paths that had
// no cell.
func (l *Layout) Apply(recs ...Iconic) []string {
	var missing []string
	for _, r := range recs {
		col, row, ok := l.Cell(r.IconPath())
		if !ok {
			missing = append(missing, r.IconPath())
			continue
		}
		r.SetIconCell(col, row)
	}
	return missing
}
