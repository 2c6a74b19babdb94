package atlas

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortPaths_StemThenFullPath(t *testing.T) {
	paths := []string{
		"__base__/graphics/icons/b.png",
		"__mod__/graphics/a-alt.png",
		"__base__/graphics/icons/a-alt.png",
		"__base__/graphics/icons/B.png",
	}
	SortPaths(paths)
	assert.Equal(t, []string{
		"__base__/graphics/icons/B.png",
		"__base__/graphics/icons/a-alt.png",
		"__mod__/graphics/a-alt.png",
		"__base__/graphics/icons/b.png",
	}, paths)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "iron-plate", Stem("__base__/graphics/icons/iron-plate.png"))
	assert.Equal(t, "noext", Stem("dir/noext"))
	assert.Equal(t, "archive.tar", Stem("x/archive.tar.gz"))
}

func TestBuild_DenseGrid(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 10, 17, 64, 101} {
		paths := make([]string, 0, n+3)
		for i := 0; i < n; i++ {
			paths = append(paths, fmt.Sprintf("__base__/graphics/icons/icon-%03d.png", i))
		}
		paths = append(paths, paths[0], "", paths[n-1])

		l := Build(paths)
		require.Len(t, l.Entries, n)
		assert.Equal(t, int(math.Floor(math.Sqrt(float64(n)))), l.Width, "n=%d", n)

		seen := map[[2]int]bool{}
		for _, e := range l.Entries {
			cell := [2]int{e.Col, e.Row}
			assert.False(t, seen[cell], "duplicate cell %v", cell)
			seen[cell] = true
			assert.GreaterOrEqual(t, e.Col, 0)
			assert.Less(t, e.Col, l.Width)
			assert.Less(t, e.Row*l.Width+e.Col, n)
		}
		assert.Equal(t, l.Entries[n-1].Row+1, RowCount(n, l.Width))
	}
}

func TestBuild_AssignsInSortedOrder(t *testing.T) {
	l := Build([]string{"z/c.png", "z/a.png", "y/b.png", "x/d.png", "w/e.png"})
	require.Equal(t, 2, l.Width)

	want := []Entry{
		{Path: "z/a.png", Col: 0, Row: 0},
		{Path: "y/b.png", Col: 1, Row: 0},
		{Path: "z/c.png", Col: 0, Row: 1},
		{Path: "x/d.png", Col: 1, Row: 1},
		{Path: "w/e.png", Col: 0, Row: 2},
	}
	assert.Equal(t, want, l.Entries)

	col, row, ok := l.Cell("x/d.png")
	require.True(t, ok)
	assert.Equal(t, [2]int{1, 1}, [2]int{col, row})
	_, _, ok = l.Cell("missing.png")
	assert.False(t, ok)
}

func TestRowCount(t *testing.T) {
	assert.Equal(t, 0, RowCount(5, 0))
	assert.Equal(t, 0, RowCount(0, 3))
	assert.Equal(t, 3, RowCount(5, 2))
	assert.Equal(t, 2, RowCount(4, 2))
}

func TestLayout_DigestDependsOnOrder(t *testing.T) {
	a := Build([]string{"x/a.png", "x/b.png"})
	b := Build([]string{"x/b.png", "x/a.png"})
	c := Build([]string{"x/a.png", "x/c.png"})
	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
}

type rec struct {
	path     string
	col, row int
}

func (r *rec) IconPath() string         { return r.path }
func (r *rec) SetIconCell(col, row int) { r.col, r.row = col, row }

func TestLayout_Apply(t *testing.T) {
	l := Build([]string{"a.png", "b.png", "c.png", "d.png"})
	r1 := &rec{path: "d.png"}
	r2 := &rec{path: "nope.png", col: -1}
	missing := l.Apply(r1, r2)
	assert.Equal(t, []string{"nope.png"}, missing)
	assert.Equal(t, 1, r1.col)
	assert.Equal(t, 1, r1.row)
	assert.Equal(t, -1, r2.col)
}
