package collection

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	name  *string
	ttl   int
	count int
	tag   any
}

func str(s string) *string { return &s }

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		if r.name == nil {
			out[i] = "<nil>"
		} else {
			out[i] = *r.name
		}
	}
	return out
}

var rowAccessors = Accessors[row]{
	Fields: map[string]Accessor[row]{
		"name": func(r row) any { return r.name },
		"ttl":  func(r row) any { return r.ttl },
		"tag":  func(r row) any { return r.tag },
	},
	Comparators: map[string]Comparator[row]{
		"count": func(a, b row) int { return a.count - b.count },
	},
}

func TestRequestSort_Cycle(t *testing.T) {
	cfg := SortConfig{}

	cfg = RequestSort(cfg, "name")
	assert.Equal(t, SortConfig{Key: "name", Direction: Ascending}, cfg)

	cfg = RequestSort(cfg, "name")
	assert.Equal(t, SortConfig{Key: "name", Direction: Descending}, cfg)

	cfg = RequestSort(cfg, "name")
	assert.Equal(t, SortConfig{}, cfg)
	assert.False(t, cfg.Active())

	cfg = RequestSort(SortConfig{Key: "name", Direction: Descending}, "ttl")
	assert.Equal(t, SortConfig{Key: "ttl", Direction: Ascending}, cfg)
}

func TestSort_AbsentValuesSinkInBothDirections(t *testing.T) {
	items := []row{{name: str("b")}, {name: nil}, {name: str("a")}}

	asc := Sort(items, SortConfig{Key: "name", Direction: Ascending}, rowAccessors)
	assert.Equal(t, []string{"a", "b", "<nil>"}, names(asc))

	desc := Sort(items, SortConfig{Key: "name", Direction: Descending}, rowAccessors)
	assert.Equal(t, []string{"b", "a", "<nil>"}, names(desc))

	assert.Equal(t, []string{"b", "<nil>", "a"}, names(items), "input untouched")
}

func TestSort_StringsIgnoreCase(t *testing.T) {
	items := []row{{name: str("beta")}, {name: str("Alpha")}, {name: str("alpha2")}, {name: str("Gamma")}}

	got := Sort(items, SortConfig{Key: "name", Direction: Ascending}, rowAccessors)

	assert.Equal(t, []string{"Alpha", "alpha2", "beta", "Gamma"}, names(got))
}

func TestSort_NumbersAreNumeric(t *testing.T) {
	items := []row{{name: str("a"), ttl: 300}, {name: str("b"), ttl: 60}, {name: str("c"), ttl: 3600}}

	got := Sort(items, SortConfig{Key: "ttl", Direction: Ascending}, rowAccessors)

	assert.Equal(t, []string{"b", "a", "c"}, names(got))
}

func TestSort_MixedTypesFallBackToStrings(t *testing.T) {
	items := []row{{name: str("x"), tag: "b"}, {name: str("y"), tag: 10}, {name: str("z"), tag: "a"}}

	got := Sort(items, SortConfig{Key: "tag", Direction: Ascending}, rowAccessors)

	assert.Equal(t, []string{"y", "z", "x"}, names(got))
}

func TestSort_CustomComparatorWins(t *testing.T) {
	items := []row{{name: str("a"), count: 3}, {name: str("b"), count: 1}, {name: str("c"), count: 2}}

	asc := Sort(items, SortConfig{Key: "count", Direction: Ascending}, rowAccessors)
	assert.Equal(t, []string{"b", "c", "a"}, names(asc))

	desc := Sort(items, SortConfig{Key: "count", Direction: Descending}, rowAccessors)
	assert.Equal(t, []string{"a", "c", "b"}, names(desc))
}

func TestSort_IsStable(t *testing.T) {
	items := []row{{name: str("a"), ttl: 60}, {name: str("b"), ttl: 30}, {name: str("c"), ttl: 60}, {name: str("d"), ttl: 30}}

	got := Sort(items, SortConfig{Key: "ttl", Direction: Descending}, rowAccessors)

	assert.Equal(t, []string{"a", "c", "b", "d"}, names(got))
}

func TestSort_UnsortedOrUnknownKeepsOrder(t *testing.T) {
	items := []row{{name: str("b")}, {name: str("a")}}

	assert.Equal(t, []string{"b", "a"}, names(Sort(items, SortConfig{}, rowAccessors)))
	assert.Equal(t, []string{"b", "a"}, names(Sort(items, SortConfig{Key: "missing", Direction: Ascending}, rowAccessors)))
}

func TestPaginate_LastPartialPage(t *testing.T) {
	items := make([]int, 37)
	for i := range items {
		items[i] = i + 1
	}

	p := Paginate(items, 3, 15)

	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 30, p.Start)
	assert.Equal(t, 37, p.End)
	assert.Equal(t, []int{31, 32, 33, 34, 35, 36, 37}, p.Items)
}

func TestPaginate_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	for _, page := range []int{0, -1, 2} {
		p := Paginate(items, page, 5)
		assert.Empty(t, p.Items, "page %d", page)
		assert.Equal(t, 1, p.TotalPages)
	}

	empty := Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}

func TestPageButtons(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, PageButtons(2, 3, 7))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, PageButtons(4, 20, 7))
	assert.Equal(t, []int{7, 8, 9, 10, 11, 12, 13}, PageButtons(10, 20, 7))
	assert.Equal(t, []int{14, 15, 16, 17, 18, 19, 20}, PageButtons(18, 20, 7))
	assert.Nil(t, PageButtons(1, 0, 7))
}

func TestView_FilterAndSortResetPage(t *testing.T) {
	items := make([]row, 40)
	for i := range items {
		items[i] = row{name: str("host" + strconv.Itoa(i)), ttl: i}
	}
	v := &View[row]{
		PageSize:  15,
		Accessors: rowAccessors,
		Match: func(r row, st State) bool {
			return ContainsFold(st.Filter, *r.name)
		},
	}

	v.SetPage(3)
	res := v.Apply(items)
	assert.Len(t, res.Page.Items, 10)
	assert.False(t, res.Filtered)

	v.SetFilter("host1")
	assert.Equal(t, 1, v.State.Page)
	res = v.Apply(items)
	assert.True(t, res.Filtered)
	assert.Equal(t, 40, res.Total)
	assert.Equal(t, 11, res.Matched)

	v.SetPage(2)
	v.RequestSort("ttl")
	assert.Equal(t, 1, v.State.Page)
	v.RequestSort("ttl")
	res = v.Apply(items)
	require.NotEmpty(t, res.Page.Items)
	assert.Equal(t, "host19", *res.Page.Items[0].name)
	assert.Equal(t, SortConfig{Key: "ttl", Direction: Descending}, res.Sort)

	v.SetPage(5)
	v.RequestSort("bogus")
	assert.Equal(t, 5, v.State.Page, "unknown sort keys are ignored")
}

func TestView_ShrunkDataReturnsToFirstPage(t *testing.T) {
	items := make([]row, 11)
	for i := range items {
		items[i] = row{name: str("zone" + strconv.Itoa(i)), ttl: i}
	}
	v := &View[row]{PageSize: 10, Accessors: rowAccessors}

	v.SetPage(2)
	res := v.Apply(items)
	assert.Equal(t, 2, res.Page.Page)
	assert.Len(t, res.Page.Items, 1)

	res = v.Apply(items[:10])
	assert.Equal(t, 1, res.Page.Page)
	assert.Equal(t, 1, res.Page.TotalPages)
	assert.Len(t, res.Page.Items, 10)
	assert.Equal(t, 1, v.State.Page)
}

func TestView_EmptyDataKeepsEmptyPage(t *testing.T) {
	v := &View[row]{PageSize: 10, Accessors: rowAccessors}
	v.SetPage(0)

	res := v.Apply(nil)
	assert.Equal(t, 1, res.Page.Page)
	assert.Equal(t, 0, res.Page.TotalPages)
	assert.Empty(t, res.Page.Items)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("", "anything"))
	assert.True(t, ContainsFold("  WWW ", "www.example.com"))
	assert.False(t, ContainsFold("mail", "www", "ns1"))
	assert.True(t, ContainsFold("MX", strings.ToLower("mx")))
}
