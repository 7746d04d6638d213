package product

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Product {
	return []Product{
		{ID: "1", Name: "Panel 1GB", Price: 10000, Category: CategoryPanel},
		{ID: "2", Name: "Reseller", Price: 25000, Category: CategoryReseller},
		{ID: "3", Name: "Panel 2GB", Price: 15000, Category: CategoryPanel},
		{ID: "4", Name: "VPS 2C", Price: 50000, Category: CategoryVPS},
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		category Category
		want     []string
	}{
		{name: "all keeps catalog order", category: CategoryAll, want: []string{"1", "2", "3", "4"}},
		{name: "panel keeps relative order", category: CategoryPanel, want: []string{"1", "3"}},
		{name: "single match", category: CategoryVPS, want: []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(catalog, tt.category)
			assert.Equal(t, tt.want, ids(got))
			assert.Len(t, Filter(catalog, tt.category), len(got), "filtering twice yields same count")
		})
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	catalog := testCatalog()
	got := Filter(catalog, CategoryAll)
	got[0].Name = "changed"
	assert.Equal(t, "Panel 1GB", catalog[0].Name)
}

func TestFind(t *testing.T) {
	p, ok := Find(testCatalog(), "3")
	require.True(t, ok)
	assert.Equal(t, "Panel 2GB", p.Name)

	_, ok = Find(testCatalog(), "missing")
	assert.False(t, ok)
}

func TestParseFilter(t *testing.T) {
	c, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, c)

	c, err = ParseFilter("all")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, c)

	c, err = ParseFilter("vps")
	require.NoError(t, err)
	assert.Equal(t, CategoryVPS, c)

	_, err = ParseFilter("games")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseCategory_RejectsAll(t *testing.T) {
	_, err := ParseCategory("all")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{ProductID: "x"}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "product x not found", err.Error())
}
