package repofake

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tangerineshop/shop-server/catalog"
)

func TestUpsertCategoryAssignsIDs(t *testing.T) {
	repo := NewFakeCatalogRepo()

	outer := &catalog.Category{Name: "outer"}
	require.NoError(t, repo.UpsertCategory(t.Context(), outer))
	require.NotZero(t, outer.ID)

	shoes := &catalog.Category{Name: "shoes"}
	require.NoError(t, repo.UpsertCategory(t.Context(), shoes))
	require.NotZero(t, shoes.ID)
	require.NotEqual(t, outer.ID, shoes.ID)

	stored, err := repo.GetCategory(t.Context(), outer.ID)
	require.NoError(t, err)
	require.Equal(t, "outer", stored.Name)
}

func TestUpsertCategoryOverwritesByID(t *testing.T) {
	repo := NewFakeCatalogRepo()

	category := &catalog.Category{Name: "outer"}
	require.NoError(t, repo.UpsertCategory(t.Context(), category))

	renamed := &catalog.Category{ID: category.ID, Name: "outerwear"}
	require.NoError(t, repo.UpsertCategory(t.Context(), renamed))

	categories, err := repo.ListCategories(t.Context())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "outerwear", categories[0].Name)
}
