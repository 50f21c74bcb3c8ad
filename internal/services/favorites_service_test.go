package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardtracker/internal/favorites"
	"cardtracker/pkg/contracts/domain"
)

func newLocalService(t *testing.T) *FavoritesService {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".favorites_local.json")
	store := favorites.NewStore(nil, favorites.NewLocalBackend(path, nil))
	return NewFavoritesService(store, nil, nil)
}

func TestFavoritesService_GetEmpty(t *testing.T) {
	svc := newLocalService(t)

	keys, backend, err := svc.Get(context.Background(), "ash")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, "local", backend)
}

func TestFavoritesService_Replace(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	stored, err := svc.Replace(ctx, "ash", []string{"151|151/165", "151|025/165", "151|025/165"})
	require.NoError(t, err)
	assert.Equal(t, []string{"151|025/165", "151|151/165"}, stored, "sorted and deduplicated")

	keys, _, err := svc.Get(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, stored, keys)
}

func TestFavoritesService_ReplaceEmptyClears(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "ash", []string{"k"})
	require.NoError(t, err)

	stored, err := svc.Replace(ctx, "ash", nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFavoritesService_ReplaceIsolatedPerUser(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "ash", []string{"a"})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, "misty", []string{"m"})
	require.NoError(t, err)

	keys, _, err := svc.Get(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestFavoritesService_Toggle(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	on, err := svc.Toggle(ctx, "ash", "151|025/165")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := svc.Toggle(ctx, "ash", "151|025/165")
	require.NoError(t, err)
	assert.False(t, off)

	keys, _, err := svc.Get(ctx, "ash")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFavoritesService_ExportImport(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "ash", []string{"a", "b"})
	require.NoError(t, err)

	doc, err := svc.Export(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, doc.Users["ash"])

	// Import into a fresh service merges with whatever is there.
	other := newLocalService(t)
	_, err = other.Replace(ctx, "ash", []string{"c"})
	require.NoError(t, err)

	merged, err := other.Import(ctx, "ash", doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, merged)
}

func TestFavoritesService_ImportIgnoresOtherUsers(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	doc := domain.NewFavoritesDocument()
	doc.SetUser("misty", map[string]struct{}{"z": {}})

	merged, err := svc.Import(ctx, "ash", doc)
	require.NoError(t, err)
	assert.Empty(t, merged)
}
