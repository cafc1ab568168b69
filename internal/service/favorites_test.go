package service

import (
	"context"
	"testing"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_AddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	events := &recordingPublisher{}
	svc := NewFavoriteService(db, events, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := svc.Add(ctx, "ana@example.com", 3)
		require.NoError(t, err)
		assert.True(t, resp.Success)
	}

	favs, err := svc.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, favs.CarIDs)
	assert.Len(t, events.all(), 1)
}

func TestFavoriteService_GetUnknownUser(t *testing.T) {
	svc := NewFavoriteService(newTestDB(t), nil, nil)

	favs, err := svc.Get(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, favs.CarIDs)
	assert.Empty(t, favs.CarIDs)
}

func TestFavoriteService_Remove(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Favorites, models.FavoritesDocument{
		Favorites: []models.FavoritesEntry{{Username: "ana@example.com", CarIDs: []int{1, 2, 3}}},
	})
	events := &recordingPublisher{}
	svc := NewFavoriteService(db, events, nil)
	ctx := context.Background()

	resp, err := svc.Remove(ctx, "ana@example.com", 2)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	favs, err := svc.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, favs.CarIDs)

	resp, err = svc.Remove(ctx, "ana@example.com", 2)
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = svc.Remove(ctx, "nobody@example.com", 1)
	require.NoError(t, err)
	assert.False(t, resp.Success)

	assert.Len(t, events.all(), 1)
}

func TestFavoriteService_UsersAreIndependent(t *testing.T) {
	svc := NewFavoriteService(newTestDB(t), nil, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "ana@example.com", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "bob@example.com", 2)
	require.NoError(t, err)

	ana, err := svc.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ana.CarIDs)

	bob, err := svc.Get(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, bob.CarIDs)
}
