package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandi/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGeocodeStore_GetPut(t *testing.T) {
	db := setupTestDB(t)
	store := db.GeocodeStore("session-a")

	coords, ok, err := store.Get("pune, maharashtra")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, coords)

	require.NoError(t, store.Put("pune, maharashtra", &models.Coordinates{Lat: 18.5204, Lon: 73.8567}))
	require.NoError(t, store.Put("atlantis", nil))

	coords, ok, err = store.Get("pune, maharashtra")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, coords)
	assert.InDelta(t, 18.5204, coords.Lat, 1e-9)
	assert.InDelta(t, 73.8567, coords.Lon, 1e-9)

	coords, ok, err = store.Get("atlantis")
	require.NoError(t, err)
	assert.True(t, ok, "remembered failures are cache hits")
	assert.Nil(t, coords)

	assert.Equal(t, 2, store.Len())
}

func TestGeocodeStore_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	store := db.GeocodeStore("session-a")

	require.NoError(t, store.Put("nashik", nil))
	require.NoError(t, store.Put("nashik", &models.Coordinates{Lat: 19.99, Lon: 73.78}))

	coords, ok, err := store.Get("nashik")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, coords)
	assert.InDelta(t, 19.99, coords.Lat, 1e-9)
	assert.Equal(t, 1, store.Len())
}

func TestGeocodeStore_ScopesAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	a := db.GeocodeStore("session-a")
	b := db.GeocodeStore("session-b")

	require.NoError(t, a.Put("pune", &models.Coordinates{Lat: 18.52, Lon: 73.85}))

	_, ok, err := b.Get("pune")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Put("pune", nil))
	require.NoError(t, a.Purge())

	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, b.Len())
}
