package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type reviewsDoc struct {
	Reviews []testRecord `json:"reviews"`
}

type favoritesDoc struct {
	Favorites []testRecord `json:"favorites"`
}

func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemoryBackend()
		},
		"file": func(t *testing.T) Backend {
			b, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
			require.NoError(t, err)
			return b
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "store.db"))
			require.NoError(t, err)
			t.Cleanup(func() { b.Close() })
			return b
		},
	}
}

func TestDB_LoadMissingReturnsDefault(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)
			db := New(backend, nil)

			var cars []testRecord
			require.NoError(t, db.Load(ctx, Cars, &cars))
			assert.Empty(t, cars)

			// The default was persisted.
			data, err := backend.Read(ctx, Cars)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(data))

			// A second load returns the same default.
			cars = append(cars, testRecord{ID: 99})
			require.NoError(t, db.Load(ctx, Cars, &cars))
			assert.Empty(t, cars)

			var reviews reviewsDoc
			require.NoError(t, db.Load(ctx, Reviews, &reviews))
			assert.NotNil(t, reviews.Reviews)
			assert.Empty(t, reviews.Reviews)

			var favorites favoritesDoc
			require.NoError(t, db.Load(ctx, Favorites, &favorites))
			assert.NotNil(t, favorites.Favorites)
			assert.Empty(t, favorites.Favorites)

			data, err = backend.Read(ctx, Favorites)
			require.NoError(t, err)
			assert.JSONEq(t, `{"favorites": []}`, string(data))
		})
	}
}

func TestDB_LoadUnparseableResetsToDefault(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, Bookings, []byte(`{not json`)))

	db := New(backend, nil)

	var bookings []testRecord
	require.NoError(t, db.Load(ctx, Bookings, &bookings))
	assert.Empty(t, bookings)

	data, err := backend.Read(ctx, Bookings)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestDB_SaveThenLoad(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := New(newBackend(t), nil)

			in := []testRecord{{ID: 1, Name: "Corolla"}, {ID: 2, Name: "Civic"}}
			require.NoError(t, db.Save(ctx, Cars, in))

			var out []testRecord
			require.NoError(t, db.Load(ctx, Cars, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestDB_Update(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryBackend(), nil)

	var cars []testRecord
	err := db.Update(ctx, Cars, &cars, func() error {
		cars = append(cars, testRecord{ID: NextID(cars, func(r testRecord) int { return r.ID }), Name: "A4"})
		return nil
	})
	require.NoError(t, err)

	var stored []testRecord
	require.NoError(t, db.Load(ctx, Cars, &stored))
	assert.Equal(t, []testRecord{{ID: 1, Name: "A4"}}, stored)
}

func TestDB_UpdateSkipSave(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryBackend(), nil)
	require.NoError(t, db.Save(ctx, Cars, []testRecord{{ID: 1, Name: "A4"}}))

	var cars []testRecord
	err := db.Update(ctx, Cars, &cars, func() error {
		cars = nil
		return ErrSkipSave
	})
	require.NoError(t, err)

	var stored []testRecord
	require.NoError(t, db.Load(ctx, Cars, &stored))
	assert.Len(t, stored, 1)
}

func TestDB_UpdateErrorAbortsWrite(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryBackend(), nil)
	require.NoError(t, db.Save(ctx, Cars, []testRecord{{ID: 1, Name: "A4"}}))

	boom := errors.New("boom")
	var cars []testRecord
	err := db.Update(ctx, Cars, &cars, func() error {
		cars = append(cars, testRecord{ID: 2})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var stored []testRecord
	require.NoError(t, db.Load(ctx, Cars, &stored))
	assert.Len(t, stored, 1)
}

func TestDB_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	db := New(backend, nil)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cars []testRecord
			err := db.Update(ctx, Cars, &cars, func() error {
				cars = append(cars, testRecord{ID: NextID(cars, func(r testRecord) int { return r.ID })})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var stored []testRecord
	require.NoError(t, db.Load(ctx, Cars, &stored))
	require.Len(t, stored, writers)

	seen := make(map[int]bool)
	for _, r := range stored {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}
}

func TestDB_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := New(NewMemoryBackend(), nil)
	var cars []testRecord
	assert.ErrorIs(t, db.Load(ctx, Cars, &cars), context.Canceled)
}

func TestFileBackend_CreatesFileOnFirstLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	db := New(backend, nil)
	var reviews reviewsDoc
	require.NoError(t, db.Load(ctx, Reviews, &reviews))

	data, err := os.ReadFile(filepath.Join(dir, "reviews.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"reviews": []}`, string(data))

	var cars []testRecord
	require.NoError(t, db.Load(ctx, Cars, &cars))
	_, err = os.Stat(filepath.Join(dir, "db.json"))
	assert.NoError(t, err)
}

func TestFileBackend_WriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, backend.Write(ctx, Sales, []byte(`[]`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sales.json", entries[0].Name())
}

func TestFileBackend_RejectsUnsafeNames(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, err = backend.Read(context.Background(), Collection("../escape"))
	assert.Error(t, err)
	assert.Error(t, backend.Write(context.Background(), Collection("../escape"), []byte(`[]`)))
}
