package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"carcatalog/internal/apperror"
	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCars() []models.Car {
	return []models.Car{
		{ID: 1, Make: "Toyota", Model: "Corolla", Year: 2020, Features: []string{"AC"}},
		{ID: 2, Make: "Tesla", Model: "Model 3", Year: 2022, Features: []string{}},
		{ID: 3, Make: "Ford", Model: "Mustang Mach-E", Year: 2021, Features: []string{}},
		{ID: 7, Make: "Tesla", Model: "Model Y", Year: 2023, Features: []string{}},
	}
}

func input(mk, model string, year any) models.CarInput {
	raw, _ := json.Marshal(year)
	return models.CarInput{Make: mk, Model: model, Year: raw}
}

func TestCarService_List(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	svc := NewCarService(db, nil, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, CarQuery{Page: 1, Limit: DefaultCarLimit})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Data, 4)

	page, err = svc.List(ctx, CarQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 7, page.Data[0].ID)

	// Any word of the model may match the prefix.
	page, err = svc.List(ctx, CarQuery{Model: "mach", Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Data[0].ID)

	page, err = svc.List(ctx, CarQuery{Model: "MODEL", Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.List(ctx, CarQuery{Page: 5, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 4, page.Total)

	page, err = svc.List(ctx, CarQuery{Page: 0, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestCarService_CreateAssignsNextID(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	events := &recordingPublisher{}
	svc := NewCarService(db, events, nil)

	car, err := svc.Create(context.Background(), input("Honda", "Civic", 2021))
	require.NoError(t, err)
	assert.Equal(t, 8, car.ID)
	assert.Equal(t, 2021, car.Year)
	assert.NotNil(t, car.Features)

	got, err := svc.Get(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Civic", got.Model)

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, models.EventInsert, published[0].EventType)
	assert.Equal(t, "cars", published[0].Collection)
	assert.Equal(t, "8", published[0].EntityID)
}

func TestCarService_CreateEmptyInventory(t *testing.T) {
	svc := NewCarService(newTestDB(t), nil, nil)

	car, err := svc.Create(context.Background(), input("Honda", "Civic", 2021))
	require.NoError(t, err)
	assert.Equal(t, 1, car.ID)
}

func TestCarService_CreateRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	events := &recordingPublisher{}
	svc := NewCarService(db, events, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, input("Toyota", "Corolla", 2020))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Create(ctx, input("honda", "Civic", 2021))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, input("Honda", "Civic", "2021"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	page, err := svc.List(ctx, CarQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Empty(t, events.all())
}

func TestCarService_Update(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	svc := NewCarService(db, nil, nil)
	ctx := context.Background()

	// Keeping its own model and year is not a duplicate.
	car, err := svc.Update(ctx, 1, input("Toyota", "Corolla", 2020))
	require.NoError(t, err)
	assert.Equal(t, []string{"AC"}, car.Features)

	car, err = svc.Update(ctx, 1, input("Toyota", "Corolla Cross", 2024))
	require.NoError(t, err)
	assert.Equal(t, "Corolla Cross", car.Model)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year)

	_, err = svc.Update(ctx, 2, input("Tesla", "Model Y", 2023))
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestCarService_NotFound(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	svc := NewCarService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, 99)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Update(ctx, 99, input("Honda", "Civic", 2021))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Delete(ctx, 99)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCarService_Delete(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Cars, sampleCars())
	svc := NewCarService(db, nil, nil)
	ctx := context.Background()

	car, err := svc.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Model 3", car.Model)

	_, err = svc.Get(ctx, 2)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// The next id still follows the largest remaining id.
	created, err := svc.Create(ctx, input("Honda", "Civic", 2021))
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID)
}

func TestCarService_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	svc := NewCarService(newTestDB(t), nil, nil)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			car, err := svc.Create(ctx, input("Honda", "Civic", year))
			if assert.NoError(t, err) {
				ids <- car.ID
			}
		}(2000 + i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
