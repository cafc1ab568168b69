package service

import (
	"context"
	"testing"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSales() []models.Sale {
	return []models.Sale{
		{Year: 2021, Model: "Corolla", Country: "Spain", UnitsSold: 5},
		{Year: 2020, Model: "Civic", Country: "France", UnitsSold: 10},
		{Year: 2020, Model: "Corolla", Country: "Spain", UnitsSold: 3},
		{Year: 2022, Model: "Model 3", Country: "Germany", UnitsSold: 8},
	}
}

func TestSaleService_List(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Sales, sampleSales())
	svc := NewSaleService(db, nil)
	ctx := context.Background()

	all, err := svc.List(ctx, SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)

	corolla, err := svc.List(ctx, SaleFilter{Model: "COROLLA"})
	require.NoError(t, err)
	assert.Equal(t, 2, corolla.Total)

	// The model filter is an exact match, not a prefix.
	none, err := svc.List(ctx, SaleFilter{Model: "Coro"})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total)
	assert.NotNil(t, none.Data)

	narrowed, err := svc.List(ctx, SaleFilter{Model: "corolla", Country: "spain", Year: 2020})
	require.NoError(t, err)
	require.Equal(t, 1, narrowed.Total)
	assert.Equal(t, 3, narrowed.Data[0].UnitsSold)
}

func TestSaleService_TotalByYear(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Sales, []models.Sale{
		{Year: 2021, Model: "A", Country: "X", UnitsSold: 5},
		{Year: 2020, Model: "B", Country: "Y", UnitsSold: 10},
		{Year: 2021, Model: "C", Country: "Z", UnitsSold: 7},
	})
	svc := NewSaleService(db, nil)

	totals, err := svc.TotalByYear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.YearTotal{
		{Year: 2020, TotalUnits: 10},
		{Year: 2021, TotalUnits: 12},
	}, totals)
}

func TestSaleService_TotalByYearMergesSameYear(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Sales, []models.Sale{
		{Year: 2020, Model: "A", Country: "X", UnitsSold: 10},
		{Year: 2020, Model: "B", Country: "X", UnitsSold: 5},
		{Year: 2021, Model: "A", Country: "Y", UnitsSold: 7},
	})
	svc := NewSaleService(db, nil)

	totals, err := svc.TotalByYear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.YearTotal{
		{Year: 2020, TotalUnits: 15},
		{Year: 2021, TotalUnits: 7},
	}, totals)
}

func TestSaleService_AnnualByCountry(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Sales, append(sampleSales(), models.Sale{Year: 2023, Model: "Civic", Country: "Italy", UnitsSold: 8}))
	svc := NewSaleService(db, nil)

	totals, err := svc.AnnualByCountry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CountryTotal{
		{Country: "France", TotalUnits: 10},
		{Country: "Spain", TotalUnits: 8},
		{Country: "Germany", TotalUnits: 8},
		{Country: "Italy", TotalUnits: 8},
	}, totals)
}

func TestSaleService_TopModels(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, database.Sales, sampleSales())
	svc := NewSaleService(db, nil)

	totals, err := svc.TopModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.ModelTotal{
		{Model: "Civic", TotalUnits: 10},
		{Model: "Corolla", TotalUnits: 8},
		{Model: "Model 3", TotalUnits: 8},
	}, totals)
}

func TestSaleService_EmptyCollection(t *testing.T) {
	svc := NewSaleService(newTestDB(t), nil)
	ctx := context.Background()

	byYear, err := svc.TotalByYear(ctx)
	require.NoError(t, err)
	assert.Empty(t, byYear)
	assert.NotNil(t, byYear)

	list, err := svc.List(ctx, SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
}
