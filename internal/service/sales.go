package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

// SaleFilter narrows the sales listing. Zero values match everything.
type SaleFilter struct {
	Model   string
	Country string
	Year    int
}

func (f SaleFilter) matches(sale models.Sale) bool {
	if f.Model != "" && !strings.EqualFold(sale.Model, f.Model) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(sale.Country, f.Country) {
		return false
	}
	if f.Year != 0 && sale.Year != f.Year {
		return false
	}
	return true
}

// SaleService answers read-only questions about sales facts
type SaleService struct {
	db     *database.DB
	logger *zap.Logger
}

func NewSaleService(db *database.DB, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{db: db, logger: logger}
}

func (s *SaleService) load(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := s.db.Load(ctx, database.Sales, &sales); err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	return sales, nil
}

// List returns the sales matching f
func (s *SaleService) List(ctx context.Context, f SaleFilter) (*models.SaleList, error) {
	sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Sale, 0, len(sales))
	for _, sale := range sales {
		if f.matches(sale) {
			matched = append(matched, sale)
		}
	}

	return &models.SaleList{Data: matched, Total: len(matched)}, nil
}

// sumBy adds up units per key, keeping keys in first-seen order
func sumBy[K comparable](sales []models.Sale, key func(models.Sale) K) ([]K, map[K]int) {
	var order []K
	totals := make(map[K]int)
	for _, sale := range sales {
		k := key(sale)
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += sale.UnitsSold
	}
	return order, totals
}

// AnnualByCountry totals units per country, largest first
func (s *SaleService) AnnualByCountry(ctx context.Context) ([]models.CountryTotal, error) {
	sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	order, totals := sumBy(sales, func(sale models.Sale) string { return sale.Country })
	result := make([]models.CountryTotal, 0, len(order))
	for _, country := range order {
		result = append(result, models.CountryTotal{Country: country, TotalUnits: totals[country]})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TotalUnits > result[j].TotalUnits })

	return result, nil
}

// TopModels totals units per model, largest first
func (s *SaleService) TopModels(ctx context.Context) ([]models.ModelTotal, error) {
	sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	order, totals := sumBy(sales, func(sale models.Sale) string { return sale.Model })
	result := make([]models.ModelTotal, 0, len(order))
	for _, model := range order {
		result = append(result, models.ModelTotal{Model: model, TotalUnits: totals[model]})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TotalUnits > result[j].TotalUnits })

	return result, nil
}

// TotalByYear totals units per year in ascending year order
func (s *SaleService) TotalByYear(ctx context.Context) ([]models.YearTotal, error) {
	sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	order, totals := sumBy(sales, func(sale models.Sale) int { return sale.Year })
	result := make([]models.YearTotal, 0, len(order))
	for _, year := range order {
		result = append(result, models.YearTotal{Year: year, TotalUnits: totals[year]})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Year < result[j].Year })

	return result, nil
}
