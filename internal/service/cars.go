package service

import (
	"context"
	"fmt"
	"strings"

	"carcatalog/internal/apperror"
	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

const DefaultCarLimit = 5

// CarQuery selects one page of the car listing.
// Model matches cars having a model word that starts with it, ignoring case.
type CarQuery struct {
	Model string
	Page  int
	Limit int
}

// CarService manages the car inventory
type CarService struct {
	base
}

func NewCarService(db *database.DB, events EventPublisher, logger *zap.Logger) *CarService {
	return &CarService{base: newBase(db, events, logger)}
}

func (s *CarService) load(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	if err := s.db.Load(ctx, database.Cars, &cars); err != nil {
		return nil, fmt.Errorf("failed to load cars: %w", err)
	}
	return cars, nil
}

// List returns the requested page of cars matching q
func (s *CarService) List(ctx context.Context, q CarQuery) (*models.CarPage, error) {
	cars, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := cars
	if q.Model != "" {
		prefix := strings.ToLower(q.Model)
		matched = make([]models.Car, 0, len(cars))
		for _, car := range cars {
			if modelHasWordPrefix(car.Model, prefix) {
				matched = append(matched, car)
			}
		}
	}

	page := &models.CarPage{
		Data:  []models.Car{},
		Total: len(matched),
		Page:  q.Page,
		Limit: q.Limit,
	}
	if q.Page < 1 || q.Limit < 1 {
		return page, nil
	}

	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return page, nil
	}
	end := min(start+q.Limit, len(matched))
	page.Data = matched[start:end]

	return page, nil
}

func modelHasWordPrefix(model, prefix string) bool {
	for _, word := range strings.Fields(model) {
		if strings.HasPrefix(strings.ToLower(word), prefix) {
			return true
		}
	}
	return false
}

// Get returns the car with the given id
func (s *CarService) Get(ctx context.Context, id int) (*models.Car, error) {
	cars, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, car := range cars {
		if car.ID == id {
			return &car, nil
		}
	}
	return nil, apperror.NotFound("Car not found")
}

// Create validates in and appends it to the inventory under a fresh id
func (s *CarService) Create(ctx context.Context, in models.CarInput) (*models.Car, error) {
	var cars []models.Car
	var created models.Car

	err := s.db.Update(ctx, database.Cars, &cars, func() error {
		if err := models.ValidateCar(in, cars); err != nil {
			return err
		}

		year, _ := in.YearValue()
		created = models.Car{
			ID:       database.NextID(cars, func(c models.Car) int { return c.ID }),
			Make:     in.Make,
			Model:    in.Model,
			Year:     year,
			Features: in.Features,
		}
		if created.Features == nil {
			created.Features = []string{}
		}
		cars = append(cars, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Car created", zap.Int("car_id", created.ID), zap.String("model", created.Model))
	s.publish(models.EventInsert, database.Cars, created.ID, created)
	return &created, nil
}

// Update replaces the fields of car id with in. Features are kept when in omits them.
func (s *CarService) Update(ctx context.Context, id int, in models.CarInput) (*models.Car, error) {
	var cars []models.Car
	var updated models.Car

	err := s.db.Update(ctx, database.Cars, &cars, func() error {
		idx := -1
		for i, car := range cars {
			if car.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperror.NotFound("Car not found")
		}

		in.ID = id
		if err := models.ValidateCar(in, cars); err != nil {
			return err
		}

		year, _ := in.YearValue()
		car := &cars[idx]
		car.Make = in.Make
		car.Model = in.Model
		car.Year = year
		if in.Features != nil {
			car.Features = in.Features
		}
		updated = *car
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(models.EventUpdate, database.Cars, updated.ID, updated)
	return &updated, nil
}

// Delete removes car id and returns it
func (s *CarService) Delete(ctx context.Context, id int) (*models.Car, error) {
	var cars []models.Car
	var deleted models.Car

	err := s.db.Update(ctx, database.Cars, &cars, func() error {
		for i, car := range cars {
			if car.ID == id {
				deleted = car
				cars = append(cars[:i], cars[i+1:]...)
				return nil
			}
		}
		return apperror.NotFound("Car not found")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Car deleted", zap.Int("car_id", deleted.ID))
	s.publish(models.EventDelete, database.Cars, deleted.ID, deleted)
	return &deleted, nil
}
