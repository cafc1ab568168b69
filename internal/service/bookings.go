package service

import (
	"context"
	"fmt"

	"carcatalog/internal/apperror"
	"carcatalog/internal/auth"
	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

// BookingService manages car reservations
type BookingService struct {
	base
}

func NewBookingService(db *database.DB, events EventPublisher, logger *zap.Logger) *BookingService {
	return &BookingService{base: newBase(db, events, logger)}
}

func (s *BookingService) load(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.Load(ctx, database.Bookings, &bookings); err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

// Create books a car for the caller. A car cannot be booked twice for the same date and time.
func (s *BookingService) Create(ctx context.Context, caller *auth.Identity, req models.BookingRequest) (*models.Booking, error) {
	carID, err := req.Validate()
	if err != nil {
		return nil, err
	}

	var bookings []models.Booking
	var created models.Booking

	err = s.db.Update(ctx, database.Bookings, &bookings, func() error {
		candidate := models.Booking{
			ID:         database.NextID(bookings, func(b models.Booking) int { return b.ID }),
			UserID:     caller.Username,
			CarID:      carID,
			Date:       *req.Date,
			Time:       *req.Time,
			ReturnDate: *req.ReturnDate,
			ReturnTime: *req.ReturnTime,
			CreatedAt:  s.timestamp(),
		}
		if err := models.ValidateBookingSlot(candidate, bookings); err != nil {
			return err
		}

		created = candidate
		bookings = append(bookings, created)
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			s.logger.Debug("Booking slot taken",
				zap.Int("car_id", carID),
				zap.String("date", *req.Date),
				zap.String("time", *req.Time),
			)
		}
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.Int("booking_id", created.ID),
		zap.Int("car_id", created.CarID),
		zap.String("user_id", created.UserID),
	)
	s.publish(models.EventInsert, database.Bookings, created.ID, created)
	return &created, nil
}

// List returns every booking to admins and the caller's own bookings to everyone else
func (s *BookingService) List(ctx context.Context, caller *auth.Identity) ([]models.Booking, error) {
	if caller.IsAdmin {
		return s.All(ctx)
	}
	return s.ForUser(ctx, caller.Username)
}

// ForUser returns the bookings owned by username
func (s *BookingService) ForUser(ctx context.Context, username string) ([]models.Booking, error) {
	bookings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	owned := []models.Booking{}
	for _, b := range bookings {
		if b.UserID == username {
			owned = append(owned, b)
		}
	}
	return owned, nil
}

// All returns every booking
func (s *BookingService) All(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// Delete cancels booking id. Only the owner may cancel it.
func (s *BookingService) Delete(ctx context.Context, caller *auth.Identity, id int) (*models.Booking, error) {
	var bookings []models.Booking
	var deleted models.Booking

	err := s.db.Update(ctx, database.Bookings, &bookings, func() error {
		for i, b := range bookings {
			if b.ID != id {
				continue
			}
			if b.UserID != caller.Username {
				return apperror.Forbidden("You are not allowed to cancel this booking")
			}
			deleted = b
			bookings = append(bookings[:i], bookings[i+1:]...)
			return nil
		}
		return apperror.NotFound("Booking not found")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled", zap.Int("booking_id", deleted.ID), zap.String("user_id", deleted.UserID))
	s.publish(models.EventDelete, database.Bookings, deleted.ID, deleted)
	return &deleted, nil
}
