package service

import (
	"strconv"
	"time"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

// EventPublisher receives a change event after every successful write
type EventPublisher interface {
	Broadcast(event models.ChangeEvent)
}

type noopPublisher struct{}

func (noopPublisher) Broadcast(models.ChangeEvent) {}

// base holds what every service shares
type base struct {
	db     *database.DB
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func newBase(db *database.DB, events EventPublisher, logger *zap.Logger) base {
	if events == nil {
		events = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{db: db, events: events, logger: logger, now: time.Now}
}

func (b *base) publish(eventType string, c database.Collection, id int, data any) {
	b.events.Broadcast(models.ChangeEvent{
		EventType:  eventType,
		Collection: string(c),
		EntityID:   strconv.Itoa(id),
		Data:       data,
		Timestamp:  b.now().UTC(),
	})
}

func (b *base) timestamp() string {
	return b.now().Format(time.RFC3339)
}

// Services bundles the domain services of the application
type Services struct {
	Cars      *CarService
	Sales     *SaleService
	Users     *UserService
	Favorites *FavoriteService
	Reviews   *ReviewService
	Bookings  *BookingService
}

// New wires every service over db
func New(db *database.DB, tokens TokenIssuer, events EventPublisher, logger *zap.Logger) *Services {
	return &Services{
		Cars:      NewCarService(db, events, logger),
		Sales:     NewSaleService(db, logger),
		Users:     NewUserService(db, tokens, events, logger),
		Favorites: NewFavoriteService(db, events, logger),
		Reviews:   NewReviewService(db, events, logger),
		Bookings:  NewBookingService(db, events, logger),
	}
}
