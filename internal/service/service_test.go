package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *recordingPublisher) Broadcast(event models.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []models.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ChangeEvent(nil), p.events...)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db := database.New(database.NewMemoryBackend(), nil)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *database.DB, c database.Collection, v any) {
	t.Helper()
	require.NoError(t, db.Save(context.Background(), c, v))
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}
