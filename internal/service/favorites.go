package service

import (
	"context"
	"fmt"
	"slices"

	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

// FavoriteService keeps the per-user lists of favorite cars
type FavoriteService struct {
	base
}

func NewFavoriteService(db *database.DB, events EventPublisher, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{base: newBase(db, events, logger)}
}

func findFavorites(doc *models.FavoritesDocument, username string) *models.FavoritesEntry {
	for i := range doc.Favorites {
		if doc.Favorites[i].Username == username {
			return &doc.Favorites[i]
		}
	}
	return nil
}

// Get returns the favorite car ids of username; unknown users have none
func (s *FavoriteService) Get(ctx context.Context, username string) (*models.FavoriteIDs, error) {
	var doc models.FavoritesDocument
	if err := s.db.Load(ctx, database.Favorites, &doc); err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	ids := []int{}
	if entry := findFavorites(&doc, username); entry != nil && entry.CarIDs != nil {
		ids = entry.CarIDs
	}
	return &models.FavoriteIDs{CarIDs: ids}, nil
}

// Add puts carID in the favorites of username. Adding twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, username string, carID int) (*models.MessageResponse, error) {
	var doc models.FavoritesDocument
	changed := false

	err := s.db.Update(ctx, database.Favorites, &doc, func() error {
		entry := findFavorites(&doc, username)
		if entry == nil {
			doc.Favorites = append(doc.Favorites, models.FavoritesEntry{Username: username, CarIDs: []int{}})
			entry = &doc.Favorites[len(doc.Favorites)-1]
		}
		if slices.Contains(entry.CarIDs, carID) {
			return database.ErrSkipSave
		}
		entry.CarIDs = append(entry.CarIDs, carID)
		changed = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	if changed {
		s.publish(models.EventInsert, database.Favorites, carID, models.FavoritesEntry{Username: username, CarIDs: []int{carID}})
	}
	return &models.MessageResponse{Message: "Car added to favorites", Success: true}, nil
}

// Remove takes carID out of the favorites of username.
// Unknown users and non-member cars report Success false without writing.
func (s *FavoriteService) Remove(ctx context.Context, username string, carID int) (*models.MessageResponse, error) {
	var doc models.FavoritesDocument
	resp := &models.MessageResponse{}

	err := s.db.Update(ctx, database.Favorites, &doc, func() error {
		entry := findFavorites(&doc, username)
		if entry == nil {
			resp.Message = "User not found"
			return database.ErrSkipSave
		}

		idx := slices.Index(entry.CarIDs, carID)
		if idx < 0 {
			resp.Message = "Car is not in favorites"
			return database.ErrSkipSave
		}

		entry.CarIDs = slices.Delete(entry.CarIDs, idx, idx+1)
		resp.Message = "Car removed from favorites"
		resp.Success = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove favorite: %w", err)
	}

	if resp.Success {
		s.publish(models.EventDelete, database.Favorites, carID, models.FavoritesEntry{Username: username, CarIDs: []int{carID}})
	}
	return resp, nil
}
