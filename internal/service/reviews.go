package service

import (
	"context"
	"fmt"
	"math"

	"carcatalog/internal/apperror"
	"carcatalog/internal/auth"
	"carcatalog/internal/database"
	"carcatalog/internal/models"

	"go.uber.org/zap"
)

// ReviewService manages car reviews. Only the author may edit or delete a review.
type ReviewService struct {
	base
}

func NewReviewService(db *database.DB, events EventPublisher, logger *zap.Logger) *ReviewService {
	return &ReviewService{base: newBase(db, events, logger)}
}

func (s *ReviewService) forCar(ctx context.Context, carID int) ([]models.Review, error) {
	var doc models.ReviewsDocument
	if err := s.db.Load(ctx, database.Reviews, &doc); err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	reviews := []models.Review{}
	for _, r := range doc.Reviews {
		if r.CarID == carID {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

// averageRating is the mean rating rounded to one decimal, 0 when there are none
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}

// ForCar lists the reviews of carID with their average rating
func (s *ReviewService) ForCar(ctx context.Context, carID int) (*models.CarReviews, error) {
	reviews, err := s.forCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	return &models.CarReviews{Reviews: reviews, AvgRating: averageRating(reviews), Total: len(reviews)}, nil
}

// Average returns the average rating of carID
func (s *ReviewService) Average(ctx context.Context, carID int) (*models.RatingSummary, error) {
	reviews, err := s.forCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	return &models.RatingSummary{AvgRating: averageRating(reviews), Total: len(reviews)}, nil
}

// Create stores a review written by the caller
func (s *ReviewService) Create(ctx context.Context, caller *auth.Identity, req models.ReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var doc models.ReviewsDocument
	var created models.Review

	err := s.db.Update(ctx, database.Reviews, &doc, func() error {
		created = models.Review{
			ID:       database.NextID(doc.Reviews, func(r models.Review) int { return r.ID }),
			CarID:    *req.CarID,
			Username: caller.Username,
			Text:     *req.Text,
			Rating:   *req.Rating,
			Date:     s.timestamp(),
		}
		doc.Reviews = append(doc.Reviews, created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	s.publish(models.EventInsert, database.Reviews, created.ID, created)
	return &created, nil
}

// Update edits the text and rating of review id; absent fields are kept
func (s *ReviewService) Update(ctx context.Context, caller *auth.Identity, id int, req models.ReviewUpdate) (*models.Review, error) {
	var doc models.ReviewsDocument
	var updated models.Review

	err := s.db.Update(ctx, database.Reviews, &doc, func() error {
		review, err := s.owned(doc.Reviews, caller, id, "edit")
		if err != nil {
			return err
		}

		if req.Rating != nil {
			if err := models.ValidateRating(*req.Rating); err != nil {
				return err
			}
			review.Rating = *req.Rating
		}
		if req.Text != nil {
			review.Text = *req.Text
		}
		review.Updated = s.timestamp()
		updated = *review
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(models.EventUpdate, database.Reviews, updated.ID, updated)
	return &updated, nil
}

// Delete removes review id
func (s *ReviewService) Delete(ctx context.Context, caller *auth.Identity, id int) error {
	var doc models.ReviewsDocument
	var deleted models.Review

	err := s.db.Update(ctx, database.Reviews, &doc, func() error {
		review, err := s.owned(doc.Reviews, caller, id, "delete")
		if err != nil {
			return err
		}
		deleted = *review

		for i := range doc.Reviews {
			if doc.Reviews[i].ID == id {
				doc.Reviews = append(doc.Reviews[:i], doc.Reviews[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(models.EventDelete, database.Reviews, deleted.ID, deleted)
	return nil
}

// owned finds review id and checks that caller wrote it
func (s *ReviewService) owned(reviews []models.Review, caller *auth.Identity, id int, action string) (*models.Review, error) {
	for i := range reviews {
		if reviews[i].ID != id {
			continue
		}
		if reviews[i].Username != caller.Username {
			s.logger.Debug("Review ownership check failed",
				zap.Int("review_id", id),
				zap.String("username", caller.Username),
			)
			return nil, apperror.Forbidden("You are not allowed to " + action + " this review")
		}
		return &reviews[i], nil
	}
	return nil, apperror.NotFound("Review not found")
}
