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

// TokenIssuer signs session tokens for authenticated users
type TokenIssuer interface {
	IssueToken(username string, isAdmin bool) (string, error)
}

// UserService registers accounts and logs them in
type UserService struct {
	base
	tokens TokenIssuer
}

func NewUserService(db *database.DB, tokens TokenIssuer, events EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{base: newBase(db, events, logger), tokens: tokens}
}

// Register stores a new non-admin account with a hashed password
func (s *UserService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return apperror.Validation("Username and password are required")
	}

	var users []models.User
	err := s.db.Update(ctx, database.Users, &users, func() error {
		if err := models.ValidateRegistration(username, users); err != nil {
			return err
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		users = append(users, models.User{Username: username, Password: hash})
		return nil
	})
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			return fmt.Errorf("failed to register user: %w", err)
		}
		s.logger.Debug("Registration rejected", zap.String("username", username), zap.Error(err))
		return err
	}

	s.logger.Info("User registered", zap.String("username", username))
	s.events.Broadcast(models.ChangeEvent{
		EventType:  models.EventInsert,
		Collection: string(database.Users),
		EntityID:   username,
		Timestamp:  s.now().UTC(),
	})
	return nil
}

// Login checks the credentials and issues a session token
func (s *UserService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, apperror.Unauthorized("Authentication required", nil)
	}

	var users []models.User
	if err := s.db.Load(ctx, database.Users, &users); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	var user *models.User
	for i := range users {
		if users[i].Username == username {
			user = &users[i]
			break
		}
	}
	if user == nil || !auth.VerifyPassword(password, user.Password) {
		s.logger.Debug("Login rejected", zap.String("username", username))
		return nil, apperror.Unauthorized("Invalid username or password", nil)
	}

	token, err := s.tokens.IssueToken(user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{Token: token, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}
