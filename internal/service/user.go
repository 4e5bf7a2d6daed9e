package service

import (
	"context"
	"log/slog"
	"time"

	"merry/internal/domain/models"
	"merry/internal/domain/repositories"
)

// UserService maintains the lazy local mirror of identity-provider accounts.
type UserService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// EnsureFromClaims upserts the local mirror row from verified token claims
// and returns the mirrored user (including usage counters the provider does
// not track).
func (s *UserService) EnsureFromClaims(ctx context.Context, claims *models.SupabaseClaims) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:        claims.GetUserID(),
		Email:     claims.Email,
		Name:      claims.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if avatar, ok := claims.UserMetadata["avatar_url"].(string); ok && avatar != "" {
		user.AvatarURL = &avatar
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RecordPromptUse bumps the usage counter for an authenticated user. Usage
// accounting is best-effort: failures are logged, not surfaced.
func (s *UserService) RecordPromptUse(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := s.userRepo.IncrementPromptsUsed(ctx, userID); err != nil {
		s.logger.Warn("failed to record prompt use", "user_id", userID, "error", err)
	}
}
