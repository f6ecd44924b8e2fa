package services

import (
	"context"
	"errors"
	"fmt"

	"astromatch/internal/models"
	"astromatch/internal/repositories"
)

// UserService serves member profiles.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// List returns every member, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return withZodiac(users), nil
}

// Get returns a single member.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u := user.WithZodiac()
	return &u, nil
}

// UpdatePhoto sets the photo reference of ownerID's own profile.
func (s *UserService) UpdatePhoto(ctx context.Context, ownerID, photo string) (*models.User, error) {
	if err := s.repo.UpdatePhoto(ctx, ownerID, photo); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	return s.Get(ctx, ownerID)
}

// withZodiac derives the sign of every user from their birthday, so a
// stored value never drifts from it.
func withZodiac(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.WithZodiac()
	}
	return out
}
