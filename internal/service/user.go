// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cozysnippet/api/internal/metrics"
	"github.com/cozysnippet/api/internal/model"
	"github.com/cozysnippet/api/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserService handles user business logic.
type UserService struct {
	repo     *repository.Repository
	validate *Validator
	metrics  metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:     repo,
		validate: NewValidator(),
		metrics:  recorder,
	}
}

// ListUsers returns every user in insertion order.
func (s *UserService) ListUsers(ctx context.Context) []model.User {
	return s.repo.ListUsers(ctx)
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (model.User, error) {
	user, ok := s.repo.GetUserByID(ctx, id)
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return user, nil
}

// CreateUser validates req and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (model.User, error) {
	if err := s.validate.Validate(req, "Invalid input data"); err != nil {
		return model.User{}, err
	}

	user, err := s.repo.CreateUser(ctx, model.UserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, fmt.Errorf("%w: %s", ErrEmailExists, *req.Email)
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// UpdateUser validates req and merges it over the stored user.
func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (model.User, error) {
	if err := s.validate.Validate(req, "Invalid input data"); err != nil {
		return model.User{}, err
	}

	user, err := s.repo.UpdateUser(ctx, id, model.UserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return model.User{}, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, fmt.Errorf("%w: %s", ErrEmailExists, *req.Email)
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserUpdated()
	return user, nil
}

// DeleteUser removes the user with the given id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if !s.repo.DeleteUser(ctx, id) {
		return ErrUserNotFound
	}
	s.metrics.IncUserDeleted()
	return nil
}

// SeedUsers creates req.Count synthetic users, DefaultSeedCount if unset.
func (s *UserService) SeedUsers(ctx context.Context, req SeedUsersRequest) ([]model.User, error) {
	if err := s.validate.Validate(req, "Invalid seed data"); err != nil {
		return nil, err
	}

	count := DefaultSeedCount
	if req.Count != nil {
		count = *req.Count
	}

	users := s.repo.SeedUsers(ctx, count)
	s.metrics.AddUsersSeeded(len(users))
	return users, nil
}

// Count returns the number of stored users.
func (s *UserService) Count() int {
	return s.repo.Count()
}
