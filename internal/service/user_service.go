package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// UserService backs the admin views over user and subscription records.
type UserService struct {
	users    UserStore
	activity ActivityStore
	logger   *logrus.Logger
	now      func() time.Time
}

func NewUserService(users UserStore, activity ActivityStore, logger *logrus.Logger) *UserService {
	return &UserService{
		users:    users,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// ListUsers returns all users without password hashes.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newError(ErrValidation, "User id is required")
	}
	user, err := s.users.GetByID(ctx, id)
	return s.found(user, err)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, newError(ErrValidation, "Email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	return s.found(user, err)
}

// UpdateSubscription stores the new period and recomputes IsActive against
// the current time. start may be zero.
func (s *UserService) UpdateSubscription(ctx context.Context, id string, start, end time.Time) (*models.User, error) {
	if end.IsZero() {
		return nil, newError(ErrValidation, "endDate is required")
	}
	if !start.IsZero() && end.Before(start) {
		return nil, newError(ErrValidation, "endDate must not be before startDate")
	}

	sub := models.NewSubscription(start, end, s.now())
	if start.IsZero() {
		sub.StartDate = nil
	}

	user, err := s.users.UpdateSubscription(ctx, id, sub)
	user, err = s.found(user, err)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": id, "active": sub.IsActive}).Info("Subscription updated")
	user.PasswordHash = ""
	return user, nil
}

// LoggedInUsers lists recent logins. The list is advisory only.
func (s *UserService) LoggedInUsers(ctx context.Context) ([]models.ActiveUser, error) {
	if s.activity == nil {
		return []models.ActiveUser{}, nil
	}
	return s.activity.List(ctx)
}

func (s *UserService) found(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}
