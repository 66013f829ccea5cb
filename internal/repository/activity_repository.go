package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fitfactory/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const activeUsersKey = "fitfactory:active_users"

// RedisActivityStore records the last login per email in a Redis hash.
// Entries never expire and are shared by every instance using the same
// Redis database; they are still only a debugging aid, not session state.
type RedisActivityStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisActivityStore(client *redis.Client, logger *logrus.Logger) *RedisActivityStore {
	return &RedisActivityStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisActivityStore) Touch(ctx context.Context, user models.ActiveUser) error {
	dataJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal active user: %w", err)
	}

	if err := s.client.HSet(ctx, activeUsersKey, user.Email, dataJSON).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to record active user in Redis")
		return fmt.Errorf("failed to record active user: %w", err)
	}

	return nil
}

// List returns recorded users, most recently seen first.
func (s *RedisActivityStore) List(ctx context.Context) ([]models.ActiveUser, error) {
	entries, err := s.client.HGetAll(ctx, activeUsersKey).Result()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list active users from Redis")
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	users := make([]models.ActiveUser, 0, len(entries))
	for email, dataJSON := range entries {
		var user models.ActiveUser
		if err := json.Unmarshal([]byte(dataJSON), &user); err != nil {
			s.logger.WithError(err).WithField("email", email).Warn("Skipping malformed active user entry")
			continue
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].LastSeenAt.After(users[j].LastSeenAt)
	})

	return users, nil
}
