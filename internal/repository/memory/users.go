// Package memory holds process-local implementations of the repositories,
// used when STORAGE_DRIVER=memory and by tests. Nothing here survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
	byPhone map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byPhone[phone]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; ok {
		return repository.ErrUserExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	if _, ok := r.byPhone[user.Phone]; ok {
		return repository.ErrPhoneTaken
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	r.byPhone[user.Phone] = user.ID
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.byID[id] = user
	return nil
}

func (r *UserRepository) UpdateSubscription(_ context.Context, id string, sub models.Subscription) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Subscription = sub
	user.UpdatedAt = time.Now().UTC()
	r.byID[id] = user
	return &user, nil
}

func (r *UserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.byID))
	for _, user := range r.byID {
		user.PasswordHash = ""
		users = append(users, user)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// Count is a test helper.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
