package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fitfactory/backend/internal/models"
)

// ActivityStore keeps the last login per email for this process only.
type ActivityStore struct {
	mu    sync.Mutex
	users map[string]models.ActiveUser
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{users: make(map[string]models.ActiveUser)}
}

func (s *ActivityStore) Touch(_ context.Context, user models.ActiveUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
	return nil
}

func (s *ActivityStore) List(_ context.Context) ([]models.ActiveUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.ActiveUser, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].LastSeenAt.After(users[j].LastSeenAt)
	})
	return users, nil
}
