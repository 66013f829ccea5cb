package memory

import (
	"context"
	"sync"

	"github.com/fitfactory/backend/internal/models"
)

type ContactRepository struct {
	mu       sync.Mutex
	messages []models.ContactMessage
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (r *ContactRepository) Create(_ context.Context, msg *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *ContactRepository) Messages() []models.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ContactMessage(nil), r.messages...)
}
