package service

import (
	"context"
	"strings"
	"time"

	"github.com/fitfactory/backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

type ContactService struct {
	store  ContactStore
	logger *logrus.Logger
}

func NewContactService(store ContactStore, logger *logrus.Logger) *ContactService {
	return &ContactService{store: store, logger: logger}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) error {
	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     NormalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: time.Now().UTC(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return newError(ErrValidation, "Name, email and message are required")
	}

	if err := s.store.Create(ctx, msg); err != nil {
		return err
	}

	s.logger.WithField("contact_id", msg.ID).Info("Contact message received")
	return nil
}
