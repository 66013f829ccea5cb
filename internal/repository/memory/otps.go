package memory

import (
	"context"
	"sync"

	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/repository"
)

type OTPRepository struct {
	mu   sync.Mutex
	otps map[string]models.OTPData
}

func NewOTPRepository() *OTPRepository {
	return &OTPRepository{otps: make(map[string]models.OTPData)}
}

func (r *OTPRepository) Store(_ context.Context, otpData models.OTPData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps[otpData.Email] = otpData
	return nil
}

func (r *OTPRepository) Get(_ context.Context, email string) (*models.OTPData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	otpData, ok := r.otps[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &otpData, nil
}

func (r *OTPRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, email)
	return nil
}

func (r *OTPRepository) DeleteIfHash(_ context.Context, email, otpHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	otpData, ok := r.otps[email]
	if !ok || otpData.OTPHash != otpHash {
		return repository.ErrNotFound
	}
	delete(r.otps, email)
	return nil
}
