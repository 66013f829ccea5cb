package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpMin = 100000
	otpMax = 999999
)

type OTPStore interface {
	Store(ctx context.Context, otpData models.OTPData) error
	Get(ctx context.Context, email string) (*models.OTPData, error)
	Delete(ctx context.Context, email string) error
	DeleteIfHash(ctx context.Context, email, otpHash string) error
}

// OTPService is the ledger of outstanding one-time codes: at most one live
// code per email, stored only as a bcrypt digest.
type OTPService struct {
	store  OTPStore
	cfg    *config.OTPConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewOTPService(store OTPStore, cfg *config.OTPConfig, logger *logrus.Logger) *OTPService {
	return &OTPService{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Expiry is the authoritative validity window of an issued code.
func (s *OTPService) Expiry() time.Duration {
	return s.cfg.Expiry
}

// Issue drops any previous code for email and stores a fresh one. The plain
// code is returned for delivery and never stored.
func (s *OTPService) Issue(ctx context.Context, email string, purpose models.OTPPurpose, pending *models.PendingSignup) (string, *models.OTPData, error) {
	if err := s.store.Delete(ctx, email); err != nil {
		return "", nil, fmt.Errorf("failed to clear previous OTP: %w", err)
	}

	otp, err := GenerateCode()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	hashedOTP, err := bcrypt.GenerateFromPassword([]byte(otp), s.hashCost())
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	now := s.now().UTC()
	otpData := models.OTPData{
		Email:     email,
		OTPHash:   string(hashedOTP),
		Purpose:   purpose,
		Pending:   pending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Expiry),
	}

	if err := s.store.Store(ctx, otpData); err != nil {
		return "", nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"email":      email,
		"purpose":    purpose,
		"expires_at": otpData.ExpiresAt,
	}).Info("OTP issued")

	return otp, &otpData, nil
}

// Check returns the live record for email if code matches it. A record read
// at or after its expiry is deleted and reported as expired whatever the code.
// A record issued for a different purpose counts as absent.
func (s *OTPService) Check(ctx context.Context, email string, purpose models.OTPPurpose, code string) (*models.OTPData, error) {
	otpData, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "No OTP request found for this email.")
		}
		return nil, err
	}

	// Expired records go on read, whichever flow they belong to.
	if otpData.IsExpired(s.now()) {
		if err := s.store.Delete(ctx, email); err != nil {
			s.logger.WithError(err).WithField("email", email).Warn("Failed to delete expired OTP")
		}
		if otpData.Purpose != purpose {
			return nil, newError(ErrNotFound, "No OTP request found for this email.")
		}
		return nil, newError(ErrExpired, "OTP has expired. Please request a new one.")
	}

	if otpData.Purpose != purpose {
		return nil, newError(ErrNotFound, "No OTP request found for this email.")
	}

	canonical, ok := canonicalCode(code)
	if !ok || bcrypt.CompareHashAndPassword([]byte(otpData.OTPHash), []byte(canonical)) != nil {
		return nil, newError(ErrInvalidCode, "Invalid OTP. Please try again.")
	}

	return otpData, nil
}

// Consume deletes record if it is still the live code for its email. It
// fails with ErrNotFound when the code was already used or replaced.
func (s *OTPService) Consume(ctx context.Context, record *models.OTPData) error {
	err := s.store.DeleteIfHash(ctx, record.Email, record.OTPHash)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "No OTP request found for this email.")
	}
	return err
}

// Revoke removes record after a failed delivery. A record that has since
// been replaced is left alone.
func (s *OTPService) Revoke(ctx context.Context, record *models.OTPData) {
	err := s.store.DeleteIfHash(ctx, record.Email, record.OTPHash)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).WithField("email", record.Email).Error("Failed to revoke undelivered OTP")
	}
}

func (s *OTPService) hashCost() int {
	if s.cfg.HashCost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return s.cfg.HashCost
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// canonicalCode compares codes numerically: surrounding space is ignored and
// the submission is re-rendered in decimal before matching.
func canonicalCode(code string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || n < otpMin || n > otpMax {
		return "", false
	}
	return strconv.Itoa(n), true
}
