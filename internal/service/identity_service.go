package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/notify"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateSubscription(ctx context.Context, id string, sub models.Subscription) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// Mailer delivers a rendered message. A nil error means the relay accepted it.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type ActivityStore interface {
	Touch(ctx context.Context, user models.ActiveUser) error
	List(ctx context.Context) ([]models.ActiveUser, error)
}

type SignupInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
}

type AuthResult struct {
	Token *models.AccessToken
	User  models.PublicProfile
}

// IdentityService drives an email through signup, verification, login and
// password reset.
type IdentityService struct {
	users        UserStore
	otps         *OTPService
	tokens       *JWTService
	mailer       Mailer
	activity     ActivityStore
	passwordCost int
	dummyHash    []byte
	logger       *logrus.Logger
	now          func() time.Time
}

func NewIdentityService(
	users UserStore,
	otps *OTPService,
	tokens *JWTService,
	mailer Mailer,
	activity ActivityStore,
	cfg *config.PasswordConfig,
	logger *logrus.Logger,
) (*IdentityService, error) {
	cost := cfg.HashCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	// Compared against when the email is unknown so login timing does not
	// reveal whether an account exists.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &IdentityService{
		users:        users,
		otps:         otps,
		tokens:       tokens,
		mailer:       mailer,
		activity:     activity,
		passwordCost: cost,
		dummyHash:    dummyHash,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Signup validates the request, makes sure neither email nor phone is taken,
// and emails a signup OTP that carries the pending account. If delivery
// fails the OTP is withdrawn.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) error {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := NormalizeEmail(in.Email)

	if name == "" || phone == "" || email == "" || in.Password == "" {
		return newError(ErrValidation, "All fields are required.")
	}
	if !IsValidEmail(email) {
		return newError(ErrValidation, "Invalid email address.")
	}
	if !IsValidPhone(phone) {
		return newError(ErrValidation, "Invalid phone number. Use a 10-digit mobile number.")
	}

	if err := s.ensureAvailable(ctx, email, phone, "Email already registered. Please login."); err != nil {
		return err
	}

	passwordHash, err := s.hashPassword(in.Password)
	if err != nil {
		return err
	}

	pending := &models.PendingSignup{Name: name, Phone: phone, PasswordHash: passwordHash}
	code, record, err := s.otps.Issue(ctx, email, models.OTPPurposeSignup, pending)
	if err != nil {
		return err
	}

	msg, err := notify.SignupOTP(name, code, s.otps.Expiry())
	if err != nil {
		s.otps.Revoke(context.WithoutCancel(ctx), record)
		return err
	}

	return s.deliver(ctx, record, msg)
}

// VerifyOTP turns a pending signup into an account. It is the only path that
// creates users. The account details come from the OTP record.
func (s *IdentityService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(code) == "" {
		return nil, newError(ErrValidation, "Email and OTP are required.")
	}

	record, err := s.otps.Check(ctx, email, models.OTPPurposeSignup, code)
	if err != nil {
		return nil, err
	}
	if record.Pending == nil {
		return nil, newError(ErrNotFound, "No OTP request found for this email.")
	}
	pending := record.Pending

	if err := s.ensureAvailable(ctx, email, pending.Phone, "Email already registered."); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         pending.Name,
		Phone:        pending.Phone,
		Email:        email,
		PasswordHash: pending.PasswordHash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, newError(ErrConflict, "Email already registered.")
		case errors.Is(err, repository.ErrPhoneTaken):
			return nil, newError(ErrConflict, "Phone number already registered.")
		}
		return nil, err
	}

	if err := s.otps.Consume(ctx, record); err != nil {
		s.logger.WithError(err).WithField("email", email).Warn("Signup OTP was already gone after account creation")
	}

	s.logger.WithFields(logrus.Fields{"email": email, "user_id": user.ID}).Info("User created")

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// Login never says which of email or password was wrong.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrValidation, "Email & password required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, newError(ErrAuth, "Invalid credentials.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(ErrAuth, "Invalid credentials.")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		active := models.ActiveUser{Name: user.Name, Email: user.Email, Phone: user.Phone, LastSeenAt: s.now().UTC()}
		if err := s.activity.Touch(ctx, active); err != nil {
			s.logger.WithError(err).WithField("email", email).Warn("Failed to record login activity")
		}
	}

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// ForgotPassword emails a reset OTP to an existing account.
func (s *IdentityService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return newError(ErrValidation, "Email is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "User not found")
		}
		return err
	}

	code, record, err := s.otps.Issue(ctx, email, models.OTPPurposePasswordReset, nil)
	if err != nil {
		return err
	}

	msg, err := notify.PasswordResetOTP(code, s.otps.Expiry())
	if err != nil {
		s.otps.Revoke(context.WithoutCancel(ctx), record)
		return err
	}

	return s.deliver(ctx, record, msg)
}

// ResetPassword replaces the password once the reset OTP checks out. The
// code is consumed before the write so it can succeed at most once. No token
// is issued; the user logs in afterwards.
func (s *IdentityService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(code) == "" || newPassword == "" {
		return newError(ErrValidation, "All fields are required.")
	}

	record, err := s.otps.Check(ctx, email, models.OTPPurposePasswordReset, code)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "User not found")
		}
		return err
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.otps.Consume(ctx, record); err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "User not found")
		}
		return err
	}

	s.logger.WithField("email", email).Info("Password reset")
	return nil
}

func (s *IdentityService) ensureAvailable(ctx context.Context, email, phone, emailTakenMessage string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return newError(ErrConflict, emailTakenMessage)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return newError(ErrConflict, "Phone number already registered.")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

func (s *IdentityService) deliver(ctx context.Context, record *models.OTPData, msg notify.Message) error {
	if err := s.mailer.Send(ctx, record.Email, msg.Subject, msg.Body); err != nil {
		s.otps.Revoke(context.WithoutCancel(ctx), record)
		s.logger.WithError(err).WithField("email", record.Email).Error("Failed to deliver OTP")
		return wrapError(ErrDelivery, "Error sending OTP.", err)
	}
	return nil
}

func (s *IdentityService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", newError(ErrValidation, "Password is too long.")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
