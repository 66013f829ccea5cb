package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/repository/memory"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

var errSMTPDown = errors.New("smtp: connection refused")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var codePattern = regexp.MustCompile(`<b>(\d{6})</b>`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].body)
	require.Len(t, match, 2, "no code in mail body")
	return match[1]
}

type identityEnv struct {
	svc      *IdentityService
	users    *memory.UserRepository
	otpStore *memory.OTPRepository
	otps     *OTPService
	tokens   *JWTService
	mailer   *captureMailer
	activity *memory.ActivityStore
	clock    *testClock
	logger   *logrus.Logger
}

func newIdentityEnv(t *testing.T) *identityEnv {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	clock := newTestClock()

	users := memory.NewUserRepository()
	otpStore := memory.NewOTPRepository()
	activity := memory.NewActivityStore()
	mailer := &captureMailer{}

	otps := NewOTPService(otpStore, &config.OTPConfig{Expiry: 5 * time.Minute, HashCost: bcrypt.MinCost}, logger)
	otps.now = clock.Now

	tokens, err := NewJWTService(&config.JWTConfig{SecretKey: testSecret, AccessExpiry: 2 * time.Hour}, logger)
	require.NoError(t, err)
	tokens.now = clock.Now

	svc, err := NewIdentityService(users, otps, tokens, mailer, activity, &config.PasswordConfig{HashCost: bcrypt.MinCost}, logger)
	require.NoError(t, err)
	svc.now = clock.Now

	return &identityEnv{
		svc:      svc,
		users:    users,
		otpStore: otpStore,
		otps:     otps,
		tokens:   tokens,
		mailer:   mailer,
		activity: activity,
		clock:    clock,
		logger:   logger,
	}
}

var ann = SignupInput{Name: "Ann", Email: "a@x.com", Phone: "9812345670", Password: "pw1"}

// signupAndVerify registers in and returns the verification result.
func (e *identityEnv) signupAndVerify(t *testing.T, in SignupInput) *AuthResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.svc.Signup(ctx, in))
	res, err := e.svc.VerifyOTP(ctx, in.Email, e.mailer.lastCode(t))
	require.NoError(t, err)
	return res
}

// deadlineOTPStore fails conditional deletes once ctx is done, like a
// networked store would.
type deadlineOTPStore struct {
	*memory.OTPRepository
}

func (s deadlineOTPStore) DeleteIfHash(ctx context.Context, email, otpHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.OTPRepository.DeleteIfHash(ctx, email, otpHash)
}
