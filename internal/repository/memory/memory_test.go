package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Uniqueness(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "1", Email: "a@x.com", Phone: "9812345670"}))

	err := repo.Create(ctx, &models.User{ID: "2", Email: "a@x.com", Phone: "9812345671"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	err = repo.Create(ctx, &models.User{ID: "3", Email: "b@x.com", Phone: "9812345670"})
	assert.ErrorIs(t, err, repository.ErrPhoneTaken)

	assert.Equal(t, 1, repo.Count())
}

func TestUserRepository_LookupsAndUpdates(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.User{ID: "1", Email: "a@x.com", Phone: "9812345670", PasswordHash: "h"}))

	byPhone, err := repo.GetByPhone(ctx, "9812345670")
	require.NoError(t, err)
	assert.Equal(t, "1", byPhone.ID)

	require.NoError(t, repo.UpdatePassword(ctx, "1", "h2"))
	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", byEmail.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "nope", "h"), repository.ErrNotFound)
	_, err = repo.UpdateSubscription(ctx, "nope", models.Subscription{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestOTPRepository_DeleteIfHash(t *testing.T) {
	repo := NewOTPRepository()
	ctx := context.Background()
	require.NoError(t, repo.Store(ctx, models.OTPData{Email: "a@x.com", OTPHash: "new"}))

	assert.ErrorIs(t, repo.DeleteIfHash(ctx, "a@x.com", "old"), repository.ErrNotFound)
	require.NoError(t, repo.DeleteIfHash(ctx, "a@x.com", "new"))

	_, err := repo.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActivityStore_LastSeenWins(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()
	t0 := time.Unix(1000, 0)

	require.NoError(t, store.Touch(ctx, models.ActiveUser{Email: "a@x.com", LastSeenAt: t0}))
	require.NoError(t, store.Touch(ctx, models.ActiveUser{Email: "b@x.com", LastSeenAt: t0.Add(time.Second)}))
	require.NoError(t, store.Touch(ctx, models.ActiveUser{Email: "a@x.com", LastSeenAt: t0.Add(2 * time.Second)}))

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@x.com", users[0].Email)
}
