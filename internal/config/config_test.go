package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("MAIL_DRIVER", MailLog)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageDynamoDB, cfg.Storage.Driver)
	assert.Equal(t, "FitFactory", cfg.DynamoDB.TableName)
	assert.Equal(t, "us-east-1", cfg.DynamoDB.Region)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, 5*time.Minute, cfg.OTP.Expiry)
	assert.Equal(t, 10, cfg.Password.HashCost)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Redis.Endpoint)
	assert.Empty(t, cfg.Admin.Emails)
}

func TestLoad_MissingSecretIsConfigError(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("MAIL_DRIVER", MailLog)

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoad_ShortSecretIsConfigError(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "short")
	t.Setenv("MAIL_DRIVER", MailLog)

	_, err := Load()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestLoad_SMTPRequiresHostAndSender(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("MAIL_DRIVER", MailSMTP)
	t.Setenv("SMTP_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")

	t.Setenv("SMTP_HOST", "smtp.example.com")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_FROM")

	t.Setenv("SMTP_FROM", "FitFactory <no-reply@example.com>")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 587, cfg.Mail.Port)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", StorageMemory)
	t.Setenv("OTP_EXPIRY", "90s")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example,,")
	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 90*time.Second, cfg.OTP.Expiry)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Admin.Emails)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_UnknownDrivers(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	t.Setenv("STORAGE_DRIVER", StorageMemory)
	t.Setenv("MAIL_DRIVER", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}

func TestLoadDynamoDB_NeedsNoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DYNAMODB_TABLE_NAME", "fitfactory-test")
	t.Setenv("DYNAMODB_ENDPOINT", "http://localhost:8000")
	t.Setenv("DYNAMODB_REGION", "ap-south-1")

	cfg := LoadDynamoDB()
	assert.Equal(t, "fitfactory-test", cfg.TableName)
	assert.Equal(t, "http://localhost:8000", cfg.Endpoint)
	assert.Equal(t, "ap-south-1", cfg.Region)
}
