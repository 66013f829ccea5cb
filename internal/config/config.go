package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"

	MailSMTP = "smtp"
	MailLog  = "log"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	DynamoDB DynamoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Password PasswordConfig
	Mail     MailConfig
	Admin    AdminConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type StorageConfig struct {
	Driver string
}

type DynamoDBConfig struct {
	Endpoint  string
	Region    string
	TableName string
}

// RedisConfig points at the activity store. An empty Endpoint keeps
// activity tracking in process memory.
type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey    string
	AccessExpiry time.Duration
}

type OTPConfig struct {
	Expiry   time.Duration
	HashCost int
}

type PasswordConfig struct {
	HashCost int
}

type MailConfig struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type AdminConfig struct {
	Emails []string
}

// ConfigError reports a missing or unusable required setting. The server
// refuses to start when Load returns one.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Key, e.Reason)
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageDynamoDB),
		},
		DynamoDB: loadDynamoDB(),
		Redis: RedisConfig{
			Endpoint: getEnv("REDIS_ENDPOINT", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey:    getEnv("JWT_SECRET_KEY", ""),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 2*time.Hour),
		},
		OTP: OTPConfig{
			Expiry:   getEnvAsDuration("OTP_EXPIRY", 5*time.Minute),
			HashCost: getEnvAsInt("OTP_HASH_COST", 10),
		},
		Password: PasswordConfig{
			HashCost: getEnvAsInt("PASSWORD_HASH_COST", 10),
		},
		Mail: MailConfig{
			Driver:   getEnv("MAIL_DRIVER", MailSMTP),
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Admin: AdminConfig{
			Emails: getEnvAsList("ADMIN_EMAILS", nil),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDynamoDB reads only the table settings, for tooling that touches the
// table without running the server.
func LoadDynamoDB() DynamoDBConfig {
	_ = godotenv.Load()
	return loadDynamoDB()
}

func loadDynamoDB() DynamoDBConfig {
	return DynamoDBConfig{
		Endpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		Region:    getEnv("DYNAMODB_REGION", "us-east-1"),
		TableName: getEnv("DYNAMODB_TABLE_NAME", "FitFactory"),
	}
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return &ConfigError{Key: "JWT_SECRET_KEY", Reason: "is required"}
	}
	if len(c.JWT.SecretKey) < 32 {
		return &ConfigError{Key: "JWT_SECRET_KEY", Reason: "must be at least 32 bytes (256 bits)"}
	}
	if c.JWT.AccessExpiry <= 0 {
		return &ConfigError{Key: "JWT_ACCESS_EXPIRY", Reason: "must be positive"}
	}
	if c.OTP.Expiry <= 0 {
		return &ConfigError{Key: "OTP_EXPIRY", Reason: "must be positive"}
	}

	switch c.Storage.Driver {
	case StorageDynamoDB:
		if c.DynamoDB.TableName == "" {
			return &ConfigError{Key: "DYNAMODB_TABLE_NAME", Reason: "is required"}
		}
	case StorageMemory:
	default:
		return &ConfigError{Key: "STORAGE_DRIVER", Reason: fmt.Sprintf("has unsupported value %q", c.Storage.Driver)}
	}

	switch c.Mail.Driver {
	case MailSMTP:
		if c.Mail.Host == "" {
			return &ConfigError{Key: "SMTP_HOST", Reason: "is required when MAIL_DRIVER=smtp"}
		}
		if c.Mail.From == "" {
			return &ConfigError{Key: "SMTP_FROM", Reason: "is required when MAIL_DRIVER=smtp"}
		}
	case MailLog:
	default:
		return &ConfigError{Key: "MAIL_DRIVER", Reason: fmt.Sprintf("has unsupported value %q", c.Mail.Driver)}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
