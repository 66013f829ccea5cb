package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/handlers"
	"github.com/fitfactory/backend/internal/middleware"
	"github.com/fitfactory/backend/internal/notify"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/fitfactory/backend/internal/repository/memory"
	"github.com/fitfactory/backend/internal/service"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type application struct {
	Handler http.Handler
	closers []func() error
	logger  *logrus.Logger
}

func (a *application) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.WithError(err).Warn("Failed to release resource")
		}
	}
}

type stores struct {
	users    service.UserStore
	otps     service.OTPStore
	contacts service.ContactStore
}

// buildApp wires storage, delivery and services into the HTTP handler.
func buildApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*application, error) {
	app := &application{logger: logger}

	st, err := newStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	activity, closeActivity := newActivityStore(ctx, &cfg.Redis, logger)
	if closeActivity != nil {
		app.closers = append(app.closers, closeActivity)
	}

	mailer, err := newMailer(&cfg.Mail, logger)
	if err != nil {
		return nil, err
	}

	jwtService, err := service.NewJWTService(&cfg.JWT, logger)
	if err != nil {
		return nil, err
	}

	otpService := service.NewOTPService(st.otps, &cfg.OTP, logger)
	identity, err := service.NewIdentityService(st.users, otpService, jwtService, mailer, activity, &cfg.Password, logger)
	if err != nil {
		return nil, err
	}
	userService := service.NewUserService(st.users, activity, logger)
	contactService := service.NewContactService(st.contacts, logger)

	gate := middleware.NewAuthMiddleware(jwtService, cfg.Admin.Emails, logger)
	router := handlers.NewRouter(handlers.Router{
		Auth:     handlers.NewAuthHandlers(identity, userService, logger),
		Users:    handlers.NewUserHandlers(userService, gate, logger),
		Contact:  handlers.NewContactHandlers(contactService, logger),
		AuthGate: gate,
	}, logger)

	var handler http.Handler = router
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logger),
		gorillahandlers.PrintRecoveryStack(false),
	)(handler)
	handler = middleware.CORS(cfg.Server.AllowedOrigins)(handler)

	app.Handler = handler
	return app, nil
}

func newStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return &stores{
			users:    memory.NewUserRepository(),
			otps:     memory.NewOTPRepository(),
			contacts: memory.NewContactRepository(),
		}, nil
	}

	client, err := initDynamoDB(ctx, &cfg.DynamoDB, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DynamoDB: %w", err)
	}

	table := cfg.DynamoDB.TableName
	return &stores{
		users:    repository.NewUserRepository(client, table, logger),
		otps:     repository.NewOTPRepository(client, table, logger),
		contacts: repository.NewContactRepository(client, table, logger),
	}, nil
}

func initDynamoDB(ctx context.Context, cfg *config.DynamoDBConfig, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.Endpoint,
						SigningRegion: cfg.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.WithFields(logrus.Fields{
		"table":  cfg.TableName,
		"region": cfg.Region,
	}).Info("DynamoDB client initialized")
	return client, nil
}

// newActivityStore prefers Redis so the logged-in view is shared across
// instances. An unreachable Redis degrades to process memory.
func newActivityStore(ctx context.Context, cfg *config.RedisConfig, logger *logrus.Logger) (service.ActivityStore, func() error) {
	if cfg.Endpoint == "" {
		return memory.NewActivityStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Endpoint,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("endpoint", cfg.Endpoint).Warn("Redis unavailable, tracking activity in memory")
		client.Close()
		return memory.NewActivityStore(), nil
	}

	logger.WithField("endpoint", cfg.Endpoint).Info("Redis activity store connected")
	return repository.NewRedisActivityStore(client, logger), client.Close
}

func newMailer(cfg *config.MailConfig, logger *logrus.Logger) (service.Mailer, error) {
	if cfg.Driver == config.MailLog {
		logger.Warn("MAIL_DRIVER=log: emails are written to the log, not sent")
		return notify.NewLogMailer(logger), nil
	}
	return notify.NewSMTPMailer(cfg, logger)
}
