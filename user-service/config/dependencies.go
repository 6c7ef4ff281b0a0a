package config

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	sharedinfra "github.com/venuehub/registration-system/shared/infrastructure"
	"github.com/venuehub/registration-system/shared/saga"
	"github.com/venuehub/registration-system/shared/telemetry"
	"github.com/venuehub/registration-system/user-service/application"
	"github.com/venuehub/registration-system/user-service/handlers"
	"github.com/venuehub/registration-system/user-service/infrastructure"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Redis
	RedisClient *redis.Client

	// Repositories
	UserRepository *infrastructure.PostgresUserRepository
	InstanceStore  *saga.RedisInstanceStore

	// Saga
	Orchestrator *saga.Orchestrator

	// Use Cases
	CreateUser   *application.CreateUser
	GetUser      *application.GetUser
	ListUsers    *application.ListUsers
	LoginUser    *application.LoginUser
	RefreshToken *application.RefreshToken

	// HTTP Handlers
	UserHandlers *handlers.UserHandlers

	// Event Handlers
	UserEventHandlers *handlers.UserEventHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSSubscriberAdapter

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.UserServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			log.Printf("Failed to initialize telemetry: %v", err)
			// Continue without telemetry rather than failing
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	// Initialize Redis for saga state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	deps.RedisClient = redisClient

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(config.AWS.SQSQueueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	// Initialize repositories and saga state store
	deps.UserRepository = infrastructure.NewPostgresUserRepository(db)
	deps.InstanceStore = saga.NewRedisInstanceStore(redisClient)

	// Initialize saga orchestrator
	deps.Orchestrator = saga.NewOrchestrator(deps.InstanceStore, eventPublisher)

	// Initialize auth infrastructure
	passwordHasher := infrastructure.NewBcryptPasswordHasher()
	tokenService := infrastructure.NewJWTTokenService(config.Auth.JWTSecret, config.Auth.Issuer)

	// Initialize use cases
	deps.CreateUser = application.NewCreateUser(deps.UserRepository, passwordHasher, eventPublisher)
	deps.GetUser = application.NewGetUser(deps.UserRepository)
	deps.ListUsers = application.NewListUsers(deps.UserRepository)
	deps.LoginUser = application.NewLoginUser(deps.UserRepository, passwordHasher, tokenService)
	deps.RefreshToken = application.NewRefreshToken(deps.UserRepository, tokenService)

	// Initialize handlers
	deps.UserHandlers = handlers.NewUserHandlers(deps.CreateUser, deps.GetUser, deps.ListUsers, deps.LoginUser, deps.RefreshToken)
	deps.UserEventHandlers = handlers.NewUserEventHandlers(deps.Orchestrator)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.RedisClient != nil {
		if err := d.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
