package di

import (
	"context"
	"fmt"
	"time"

	"github.com/MitulSonagara/blog-backend/internal/handler"
	"github.com/MitulSonagara/blog-backend/internal/notify"
	"github.com/MitulSonagara/blog-backend/internal/repository"
	"github.com/MitulSonagara/blog-backend/internal/service"
	"github.com/MitulSonagara/blog-backend/pkg/config"
	"github.com/MitulSonagara/blog-backend/pkg/database"
	"github.com/MitulSonagara/blog-backend/pkg/kafka"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
	redisPkg "github.com/MitulSonagara/blog-backend/pkg/redis"
)

const (
	databaseRetryInterval = 2 * time.Second
	redisRetryInterval    = time.Second
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	DB            *database.PostgresDB
	Redis         *redisPkg.Client
	KafkaProducer *kafka.Producer
	Dispatcher    *notify.Dispatcher

	// Repositories
	UserRepo repository.UserRepository
	PostRepo repository.PostRepository

	// Services
	TokenService *service.TokenService
	AuthService  *service.AuthService
	PostService  *service.PostService

	// Handlers
	AuthHandler   *handler.AuthHandler
	PostHandler   *handler.PostHandler
	HealthHandler *handler.HealthHandler
}

// NewContainer creates and wires all dependencies
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		MaxRetries:      3,
		RetryInterval:   databaseRetryInterval,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	c.DB = db

	redisClient, err := redisPkg.NewClient(ctx, &redisPkg.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: redisRetryInterval,
	})
	if err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = redisClient

	sinks := []notify.Sink{notify.NewLogSink()}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to kafka: %w", err)
		}
		c.KafkaProducer = producer
		sinks = append(sinks, notify.NewKafkaSink(producer, cfg.Kafka.Topic))
	}
	c.Dispatcher = notify.NewDispatcher(sinks...)

	c.UserRepo = repository.NewPostgresUserRepository(db.Pool())
	c.PostRepo = repository.NewPostgresPostRepository(db.Pool())

	c.TokenService = service.NewTokenService(cfg.JWT)
	c.AuthService = service.NewAuthService(c.UserRepo, c.TokenService, c.Dispatcher, cfg.JWT.BcryptCost)
	c.PostService = service.NewPostService(c.PostRepo, service.NewRedisCache(redisClient))

	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.TokenService)
	c.PostHandler = handler.NewPostHandler(c.PostService)
	c.HealthHandler = handler.NewHealthHandler(db, redisClient)

	logger.Get().Info("dependency container initialized")
	return c, nil
}

// Close releases all resources in reverse initialization order
func (c *Container) Close() {
	if c.Dispatcher != nil {
		c.Dispatcher.Close()
	}
	if c.KafkaProducer != nil {
		c.KafkaProducer.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
