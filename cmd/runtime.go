package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/ConsultCMS/internal/config"
	"github.com/arzan03/ConsultCMS/internal/db"
	"github.com/arzan03/ConsultCMS/internal/logger"
	"github.com/arzan03/ConsultCMS/internal/models"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/arzan03/ConsultCMS/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// runtime holds the process-wide dependencies shared by commands.
type runtime struct {
	cfg       *config.Config
	log       zerolog.Logger
	metrics   *prometheus.Registry
	store     store.Store
	resources *resource.Service
	mongo     *mongo.Client
	redis     *redis.Client
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New().Level(cfg.LogLevel).Pretty(!cfg.IsProduction()).Make()
	return cfg, log, nil
}

// newRuntime connects the document store and builds the resource service.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, metrics: prometheus.NewRegistry()}
	rt.metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalog := models.NewCatalog(services.HashPassword)

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using the in-memory store, data is lost on exit")
		st = store.NewMemoryStore()
	default:
		client, err := db.ConnectMongoDB(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		rt.mongo = client
		database := client.Database(cfg.MongoDB)
		if err := db.EnsureIndexes(ctx, database, models.Indexes(catalog)); err != nil {
			rt.close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")
		st = store.NewMongoStore(database, cfg.DBTimeout)
	}

	rt.store = store.NewInstrumented(st, store.NewMetrics(rt.metrics))
	rt.resources = resource.NewService(rt.store, catalog, log)
	return rt, nil
}

// revoker connects Redis when configured. Without it logout cannot revoke tokens.
func (rt *runtime) revoker(ctx context.Context) services.Revoker {
	if rt.cfg.RedisURL == "" {
		rt.log.Warn().Msg("REDIS_URL not set, token revocation disabled")
		return nil
	}
	client, err := services.ConnectRedis(ctx, rt.cfg.RedisURL)
	if err != nil {
		rt.log.Warn().Err(err).Msg("redis unavailable, token revocation disabled")
		return nil
	}
	rt.redis = client
	return services.NewRedisRevoker(client)
}

// ready pings the backing services.
func (rt *runtime) ready(ctx context.Context) error {
	var errs []error
	if rt.mongo != nil {
		if err := rt.mongo.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (rt *runtime) close(ctx context.Context) {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("close redis")
		}
	}
	if rt.mongo != nil {
		if err := rt.mongo.Disconnect(ctx); err != nil {
			rt.log.Warn().Err(err).Msg("disconnect mongo")
		}
	}
}
