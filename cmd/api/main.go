package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/auth"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/observability"
	"example.com/exercisetracker/internal/outbox"
	"example.com/exercisetracker/internal/persistence/memory"
	mongostore "example.com/exercisetracker/internal/persistence/mongo"
	"example.com/exercisetracker/internal/persistence/postgres"
	httptransport "example.com/exercisetracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("backend", cfg.StoreBackend).Fatal("failed to open store")
	}
	defer closeStore()

	var dispatcher *outbox.Dispatcher
	if cfg.OutboxEnabled() {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(pool, producer, registry, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
		go dispatcher.Start(ctx)
		logger.WithField("brokers", cfg.KafkaBrokers).Info("outbox dispatcher started")
	}

	service := domain.NewService(repo)
	handler := api.NewHandler(service, logger, api.Options{
		LegacyStatusCodes: cfg.LegacyStatusCodes,
		StrictLogFilters:  cfg.StrictLogFilters,
	})

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	handler.RegisterRoutes(router)

	var app http.Handler = router
	if cfg.AuthEnabled {
		authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, publicPath)
		app = authMiddleware.Wrap(router)
	}

	recovery := negroni.NewRecovery()
	recovery.Logger = logger
	recovery.PrintStack = false

	n := negroni.New(recovery, api.RequestLogger(logger, router), api.CORS(cfg.CORSOrigin))
	n.UseHandler(app)

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, n)

	logger.WithFields(logrus.Fields{
		"backend": cfg.StoreBackend,
		"auth":    cfg.AuthEnabled,
		"legacy":  cfg.LegacyStatusCodes,
	}).Info("exercise tracker starting")

	if err := httptransport.Run(ctx, server, serverCfg.ShutdownTimeout, logger); err != nil {
		logger.WithError(err).Error("server error")
	}
	stop()

	if dispatcher != nil {
		dispatcher.Wait()
	}
}

func publicPath(r *http.Request) bool {
	switch r.URL.Path {
	case "/", "/healthz", "/metrics":
		return true
	}
	return false
}

// openStore connects the configured backend. The returned pool is non-nil
// only for postgres, where the outbox shares it.
func openStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (domain.Repository, func(), *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewRepository(), func() {}, nil, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.PostgresAutoMigrate {
			applied, err := postgres.UpgradePool(pool)
			if err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
			logger.WithField("applied", applied).Info("postgres migrations applied")
		}
		return postgres.NewRepository(pool), pool.Close, pool, nil

	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongostore.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := mongostore.NewRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.WithError(err).Warn("mongo disconnect failed")
			}
		}
		return repo, closeFn, nil, nil
	}
}
