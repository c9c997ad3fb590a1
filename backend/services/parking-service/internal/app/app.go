package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "parkinglot/backend/libs/db"
	libredis "parkinglot/backend/libs/redis"
	"parkinglot/backend/services/parking-service/internal/config"
	"parkinglot/backend/services/parking-service/internal/events"
	httpserver "parkinglot/backend/services/parking-service/internal/http"
	"parkinglot/backend/services/parking-service/internal/http/handlers"
	"parkinglot/backend/services/parking-service/internal/metrics"
	"parkinglot/backend/services/parking-service/internal/password"
	"parkinglot/backend/services/parking-service/internal/service"
	"parkinglot/backend/services/parking-service/internal/storage"
)

// App wires parking-service dependencies.
type App struct {
	server      *httpserver.Server
	handler     http.Handler
	hub         *events.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	backend, err := a.openBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := storage.NewStore(backend)

	calc := service.NewCalculator(cfg.GracePeriod())
	locks := service.NewLotLocks()
	recorder := metrics.New()
	a.hub = events.NewHub(cfg.WSPingInterval(), logger)

	authService := service.NewAuthService(store, password.NewBcryptHasher(cfg.Auth.BcryptCost), service.NewTokenTable(), logger)
	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			a.Close()
			return nil, fmt.Errorf("app: bootstrap admin: %w", err)
		}
	}
	lotService := service.NewLotService(store, logger)
	sessionService := service.NewSessionService(store, calc, locks, a.hub, recorder, logger)
	billingService := service.NewBillingService(store, calc, locks, a.hub, recorder, logger)

	authHandlers := handlers.NewAuthHandlers(authService, logger)
	lotsHandlers := handlers.NewLotsHandlers(lotService, logger)
	sessionsHandlers := handlers.NewSessionsHandlers(sessionService, logger)
	billingHandlers := handlers.NewBillingHandlers(billingService, logger)

	routes := httpserver.Routes{
		Health:             handlers.NewHealthHandler(),
		Metrics:            recorder.Handler(),
		Register:           authHandlers.Register,
		Login:              authHandlers.Login,
		Logout:             authHandlers.Logout,
		ListLots:           lotsHandlers.List,
		GetLot:             lotsHandlers.Get,
		CreateLot:          lotsHandlers.Create,
		UpdateLot:          lotsHandlers.Update,
		ListLotSessions:    sessionsHandlers.List,
		StartSession:       sessionsHandlers.Start,
		StopSession:        sessionsHandlers.Stop,
		RecordPayment:      billingHandlers.Pay,
		ListBilling:        billingHandlers.List,
		ListBillingForUser: billingHandlers.ForUser,
		SessionFeed:        handlers.NewSessionFeedHandler(a.hub),
	}

	a.handler = httpserver.NewRouter(routes, httpserver.RouterDeps{
		Auth:     authService,
		Observer: recorder,
		Logger:   logger,
	})
	a.server = httpserver.NewServer(cfg.HTTPAddress(), a.handler, logger)
	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryBackend(), nil
	case config.DriverPostgres:
		sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN, libdb.PoolOptions{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			ConnLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		a.db = sqlDB
		backend := storage.NewPostgresBackend(sqlDB)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("app: ensure schema: %w", err)
		}
		return backend, nil
	case config.DriverRedis:
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("app: connect redis: %w", err)
		}
		a.redisClient = client
		return storage.NewRedisBackend(client, cfg.Redis.KeyPrefix), nil
	default:
		backend, err := storage.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("app: open data dir: %w", err)
		}
		return backend, nil
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the session feed and HTTP server until ctx is done.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
