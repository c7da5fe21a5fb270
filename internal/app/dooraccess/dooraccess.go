package dooraccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gym-door-access/internal/cache"
	"github.com/magabrotheeeer/gym-door-access/internal/config"
	grpcserver "github.com/magabrotheeeer/gym-door-access/internal/grpc/server"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/fingerprint"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/ratelimit"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/metrics"
	"github.com/magabrotheeeer/gym-door-access/internal/migrations"
	"github.com/magabrotheeeer/gym-door-access/internal/rabbitmq"
	"github.com/magabrotheeeer/gym-door-access/internal/services/codegen"
	"github.com/magabrotheeeer/gym-door-access/internal/services/issuance"
	"github.com/magabrotheeeer/gym-door-access/internal/services/policy"
	"github.com/magabrotheeeer/gym-door-access/internal/services/scheduler"
	"github.com/magabrotheeeer/gym-door-access/internal/services/validation"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

// App объединяет HTTP API, gRPC health и очистку токенов.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
	pruner   *scheduler.PrunerService
	health   *grpcserver.HealthServer
	grpcAddr string
	interval time.Duration
	schedule string
}

// New собирает зависимости приложения по конфигу.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "dooraccess.New"

	serverLoc, err := cfg.ServerLocation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	gymLoc, err := cfg.GymLocation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hasher, err := fingerprint.New(cfg.FingerprintKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = storage.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger:   logger,
		db:       db,
		grpcAddr: cfg.AddressGRPC,
		interval: cfg.HealthInterval,
		schedule: cfg.PrunerSchedule,
	}

	var tokens cache.TokenRepository = db
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.cache = redisCache
		tokens = cache.NewTokenStore(db, redisCache, logger)
	} else {
		logger.Info("redis address is empty, token cache disabled")
	}

	var publisher validation.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay, logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpConn = conn
		ch, err := rabbitmq.SetupExchange(conn, cfg.RabbitMQExchange)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = rabbitmq.NewPublisher(ch, cfg.RabbitMQExchange)
	} else {
		logger.Info("rabbitmq url is empty, access events are not published")
	}

	recorder := metrics.New(prometheus.DefaultRegisterer)
	engine := policy.NewEngine(db, serverLoc, gymLoc)
	limiter := ratelimit.NewDoorLimiter(
		ratelimit.WithLimit(cfg.DoorRateLimit),
		ratelimit.WithWindow(cfg.DoorRateWindow),
		ratelimit.WithMaxEntries(cfg.DoorRateMaxEntries),
	)

	issuer := issuance.NewService(db, tokens, codegen.New(tokens, cfg.CodeRetries), engine, recorder, cfg.DoorTokenTTL, logger)
	validator := validation.NewService(tokens, db, db, engine, limiter, hasher, publisher, recorder,
		validation.Options{
			EnforceSingleUse: cfg.EnforceSingleUse,
			DefaultDoor:      cfg.DefaultDoor,
		}, logger)

	sessions := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL).WithAudience(cfg.JWTAudience)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Routes{
		Issuer:       issuer,
		Validator:    validator,
		DB:           db,
		Sessions:     sessions,
		ScannerKey:   cfg.ScannerAPIKey,
		IssueLimiter: rate.NewLimiter(rate.Limit(cfg.IssueRPS), cfg.IssueBurst),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	app.pruner = scheduler.NewPrunerService(db, cfg.TokenRetention, logger)
	if cfg.AddressGRPC != "" {
		app.health = grpcserver.NewHealthServer(db, logger)
	}

	return app, nil
}

// Run запускает серверы и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	const op = "dooraccess.Run"

	if err := a.pruner.Start(a.schedule); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	errCh := make(chan error, 2)
	if a.health != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			a.pruner.Stop()
			return fmt.Errorf("%s: %w", op, err)
		}
		a.health.StartWatch(ctx, a.interval)
		go func() {
			a.logger.Info("gRPC health server starting on", slog.String("address", a.grpcAddr))
			if err := a.health.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		return err
	case <-ctx.Done():
		return a.shutdown()
	}
}

func (a *App) shutdown() error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a.logger.Info("shutting down HTTP server gracefully")
	err := a.server.Shutdown(timeoutCtx)
	a.pruner.Stop()
	if a.health != nil {
		a.health.Stop()
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
