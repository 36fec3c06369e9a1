package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymconnect/backend/internal/api"
	"gymconnect/backend/internal/config"
	"gymconnect/backend/internal/logging"
	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/repository"
	"gymconnect/backend/internal/repository/memory"
	"gymconnect/backend/internal/repository/mongo"
	"gymconnect/backend/internal/service"
	"gymconnect/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// @title GymConnect API
// @version 1.0
// @description API connecting gyms, personal trainers and their students.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Info("starting gymconnect server")

	var closers []func(context.Context) error

	// --- Store ---
	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		log.Fatalf("could not open %s store: %v", cfg.Database.Driver, err)
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	// --- Storage ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(initCtx, cfg.S3)
	cancelInit()
	if err != nil {
		log.Fatalf("failed to initialize S3 storage: %v", err)
	}

	// --- Metrics ---
	registry := metrics.SetupPrometheus()
	mm := metrics.NewManager(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, registry)
	mm.GaugeLifeSignal.Set(1)

	// --- Rate limiting ---
	var limiter api.RequestRateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			log.WithError(err).Warn("redis unreachable, rate limiting disabled")
			_ = rdb.Close()
		} else {
			limiter = redis_rate.NewLimiter(rdb)
			closers = append(closers, func(context.Context) error { return rdb.Close() })
			log.WithField("addr", cfg.Redis.Addr).Info("rate limiting enabled")
		}
	}

	// --- Services ---
	core := service.NewCore(store, mm)
	tokens := service.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	training := service.NewTrainingService(core)
	services := api.Services{
		Auth:      service.NewAuthService(core, tokens),
		Profiles:  service.NewProfileService(core),
		Directory: service.NewDirectoryService(core),
		Training:  training,
		Reports:   service.NewReportService(core),
		Payments:  service.NewPaymentService(core),
		Events:    service.NewEventService(core),
		Tasks:     service.NewTaskService(core),
		Dashboard: service.NewDashboardService(core),
		Media:     service.NewMediaService(core, fileStorage, training),
	}

	// --- Router ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.MaxMultipartMemory = 16 << 20
	err = api.SetupRoutes(router, api.RouterDeps{
		Services:           services,
		Tokens:             tokens,
		Resolver:           service.NewIdentityResolver(store),
		Metrics:            mm,
		Registry:           registry,
		Limiter:            limiter,
		AuthLimitPerMinute: cfg.RateLimit.AuthPerMinute,
	})
	if err != nil {
		log.Fatalf("could not set up routes: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	mm.GaugeLifeSignal.Set(0)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	err = server.Shutdown(ctxShutdown)
	for _, closeFn := range closers {
		err = multierr.Append(err, closeFn(ctxShutdown))
	}
	if err != nil {
		log.WithError(err).Error("unclean shutdown")
		os.Exit(1)
	}
	log.Info("server exited")
}

// openStore returns the configured store and, for external databases, a
// function closing the connection.
func openStore(cfg config.DatabaseConfig) (*repository.Store, func(context.Context) error, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.NewStore(), nil, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.Name)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	mongo.EnsureIndexes(ctx, db)

	closeFn := func(context.Context) error {
		log.Info("disconnecting MongoDB")
		return mongo.DisconnectDB(client)
	}
	return mongo.NewStore(client, db), closeFn, nil
}
