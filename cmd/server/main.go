package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/operman-code/petme/internal/adapter/grpc"
	"github.com/operman-code/petme/internal/adapter/http/handler"
	"github.com/operman-code/petme/internal/adapter/http/router"
	natsAdapter "github.com/operman-code/petme/internal/adapter/messaging/nats"
	"github.com/operman-code/petme/internal/adapter/repository/cache"
	"github.com/operman-code/petme/internal/adapter/repository/memory"
	mongoRepo "github.com/operman-code/petme/internal/adapter/repository/mongodb"
	"github.com/operman-code/petme/internal/adapter/storage/local"
	"github.com/operman-code/petme/internal/adapter/storage/s3"
	"github.com/operman-code/petme/internal/config"
	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/listing/usecase"
	"github.com/operman-code/petme/internal/mailer"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/operman-code/petme/internal/platform/metrics"
	"github.com/operman-code/petme/internal/platform/tracer"
	"github.com/operman-code/petme/internal/seed"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(&logger.LoggerConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputFile: "stdout"})
	defer appLogger.Sync()
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_backend", cfg.StorageBackend),
	)
	if cfg.InsecureJWTSecret() {
		appLogger.Warn("JWT_SECRET is the well-known placeholder; tokens can be forged")
	}

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer st.close()

	users := st.users
	if cfg.RedisAddress != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, owner profiles will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			users = cache.NewProfileCache(redisClient, st.users, cfg.ProfileCacheTTL, appLogger)
			appLogger.Info("Owner profile cache enabled", zap.Duration("ttl", cfg.ProfileCacheTTL))
		}
	}

	var publisher domain.EventPublisher = natsAdapter.NewNopPublisher(appLogger)
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	var mail domain.Mailer = mailer.NewNopMailer(appLogger)
	if cfg.MailerEnabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender, appLogger)
	}

	images, uploadsDir, err := openImageStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	notifier := usecase.NewNotifier(publisher, mail, appLogger)
	listingUC := usecase.NewListingUsecase(st.listings, users, usecase.NewPhotoUsecase(images, appLogger), notifier, metricsManager, appLogger)
	queryUC := usecase.NewQueryUsecase(st.listings, users, metricsManager, appLogger)
	contactUC := usecase.NewContactUsecase(st.listings, users, notifier, metricsManager, appLogger)

	mux := router.New(router.Deps{
		Listings:   handler.NewListingHandler(listingUC, queryUC, appLogger),
		Users:      handler.NewUserHandler(queryUC, appLogger),
		Contacts:   handler.NewContactHandler(contactUC, appLogger),
		Metrics:    metricsManager,
		JWTSecret:  cfg.JWTSecret,
		UploadsDir: uploadsDir,
		Logger:     appLogger,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	grpcSrv, healthServer, stopGRPC := grpcAdapter.NewGRPCServer(appLogger)
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
		}
		go func() {
			appLogger.Info("Starting gRPC health server", zap.String("port", cfg.GRPCPort))
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				appLogger.Error("gRPC server error", zap.Error(err))
			}
		}()
		go grpcAdapter.WatchReadiness(ctx, healthServer, st.ready, cfg.HealthCheckInterval, appLogger)
	}

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")

	stopGRPC()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	notifier.Wait()
	appLogger.Info("Application shut down")
}

type stores struct {
	listings domain.ListingRepository
	users    domain.UserLookup
	ready    grpcAdapter.ReadinessCheck
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*stores, error) {
	if cfg.StorageBackend == config.BackendMemory {
		listings := memory.NewListingRepository()
		users := memory.NewUserRepository()
		if _, err := seed.Run(ctx, users, listings, seed.Options{Users: cfg.SeedDemoUsers, Listings: cfg.SeedDemoListings}, appLogger); err != nil {
			return nil, err
		}
		appLogger.Warn("Using the in-memory store; data is lost on restart")
		return &stores{
			listings: listings,
			users:    users,
			ready:    func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetTimeout(cfg.MongoTimeout).
		SetServerSelectionTimeout(cfg.MongoTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	disconnect := func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := client.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		disconnect()
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	appLogger.Info("Successfully connected and pinged MongoDB")

	db := client.Database(cfg.MongoDatabase)
	listings, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		disconnect()
		return nil, err
	}
	return &stores{
		listings: listings,
		users:    mongoRepo.NewUserRepository(db, appLogger),
		ready:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:    disconnect,
	}, nil
}

// openImageStore prefers MinIO and falls back to local disk. The returned directory
// is non-empty only for the disk store, whose files the HTTP server serves itself.
func openImageStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (domain.ImageStore, string, error) {
	if cfg.MinIOEndpoint != "" {
		store, err := s3.NewS3Storage(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}
	store, err := local.NewDiskStorage(cfg.UploadsDir, appLogger)
	if err != nil {
		return nil, "", err
	}
	appLogger.Info("MinIO not configured, storing images on disk", zap.String("dir", store.Dir()))
	return store, store.Dir(), nil
}
