package grpc

import (
	"context"
	"time"

	"github.com/operman-code/petme/internal/adapter/grpc/middleware"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name probes ask about; the empty name reports overall health.
const ServiceName = "petme.listing"

// ReadinessCheck reports whether the service's backing stores are reachable.
type ReadinessCheck func(ctx context.Context) error

// NewGRPCServer builds the probe server: standard health service plus reflection,
// traced through the otelgrpc stats handler. The cleanup func marks the service as
// not serving and stops the server gracefully.
func NewGRPCServer(appLogger *logger.Logger) (*grpc.Server, *health.Server, func()) {
	log := appLogger.Named("gRPC")
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(middleware.LoggingInterceptor(log)),
		grpc.ChainStreamInterceptor(middleware.StreamLoggingInterceptor(log)),
	)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)

	cleanup := func() {
		hs.Shutdown()
		log.Info("Stopping gRPC server...")
		server.GracefulStop()
		log.Info("gRPC server stopped")
	}
	return server, hs, cleanup
}

// WatchReadiness runs check every interval and mirrors the result into hs until ctx
// is done.
func WatchReadiness(ctx context.Context, hs *health.Server, check ReadinessCheck, interval time.Duration, log *logger.Logger) {
	update := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := check(checkCtx); err != nil {
			log.Warn("Readiness check failed", zap.Error(err))
			hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}
