package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dialHealth(t *testing.T) (healthpb.HealthClient, func(ctx context.Context, check ReadinessCheck, interval time.Duration)) {
	t.Helper()
	log := logger.NewNop()
	server, hs, cleanup := NewGRPCServer(log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(cleanup)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	watch := func(ctx context.Context, check ReadinessCheck, interval time.Duration) {
		go WatchReadiness(ctx, hs, check, interval, log)
	}
	return healthpb.NewHealthClient(conn), watch
}

// servingStatus reports UNKNOWN on RPC errors so it is safe inside Eventually.
func servingStatus(client healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestHealthStartsNotServing(t *testing.T) {
	client, _ := dialHealth(t)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(client))
}

func TestWatchReadinessFollowsCheck(t *testing.T) {
	client, watch := dialHealth(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var failing atomic.Bool
	watch(ctx, func(context.Context) error {
		if failing.Load() {
			return errors.New("mongo unreachable")
		}
		return nil
	}, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return servingStatus(client) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	failing.Store(true)
	require.Eventually(t, func() bool {
		return servingStatus(client) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)
}
