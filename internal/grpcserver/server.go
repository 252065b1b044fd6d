// Package grpcserver exposes the standard gRPC health service for the
// aggregator.
//
// It handles only transport concerns: the serving status follows the
// request loop, and every RPC is logged through the service logger.
package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"jobmate/aggregator-service/internal/logger"
)

// ServiceName is the name health checks are reported under.
const ServiceName = "aggregator-service"

// Server wraps a grpc.Server carrying the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    *logger.Logger
}

// New constructs a Server. The aggregator starts out NOT_SERVING until
// SetServing(true) is called.
func New(log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{health: health.NewServer(), log: log}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// SetServing flips the reported status of the aggregator.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Stop reports NOT_SERVING for everything and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Server) logUnary(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Debug("gRPC call", "method", info.FullMethod,
		"code", status.Code(err).String(), "elapsed", time.Since(start))
	return resp, err
}
