package httpapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthService exposes readiness over the standard gRPC health protocol so
// orchestrators can probe the service without speaking HTTP.
type HealthService struct {
	healthpb.UnimplementedHealthServer

	readiness readinessChecker
}

// NewHealthService creates the gRPC health wrapper around a readiness probe.
func NewHealthService(r readinessChecker) *HealthService {
	return &HealthService{readiness: r}
}

// Check evaluates readiness on demand.
func (s *HealthService) Check(ctx context.Context, _ *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := s.readiness.Check(ctx); err != nil {
		return &healthpb.HealthCheckResponse{
			Status: healthpb.HealthCheckResponse_NOT_SERVING,
		}, nil
	}
	return &healthpb.HealthCheckResponse{
		Status: healthpb.HealthCheckResponse_SERVING,
	}, nil
}

// Watch is not supported; probes should poll Check.
func (s *HealthService) Watch(_ *healthpb.HealthCheckRequest, _ healthpb.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "health watch is not supported")
}

// RegisterGRPC attaches the health service to a gRPC server.
func RegisterGRPC(server *grpc.Server, probe ReadyProbe) {
	healthpb.RegisterHealthServer(server, NewHealthService(probe))
}
