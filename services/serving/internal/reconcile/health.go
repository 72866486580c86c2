package reconcile

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService names the gRPC health entry that follows the change feed.
const HealthService = "serving.changes"

// HealthModule serves the standard gRPC health protocol. The overall entry
// is always SERVING; HealthService follows the change feed link.
type HealthModule struct {
	server *health.Server
}

func NewHealthModule(state *ConnState) *HealthModule {
	m := &HealthModule{server: health.NewServer()}
	m.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	if state != nil {
		state.OnChange(m.update)
	}
	return m
}

func (m *HealthModule) RegisterGRPCService(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, m.server)
}

func (m *HealthModule) update(s Status) {
	m.server.SetServingStatus(HealthService, servingStatus(s))
}

func servingStatus(s Status) healthpb.HealthCheckResponse_ServingStatus {
	if s == StatusConnected {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
