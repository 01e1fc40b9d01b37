package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported by the watcher.
const ServiceName = "autoves.Watcher"

// Server exposes the watcher state over the standard gRPC health protocol.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer creates a health server. The watcher starts out NOT_SERVING
// until the first successful poll.
func NewServer() *Server {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpcServer: gs,
		health:     hs,
	}
}

// SetWatching implements controller.StatusSink.
func (s *Server) SetWatching(watching bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if watching {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Serve blocks serving on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// ListenAndServe listens on the given TCP port and serves.
func (s *Server) ListenAndServe(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return s.Serve(lis)
}

// Stop shuts the server down, marking every service NOT_SERVING first.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.Stop()
}
