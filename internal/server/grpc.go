package server

import (
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/server/grpc"
	"github.com/spf13/viper"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer serves the standard health service for load balancers and orchestrators.
func NewGRPCServer(logger *log.Logger, conf *viper.Viper) *grpc.Server {
	s := grpc.NewServer(
		logger,
		grpc.WithServerHost(conf.GetString("grpc.host")),
		grpc.WithServerPort(conf.GetInt("grpc.port")),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s.Server, hs)
	return s
}
