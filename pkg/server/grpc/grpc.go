package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
)

type Server struct {
	*grpc.Server
	host   string
	port   int
	logger *log.Logger
}

type Option func(s *Server)

func NewServer(logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		Server: grpc.NewServer(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithServerHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

func WithServerPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.host, s.port))
	if err != nil {
		s.logger.Error("grpc listen failed", zap.Error(err))
		return err
	}
	if err = s.Server.Serve(lis); err != nil {
		s.logger.Error("grpc serve failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.Server.GracefulStop()
	s.logger.Info("grpc server exiting")
	return nil
}
