//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/nitinprakash96/ganeti-webmgr/internal/handler"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/router"
	"github.com/nitinprakash96/ganeti-webmgr/internal/server"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/app"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/server/grpc"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/server/http"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewMongo,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewUserRepository,
	repository.NewProfileRepository,
	repository.NewSessionRepository,
	repository.NewPermissionRepository,
	repository.NewClusterRepository,
	repository.NewNodeRepository,
	repository.NewVirtualMachineRepository,
	repository.NewJobActionRepository,
	repository.NewInflightRepository,
	repository.NewActionLogRepository,
	wire.Bind(new(middleware.TokenRevocations), new(repository.SessionRepository)),
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewRapiProvider,
	service.NewUserService,
	service.NewPermissionService,
	service.NewClusterService,
	service.NewClusterSyncService,
	service.NewNodeService,
	service.NewInstanceService,
	service.NewJobDispatcher,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewUserHandler,
	handler.NewClusterHandler,
	handler.NewNodeHandler,
	handler.NewInstanceHandler,
	handler.NewPermissionHandler,
	handler.NewJobHandler,
)

var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewGRPCServer,
)

// build App
func newApp(
	httpServer *http.Server,
	grpcServer *grpc.Server,
) *app.App {
	return app.NewApp(
		app.WithServer(httpServer, grpcServer),
		app.WithName("ganeti-webmgr-server"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		serviceSet,
		handlerSet,
		serverSet,
		wire.Struct(new(router.RouterDeps), "*"),
		sid.NewSid,
		jwt.NewJwt,
		newApp,
	))
}
