//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/server"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/app"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
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
	repository.NewSessionRepository,
	repository.NewPermissionRepository,
	repository.NewClusterRepository,
	repository.NewNodeRepository,
	repository.NewVirtualMachineRepository,
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewRapiProvider,
	service.NewPermissionService,
	service.NewClusterSyncService,
)

var serverSet = wire.NewSet(
	server.NewTaskServer,
)

// build App
func newApp(
	task *server.TaskServer,
) *app.App {
	return app.NewApp(
		app.WithServer(task),
		app.WithName("ganeti-webmgr-task"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		serviceSet,
		serverSet,
		sid.NewSid,
		jwt.NewJwt,
		newApp,
	))
}
