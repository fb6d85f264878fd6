//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/server"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/app"
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
	repository.NewProfileRepository,
)
var serverSet = wire.NewSet(
	server.NewMigrateServer,
)
var sidSet = wire.NewSet(
	sid.NewSid,
)

// build App
func newApp(
	migrateServer *server.MigrateServer,
) *app.App {
	return app.NewApp(
		app.WithServer(migrateServer),
		app.WithName("ganeti-webmgr-migrate"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		sidSet,
		serverSet,
		newApp,
	))
}
