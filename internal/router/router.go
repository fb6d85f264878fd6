package router

import (
	"github.com/nitinprakash96/ganeti-webmgr/internal/handler"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger            *log.Logger
	Config            *viper.Viper
	JWT               *jwt.JWT
	Revocations       middleware.TokenRevocations
	UserHandler       *handler.UserHandler
	ClusterHandler    *handler.ClusterHandler
	NodeHandler       *handler.NodeHandler
	InstanceHandler   *handler.InstanceHandler
	PermissionHandler *handler.PermissionHandler
	JobHandler        *handler.JobHandler
}
