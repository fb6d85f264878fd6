package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
)

func InitInstanceRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/clusters/:slug/instances").Use(middleware.StrictAuth(deps.JWT, deps.Revocations, deps.Logger))
	{
		strictAuthRouter.GET("", deps.InstanceHandler.ListInstances)
		strictAuthRouter.GET("/:name", deps.InstanceHandler.GetInstance)
		strictAuthRouter.POST("/:name/actions/:action", deps.InstanceHandler.InstanceAction)
	}
}
