package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
)

func InitNodeRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/clusters/:slug/nodes").Use(middleware.StrictAuth(deps.JWT, deps.Revocations, deps.Logger))
	{
		strictAuthRouter.GET("", deps.NodeHandler.ListNodes)
		strictAuthRouter.GET("/:hostname", deps.NodeHandler.GetNode)
		strictAuthRouter.GET("/:hostname/primary", deps.NodeHandler.PrimaryInstances)
		strictAuthRouter.GET("/:hostname/secondary", deps.NodeHandler.SecondaryInstances)
		strictAuthRouter.POST("/:hostname/actions/:action", deps.NodeHandler.NodeAction)
	}
}
