package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
)

func InitClusterRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/clusters").Use(middleware.StrictAuth(deps.JWT, deps.Revocations, deps.Logger))
	{
		strictAuthRouter.GET("", deps.ClusterHandler.ListClusters)
		strictAuthRouter.POST("", deps.ClusterHandler.CreateCluster)
		strictAuthRouter.GET("/:slug", deps.ClusterHandler.GetCluster)
		strictAuthRouter.PUT("/:slug", deps.ClusterHandler.UpdateCluster)
		strictAuthRouter.DELETE("/:slug", deps.ClusterHandler.DeleteCluster)
		strictAuthRouter.POST("/:slug/refresh", deps.ClusterHandler.RefreshCluster)
		strictAuthRouter.GET("/:slug/info", deps.ClusterHandler.GetClusterInfo)
		strictAuthRouter.GET("/:slug/os", deps.ClusterHandler.ListOperatingSystems)
		strictAuthRouter.GET("/:slug/logs", deps.ClusterHandler.ListActionLogs)

		strictAuthRouter.GET("/:slug/permissions", deps.PermissionHandler.ListClusterPermissions)
		strictAuthRouter.PUT("/:slug/permissions/:username", deps.PermissionHandler.SetPermission)
		strictAuthRouter.DELETE("/:slug/permissions/:username", deps.PermissionHandler.RevokePermission)
	}
}
