package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
)

func InitJobRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/clusters/:slug/jobs").Use(middleware.StrictAuth(deps.JWT, deps.Revocations, deps.Logger))
	{
		strictAuthRouter.GET("", deps.JobHandler.ListJobs)
		strictAuthRouter.GET("/:jobId", deps.JobHandler.GetJob)
		strictAuthRouter.GET("/:jobId/log", deps.JobHandler.GetJobLog)
		strictAuthRouter.GET("/:jobId/stream", deps.JobHandler.StreamJob)
	}
}
