package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
)

func InitUserRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// account creation and sign-in
	noAuthRouter := r.Group("/")
	{
		noAuthRouter.POST("/register", deps.UserHandler.Register)
		noAuthRouter.POST("/login", deps.UserHandler.Login)
	}

	// needs a valid token that was not logged out
	strictAuthRouter := r.Group("/").Use(middleware.StrictAuth(deps.JWT, deps.Revocations, deps.Logger))
	{
		strictAuthRouter.POST("/logout", deps.UserHandler.Logout)
		strictAuthRouter.GET("/user", deps.UserHandler.GetProfile)
		strictAuthRouter.PUT("/user", deps.UserHandler.UpdateProfile)
		strictAuthRouter.GET("/user/permissions", deps.PermissionHandler.ListMyPermissions)
		strictAuthRouter.DELETE("/users/:username", deps.UserHandler.DeleteUser)
	}
}
