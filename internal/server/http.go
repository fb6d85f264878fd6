package server

import (
	"github.com/gin-gonic/gin"
	apiV1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/docs"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
	"github.com/nitinprakash96/ganeti-webmgr/internal/router"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/server/http"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewHTTPServer(
	deps router.RouterDeps,
) *http.Server {
	if deps.Config.GetString("env") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := http.NewServer(
		gin.Default(),
		deps.Logger,
		http.WithServerHost(deps.Config.GetString("http.host")),
		http.WithServerPort(deps.Config.GetInt("http.port")),
	)

	// swagger doc
	docs.SwaggerInfo.BasePath = "/"
	s.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerfiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	s.Use(
		middleware.CORSMiddleware(),
		middleware.ResponseLogMiddleware(deps.Logger),
		middleware.RequestLogMiddleware(deps.Logger),
	)
	s.GET("/", func(ctx *gin.Context) {
		apiV1.HandleSuccess(ctx, map[string]interface{}{
			"name": "ganeti-webmgr",
		})
	})

	api := s.Group("/api/v1")
	router.InitUserRouter(deps, api)
	router.InitClusterRouter(deps, api)
	router.InitNodeRouter(deps, api)
	router.InitInstanceRouter(deps, api)
	router.InitJobRouter(deps, api)

	return s
}
