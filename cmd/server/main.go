package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/nitinprakash96/ganeti-webmgr/cmd/server/wire"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/config"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"go.uber.org/zap"
)

// @title           Ganeti Web Manager API
// @version         1.0.0
// @description     Multi-tenant management API for Ganeti clusters: cached inventory, per-cluster permissions and tracked remote jobs.
// @license.name  GPL-2.0
// @license.url   https://www.gnu.org/licenses/old-licenses/gpl-2.0.html
// @host      localhost:8000
// @securityDefinitions.apiKey Bearer
// @in header
// @name Authorization
func main() {
	var envConf = flag.String("conf", "config/local.yml", "config path, eg: -conf ./config/local.yml")
	flag.Parse()
	conf := config.NewConfig(*envConf)

	logger := log.NewLog(conf)

	app, cleanup, err := wire.NewWire(conf, logger)
	defer cleanup()
	if err != nil {
		panic(err)
	}
	logger.Info("server start", zap.String("host", fmt.Sprintf("http://%s:%d", conf.GetString("http.host"), conf.GetInt("http.port"))))
	logger.Info("docs addr", zap.String("addr", fmt.Sprintf("http://%s:%d/swagger/index.html", conf.GetString("http.host"), conf.GetInt("http.port"))))
	if err = app.Run(context.Background()); err != nil {
		panic(err)
	}
}
