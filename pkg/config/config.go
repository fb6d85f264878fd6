package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfig(p string) *viper.Viper {
	envConf := os.Getenv("APP_CONF")
	if envConf == "" {
		envConf = p
	}
	fmt.Println("load conf file:", envConf)
	return getConfig(envConf)
}

func getConfig(path string) *viper.Viper {
	conf := viper.New()
	conf.SetConfigFile(path)
	conf.SetEnvPrefix("GWM")
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()
	setDefaults(conf)
	if err := conf.ReadInConfig(); err != nil {
		panic(err)
	}
	return conf
}

func setDefaults(conf *viper.Viper) {
	conf.SetDefault("env", "local")
	conf.SetDefault("http.host", "0.0.0.0")
	conf.SetDefault("http.port", 8000)
	conf.SetDefault("grpc.port", 9000)
	conf.SetDefault("rapi.port", 5080)
	conf.SetDefault("rapi.timeout", 30*time.Second)
	conf.SetDefault("rapi.max_concurrency", 16)
	conf.SetDefault("rapi.insecure_skip_verify", true)
	conf.SetDefault("sync.cron", "*/5 * * * *")
	conf.SetDefault("sync.parallelism", 4)
	conf.SetDefault("dispatch.inflight", "db")
	conf.SetDefault("dispatch.inflight_ttl", 24*time.Hour)
	conf.SetDefault("dispatch.stream_interval", 2*time.Second)
	conf.SetDefault("security.jwt.ttl", 72*time.Hour)
}
