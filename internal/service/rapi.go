package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"
)

// RapiProvider hands out the RAPI client of a registered cluster.
type RapiProvider interface {
	Client(cluster *model.Cluster) (ganeti.Client, error)
}

// RapiProviderFunc adapts a function to RapiProvider.
type RapiProviderFunc func(cluster *model.Cluster) (ganeti.Client, error)

func (f RapiProviderFunc) Client(cluster *model.Cluster) (ganeti.Client, error) {
	return f(cluster)
}

// NewRapiProvider builds clients that share one request limiter, so the whole process never
// has more than rapi.max_concurrency calls outstanding.
func NewRapiProvider(conf *viper.Viper) RapiProvider {
	limit := conf.GetInt64("rapi.max_concurrency")
	if limit <= 0 {
		limit = 16
	}
	return &rapiProvider{
		limiter:  semaphore.NewWeighted(limit),
		timeout:  conf.GetDuration("rapi.timeout"),
		insecure: conf.GetBool("rapi.insecure_skip_verify"),
		clients:  map[string]ganeti.Client{},
	}
}

type rapiProvider struct {
	limiter  *semaphore.Weighted
	timeout  time.Duration
	insecure bool

	mu      sync.Mutex
	clients map[string]ganeti.Client
}

func (p *rapiProvider) Client(cluster *model.Cluster) (ganeti.Client, error) {
	// credentials are part of the key so an edited cluster gets a fresh client
	key := fmt.Sprintf("%d|%s|%d|%s|%s", cluster.Id, cluster.Hostname, cluster.Port, cluster.Username, cluster.Password)

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[key]; ok {
		return c, nil
	}
	c, err := ganeti.NewClient(ganeti.Config{
		Host:               cluster.Hostname,
		Port:               cluster.Port,
		Username:           cluster.Username,
		Password:           cluster.Password,
		Timeout:            p.timeout,
		InsecureSkipVerify: p.insecure,
	}, ganeti.WithLimiter(p.limiter))
	if err != nil {
		return nil, err
	}
	p.clients[key] = c
	return c, nil
}
