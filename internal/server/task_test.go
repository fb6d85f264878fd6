package server_test

import (
	"context"
	"testing"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/server"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

type countingSync struct{ runs int }

func (s *countingSync) RefreshCluster(ctx context.Context, userId, slug string) (*v1.RefreshClusterResponseData, error) {
	return nil, nil
}

func (s *countingSync) SyncAll(ctx context.Context) error {
	s.runs++
	return nil
}

func TestTaskServer_BadCron(t *testing.T) {
	conf := viper.New()
	conf.Set("sync.cron", "every now and then")
	sync := &countingSync{}
	task := server.NewTaskServer(log.NewNop(), conf, sync, nil)

	assert.Error(t, task.Start(context.Background()))
	assert.NoError(t, task.Stop(context.Background()))
	assert.Zero(t, sync.runs)
}

func TestTaskServer_StopBeforeStart(t *testing.T) {
	task := server.NewTaskServer(log.NewNop(), viper.New(), &countingSync{}, nil)
	assert.NoError(t, task.Stop(context.Background()))
}
