package server

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultSyncCron = "*/5 * * * *"

// TaskServer runs the periodic cache refresh and the session table cleanup.
type TaskServer struct {
	log         *log.Logger
	conf        *viper.Viper
	syncService service.ClusterSyncService
	sessionRepo repository.SessionRepository
	scheduler   *gocron.Scheduler
}

func NewTaskServer(
	log *log.Logger,
	conf *viper.Viper,
	syncService service.ClusterSyncService,
	sessionRepo repository.SessionRepository,
) *TaskServer {
	return &TaskServer{
		log:         log,
		conf:        conf,
		syncService: syncService,
		sessionRepo: sessionRepo,
	}
}

func (t *TaskServer) Start(ctx context.Context) error {
	gocron.SetPanicHandler(func(jobName string, recoverData interface{}) {
		t.log.Error("Task Panic", zap.String("job", jobName), zap.Any("recover", recoverData))
	})

	t.scheduler = gocron.NewScheduler(time.UTC)
	// a slow refresh must not pile up behind itself
	t.scheduler.SingletonModeAll()

	expr := t.conf.GetString("sync.cron")
	if expr == "" {
		expr = defaultSyncCron
	}
	if _, err := t.scheduler.Cron(expr).Tag("cluster-sync").Do(func() {
		start := time.Now()
		if err := t.syncService.SyncAll(ctx); err != nil {
			t.log.Error("cluster sync failed", zap.Error(err))
			return
		}
		t.log.Info("cluster sync done", zap.Duration("took", time.Since(start)))
	}); err != nil {
		t.log.Error("schedule cluster sync error", zap.String("cron", expr), zap.Error(err))
		return err
	}

	if _, err := t.scheduler.Every(1).Hour().Tag("session-purge").Do(func() {
		n, err := t.sessionRepo.PurgeExpired(ctx)
		if err != nil {
			t.log.Error("purge revoked tokens failed", zap.Error(err))
			return
		}
		if n > 0 {
			t.log.Info("purged revoked tokens", zap.Int64("count", n))
		}
	}); err != nil {
		t.log.Error("schedule session purge error", zap.Error(err))
		return err
	}

	t.log.Info("task server started", zap.String("sync_cron", expr))
	t.scheduler.StartBlocking()
	return nil
}

func (t *TaskServer) Stop(ctx context.Context) error {
	if t.scheduler != nil {
		t.scheduler.Stop()
	}
	t.log.Info("task server stopped")
	return nil
}
