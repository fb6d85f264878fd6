package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InflightRepository is the index of targets that have an operation outstanding.
// At most one entry exists per (cluster, target).
type InflightRepository interface {
	// Acquire inserts entry unless the target is already held. It reports whether entry was stored.
	Acquire(ctx context.Context, entry *model.InflightJob) (bool, error)
	Get(ctx context.Context, clusterID int64, target string) (*model.InflightJob, error)
	SetJobID(ctx context.Context, clusterID int64, target, actionId, jobId string) error
	// Release drops the entry only while it still belongs to actionId.
	Release(ctx context.Context, clusterID int64, target, actionId string) error
}

// NewInflightRepository picks the backend named by dispatch.inflight (db or redis).
func NewInflightRepository(r *Repository, conf *viper.Viper) InflightRepository {
	if conf.GetString("dispatch.inflight") == "redis" {
		if r.rdb == nil {
			panic("dispatch.inflight is redis but data.redis.addr is not configured")
		}
		ttl := conf.GetDuration("dispatch.inflight_ttl")
		r.logger.Info("in-flight index on redis", zap.Duration("ttl", ttl))
		return NewRedisInflightRepository(r, ttl)
	}
	return NewDBInflightRepository(r)
}

func NewDBInflightRepository(r *Repository) InflightRepository {
	return &dbInflightRepository{Repository: r}
}

type dbInflightRepository struct {
	*Repository
}

func (r *dbInflightRepository) Acquire(ctx context.Context, entry *model.InflightJob) (bool, error) {
	if entry.CreateTime.IsZero() {
		entry.CreateTime = time.Now()
	}
	res := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dbInflightRepository) Get(ctx context.Context, clusterID int64, target string) (*model.InflightJob, error) {
	var entry model.InflightJob
	if err := r.DB(ctx).Where("cluster_id = ? AND target = ?", clusterID, target).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *dbInflightRepository) SetJobID(ctx context.Context, clusterID int64, target, actionId, jobId string) error {
	return r.DB(ctx).
		Model(&model.InflightJob{}).
		Where("cluster_id = ? AND target = ? AND action_id = ?", clusterID, target, actionId).
		Update("job_id", jobId).Error
}

func (r *dbInflightRepository) Release(ctx context.Context, clusterID int64, target, actionId string) error {
	return r.DB(ctx).
		Where("cluster_id = ? AND target = ? AND action_id = ?", clusterID, target, actionId).
		Delete(&model.InflightJob{}).Error
}
