package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
)

type JobActionRepository interface {
	Create(ctx context.Context, action *model.JobAction) error
	GetByID(ctx context.Context, id string) (*model.JobAction, error)
	GetByJobID(ctx context.Context, clusterID int64, jobId string) (*model.JobAction, error)
	// Advance moves action to its new state only if the stored state is still one of from.
	// It reports whether the row was updated.
	Advance(ctx context.Context, action *model.JobAction, from ...string) (bool, error)
	ListRecent(ctx context.Context, clusterID int64, userId string, limit int) ([]*model.JobAction, error)
}

func NewJobActionRepository(r *Repository) JobActionRepository {
	return &jobActionRepository{Repository: r}
}

type jobActionRepository struct {
	*Repository
}

func (r *jobActionRepository) Create(ctx context.Context, action *model.JobAction) error {
	now := time.Now()
	action.CreateTime = now
	action.UpdateTime = now
	return r.DB(ctx).Create(action).Error
}

func (r *jobActionRepository) GetByID(ctx context.Context, id string) (*model.JobAction, error) {
	var action model.JobAction
	if err := r.DB(ctx).Where("id = ?", id).First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

func (r *jobActionRepository) GetByJobID(ctx context.Context, clusterID int64, jobId string) (*model.JobAction, error) {
	var action model.JobAction
	if err := r.DB(ctx).Where("cluster_id = ? AND job_id = ?", clusterID, jobId).First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

func (r *jobActionRepository) Advance(ctx context.Context, action *model.JobAction, from ...string) (bool, error) {
	action.UpdateTime = time.Now()
	res := r.DB(ctx).
		Model(&model.JobAction{}).
		Where("id = ? AND state IN ?", action.Id, from).
		Updates(map[string]interface{}{
			"state":          action.State,
			"error_class":    action.ErrorClass,
			"error_messages": action.ErrorMessages,
			"snapshot":       action.Snapshot,
			"gmt_modified":   action.UpdateTime,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListRecent returns the newest actions of a cluster, optionally only those of userId.
func (r *jobActionRepository) ListRecent(ctx context.Context, clusterID int64, userId string, limit int) ([]*model.JobAction, error) {
	var actions []*model.JobAction
	query := r.DB(ctx).Where("cluster_id = ?", clusterID)
	if userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	if err := query.Order("gmt_create DESC").Limit(limit).Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
