package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository interface {
	Get(ctx context.Context, userId string, clusterID int64) (*model.Permission, error)
	Save(ctx context.Context, perm *model.Permission) error
	Delete(ctx context.Context, userId string, clusterID int64) error
	ListByCluster(ctx context.Context, clusterID int64) ([]*model.Permission, error)
	ListByUser(ctx context.Context, userId string) ([]*model.Permission, error)
	DeleteByClusterID(ctx context.Context, clusterID int64) error
	DeleteByUserID(ctx context.Context, userId string) error
}

func NewPermissionRepository(r *Repository) PermissionRepository {
	return &permissionRepository{Repository: r}
}

type permissionRepository struct {
	*Repository
}

// Get reads the whole grant row in one statement.
func (r *permissionRepository) Get(ctx context.Context, userId string, clusterID int64) (*model.Permission, error) {
	var perm model.Permission
	if err := r.DB(ctx).Where("user_id = ? AND cluster_id = ?", userId, clusterID).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

// Save inserts the grant or replaces the capability set of the existing (user, cluster) row.
func (r *permissionRepository) Save(ctx context.Context, perm *model.Permission) error {
	now := time.Now()
	if perm.CreateTime.IsZero() {
		perm.CreateTime = now
	}
	perm.UpdateTime = now
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "cluster_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"capabilities", "gmt_modified", "modifier"}),
	}).Create(perm).Error
}

func (r *permissionRepository) Delete(ctx context.Context, userId string, clusterID int64) error {
	return r.DB(ctx).Where("user_id = ? AND cluster_id = ?", userId, clusterID).Delete(&model.Permission{}).Error
}

func (r *permissionRepository) ListByCluster(ctx context.Context, clusterID int64) ([]*model.Permission, error) {
	var perms []*model.Permission
	if err := r.DB(ctx).Where("cluster_id = ?", clusterID).Order("user_id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) ListByUser(ctx context.Context, userId string) ([]*model.Permission, error) {
	var perms []*model.Permission
	if err := r.DB(ctx).Where("user_id = ?", userId).Order("cluster_id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) DeleteByClusterID(ctx context.Context, clusterID int64) error {
	return r.DB(ctx).Where("cluster_id = ?", clusterID).Delete(&model.Permission{}).Error
}

func (r *permissionRepository) DeleteByUserID(ctx context.Context, userId string) error {
	return r.DB(ctx).Where("user_id = ?", userId).Delete(&model.Permission{}).Error
}
