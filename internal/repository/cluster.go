package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
)

type ClusterRepository interface {
	Create(ctx context.Context, cluster *model.Cluster) error
	Update(ctx context.Context, cluster *model.Cluster) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Cluster, error)
	GetBySlug(ctx context.Context, slug string) (*model.Cluster, error)
	List(ctx context.Context) ([]*model.Cluster, error)
	ListWithPagination(ctx context.Context, page, pageSize int, ids []int64) ([]*model.Cluster, int64, error)
	GetAllEnabled(ctx context.Context) ([]*model.Cluster, error) // clusters the refresh task visits
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Cluster, error)
	UpdateSyncInfo(ctx context.Context, cluster *model.Cluster) error
}

func NewClusterRepository(r *Repository) ClusterRepository {
	return &clusterRepository{Repository: r}
}

type clusterRepository struct {
	*Repository
}

func (r *clusterRepository) Create(ctx context.Context, cluster *model.Cluster) error {
	return r.DB(ctx).Create(cluster).Error
}

func (r *clusterRepository) Update(ctx context.Context, cluster *model.Cluster) error {
	return r.DB(ctx).Save(cluster).Error
}

func (r *clusterRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.Cluster{}).Error
}

func (r *clusterRepository) GetByID(ctx context.Context, id int64) (*model.Cluster, error) {
	var cluster model.Cluster
	if err := r.DB(ctx).Where("id = ?", id).First(&cluster).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cluster, nil
}

func (r *clusterRepository) GetBySlug(ctx context.Context, slug string) (*model.Cluster, error) {
	var cluster model.Cluster
	if err := r.DB(ctx).Where("slug = ?", slug).First(&cluster).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cluster, nil
}

func (r *clusterRepository) List(ctx context.Context) ([]*model.Cluster, error) {
	var clusters []*model.Cluster
	if err := r.DB(ctx).Order("slug").Find(&clusters).Error; err != nil {
		return nil, err
	}
	return clusters, nil
}

func (r *clusterRepository) GetAllEnabled(ctx context.Context) ([]*model.Cluster, error) {
	var clusters []*model.Cluster
	if err := r.DB(ctx).Where("is_enabled = ?", 1).Find(&clusters).Error; err != nil {
		return nil, err
	}
	return clusters, nil
}

// ListWithPagination pages through clusters ordered by slug. A non-nil ids restricts the result
// to those clusters; an empty non-nil slice yields nothing.
func (r *clusterRepository) ListWithPagination(ctx context.Context, page, pageSize int, ids []int64) ([]*model.Cluster, int64, error) {
	var clusters []*model.Cluster
	var total int64

	if ids != nil && len(ids) == 0 {
		return []*model.Cluster{}, 0, nil
	}

	query := r.DB(ctx).Model(&model.Cluster{})
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("slug").Offset(offset).Limit(pageSize).Find(&clusters).Error; err != nil {
		return nil, 0, err
	}

	return clusters, total, nil
}

func (r *clusterRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Cluster, error) {
	if len(ids) == 0 {
		return make(map[int64]*model.Cluster), nil
	}

	var clusters []*model.Cluster
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&clusters).Error; err != nil {
		return nil, err
	}

	result := make(map[int64]*model.Cluster, len(clusters))
	for _, cluster := range clusters {
		result[cluster.Id] = cluster
	}
	return result, nil
}

// UpdateSyncInfo writes what the refresh task learned from /2/info, leaving user edited fields alone.
func (r *clusterRepository) UpdateSyncInfo(ctx context.Context, cluster *model.Cluster) error {
	return r.DB(ctx).
		Model(&model.Cluster{}).
		Where("id = ?", cluster.Id).
		Updates(map[string]interface{}{
			"cluster_name":        cluster.ClusterName,
			"master_node":         cluster.MasterNode,
			"default_hypervisor":  cluster.DefaultHypervisor,
			"enabled_hypervisors": cluster.EnabledHypervisors,
			"software_version":    cluster.SoftwareVersion,
			"last_sync_time":      cluster.LastSyncTime,
			"gmt_modified":        time.Now(),
		}).Error
}
