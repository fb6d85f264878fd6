package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
)

type NodeRepository interface {
	Create(ctx context.Context, node *model.Node) error
	Update(ctx context.Context, node *model.Node) error
	GetByHostname(ctx context.Context, clusterID int64, hostname string) (*model.Node, error)
	GetByClusterID(ctx context.Context, clusterID int64) ([]*model.Node, error)
	ListWithPagination(ctx context.Context, page, pageSize int, clusterID int64, role string) ([]*model.Node, int64, error)
	CountByClusterID(ctx context.Context, clusterID int64) (int64, error)
	Upsert(ctx context.Context, node *model.Node) error
	GetHashByHostname(ctx context.Context, clusterID int64, hostname string) (string, int64, error)
	UpdateSyncTimeOnly(ctx context.Context, id int64) error
	DeleteMissing(ctx context.Context, clusterID int64, keep []string) (int64, error)
	DeleteByClusterID(ctx context.Context, clusterID int64) error
}

func NewNodeRepository(r *Repository) NodeRepository {
	return &nodeRepository{Repository: r}
}

type nodeRepository struct {
	*Repository
}

func (r *nodeRepository) Create(ctx context.Context, node *model.Node) error {
	now := time.Now()
	node.CreateTime = now
	node.UpdateTime = now
	return r.DB(ctx).Create(node).Error
}

func (r *nodeRepository) Update(ctx context.Context, node *model.Node) error {
	node.UpdateTime = time.Now()
	return r.DB(ctx).Omit("gmt_create").Save(node).Error
}

func (r *nodeRepository) GetByHostname(ctx context.Context, clusterID int64, hostname string) (*model.Node, error) {
	var node model.Node
	if err := r.DB(ctx).Where("cluster_id = ? AND hostname = ?", clusterID, hostname).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepository) GetByClusterID(ctx context.Context, clusterID int64) ([]*model.Node, error) {
	var nodes []*model.Node
	if err := r.DB(ctx).Where("cluster_id = ?", clusterID).Order("hostname").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *nodeRepository) ListWithPagination(ctx context.Context, page, pageSize int, clusterID int64, role string) ([]*model.Node, int64, error) {
	var nodes []*model.Node
	var total int64

	query := r.DB(ctx).Model(&model.Node{}).Where("cluster_id = ?", clusterID)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("hostname").Find(&nodes).Error; err != nil {
		return nil, 0, err
	}

	return nodes, total, nil
}

func (r *nodeRepository) CountByClusterID(ctx context.Context, clusterID int64) (int64, error) {
	var total int64
	err := r.DB(ctx).Model(&model.Node{}).Where("cluster_id = ?", clusterID).Count(&total).Error
	return total, err
}

// Upsert writes node only when its resource hash changed; otherwise just the sync time moves.
func (r *nodeRepository) Upsert(ctx context.Context, node *model.Node) error {
	existingHash, existingID, err := r.GetHashByHostname(ctx, node.ClusterID, node.Hostname)
	if err != nil {
		return err
	}

	if existingID == 0 {
		return r.Create(ctx, node)
	}

	node.Id = existingID
	if existingHash != "" && existingHash == node.ResourceHash {
		return r.UpdateSyncTimeOnly(ctx, existingID)
	}

	return r.Update(ctx, node)
}

func (r *nodeRepository) GetHashByHostname(ctx context.Context, clusterID int64, hostname string) (string, int64, error) {
	var result struct {
		Id           int64  `gorm:"column:id"`
		ResourceHash string `gorm:"column:resource_hash"`
	}

	err := r.DB(ctx).
		Model(&model.Node{}).
		Select("id, resource_hash").
		Where("cluster_id = ? AND hostname = ?", clusterID, hostname).
		First(&result).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}

	return result.ResourceHash, result.Id, nil
}

func (r *nodeRepository) UpdateSyncTimeOnly(ctx context.Context, id int64) error {
	return r.DB(ctx).
		Model(&model.Node{}).
		Where("id = ?", id).
		Update("last_sync_time", time.Now()).Error
}

// DeleteMissing drops the cached nodes of a cluster whose hostname is not in keep.
func (r *nodeRepository) DeleteMissing(ctx context.Context, clusterID int64, keep []string) (int64, error) {
	query := r.DB(ctx).Where("cluster_id = ?", clusterID)
	if len(keep) > 0 {
		query = query.Where("hostname NOT IN ?", keep)
	}
	res := query.Delete(&model.Node{})
	return res.RowsAffected, res.Error
}

func (r *nodeRepository) DeleteByClusterID(ctx context.Context, clusterID int64) error {
	return r.DB(ctx).Where("cluster_id = ?", clusterID).Delete(&model.Node{}).Error
}
