package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
)

type VirtualMachineRepository interface {
	Create(ctx context.Context, vm *model.VirtualMachine) error
	Update(ctx context.Context, vm *model.VirtualMachine) error
	GetByName(ctx context.Context, clusterID int64, name string) (*model.VirtualMachine, error)
	GetByNames(ctx context.Context, clusterID int64, names []string) ([]*model.VirtualMachine, error)
	GetByClusterID(ctx context.Context, clusterID int64) ([]*model.VirtualMachine, error)
	ListWithPagination(ctx context.Context, page, pageSize int, clusterID int64, status, node string) ([]*model.VirtualMachine, int64, error)
	CountByClusterID(ctx context.Context, clusterID int64) (int64, error)
	Upsert(ctx context.Context, vm *model.VirtualMachine) error
	GetHashByName(ctx context.Context, clusterID int64, name string) (string, int64, error)
	UpdateSyncTimeOnly(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, clusterID int64, name, status string) error
	DeleteMissing(ctx context.Context, clusterID int64, keep []string) (int64, error)
	DeleteByName(ctx context.Context, clusterID int64, name string) error
	DeleteByClusterID(ctx context.Context, clusterID int64) error
}

func NewVirtualMachineRepository(r *Repository) VirtualMachineRepository {
	return &virtualMachineRepository{Repository: r}
}

type virtualMachineRepository struct {
	*Repository
}

func (r *virtualMachineRepository) Create(ctx context.Context, vm *model.VirtualMachine) error {
	now := time.Now()
	vm.CreateTime = now
	vm.UpdateTime = now
	return r.DB(ctx).Create(vm).Error
}

func (r *virtualMachineRepository) Update(ctx context.Context, vm *model.VirtualMachine) error {
	vm.UpdateTime = time.Now()
	return r.DB(ctx).Omit("gmt_create").Save(vm).Error
}

func (r *virtualMachineRepository) GetByName(ctx context.Context, clusterID int64, name string) (*model.VirtualMachine, error) {
	var vm model.VirtualMachine
	if err := r.DB(ctx).Where("cluster_id = ? AND name = ?", clusterID, name).First(&vm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vm, nil
}

func (r *virtualMachineRepository) GetByNames(ctx context.Context, clusterID int64, names []string) ([]*model.VirtualMachine, error) {
	vms := []*model.VirtualMachine{}
	if len(names) == 0 {
		return vms, nil
	}
	if err := r.DB(ctx).Where("cluster_id = ? AND name IN ?", clusterID, names).Order("name").Find(&vms).Error; err != nil {
		return nil, err
	}
	return vms, nil
}

func (r *virtualMachineRepository) GetByClusterID(ctx context.Context, clusterID int64) ([]*model.VirtualMachine, error) {
	var vms []*model.VirtualMachine
	if err := r.DB(ctx).Where("cluster_id = ?", clusterID).Order("name").Find(&vms).Error; err != nil {
		return nil, err
	}
	return vms, nil
}

func (r *virtualMachineRepository) ListWithPagination(ctx context.Context, page, pageSize int, clusterID int64, status, node string) ([]*model.VirtualMachine, int64, error) {
	var vms []*model.VirtualMachine
	var total int64

	query := r.DB(ctx).Model(&model.VirtualMachine{}).Where("cluster_id = ?", clusterID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if node != "" {
		query = query.Where("primary_node = ?", node)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("name").Find(&vms).Error; err != nil {
		return nil, 0, err
	}

	return vms, total, nil
}

func (r *virtualMachineRepository) CountByClusterID(ctx context.Context, clusterID int64) (int64, error) {
	var total int64
	err := r.DB(ctx).Model(&model.VirtualMachine{}).Where("cluster_id = ?", clusterID).Count(&total).Error
	return total, err
}

func (r *virtualMachineRepository) Upsert(ctx context.Context, vm *model.VirtualMachine) error {
	existingHash, existingID, err := r.GetHashByName(ctx, vm.ClusterID, vm.Name)
	if err != nil {
		return err
	}

	if existingID == 0 {
		return r.Create(ctx, vm)
	}

	vm.Id = existingID
	if existingHash != "" && existingHash == vm.ResourceHash {
		return r.UpdateSyncTimeOnly(ctx, existingID)
	}

	return r.Update(ctx, vm)
}

func (r *virtualMachineRepository) GetHashByName(ctx context.Context, clusterID int64, name string) (string, int64, error) {
	var result struct {
		Id           int64  `gorm:"column:id"`
		ResourceHash string `gorm:"column:resource_hash"`
	}

	err := r.DB(ctx).
		Model(&model.VirtualMachine{}).
		Select("id, resource_hash").
		Where("cluster_id = ? AND name = ?", clusterID, name).
		First(&result).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}

	return result.ResourceHash, result.Id, nil
}

func (r *virtualMachineRepository) UpdateSyncTimeOnly(ctx context.Context, id int64) error {
	return r.DB(ctx).
		Model(&model.VirtualMachine{}).
		Where("id = ?", id).
		Update("last_sync_time", time.Now()).Error
}

// UpdateStatus refreshes the cached state of one instance and clears its hash so the next
// refresh rewrites the full row.
func (r *virtualMachineRepository) UpdateStatus(ctx context.Context, clusterID int64, name, status string) error {
	return r.DB(ctx).
		Model(&model.VirtualMachine{}).
		Where("cluster_id = ? AND name = ?", clusterID, name).
		Updates(map[string]interface{}{
			"status":        status,
			"resource_hash": "",
			"gmt_modified":  time.Now(),
		}).Error
}

func (r *virtualMachineRepository) DeleteMissing(ctx context.Context, clusterID int64, keep []string) (int64, error) {
	query := r.DB(ctx).Where("cluster_id = ?", clusterID)
	if len(keep) > 0 {
		query = query.Where("name NOT IN ?", keep)
	}
	res := query.Delete(&model.VirtualMachine{})
	return res.RowsAffected, res.Error
}

func (r *virtualMachineRepository) DeleteByName(ctx context.Context, clusterID int64, name string) error {
	return r.DB(ctx).Where("cluster_id = ? AND name = ?", clusterID, name).Delete(&model.VirtualMachine{}).Error
}

func (r *virtualMachineRepository) DeleteByClusterID(ctx context.Context, clusterID int64) error {
	return r.DB(ctx).Where("cluster_id = ?", clusterID).Delete(&model.VirtualMachine{}).Error
}
