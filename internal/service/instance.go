package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/docker/go-units"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"go.uber.org/zap"
)

type InstanceService interface {
	ListInstances(ctx context.Context, userId, slug string, req *v1.ListInstanceRequest) (*v1.ListInstanceResponseData, error)
	// GetInstance answers from the cache; with refresh it first re-reads the instance from the cluster.
	GetInstance(ctx context.Context, userId, slug, name string, refresh bool) (*v1.InstanceDetail, error)
}

func NewInstanceService(
	service *Service,
	permission PermissionService,
	rapi RapiProvider,
	clusterRepo repository.ClusterRepository,
	vmRepo repository.VirtualMachineRepository,
) InstanceService {
	return &instanceService{
		clusterGate: newClusterGate(service, permission, clusterRepo),
		rapi:        rapi,
		vmRepo:      vmRepo,
	}
}

type instanceService struct {
	clusterGate
	rapi   RapiProvider
	vmRepo repository.VirtualMachineRepository
}

func instanceItem(vm *model.VirtualMachine) v1.InstanceItem {
	return v1.InstanceItem{
		Id:             vm.Id,
		Name:           vm.Name,
		Status:         vm.Status,
		OS:             vm.OS,
		Hypervisor:     vm.Hypervisor,
		PrimaryNode:    vm.PrimaryNode,
		SecondaryNodes: decodeNames(vm.SecondaryNodes),
		DiskTemplate:   vm.DiskTemplate,
		Memory:         vm.Memory,
		VCPUs:          vm.VCPUs,
	}
}

func (s *instanceService) ListInstances(ctx context.Context, userId, slug string, req *v1.ListInstanceRequest) (*v1.ListInstanceResponseData, error) {
	_, cluster, err := s.visible(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 15
	}
	vms, total, err := s.vmRepo.ListWithPagination(ctx, page, pageSize, cluster.Id, req.Status, req.Node)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list instances", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	items := make([]v1.InstanceItem, 0, len(vms))
	for _, vm := range vms {
		items = append(items, instanceItem(vm))
	}
	return &v1.ListInstanceResponseData{Total: total, List: items}, nil
}

func (s *instanceService) GetInstance(ctx context.Context, userId, slug, name string, refresh bool) (*v1.InstanceDetail, error) {
	user, cluster, err := s.visible(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	if refresh {
		if err := s.refresh(ctx, cluster, name); err != nil {
			return nil, err
		}
	}
	vm, err := s.vmRepo.GetByName(ctx, cluster.Id, name)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.String("name", name), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if vm == nil {
		return nil, v1.ErrNotFound
	}
	detail := instanceDetail(vm)
	if detail.Actions, err = allowedActions(ctx, s.permission, user, cluster.Id, model.TargetInstance); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *instanceService) refresh(ctx context.Context, cluster *model.Cluster, name string) error {
	client, err := s.rapi.Client(cluster)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to build rapi client", zap.Error(err))
		return v1.ErrInternalServerError
	}
	rec, err := client.GetInstance(ctx, name)
	if err != nil {
		if errors.Is(err, ganeti.ErrNotFound) {
			// gone on the cluster: drop the stale row as well
			if err := s.vmRepo.DeleteByName(ctx, cluster.Id, name); err != nil {
				s.logger.WithContext(ctx).Warn("failed to drop vanished instance", zap.Error(err))
			}
		}
		return remoteError(err)
	}
	rec.WithDefaultHypervisor(cluster.DefaultHypervisor)
	if err := rec.Validate(); err != nil {
		s.logger.WithContext(ctx).Warn("cluster reported an invalid instance", zap.String("name", name), zap.Error(err))
		return nil
	}
	vm, err := vmFromRecord(cluster.Id, rec, time.Now())
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to convert instance", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if err := s.vmRepo.Upsert(ctx, vm); err != nil {
		s.logger.WithContext(ctx).Error("failed to store instance", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

func decodeObject(s string) map[string]interface{} {
	out := map[string]interface{}{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out
}

func decodeObjects(s string) []map[string]interface{} {
	out := []map[string]interface{}{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	if out == nil {
		out = []map[string]interface{}{}
	}
	return out
}

func instanceDetail(vm *model.VirtualMachine) *v1.InstanceDetail {
	return &v1.InstanceDetail{
		InstanceItem:  instanceItem(vm),
		UUID:          vm.UUID,
		RawStatus:     vm.RawStatus,
		NetworkPort:   vm.NetworkPort,
		OperRAM:       vm.OperRAM,
		OperVCPUs:     vm.OperVCPUs,
		DiskSize:      vm.DiskSize,
		DiskSizeHuman: units.BytesSize(float64(vm.DiskSize) * units.MiB),
		HVParams:      decodeObject(vm.HVParams),
		BEParams:      decodeObject(vm.BEParams),
		NICParams:     decodeObjects(vm.NICParams),
		NICs:          decodeObjects(vm.NICs),
		Tags:          decodeNames(vm.Tags),
		LastSyncTime:  vm.LastSyncTime,
	}
}
