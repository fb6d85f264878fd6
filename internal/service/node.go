package service

import (
	"context"
	"encoding/json"

	"github.com/docker/go-units"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"go.uber.org/zap"
)

type NodeService interface {
	ListNodes(ctx context.Context, userId, slug string, req *v1.ListNodeRequest) (*v1.ListNodeResponseData, error)
	GetNode(ctx context.Context, userId, slug, hostname string) (*v1.NodeDetail, error)
	PrimaryInstances(ctx context.Context, userId, slug, hostname string) (*v1.NodeInstancesResponseData, error)
	SecondaryInstances(ctx context.Context, userId, slug, hostname string) (*v1.NodeInstancesResponseData, error)
}

func NewNodeService(
	service *Service,
	permission PermissionService,
	clusterRepo repository.ClusterRepository,
	nodeRepo repository.NodeRepository,
	vmRepo repository.VirtualMachineRepository,
) NodeService {
	return &nodeService{
		clusterGate: newClusterGate(service, permission, clusterRepo),
		nodeRepo:    nodeRepo,
		vmRepo:      vmRepo,
	}
}

type nodeService struct {
	clusterGate
	nodeRepo repository.NodeRepository
	vmRepo   repository.VirtualMachineRepository
}

// humanMiB renders a MiB figure the way `free -h` would; unknown stays empty.
func humanMiB(v *int64) string {
	if v == nil {
		return ""
	}
	return units.BytesSize(float64(*v) * units.MiB)
}

func decodeNames(s string) []string {
	names := []string{}
	if s == "" {
		return names
	}
	if err := json.Unmarshal([]byte(s), &names); err != nil || names == nil {
		return []string{}
	}
	return names
}

func nodeItem(n *model.Node) v1.NodeItem {
	return v1.NodeItem{
		Id:           n.Id,
		Hostname:     n.Hostname,
		Role:         n.Role,
		Offline:      n.Offline,
		Drained:      n.Drained,
		PrimaryIP:    n.PrimaryIP,
		SecondaryIP:  n.SecondaryIP,
		MemoryTotal:  n.MemoryTotal,
		MemoryFree:   n.MemoryFree,
		DiskTotal:    n.DiskTotal,
		DiskFree:     n.DiskFree,
		CPUTotal:     n.CPUTotal,
		CPUSockets:   n.CPUSockets,
		PrimaryVMs:   len(decodeNames(n.PrimaryInstances)),
		SecondaryVMs: len(decodeNames(n.SecondaryInstances)),
	}
}

func (s *nodeService) ListNodes(ctx context.Context, userId, slug string, req *v1.ListNodeRequest) (*v1.ListNodeResponseData, error) {
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
	nodes, total, err := s.nodeRepo.ListWithPagination(ctx, page, pageSize, cluster.Id, req.Role)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list nodes", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	items := make([]v1.NodeItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, nodeItem(n))
	}
	return &v1.ListNodeResponseData{Total: total, List: items}, nil
}

// node loads a cached node for a caller holding admin or migrate on its cluster.
func (s *nodeService) node(ctx context.Context, userId, slug, hostname string) (*model.User, *model.Cluster, *model.Node, error) {
	user, cluster, err := s.visible(ctx, userId, slug, model.CapAdmin, model.CapMigrate)
	if err != nil {
		return nil, nil, nil, err
	}
	node, err := s.nodeRepo.GetByHostname(ctx, cluster.Id, hostname)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get node", zap.String("hostname", hostname), zap.Error(err))
		return nil, nil, nil, v1.ErrInternalServerError
	}
	if node == nil {
		return nil, nil, nil, v1.ErrNotFound
	}
	return user, cluster, node, nil
}

func (s *nodeService) GetNode(ctx context.Context, userId, slug, hostname string) (*v1.NodeDetail, error) {
	user, cluster, node, err := s.node(ctx, userId, slug, hostname)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.permission.Authorize(ctx, user, cluster.Id, model.CapAdmin)
	if err != nil {
		return nil, err
	}
	actions, err := allowedActions(ctx, s.permission, user, cluster.Id, model.TargetNode)
	if err != nil {
		return nil, err
	}
	return &v1.NodeDetail{
		NodeItem:           nodeItem(node),
		UUID:               node.UUID,
		MemoryTotalHuman:   humanMiB(node.MemoryTotal),
		MemoryFreeHuman:    humanMiB(node.MemoryFree),
		DiskTotalHuman:     humanMiB(node.DiskTotal),
		DiskFreeHuman:      humanMiB(node.DiskFree),
		PrimaryInstances:   decodeNames(node.PrimaryInstances),
		SecondaryInstances: decodeNames(node.SecondaryInstances),
		Admin:              isAdmin,
		// node() already required admin or migrate
		Modify:       true,
		Actions:      actions,
		LastSyncTime: node.LastSyncTime,
	}, nil
}

func (s *nodeService) instances(ctx context.Context, clusterID int64, names []string) (*v1.NodeInstancesResponseData, error) {
	data := &v1.NodeInstancesResponseData{List: []v1.InstanceItem{}}
	if len(names) == 0 {
		return data, nil
	}
	vms, err := s.vmRepo.GetByNames(ctx, clusterID, names)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load instances", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	for _, vm := range vms {
		data.List = append(data.List, instanceItem(vm))
	}
	return data, nil
}

func (s *nodeService) PrimaryInstances(ctx context.Context, userId, slug, hostname string) (*v1.NodeInstancesResponseData, error) {
	_, cluster, node, err := s.node(ctx, userId, slug, hostname)
	if err != nil {
		return nil, err
	}
	return s.instances(ctx, cluster.Id, decodeNames(node.PrimaryInstances))
}

func (s *nodeService) SecondaryInstances(ctx context.Context, userId, slug, hostname string) (*v1.NodeInstancesResponseData, error) {
	_, cluster, node, err := s.node(ctx, userId, slug, hostname)
	if err != nil {
		return nil, err
	}
	return s.instances(ctx, cluster.Id, decodeNames(node.SecondaryInstances))
}
