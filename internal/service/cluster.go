package service

import (
	"context"
	"strings"
	"time"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"go.uber.org/zap"
)

type ClusterService interface {
	CreateCluster(ctx context.Context, userId string, req *v1.CreateClusterRequest) (*v1.ClusterItem, error)
	UpdateCluster(ctx context.Context, userId, slug string, req *v1.UpdateClusterRequest) error
	DeleteCluster(ctx context.Context, userId, slug string) error
	GetCluster(ctx context.Context, userId, slug string) (*v1.ClusterDetail, error)
	ListClusters(ctx context.Context, userId string, req *v1.ListClusterRequest) (*v1.ListClusterResponseData, error)
	// GetClusterInfo asks the cluster itself instead of the cache.
	GetClusterInfo(ctx context.Context, userId, slug string) (*ganeti.ClusterInfo, error)
	ListOperatingSystems(ctx context.Context, userId, slug string) (*v1.OperatingSystemsResponseData, error)
	ListActionLogs(ctx context.Context, userId, slug string, req *v1.ListActionLogRequest) (*v1.ListActionLogResponseData, error)
}

func NewClusterService(
	service *Service,
	permission PermissionService,
	rapi RapiProvider,
	clusterRepo repository.ClusterRepository,
	nodeRepo repository.NodeRepository,
	vmRepo repository.VirtualMachineRepository,
	permRepo repository.PermissionRepository,
	auditRepo repository.ActionLogRepository,
) ClusterService {
	return &clusterService{
		clusterGate: newClusterGate(service, permission, clusterRepo),
		rapi:        rapi,
		nodeRepo:    nodeRepo,
		vmRepo:      vmRepo,
		permRepo:    permRepo,
		auditRepo:   auditRepo,
	}
}

type clusterService struct {
	clusterGate
	rapi      RapiProvider
	nodeRepo  repository.NodeRepository
	vmRepo    repository.VirtualMachineRepository
	permRepo  repository.PermissionRepository
	auditRepo repository.ActionLogRepository
}

// clusterGate resolves a cluster slug for a caller and checks what they hold on it.
type clusterGate struct {
	*Service
	permission  PermissionService
	clusterRepo repository.ClusterRepository
}

func newClusterGate(service *Service, permission PermissionService, clusterRepo repository.ClusterRepository) clusterGate {
	return clusterGate{Service: service, permission: permission, clusterRepo: clusterRepo}
}

func (s *clusterGate) superuser(ctx context.Context, userId string) (*model.User, error) {
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !user.IsSuperuser {
		return nil, v1.ErrForbidden
	}
	return user, nil
}

// visible loads the cluster when the caller holds one of required on it, or any capability
// when required is empty.
func (s *clusterGate) visible(ctx context.Context, userId, slug string, required ...model.Capability) (*model.User, *model.Cluster, error) {
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, nil, err
	}
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.String("slug", slug), zap.Error(err))
		return nil, nil, v1.ErrInternalServerError
	}
	if cluster == nil {
		return nil, nil, v1.ErrNotFound
	}
	if len(required) == 0 {
		required = model.AllCapabilities()
	}
	if err := s.permission.Require(ctx, user, cluster.Id, required...); err != nil {
		return nil, nil, err
	}
	return user, cluster, nil
}

func (s *clusterService) CreateCluster(ctx context.Context, userId string, req *v1.CreateClusterRequest) (*v1.ClusterItem, error) {
	user, err := s.superuser(ctx, userId)
	if err != nil {
		return nil, err
	}
	existing, err := s.clusterRepo.GetBySlug(ctx, req.Slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to check cluster slug", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if existing != nil {
		return nil, v1.ErrClusterSlugAlreadyUse
	}

	port := req.Port
	if port == 0 {
		port = ganeti.DefaultPort
	}
	enabled := int8(1)
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	now := time.Now()
	cluster := &model.Cluster{
		Slug:        req.Slug,
		Hostname:    req.Hostname,
		Port:        port,
		Username:    req.Username,
		Password:    req.Password,
		Description: req.Description,
		IsEnabled:   enabled,
		CreateTime:  now,
		UpdateTime:  now,
		Creator:     user.Username,
		Modifier:    user.Username,
	}
	if err := s.clusterRepo.Create(ctx, cluster); err != nil {
		s.logger.WithContext(ctx).Error("failed to create cluster", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	s.logger.WithContext(ctx).Info("cluster registered", zap.String("slug", cluster.Slug), zap.String("hostname", cluster.Hostname))
	item := clusterItem(cluster)
	return &item, nil
}

func (s *clusterService) UpdateCluster(ctx context.Context, userId, slug string, req *v1.UpdateClusterRequest) error {
	user, err := s.superuser(ctx, userId)
	if err != nil {
		return err
	}
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if cluster == nil {
		return v1.ErrNotFound
	}

	if req.Hostname != nil {
		cluster.Hostname = *req.Hostname
	}
	if req.Port != nil {
		cluster.Port = *req.Port
	}
	if req.Username != nil {
		cluster.Username = *req.Username
	}
	if req.Password != nil {
		cluster.Password = *req.Password
	}
	if req.Description != nil {
		cluster.Description = *req.Description
	}
	if req.IsEnabled != nil {
		cluster.IsEnabled = *req.IsEnabled
	}
	cluster.Modifier = user.Username
	cluster.UpdateTime = time.Now()

	if err := s.clusterRepo.Update(ctx, cluster); err != nil {
		s.logger.WithContext(ctx).Error("failed to update cluster", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *clusterService) DeleteCluster(ctx context.Context, userId, slug string) error {
	if _, err := s.superuser(ctx, userId); err != nil {
		return err
	}
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if cluster == nil {
		return v1.ErrNotFound
	}

	// disable first so a running refresh stops writing rows for it
	if cluster.IsEnabled != 0 {
		cluster.IsEnabled = 0
		cluster.UpdateTime = time.Now()
		if err := s.clusterRepo.Update(ctx, cluster); err != nil {
			s.logger.WithContext(ctx).Error("failed to disable cluster before deletion", zap.Error(err))
			return v1.ErrInternalServerError
		}
	}

	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		if err := s.vmRepo.DeleteByClusterID(ctx, cluster.Id); err != nil {
			return err
		}
		if err := s.nodeRepo.DeleteByClusterID(ctx, cluster.Id); err != nil {
			return err
		}
		if err := s.permRepo.DeleteByClusterID(ctx, cluster.Id); err != nil {
			return err
		}
		return s.clusterRepo.Delete(ctx, cluster.Id)
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to delete cluster", zap.String("slug", slug), zap.Error(err))
		return v1.ErrInternalServerError
	}
	s.logger.WithContext(ctx).Info("cluster deleted", zap.String("slug", slug))
	return nil
}

func clusterItem(c *model.Cluster) v1.ClusterItem {
	return v1.ClusterItem{
		Id:                c.Id,
		Slug:              c.Slug,
		Hostname:          c.Hostname,
		Port:              c.Port,
		Description:       c.Description,
		DefaultHypervisor: c.DefaultHypervisor,
		SoftwareVersion:   c.SoftwareVersion,
		IsEnabled:         c.IsEnabled,
	}
}

func (s *clusterService) GetCluster(ctx context.Context, userId, slug string) (*v1.ClusterDetail, error) {
	_, cluster, err := s.visible(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	nodes, err := s.nodeRepo.CountByClusterID(ctx, cluster.Id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to count nodes", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	vms, err := s.vmRepo.CountByClusterID(ctx, cluster.Id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to count vms", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return &v1.ClusterDetail{
		ClusterItem:        clusterItem(cluster),
		Username:           cluster.Username,
		ClusterName:        cluster.ClusterName,
		MasterNode:         cluster.MasterNode,
		EnabledHypervisors: cluster.Hypervisors(),
		NodeCount:          nodes,
		VMCount:            vms,
		LastSyncTime:       cluster.LastSyncTime,
		CreateTime:         cluster.CreateTime,
		UpdateTime:         cluster.UpdateTime,
	}, nil
}

func (s *clusterService) ListClusters(ctx context.Context, userId string, req *v1.ListClusterRequest) (*v1.ListClusterResponseData, error) {
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, err
	}
	ids, err := s.permission.VisibleClusterIDs(ctx, user)
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
	clusters, total, err := s.clusterRepo.ListWithPagination(ctx, page, pageSize, ids)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list clusters", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	items := make([]v1.ClusterItem, 0, len(clusters))
	for _, c := range clusters {
		items = append(items, clusterItem(c))
	}
	return &v1.ListClusterResponseData{Total: total, List: items}, nil
}

func (s *clusterService) GetClusterInfo(ctx context.Context, userId, slug string) (*ganeti.ClusterInfo, error) {
	_, cluster, err := s.visible(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	client, err := s.rapi.Client(cluster)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to build rapi client", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	info, err := client.GetInfo(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to get cluster info", zap.String("slug", slug), zap.Error(err))
		return nil, remoteError(err)
	}
	return info, nil
}

func (s *clusterService) ListOperatingSystems(ctx context.Context, userId, slug string) (*v1.OperatingSystemsResponseData, error) {
	_, cluster, err := s.visible(ctx, userId, slug, model.CapAdmin, model.CapCreateVM)
	if err != nil {
		return nil, err
	}
	client, err := s.rapi.Client(cluster)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to build rapi client", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	list, err := client.ListOperatingSystems(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to list operating systems", zap.String("slug", slug), zap.Error(err))
		return nil, remoteError(err)
	}
	return &v1.OperatingSystemsResponseData{List: list}, nil
}

func (s *clusterService) ListActionLogs(ctx context.Context, userId, slug string, req *v1.ListActionLogRequest) (*v1.ListActionLogResponseData, error) {
	_, cluster, err := s.visible(ctx, userId, slug, model.CapAdmin)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.auditRepo.ListRecent(ctx, cluster.Slug, limit)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list action logs", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	data := &v1.ListActionLogResponseData{List: make([]v1.ActionLogItem, 0, len(entries))}
	for _, e := range entries {
		data.List = append(data.List, v1.ActionLogItem{
			Id:         e.ID.Hex(),
			UserId:     e.UserId,
			Cluster:    e.Cluster,
			Target:     e.Target,
			Action:     e.Action,
			JobId:      e.JobId,
			State:      e.State,
			Message:    e.Message,
			CreateTime: e.CreateTime,
		})
	}
	return data, nil
}

func joinHypervisors(hvs []string) string {
	return strings.Join(hvs, ",")
}
