package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/hash"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClusterSyncService keeps the node and instance caches in line with what the clusters report.
type ClusterSyncService interface {
	RefreshCluster(ctx context.Context, userId, slug string) (*v1.RefreshClusterResponseData, error)
	// SyncAll refreshes every enabled cluster. A failing cluster is logged and skipped.
	SyncAll(ctx context.Context) error
}

func NewClusterSyncService(
	service *Service,
	conf *viper.Viper,
	permission PermissionService,
	rapi RapiProvider,
	clusterRepo repository.ClusterRepository,
	nodeRepo repository.NodeRepository,
	vmRepo repository.VirtualMachineRepository,
) ClusterSyncService {
	parallelism := conf.GetInt("sync.parallelism")
	if parallelism <= 0 {
		parallelism = 4
	}
	return &clusterSyncService{
		Service:     service,
		permission:  permission,
		rapi:        rapi,
		clusterRepo: clusterRepo,
		nodeRepo:    nodeRepo,
		vmRepo:      vmRepo,
		parallelism: parallelism,
	}
}

type clusterSyncService struct {
	*Service
	permission  PermissionService
	rapi        RapiProvider
	clusterRepo repository.ClusterRepository
	nodeRepo    repository.NodeRepository
	vmRepo      repository.VirtualMachineRepository
	parallelism int
}

func (s *clusterSyncService) RefreshCluster(ctx context.Context, userId, slug string) (*v1.RefreshClusterResponseData, error) {
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, err
	}
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if cluster == nil {
		return nil, v1.ErrNotFound
	}
	if err := s.permission.Require(ctx, user, cluster.Id, model.CapAdmin); err != nil {
		return nil, err
	}
	return s.sync(ctx, cluster)
}

func (s *clusterSyncService) SyncAll(ctx context.Context) error {
	clusters, err := s.clusterRepo.GetAllEnabled(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list enabled clusters", zap.Error(err))
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, cluster := range clusters {
		cluster := cluster
		g.Go(func() error {
			res, err := s.sync(ctx, cluster)
			if err != nil {
				s.logger.WithContext(ctx).Warn("cluster refresh failed", zap.String("cluster", cluster.Slug), zap.Error(err))
				return nil
			}
			s.logger.WithContext(ctx).Info("cluster refreshed",
				zap.String("cluster", cluster.Slug),
				zap.Int("nodes", res.Nodes),
				zap.Int("vms", res.VMs),
				zap.Int("removed", res.Removed),
				zap.Int("skipped", len(res.Skipped)))
			return nil
		})
	}
	return g.Wait()
}

// sync pulls info, nodes and instances of one cluster and rewrites its cache rows.
// Rows are only written when their resource hash moved.
func (s *clusterSyncService) sync(ctx context.Context, cluster *model.Cluster) (*v1.RefreshClusterResponseData, error) {
	client, err := s.rapi.Client(cluster)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to build rapi client", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	info, err := client.GetInfo(ctx)
	if err != nil {
		return nil, remoteError(err)
	}
	nodes, err := client.ListNodes(ctx, true)
	if err != nil {
		return nil, remoteError(err)
	}
	instances, err := client.ListInstances(ctx, true)
	if err != nil {
		return nil, remoteError(err)
	}

	now := time.Now()
	res := &v1.RefreshClusterResponseData{Skipped: []string{}, SyncedAt: now}
	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		hostnames := make([]string, 0, len(nodes.Records))
		for i := range nodes.Records {
			node, err := nodeFromRecord(cluster.Id, &nodes.Records[i], now)
			if err != nil {
				return err
			}
			if err := s.nodeRepo.Upsert(ctx, node); err != nil {
				return err
			}
			hostnames = append(hostnames, node.Hostname)
		}
		removed, err := s.nodeRepo.DeleteMissing(ctx, cluster.Id, hostnames)
		if err != nil {
			return err
		}
		res.Nodes = len(hostnames)
		res.Removed += int(removed)

		names := make([]string, 0, len(instances.Records))
		for i := range instances.Records {
			rec := &instances.Records[i]
			rec.WithDefaultHypervisor(info.DefaultHypervisor)
			// an invalid record keeps whatever row it had, it is just not rewritten
			names = append(names, rec.Name)
			if err := rec.Validate(); err != nil {
				s.logger.WithContext(ctx).Warn("skipping invalid instance", zap.String("cluster", cluster.Slug), zap.Error(err))
				res.Skipped = append(res.Skipped, rec.Name)
				continue
			}
			vm, err := vmFromRecord(cluster.Id, rec, now)
			if err != nil {
				return err
			}
			if err := s.vmRepo.Upsert(ctx, vm); err != nil {
				return err
			}
			res.VMs++
		}
		removed, err = s.vmRepo.DeleteMissing(ctx, cluster.Id, slice.Unique(names))
		if err != nil {
			return err
		}
		res.Removed += int(removed)

		cluster.ClusterName = info.Name
		cluster.MasterNode = info.Master
		cluster.DefaultHypervisor = info.DefaultHypervisor
		cluster.EnabledHypervisors = joinHypervisors(info.EnabledHypervisors)
		cluster.SoftwareVersion = info.SoftwareVersion
		cluster.LastSyncTime = now
		return s.clusterRepo.UpdateSyncInfo(ctx, cluster)
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to write cluster cache", zap.String("cluster", cluster.Slug), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return res, nil
}

func jsonText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nodeFromRecord(clusterID int64, rec *ganeti.NodeRecord, syncedAt time.Time) (*model.Node, error) {
	node := &model.Node{
		ClusterID:    clusterID,
		Hostname:     rec.Name,
		UUID:         rec.UUID,
		Role:         string(rec.Role),
		Offline:      rec.Offline,
		Drained:      rec.Drained,
		PrimaryIP:    rec.PrimaryIP,
		SecondaryIP:  rec.SecondaryIP,
		MemoryTotal:  rec.MemoryTotal.Ptr(),
		MemoryFree:   rec.MemoryFree.Ptr(),
		DiskTotal:    rec.DiskTotal.Ptr(),
		DiskFree:     rec.DiskFree.Ptr(),
		CPUTotal:     rec.CPUTotal.Ptr(),
		CPUSockets:   rec.CPUSockets.Ptr(),
		LastSyncTime: syncedAt,
	}
	var err error
	if node.PrimaryInstances, err = jsonText(nonNilStrings(rec.PrimaryInstances)); err != nil {
		return nil, err
	}
	if node.SecondaryInstances, err = jsonText(nonNilStrings(rec.SecondaryInstances)); err != nil {
		return nil, err
	}
	if node.Tags, err = jsonText(nonNilStrings(rec.Tags)); err != nil {
		return nil, err
	}
	if node.ResourceHash, err = hash.CalculateResourceHash(node); err != nil {
		return nil, err
	}
	return node, nil
}

func vmFromRecord(clusterID int64, rec *ganeti.InstanceRecord, syncedAt time.Time) (*model.VirtualMachine, error) {
	var diskSize int64
	for _, size := range rec.DiskSizes {
		diskSize += size
	}
	vm := &model.VirtualMachine{
		ClusterID:    clusterID,
		Name:         rec.Name,
		UUID:         rec.UUID,
		Status:       string(rec.Status),
		RawStatus:    rec.RawStatus,
		OS:           rec.OS,
		Hypervisor:   rec.Hypervisor,
		PrimaryNode:  rec.PrimaryNode,
		DiskTemplate: rec.DiskTemplate,
		DiskSize:     diskSize,
		Memory:       rec.Memory.Ptr(),
		VCPUs:        rec.VCPUs.Ptr(),
		NetworkPort:  rec.NetworkPort.Ptr(),
		OperRAM:      rec.OperRAM.Ptr(),
		OperVCPUs:    rec.OperVCPUs.Ptr(),
		LastSyncTime: syncedAt,
	}
	var err error
	if vm.SecondaryNodes, err = jsonText(nonNilStrings(rec.SecondaryNodes)); err != nil {
		return nil, err
	}
	if vm.HVParams, err = jsonText(rec.HVParams); err != nil {
		return nil, err
	}
	if vm.BEParams, err = jsonText(rec.BEParams); err != nil {
		return nil, err
	}
	if vm.NICParams, err = jsonText(rec.NICParams); err != nil {
		return nil, err
	}
	if vm.NICs, err = jsonText(rec.NICs); err != nil {
		return nil, err
	}
	if vm.Tags, err = jsonText(nonNilStrings(rec.Tags)); err != nil {
		return nil, err
	}
	if vm.ResourceHash, err = hash.CalculateResourceHash(vm); err != nil {
		return nil, err
	}
	return vm, nil
}
