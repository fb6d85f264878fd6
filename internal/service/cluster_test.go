package service_test

import (
	"context"
	"testing"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti/ganetitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clusterServices struct {
	clusters  service.ClusterService
	sync      service.ClusterSyncService
	nodes     service.NodeService
	instances service.InstanceService
}

func (f *fixture) clusterServices() *clusterServices {
	return &clusterServices{
		clusters: service.NewClusterService(f.base, f.permissions, f.rapi,
			f.clusters, f.nodes, f.vms, f.perms, f.auditLog),
		sync:      service.NewClusterSyncService(f.base, f.conf, f.permissions, f.rapi, f.clusters, f.nodes, f.vms),
		nodes:     service.NewNodeService(f.base, f.permissions, f.clusters, f.nodes, f.vms),
		instances: service.NewInstanceService(f.base, f.permissions, f.rapi, f.clusters, f.vms),
	}
}

func TestClusterSync_Refresh(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	root := f.user(t, "root", "root", true)
	// stale rows the cluster no longer reports
	f.node(t, c.Id, "gone.example.bak", "regular")
	f.vm(t, c.Id, "gone-vm.example.bak", "running", "plain")

	res, err := s.sync.RefreshCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Nodes)
	assert.Equal(t, 2, res.VMs)
	assert.Equal(t, 2, res.Removed)
	assert.Empty(t, res.Skipped)

	nodes, err := f.nodes.GetByClusterID(ctx, c.Id)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
	vm, err := f.vms.GetByName(ctx, c.Id, "vm1.example.bak")
	require.NoError(t, err)
	require.NotNil(t, vm)
	assert.Equal(t, "gtest1.example.bak", vm.PrimaryNode)
	assert.Equal(t, "kvm", vm.Hypervisor)
	stale, err := f.vms.GetByName(ctx, c.Id, "gone-vm.example.bak")
	require.NoError(t, err)
	assert.Nil(t, stale)

	cached, err := f.clusters.GetBySlug(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ganeti-test.example.bak", cached.ClusterName)
	assert.Equal(t, "gtest1.example.bak", cached.MasterNode)
	assert.Equal(t, "kvm", cached.DefaultHypervisor)
	assert.False(t, cached.LastSyncTime.IsZero())

	// an unchanged cluster keeps its rows
	before, err := f.nodes.GetByHostname(ctx, c.Id, "gtest1.example.bak")
	require.NoError(t, err)
	res, err = s.sync.RefreshCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
	after, err := f.nodes.GetByHostname(ctx, c.Id, "gtest1.example.bak")
	require.NoError(t, err)
	assert.Equal(t, before.Id, after.Id)
	assert.Equal(t, before.ResourceHash, after.ResourceHash)
}

func TestClusterSync_InvalidInstanceKeepsRow(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	root := f.user(t, "root", "root", true)
	f.vm(t, c.Id, "broken.example.bak", "running", "drbd")

	f.fake.Instances = ganetitest.NewResponseMap().Add([]interface{}{true}, nil, `[
  {"name": "broken.example.bak", "pnode": "gtest1.example.bak", "snodes": [], "disk_template": "drbd", "status": "running"},
  {"name": "ok.example.bak", "pnode": "gtest1.example.bak", "snodes": [], "disk_template": "plain", "status": "ADMIN_down"}
]`)

	res, err := s.sync.RefreshCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.VMs)
	assert.Equal(t, []string{"broken.example.bak"}, res.Skipped)

	kept, err := f.vms.GetByName(ctx, c.Id, "broken.example.bak")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "drbd", kept.DiskTemplate)
	ok, err := f.vms.GetByName(ctx, c.Id, "ok.example.bak")
	require.NoError(t, err)
	require.NotNil(t, ok)
	assert.Equal(t, "admin_down", ok.Status)
}

func TestClusterSync_Failures(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	u := f.user(t, "u1", "alice", false)
	f.grant(t, u.UserId, c.Id, model.CapPower)

	_, err := s.sync.RefreshCluster(ctx, u.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrForbidden)
	_, err = s.sync.RefreshCluster(ctx, u.UserId, "nope")
	assert.ErrorIs(t, err, v1.ErrNotFound)

	f.grant(t, u.UserId, c.Id, model.CapAdmin)
	f.fake.Err = ganeti.ErrRpcUnavailable
	_, err = s.sync.RefreshCluster(ctx, u.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrRpcUnavailable)
}

func TestClusterSync_SyncAll(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	c2 := f.cluster(t, "c2")
	c3 := f.cluster(t, "c3")
	c3.IsEnabled = 0
	require.NoError(t, f.clusters.Update(ctx, c3))

	require.NoError(t, s.sync.SyncAll(ctx))
	for _, c := range []*model.Cluster{c1, c2} {
		n, err := f.vms.CountByClusterID(ctx, c.Id)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n, c.Slug)
	}
	n, err := f.vms.CountByClusterID(ctx, c3.Id)
	require.NoError(t, err)
	assert.Zero(t, n, "disabled clusters are not refreshed")

	// one unreachable cluster does not fail the run
	f.fake.Err = ganeti.ErrRpcUnavailable
	assert.NoError(t, s.sync.SyncAll(ctx))
}

func TestClusterService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	root := f.user(t, "root", "root", true)
	u := f.user(t, "u1", "alice", false)

	_, err := s.clusters.CreateCluster(ctx, u.UserId, &v1.CreateClusterRequest{Slug: "c1", Hostname: "c1.example.org"})
	assert.ErrorIs(t, err, v1.ErrForbidden)

	item, err := s.clusters.CreateCluster(ctx, root.UserId, &v1.CreateClusterRequest{Slug: "c1", Hostname: "c1.example.org"})
	require.NoError(t, err)
	assert.Equal(t, ganeti.DefaultPort, item.Port)

	_, err = s.clusters.CreateCluster(ctx, root.UserId, &v1.CreateClusterRequest{Slug: "c1", Hostname: "other.example.org"})
	assert.ErrorIs(t, err, v1.ErrClusterSlugAlreadyUse)

	// invisible until granted
	_, err = s.clusters.GetCluster(ctx, u.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrForbidden)
	list, err := s.clusters.ListClusters(ctx, u.UserId, &v1.ListClusterRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	f.grant(t, u.UserId, item.Id, model.CapTags)
	_, err = s.sync.RefreshCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)

	detail, err := s.clusters.GetCluster(ctx, u.UserId, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, detail.NodeCount)
	assert.EqualValues(t, 2, detail.VMCount)
	assert.Equal(t, []string{"kvm"}, detail.EnabledHypervisors)
	list, err = s.clusters.ListClusters(ctx, u.UserId, &v1.ListClusterRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	desc := "lab"
	assert.ErrorIs(t, s.clusters.UpdateCluster(ctx, u.UserId, "c1", &v1.UpdateClusterRequest{Description: &desc}), v1.ErrForbidden)
	require.NoError(t, s.clusters.UpdateCluster(ctx, root.UserId, "c1", &v1.UpdateClusterRequest{Description: &desc}))
	detail, err = s.clusters.GetCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, "lab", detail.Description)

	require.NoError(t, s.clusters.DeleteCluster(ctx, root.UserId, "c1"))
	_, err = s.clusters.GetCluster(ctx, root.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrNotFound)
	nodes, err := f.nodes.GetByClusterID(ctx, item.Id)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	perms, err := f.perms.ListByUser(ctx, u.UserId)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestClusterService_Live(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	u := f.user(t, "u1", "alice", false)
	f.grant(t, u.UserId, c.Id, model.CapPower)

	info, err := s.clusters.GetClusterInfo(ctx, u.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ganeti-test.example.bak", info.Name)

	_, err = s.clusters.ListOperatingSystems(ctx, u.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrForbidden)
	f.grant(t, u.UserId, c.Id, model.CapCreateVM)
	oses, err := s.clusters.ListOperatingSystems(ctx, u.UserId, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"image+debian-osgeo", "image+ubuntu-lucid"}, oses.List)

	_, err = s.clusters.ListActionLogs(ctx, u.UserId, "c1", &v1.ListActionLogRequest{})
	assert.ErrorIs(t, err, v1.ErrForbidden)

	f.fake.Err = ganeti.ErrRpcUnavailable
	_, err = s.clusters.GetClusterInfo(ctx, u.UserId, "c1")
	assert.ErrorIs(t, err, v1.ErrRpcUnavailable)
}

func TestNodeService(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	root := f.user(t, "root", "root", true)
	migrator := f.user(t, "u1", "alice", false)
	viewer := f.user(t, "u2", "bob", false)
	f.grant(t, migrator.UserId, c.Id, model.CapMigrate)
	f.grant(t, viewer.UserId, c.Id, model.CapTags)
	_, err := s.sync.RefreshCluster(ctx, root.UserId, "c1")
	require.NoError(t, err)

	list, err := s.nodes.ListNodes(ctx, viewer.UserId, "c1", &v1.ListNodeRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)

	_, err = s.nodes.GetNode(ctx, viewer.UserId, "c1", "gtest1.example.bak")
	assert.ErrorIs(t, err, v1.ErrForbidden)

	detail, err := s.nodes.GetNode(ctx, migrator.UserId, "c1", "gtest1.example.bak")
	require.NoError(t, err)
	assert.False(t, detail.Admin)
	assert.True(t, detail.Modify)
	assert.Contains(t, detail.MemoryTotalHuman, "GiB")
	assert.Equal(t, []string{"gimager.example.bak", "gimager3.example.bak"}, detail.PrimaryInstances)
	assert.Equal(t, []string{service.ActionEvacuate, service.ActionMigrate}, detail.Actions)

	offline, err := s.nodes.GetNode(ctx, root.UserId, "c1", "gtest3.example.bak")
	require.NoError(t, err)
	assert.True(t, offline.Admin)
	assert.Empty(t, offline.MemoryTotalHuman, "unknown sizes stay unknown")
	assert.Equal(t, service.Actions(model.TargetNode), offline.Actions)

	_, err = s.nodes.GetNode(ctx, root.UserId, "c1", "nope.example.bak")
	assert.ErrorIs(t, err, v1.ErrNotFound)

	// the fixture nodes list instances the bulk listing does not carry
	primary, err := s.nodes.PrimaryInstances(ctx, migrator.UserId, "c1", "gtest1.example.bak")
	require.NoError(t, err)
	assert.Empty(t, primary.List)
	secondary, err := s.nodes.SecondaryInstances(ctx, migrator.UserId, "c1", "gtest2.example.bak")
	require.NoError(t, err)
	assert.Empty(t, secondary.List)
}

func TestInstanceService(t *testing.T) {
	f := newFixture(t)
	s := f.clusterServices()
	ctx := context.Background()
	c := f.cluster(t, "c1")
	u := f.user(t, "u1", "alice", false)
	f.grant(t, u.UserId, c.Id, model.CapPower)
	f.vm(t, c.Id, "gimager.example.bak", "admin_down", "plain")
	f.vm(t, c.Id, "vanished.example.bak", "running", "plain")

	list, err := s.instances.ListInstances(ctx, u.UserId, "c1", &v1.ListInstanceRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	cached, err := s.instances.GetInstance(ctx, u.UserId, "c1", "gimager.example.bak", false)
	require.NoError(t, err)
	assert.Equal(t, "admin_down", cached.Status)
	assert.Equal(t, []string{service.ActionReboot, service.ActionShutdown, service.ActionStartup}, cached.Actions)

	fresh, err := s.instances.GetInstance(ctx, u.UserId, "c1", "gimager.example.bak", true)
	require.NoError(t, err)
	assert.Equal(t, "running", fresh.Status)
	assert.Equal(t, "gtest1.example.bak", fresh.PrimaryNode)
	assert.NotEmpty(t, fresh.DiskSizeHuman)

	_, err = s.instances.GetInstance(ctx, u.UserId, "c1", "vanished.example.bak", true)
	assert.ErrorIs(t, err, v1.ErrNotFound)
	_, err = s.instances.GetInstance(ctx, u.UserId, "c1", "vanished.example.bak", false)
	assert.ErrorIs(t, err, v1.ErrNotFound, "a refresh that finds nothing drops the cached row")

	other := f.user(t, "u2", "bob", false)
	_, err = s.instances.ListInstances(ctx, other.UserId, "c1", &v1.ListInstanceRequest{})
	assert.ErrorIs(t, err, v1.ErrForbidden)
}
