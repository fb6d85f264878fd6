package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti/ganetitest"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixture is a sqlite backed service graph talking to one fake cluster.
type fixture struct {
	conf  *viper.Viper
	repo  *repository.Repository
	fake  *ganetitest.FakeClient
	base  *service.Service
	rapi  service.RapiProvider
	users repository.UserRepository

	clusters    repository.ClusterRepository
	nodes       repository.NodeRepository
	vms         repository.VirtualMachineRepository
	perms       repository.PermissionRepository
	actions     repository.JobActionRepository
	inflight    repository.InflightRepository
	auditLog    repository.ActionLogRepository
	permissions service.PermissionService
	dispatcher  service.JobDispatcher
}

func newFixture(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Cluster{},
		&model.Node{},
		&model.VirtualMachine{},
		&model.Permission{},
		&model.JobAction{},
		&model.InflightJob{},
		&model.RevokedToken{},
	))

	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	conf.Set("dispatch.inflight_ttl", time.Hour)
	conf.Set("sync.parallelism", 2)

	f := &fixture{conf: conf, fake: ganetitest.NewFakeClient()}
	f.repo = repository.NewRepository(log.NewNop(), db, nil, nil)
	f.base = service.NewService(repository.NewTransaction(f.repo), log.NewNop(), sid.NewSid(), jwt.NewJwt(conf))
	f.rapi = service.RapiProviderFunc(func(*model.Cluster) (ganeti.Client, error) { return f.fake, nil })
	f.users = repository.NewUserRepository(f.repo)
	f.clusters = repository.NewClusterRepository(f.repo)
	f.nodes = repository.NewNodeRepository(f.repo)
	f.vms = repository.NewVirtualMachineRepository(f.repo)
	f.perms = repository.NewPermissionRepository(f.repo)
	f.actions = repository.NewJobActionRepository(f.repo)
	f.inflight = repository.NewDBInflightRepository(f.repo)
	f.auditLog = repository.NewActionLogRepository(f.repo)
	f.permissions = service.NewPermissionService(f.base, f.perms, f.users, f.clusters)
	f.dispatcher = service.NewJobDispatcher(f.base, conf, f.permissions, f.rapi,
		f.clusters, f.nodes, f.vms, f.actions, f.inflight, f.auditLog)
	return f
}

func (f *fixture) user(t *testing.T, userId, username string, superuser bool) *model.User {
	u := &model.User{UserId: userId, Username: username, Email: username + "@example.org", Password: "x", IsSuperuser: superuser}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) cluster(t *testing.T, slug string) *model.Cluster {
	c := &model.Cluster{Slug: slug, Hostname: slug + ".example.org", Port: 5080, IsEnabled: 1}
	require.NoError(t, f.clusters.Create(context.Background(), c))
	return c
}

func (f *fixture) grant(t *testing.T, userId string, clusterID int64, caps ...model.Capability) {
	require.NoError(t, f.perms.Save(context.Background(), &model.Permission{
		UserId:       userId,
		ClusterID:    clusterID,
		Capabilities: model.NewCapabilitySet(caps...).String(),
	}))
}

func (f *fixture) node(t *testing.T, clusterID int64, hostname, role string) *model.Node {
	n := &model.Node{ClusterID: clusterID, Hostname: hostname, Role: role}
	require.NoError(t, f.nodes.Create(context.Background(), n))
	return n
}

func (f *fixture) vm(t *testing.T, clusterID int64, name, status, template string) *model.VirtualMachine {
	vm := &model.VirtualMachine{ClusterID: clusterID, Name: name, Status: status, DiskTemplate: template, PrimaryNode: "n1"}
	require.NoError(t, f.vms.Create(context.Background(), vm))
	return vm
}
