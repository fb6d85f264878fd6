package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nitinprakash96/ganeti-webmgr/internal/handler"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/internal/router"
	"github.com/nitinprakash96/ganeti-webmgr/internal/server"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti/ganetitest"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type api struct {
	e     *httpexpect.Expect
	fake  *ganetitest.FakeClient
	users repository.UserRepository
	db    *gorm.DB
}

func newAPI(t *testing.T) *api {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conf := viper.New()
	conf.Set("env", "test")
	conf.Set("security.jwt.key", "http-test-key")
	conf.Set("security.jwt.ttl", time.Hour)
	conf.Set("dispatch.inflight_ttl", time.Hour)
	conf.Set("dispatch.stream_interval", 10*time.Millisecond)

	logger := log.NewNop()
	migrate := server.NewMigrateServer(db, logger, conf, nil, nil, nil, nil)
	require.NoError(t, migrate.AutoMigrate())

	fake := ganetitest.NewFakeClient()
	repo := repository.NewRepository(logger, db, nil, nil)
	j := jwt.NewJwt(conf)
	base := service.NewService(repository.NewTransaction(repo), logger, sid.NewSid(), j)
	rapi := service.RapiProviderFunc(func(*model.Cluster) (ganeti.Client, error) { return fake, nil })

	users := repository.NewUserRepository(repo)
	profiles := repository.NewProfileRepository(repo)
	sessions := repository.NewSessionRepository(repo)
	perms := repository.NewPermissionRepository(repo)
	clusters := repository.NewClusterRepository(repo)
	nodes := repository.NewNodeRepository(repo)
	vms := repository.NewVirtualMachineRepository(repo)
	actions := repository.NewJobActionRepository(repo)
	inflight := repository.NewDBInflightRepository(repo)
	auditLog := repository.NewActionLogRepository(repo)

	permissionService := service.NewPermissionService(base, perms, users, clusters)
	dispatcher := service.NewJobDispatcher(base, conf, permissionService, rapi,
		clusters, nodes, vms, actions, inflight, auditLog)
	syncService := service.NewClusterSyncService(base, conf, permissionService, rapi, clusters, nodes, vms)

	h := handler.NewHandler(logger)
	s := server.NewHTTPServer(router.RouterDeps{
		Logger:      logger,
		Config:      conf,
		JWT:         j,
		Revocations: sessions,
		UserHandler: handler.NewUserHandler(h, service.NewUserService(base, users, profiles, perms, sessions)),
		ClusterHandler: handler.NewClusterHandler(h,
			service.NewClusterService(base, permissionService, rapi, clusters, nodes, vms, perms, auditLog),
			syncService),
		NodeHandler:       handler.NewNodeHandler(h, service.NewNodeService(base, permissionService, clusters, nodes, vms), dispatcher),
		InstanceHandler:   handler.NewInstanceHandler(h, service.NewInstanceService(base, permissionService, rapi, clusters, vms), dispatcher),
		PermissionHandler: handler.NewPermissionHandler(h, permissionService),
		JobHandler:        handler.NewJobHandler(h, dispatcher, conf),
	})

	ts := httptest.NewServer(s.Engine)
	t.Cleanup(ts.Close)

	return &api{
		e:     httpexpect.Default(t, ts.URL),
		fake:  fake,
		users: users,
		db:    db,
	}
}

func (a *api) superuser(t *testing.T, username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, a.users.Create(context.Background(), &model.User{
		UserId:      "su-" + username,
		Username:    username,
		Email:       username + "@example.org",
		Password:    string(hash),
		IsSuperuser: true,
	}))
}

func (a *api) login(account, password string) string {
	return "Bearer " + a.e.POST("/api/v1/login").
		WithJSON(map[string]string{"account": account, "password": password}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("code", 0).
		Value("data").Object().
		Value("accessToken").String().NotEmpty().Raw()
}

func TestHTTP_AuthRequired(t *testing.T) {
	a := newAPI(t)

	a.e.GET("/api/v1/user").
		Expect().
		Status(http.StatusUnauthorized).
		JSON().Object().HasValue("code", 401)

	a.e.GET("/api/v1/clusters").
		WithHeader("Authorization", "Bearer not-a-token").
		Expect().
		Status(http.StatusUnauthorized)

	a.e.GET("/").
		Expect().
		Status(http.StatusOK).
		JSON().Object().HasValue("code", 0)
}

func TestHTTP_RegisterLoginLogout(t *testing.T) {
	a := newAPI(t)

	a.e.POST("/api/v1/register").
		WithJSON(map[string]string{"username": "alice", "email": "alice@example.org", "password": "secret1"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().HasValue("code", 0)

	a.e.POST("/api/v1/register").
		WithJSON(map[string]string{"username": "alice", "email": "other@example.org", "password": "secret1"}).
		Expect().
		Status(http.StatusConflict).
		JSON().Object().HasValue("code", 1002)

	a.e.POST("/api/v1/login").
		WithJSON(map[string]string{"account": "alice", "password": "wrong-password"}).
		Expect().
		Status(http.StatusUnauthorized)

	token := a.login("alice@example.org", "secret1")
	profile := a.e.GET("/api/v1/user").
		WithHeader("Authorization", token).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object()
	profile.HasValue("username", "alice")
	profile.HasValue("isSuperuser", false)

	a.e.POST("/api/v1/logout").
		WithHeader("Authorization", token).
		Expect().
		Status(http.StatusOK)

	a.e.GET("/api/v1/user").
		WithHeader("Authorization", token).
		Expect().
		Status(http.StatusUnauthorized)
}

func TestHTTP_ClusterPermissionsAndJobs(t *testing.T) {
	a := newAPI(t)
	a.superuser(t, "root", "rootpass")
	root := a.login("root", "rootpass")

	a.e.POST("/api/v1/register").
		WithJSON(map[string]string{"username": "alice", "email": "alice@example.org", "password": "secret1"}).
		Expect().
		Status(http.StatusOK)
	alice := a.login("alice", "secret1")

	cluster := map[string]interface{}{"slug": "c1", "hostname": "ganeti-test.example.bak", "port": 5080}
	a.e.POST("/api/v1/clusters").
		WithHeader("Authorization", alice).
		WithJSON(cluster).
		Expect().
		Status(http.StatusForbidden).
		JSON().Object().HasValue("code", 403)
	a.e.POST("/api/v1/clusters").
		WithHeader("Authorization", root).
		WithJSON(cluster).
		Expect().
		Status(http.StatusOK)

	// no grant yet: the cluster is invisible to alice
	a.e.GET("/api/v1/clusters").
		WithHeader("Authorization", alice).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total", 0)

	a.e.POST("/api/v1/clusters/c1/refresh").
		WithHeader("Authorization", root).
		Expect().
		Status(http.StatusOK)
	a.e.GET("/api/v1/clusters/c1/nodes").
		WithHeader("Authorization", root).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total", 3)

	a.e.PUT("/api/v1/clusters/c1/permissions/alice").
		WithHeader("Authorization", root).
		WithJSON(map[string]interface{}{"capabilities": []string{"migrate"}}).
		Expect().
		Status(http.StatusOK)
	a.e.GET("/api/v1/clusters").
		WithHeader("Authorization", alice).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total", 1)

	// migrate does not cover power actions
	a.e.POST("/api/v1/clusters/c1/instances/vm1.example.bak/actions/shutdown").
		WithHeader("Authorization", alice).
		Expect().
		Status(http.StatusForbidden)
	require.Empty(t, a.fake.Submitted())

	a.e.POST("/api/v1/clusters/c1/instances/vm1.example.bak/actions/explode").
		WithHeader("Authorization", root).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().HasValue("code", 3001)

	a.fake.QueueJob("1", ganetitest.JobDoc("1", ganeti.OpInstanceShutdown, nil, ganeti.JobStatusError, "INSTANCE_SHUTDOWN(vm1.example.bak)"))
	a.e.POST("/api/v1/clusters/c1/instances/vm1.example.bak/actions/shutdown").
		WithHeader("Authorization", root).
		WithJSON(map[string]interface{}{"params": map[string]interface{}{"timeout": 60}}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().
		HasValue("job_id", "1").
		HasValue("state", model.JobStateSubmitted)

	// a second action on the same instance waits for the first
	a.e.POST("/api/v1/clusters/c1/instances/vm1.example.bak/actions/reboot").
		WithHeader("Authorization", root).
		Expect().
		Status(http.StatusConflict)

	job := a.e.GET("/api/v1/clusters/c1/jobs/1").
		WithHeader("Authorization", root).
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	job.HasValue("code", 3002)
	data := job.Value("data").Object()
	data.HasValue("state", model.JobStateError)
	data.HasValue("terminal", true)
	data.Value("error").Object().HasValue("class", "OpExecError")

	a.e.GET("/api/v1/clusters/c1/jobs/1").
		WithHeader("Authorization", alice).
		Expect().
		Status(http.StatusForbidden)
}
