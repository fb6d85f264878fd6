package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti/ganetitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_MigrateOnlyUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "u1", "alice", false)
	f.grant(t, "u1", c1.Id, model.CapMigrate)
	f.node(t, c1.Id, "n1", string(ganeti.RoleRegular))

	_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "u1", ClusterSlug: "c1", Kind: model.TargetNode, Target: "n1", Action: service.ActionShutdown,
	})
	assert.ErrorIs(t, err, v1.ErrForbidden)
	assert.Empty(t, f.fake.Submitted(), "nothing may reach the cluster")

	f.fake.QueueJob("1",
		ganetitest.JobDoc("1", ganeti.OpInstanceMigrate, nil, ganeti.JobStatusRunning, "INSTANCE_MIGRATE(vm1)"),
		ganetitest.JobDoc("1", ganeti.OpInstanceMigrate, nil, ganeti.JobStatusSuccess, "INSTANCE_MIGRATE(vm1)"),
	)
	submitted, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "u1", ClusterSlug: "c1", Kind: model.TargetNode, Target: "n1", Action: service.ActionMigrate,
		Params: map[string]interface{}{"mode": "live"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStateSubmitted, submitted.State)
	assert.Equal(t, "1", submitted.JobId)
	require.Len(t, f.fake.Submitted(), 1)
	assert.Equal(t, ganeti.OpNodeMigrate, f.fake.Submitted()[0].Op)
	assert.Equal(t, "n1", f.fake.Submitted()[0].Params["node_name"])
	assert.Equal(t, "live", f.fake.Submitted()[0].Params["mode"])

	status, err := f.dispatcher.Poll(ctx, "u1", "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateRunning, status.State)
	assert.False(t, status.Terminal)

	status, err = f.dispatcher.Poll(ctx, "u1", "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateSuccess, status.State)
	assert.True(t, status.Terminal)
	assert.Equal(t, []string{"INSTANCE_MIGRATE(vm1)"}, status.Summary)
	assert.Nil(t, status.Error)

	entry, err := f.inflight.Get(ctx, c1.Id, model.InflightKey(model.TargetNode, "n1"))
	require.NoError(t, err)
	assert.Nil(t, entry, "finished action must release its target")
}

func TestDispatcher_PollTerminalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")

	f.fake.QueueJob("1", ganetitest.JobDoc("1", ganeti.OpInstanceShutdown, nil, ganeti.JobStatusSuccess, "INSTANCE_SHUTDOWN(vm1)"))
	_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionShutdown,
	})
	require.NoError(t, err)

	first, err := f.dispatcher.Poll(ctx, "root", "c1", "1")
	require.NoError(t, err)
	second, err := f.dispatcher.Poll(ctx, "root", "c1", "1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.fake.Polls("1"), "a terminal job is answered from its snapshot")
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Job.ID, second.Job.ID)

	vm, err := f.vms.GetByName(ctx, c1.Id, "vm1")
	require.NoError(t, err)
	assert.Equal(t, string(ganeti.StatusAdminDown), vm.Status)
}

func TestDispatcher_ErrorOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusStopped), "plain")

	f.fake.QueueJob("1", ganetitest.JobDoc("1", ganeti.OpInstanceStartup, nil, ganeti.JobStatusError, "INSTANCE_STARTUP(vm1)"))
	_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionStartup,
	})
	require.NoError(t, err)

	status, err := f.dispatcher.Poll(ctx, "root", "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateError, status.State)
	require.NotNil(t, status.Error)
	assert.Equal(t, "OpExecError", status.Error.Class)
	assert.Equal(t, []string{"INSTANCE_STARTUP(vm1) failed"}, status.Error.Messages)

	vm, err := f.vms.GetByName(ctx, c1.Id, "vm1")
	require.NoError(t, err)
	assert.Equal(t, string(ganeti.StatusStopped), vm.Status, "a failed startup leaves the cache alone")
}

func TestDispatcher_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "drbd")

	req := &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionMigrate,
	}
	_, err := f.dispatcher.Submit(ctx, req)
	require.NoError(t, err)

	_, err = f.dispatcher.Submit(ctx, req)
	assert.ErrorIs(t, err, v1.ErrConflict)
	assert.Len(t, f.fake.Submitted(), 1)

	f.fake.QueueJob("1", ganetitest.JobDoc("1", ganeti.OpInstanceMigrate, nil, ganeti.JobStatusSuccess, "INSTANCE_MIGRATE(vm1)"))
	_, err = f.dispatcher.Poll(ctx, "root", "c1", "1")
	require.NoError(t, err)

	again, err := f.dispatcher.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2", again.JobId)
}

func TestDispatcher_ConcurrentSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
				UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionReboot,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, v1.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)
	assert.Len(t, f.fake.Submitted(), 1)
}

func TestDispatcher_StaleSlotIsReclaimed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")

	// left behind by a process that died between acquiring and storing the action
	acquired, err := f.inflight.Acquire(ctx, &model.InflightJob{
		ClusterID:  c1.Id,
		Target:     model.InflightKey(model.TargetInstance, "vm1"),
		ActionId:   "ghost",
		CreateTime: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionShutdown,
	})
	require.NoError(t, err)
}

func TestDispatcher_RpcUnavailableReleasesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")
	req := &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionShutdown,
	}

	f.fake.SubmitErr = ganeti.ErrRpcUnavailable
	_, err := f.dispatcher.Submit(ctx, req)
	assert.ErrorIs(t, err, v1.ErrRpcUnavailable)

	entry, err := f.inflight.Get(ctx, c1.Id, model.InflightKey(model.TargetInstance, "vm1"))
	require.NoError(t, err)
	assert.Nil(t, entry)

	f.fake.SubmitErr = &ganeti.APIError{StatusCode: 400, Message: "Bad Request"}
	_, err = f.dispatcher.Submit(ctx, req)
	assert.ErrorIs(t, err, v1.ErrRemoteOperation)

	f.fake.SubmitErr = nil
	_, err = f.dispatcher.Submit(ctx, req)
	assert.NoError(t, err)
}

func TestDispatcher_InvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.node(t, c1.Id, "master", string(ganeti.RoleMaster))
	f.node(t, c1.Id, "n1", string(ganeti.RoleRegular))
	f.vm(t, c1.Id, "down", string(ganeti.StatusAdminDown), "plain")
	f.vm(t, c1.Id, "up", string(ganeti.StatusRunning), "plain")

	tests := []struct {
		name string
		req  service.DispatchRequest
		err  error
	}{
		{"unknown cluster", service.DispatchRequest{ClusterSlug: "nope", Kind: model.TargetInstance, Target: "up", Action: service.ActionShutdown}, v1.ErrNotFound},
		{"unknown action", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: "frobnicate"}, v1.ErrInvalidAction},
		{"unknown instance", service.DispatchRequest{Kind: model.TargetInstance, Target: "ghost", Action: service.ActionShutdown}, v1.ErrNotFound},
		{"node action on instance", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionEvacuate}, v1.ErrInvalidAction},
		{"shutdown of stopped instance", service.DispatchRequest{Kind: model.TargetInstance, Target: "down", Action: service.ActionShutdown}, v1.ErrInvalidAction},
		{"migrate of local disks", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionMigrate}, v1.ErrInvalidAction},
		{"unexpected parameter", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionShutdown, Params: map[string]interface{}{"force": true}}, v1.ErrInvalidAction},
		{"timeout past int64", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionShutdown, Params: map[string]interface{}{"timeout": 1e20}}, v1.ErrInvalidAction},
		{"timeout of 2^63", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionShutdown, Params: map[string]interface{}{"timeout": float64(1 << 63)}}, v1.ErrInvalidAction},
		{"bad reboot type", service.DispatchRequest{Kind: model.TargetInstance, Target: "up", Action: service.ActionReboot, Params: map[string]interface{}{"type": "gentle"}}, v1.ErrInvalidAction},
		{"role of master", service.DispatchRequest{Kind: model.TargetNode, Target: "master", Action: service.ActionRole, Params: map[string]interface{}{"role": "drained"}}, v1.ErrInvalidAction},
		{"role without role", service.DispatchRequest{Kind: model.TargetNode, Target: "n1", Action: service.ActionRole}, v1.ErrInvalidAction},
		{"evacuate onto itself", service.DispatchRequest{Kind: model.TargetNode, Target: "n1", Action: service.ActionEvacuate, Params: map[string]interface{}{"remote_node": "n1"}}, v1.ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.UserId = "root"
			if req.ClusterSlug == "" {
				req.ClusterSlug = "c1"
			}
			_, err := f.dispatcher.Submit(ctx, &req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Empty(t, f.fake.Submitted())
}

func TestDispatcher_PollAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "u1", "alice", false)
	f.user(t, "u2", "bob", false)
	f.user(t, "u3", "carol", false)
	f.grant(t, "u1", c1.Id, model.CapPower)
	f.grant(t, "u3", c1.Id, model.CapAdmin)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")
	f.fake.QueueJob("1", ganetitest.JobDoc("1", ganeti.OpInstanceShutdown, nil, ganeti.JobStatusRunning, "INSTANCE_SHUTDOWN(vm1)"))

	_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "u1", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionShutdown,
	})
	require.NoError(t, err)

	_, err = f.dispatcher.Poll(ctx, "u2", "c1", "1")
	assert.ErrorIs(t, err, v1.ErrForbidden)
	_, err = f.dispatcher.Poll(ctx, "u3", "c1", "1")
	assert.NoError(t, err)
	_, err = f.dispatcher.Poll(ctx, "u1", "c1", "404")
	assert.ErrorIs(t, err, v1.ErrNotFound)

	mine, err := f.dispatcher.ListJobs(ctx, "u2", "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, mine.List)
	all, err := f.dispatcher.ListJobs(ctx, "u3", "c1", 10)
	require.NoError(t, err)
	assert.Len(t, all.List, 1)
}

func TestDispatcher_JobLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	f.user(t, "root", "root", true)
	f.vm(t, c1.Id, "vm1", string(ganeti.StatusRunning), "plain")
	f.fake.QueueJob("1", ganetitest.JobLog)

	_, err := f.dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId: "root", ClusterSlug: "c1", Kind: model.TargetInstance, Target: "vm1", Action: service.ActionShutdown,
	})
	require.NoError(t, err)

	all, err := f.dispatcher.JobLog(ctx, "root", "c1", "1", 0)
	require.NoError(t, err)
	require.NotEmpty(t, all.Entries)
	last := all.Entries[len(all.Entries)-1].Serial

	tail, err := f.dispatcher.JobLog(ctx, "root", "c1", "1", last)
	require.NoError(t, err)
	assert.Empty(t, tail.Entries)
}
