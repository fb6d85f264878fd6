package service_test

import (
	"context"
	"testing"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	plain := &model.User{UserId: "u1"}
	root := &model.User{UserId: "root", IsSuperuser: true}

	tests := []struct {
		name     string
		user     *model.User
		grants   model.CapabilitySet
		required []model.Capability
		want     bool
	}{
		{"no user", nil, model.NewCapabilitySet(model.CapAdmin), []model.Capability{model.CapAdmin}, false},
		{"superuser without grants", root, nil, []model.Capability{model.CapRemove}, true},
		{"superuser with empty requirement", root, nil, nil, true},
		{"holds required", plain, model.NewCapabilitySet(model.CapPower), []model.Capability{model.CapPower}, true},
		{"holds one of several", plain, model.NewCapabilitySet(model.CapMigrate), []model.Capability{model.CapAdmin, model.CapMigrate}, true},
		{"holds a different one", plain, model.NewCapabilitySet(model.CapMigrate), []model.Capability{model.CapPower}, false},
		{"admin does not imply power", plain, model.NewCapabilitySet(model.CapAdmin), []model.Capability{model.CapPower}, false},
		{"no grants", plain, model.CapabilitySet{}, []model.Capability{model.CapPower}, false},
		{"nothing required", plain, model.NewCapabilitySet(model.CapPower), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.Authorize(tt.user, tt.grants, tt.required...))
		})
	}
}

func TestAuthorize_EverySubset(t *testing.T) {
	all := model.AllCapabilities()
	subset := func(mask int) []model.Capability {
		var caps []model.Capability
		for i, c := range all {
			if mask&(1<<i) != 0 {
				caps = append(caps, c)
			}
		}
		return caps
	}

	users := []*model.User{
		{UserId: "u1"},
		{UserId: "root", IsSuperuser: true},
	}
	n := 1 << len(all)
	for _, user := range users {
		for held := 0; held < n; held++ {
			grants := model.NewCapabilitySet(subset(held)...)
			for required := 1; required < n; required++ {
				want := user.IsSuperuser || held&required != 0
				got := service.Authorize(user, grants, subset(required)...)
				if got != want {
					t.Fatalf("superuser=%v held=%v required=%v: got %v, want %v",
						user.IsSuperuser, subset(held), subset(required), got, want)
				}
			}
		}
	}
}

func TestPermissionService_Authorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	c2 := f.cluster(t, "c2")
	u1 := f.user(t, "u1", "alice", false)
	root := f.user(t, "root", "root", true)
	f.grant(t, u1.UserId, c1.Id, model.CapPower)

	ok, err := f.permissions.Authorize(ctx, u1, c1.Id, model.CapPower)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.permissions.Authorize(ctx, u1, c2.Id, model.CapPower)
	require.NoError(t, err)
	assert.False(t, ok, "grants do not leak across clusters")

	assert.ErrorIs(t, f.permissions.Require(ctx, u1, c1.Id, model.CapRemove), v1.ErrForbidden)
	assert.NoError(t, f.permissions.Require(ctx, root, c2.Id, model.CapRemove))

	ids, err := f.permissions.VisibleClusterIDs(ctx, u1)
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.Id}, ids)
	ids, err = f.permissions.VisibleClusterIDs(ctx, root)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestPermissionService_Subject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "alice", false)

	u, err := f.permissions.Subject(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = f.permissions.Subject(ctx, "ghost")
	assert.ErrorIs(t, err, v1.ErrUnauthorized)
	_, err = f.permissions.Subject(ctx, "")
	assert.ErrorIs(t, err, v1.ErrUnauthorized)
}

func TestPermissionService_SetCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	admin := f.user(t, "u1", "alice", false)
	bob := f.user(t, "u2", "bob", false)
	f.grant(t, admin.UserId, c1.Id, model.CapAdmin)

	item, err := f.permissions.SetCapabilities(ctx, admin.UserId, "c1", "bob", &v1.SetPermissionRequest{
		Capabilities: []string{"power", "migrate", "power"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"migrate", "power"}, item.Capabilities)

	ok, err := f.permissions.Authorize(ctx, bob, c1.Id, model.CapMigrate)
	require.NoError(t, err)
	assert.True(t, ok)

	// replacing is not merging
	_, err = f.permissions.SetCapabilities(ctx, admin.UserId, "c1", "bob", &v1.SetPermissionRequest{Capabilities: []string{"tags"}})
	require.NoError(t, err)
	ok, err = f.permissions.Authorize(ctx, bob, c1.Id, model.CapMigrate)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := f.permissions.ListByCluster(ctx, admin.UserId, "c1")
	require.NoError(t, err)
	assert.Len(t, list.List, 2)

	mine, err := f.permissions.ListMine(ctx, bob.UserId)
	require.NoError(t, err)
	require.Len(t, mine.List, 1)
	assert.Equal(t, "c1", mine.List[0].Cluster)
	assert.Equal(t, []string{"tags"}, mine.List[0].Capabilities)

	require.NoError(t, f.permissions.Revoke(ctx, admin.UserId, "c1", "bob"))
	mine, err = f.permissions.ListMine(ctx, bob.UserId)
	require.NoError(t, err)
	assert.Empty(t, mine.List)
}

func TestPermissionService_SetCapabilitiesRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.cluster(t, "c1")
	admin := f.user(t, "u1", "alice", false)
	f.user(t, "u2", "bob", false)
	f.grant(t, admin.UserId, c1.Id, model.CapAdmin)

	_, err := f.permissions.SetCapabilities(ctx, admin.UserId, "c1", "bob", &v1.SetPermissionRequest{Capabilities: []string{"fly"}})
	assert.ErrorIs(t, err, v1.ErrBadRequest)

	_, err = f.permissions.SetCapabilities(ctx, admin.UserId, "c1", "nobody", &v1.SetPermissionRequest{Capabilities: []string{"power"}})
	assert.ErrorIs(t, err, v1.ErrNotFound)

	_, err = f.permissions.SetCapabilities(ctx, admin.UserId, "missing", "bob", &v1.SetPermissionRequest{Capabilities: []string{"power"}})
	assert.ErrorIs(t, err, v1.ErrNotFound)

	_, err = f.permissions.SetCapabilities(ctx, "u2", "c1", "alice", &v1.SetPermissionRequest{Capabilities: []string{"power"}})
	assert.ErrorIs(t, err, v1.ErrForbidden)
}
