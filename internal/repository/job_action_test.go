package repository_test

import (
	"context"
	"testing"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobActionRepository_Advance(t *testing.T) {
	repo := setupSQLiteRepository(t)
	actions := repository.NewJobActionRepository(repo)
	ctx := context.Background()

	action := &model.JobAction{
		Id:         "act1",
		ClusterID:  1,
		TargetKind: model.TargetInstance,
		TargetName: "vm1",
		Action:     "migrate",
		JobId:      "42",
		State:      model.JobStateSubmitted,
		UserId:     "u1",
	}
	require.NoError(t, actions.Create(ctx, action))

	action.State = model.JobStateRunning
	ok, err := actions.Advance(ctx, action, model.JobStateSubmitted)
	require.NoError(t, err)
	assert.True(t, ok)

	// RUNNING is not in the from set any more
	action.State = model.JobStateSubmitted
	ok, err = actions.Advance(ctx, action, model.JobStateSubmitted)
	require.NoError(t, err)
	assert.False(t, ok)

	action.State = model.JobStateError
	action.ErrorClass = "OpExecError"
	action.ErrorMessages = `["boom"]`
	action.Snapshot = `{"id":"42"}`
	ok, err = actions.Advance(ctx, action, model.JobStateSubmitted, model.JobStateRunning)
	require.NoError(t, err)
	assert.True(t, ok)

	action.State = model.JobStateSuccess
	ok, err = actions.Advance(ctx, action, model.JobStateSubmitted, model.JobStateRunning)
	require.NoError(t, err)
	assert.False(t, ok, "terminal state is sticky")

	got, err := actions.GetByJobID(ctx, 1, "42")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateError, got.State)
	assert.Equal(t, "OpExecError", got.ErrorClass)
	assert.Equal(t, `{"id":"42"}`, got.Snapshot)

	missing, err := actions.GetByJobID(ctx, 2, "42")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestJobActionRepository_ListRecent(t *testing.T) {
	repo := setupSQLiteRepository(t)
	actions := repository.NewJobActionRepository(repo)
	ctx := context.Background()

	require.NoError(t, actions.Create(ctx, &model.JobAction{Id: "a1", ClusterID: 1, JobId: "1", UserId: "u1", State: model.JobStateSubmitted}))
	require.NoError(t, actions.Create(ctx, &model.JobAction{Id: "a2", ClusterID: 1, JobId: "2", UserId: "u2", State: model.JobStateSubmitted}))
	require.NoError(t, actions.Create(ctx, &model.JobAction{Id: "a3", ClusterID: 2, JobId: "3", UserId: "u1", State: model.JobStateSubmitted}))

	all, err := actions.ListRecent(ctx, 1, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := actions.ListRecent(ctx, 1, "u1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a1", mine[0].Id)
}
