package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionRevocation(t *testing.T, sessions repository.SessionRepository) {
	ctx := context.Background()

	revoked, err := sessions.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, sessions.Revoke(ctx, "u1", "t1", time.Now().Add(time.Hour)))
	require.NoError(t, sessions.Revoke(ctx, "u1", "t1", time.Now().Add(time.Hour)))

	revoked, err = sessions.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = sessions.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionRepository_DB(t *testing.T) {
	repo := setupSQLiteRepository(t)
	sessions := repository.NewSessionRepository(repo)
	testSessionRevocation(t, sessions)

	ctx := context.Background()
	require.NoError(t, sessions.Revoke(ctx, "u1", "old", time.Now().Add(-time.Minute)))
	n, err := sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSessionRepository_Redis(t *testing.T) {
	repo, mr := setupRedisRepository(t)
	sessions := repository.NewSessionRepository(repo)
	testSessionRevocation(t, sessions)

	mr.FastForward(2 * time.Hour)
	revoked, err := sessions.IsRevoked(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
