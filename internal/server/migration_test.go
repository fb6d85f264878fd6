package server

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateServer_Start(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conf := viper.New()
	conf.Set("superuser.username", "root")
	conf.Set("superuser.email", "root@example.org")
	conf.Set("superuser.password", "hunter22")

	repo := repository.NewRepository(log.NewNop(), db, nil, nil)
	users := repository.NewUserRepository(repo)
	profiles := repository.NewProfileRepository(repo)
	m := NewMigrateServer(db, log.NewNop(), conf, repository.NewTransaction(repo), users, profiles, sid.NewSid())
	exits := 0
	m.exit = func(code int) {
		assert.Equal(t, 0, code)
		exits++
	}

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	assert.Equal(t, 1, exits)

	root, err := users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.True(t, root.IsSuperuser)
	assert.Equal(t, "root@example.org", root.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.Password), []byte("hunter22")))

	profile, err := profiles.GetByUserID(ctx, root.UserId)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "root", profile.DisplayName)

	// a second run leaves the existing account alone
	require.NoError(t, m.Start(ctx))
	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
