package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestUserRepository_Create(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	ctx := context.Background()
	user := &model.User{
		UserId:   "123",
		Username: "alice",
		Email:    "alice@example.org",
		Password: "password",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := userRepository.Create(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	ctx := context.Background()
	user := &model.User{
		Id:        1,
		UserId:    "123",
		Username:  "alice",
		Email:     "alice@example.org",
		Password:  "password",
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := userRepository.Update(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	ctx := context.Background()
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "email", "password", "is_superuser", "created_at", "updated_at"}).
		AddRow(1, "123", "alice", "alice@example.org", "password", true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE user_id = \\?").WillReturnRows(rows)

	user, err := userRepository.GetByID(ctx, "123")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsSuperuser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := userRepository.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, v1.ErrNotFound)
	assert.Nil(t, user)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	ctx := context.Background()
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "email", "password", "created_at", "updated_at"}).
		AddRow(1, "123", "alice", "alice@example.org", "password", time.Now(), time.Now())
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").WillReturnRows(rows)

	user, err := userRepository.GetByEmail(ctx, "alice@example.org")
	assert.NoError(t, err)
	assert.Equal(t, "123", user.UserId)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_Missing(t *testing.T) {
	repo, mock := setupMockRepository(t)
	userRepository := repository.NewUserRepository(repo)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := userRepository.GetByUsername(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}
