package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	mock_repository "github.com/nitinprakash96/ganeti-webmgr/internal/repository/mocks"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userMocks struct {
	users    *mock_repository.MockUserRepository
	profiles *mock_repository.MockProfileRepository
	perms    *mock_repository.MockPermissionRepository
	sessions *mock_repository.MockSessionRepository
	tm       *mock_repository.MockTransaction
	jwt      *jwt.JWT
}

func newUserService(t *testing.T) (service.UserService, *userMocks) {
	ctrl := gomock.NewController(t)
	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	m := &userMocks{
		users:    mock_repository.NewMockUserRepository(ctrl),
		profiles: mock_repository.NewMockProfileRepository(ctrl),
		perms:    mock_repository.NewMockPermissionRepository(ctrl),
		sessions: mock_repository.NewMockSessionRepository(ctrl),
		tm:       mock_repository.NewMockTransaction(ctrl),
		jwt:      jwt.NewJwt(conf),
	}
	// run transactional work inline
	m.tm.EXPECT().Transaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
	).AnyTimes()
	srv := service.NewService(m.tm, log.NewNop(), sid.NewSid(), m.jwt)
	return service.NewUserService(srv, m.users, m.profiles, m.perms, m.sessions), m
}

func hashed(t *testing.T, password string) string {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestUserService_Register(t *testing.T) {
	userService, m := newUserService(t)
	ctx := context.Background()
	req := &v1.RegisterRequest{Username: "alice", Email: "alice@example.org", Password: "password"}

	var created *model.User
	m.users.EXPECT().GetByEmail(gomock.Any(), req.Email).Return(nil, nil)
	m.users.EXPECT().GetByUsername(gomock.Any(), req.Username).Return(nil, nil)
	m.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, u *model.User) error {
		created = u
		return nil
	})
	m.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, p *model.Profile) error {
		assert.Equal(t, created.UserId, p.UserId)
		return nil
	})

	err := userService.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.UserId)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password")))
}

func TestUserService_Register_Taken(t *testing.T) {
	userService, m := newUserService(t)
	ctx := context.Background()

	m.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.org").Return(&model.User{UserId: "u1"}, nil)
	err := userService.Register(ctx, &v1.RegisterRequest{Username: "alice", Email: "alice@example.org", Password: "password"})
	assert.ErrorIs(t, err, v1.ErrEmailAlreadyUse)

	m.users.EXPECT().GetByEmail(gomock.Any(), "bob@example.org").Return(nil, nil)
	m.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&model.User{UserId: "u1"}, nil)
	err = userService.Register(ctx, &v1.RegisterRequest{Username: "alice", Email: "bob@example.org", Password: "password"})
	assert.ErrorIs(t, err, v1.ErrUsernameAlreadyUse)
}

func TestUserService_Register_ProfileFailureFails(t *testing.T) {
	userService, m := newUserService(t)

	m.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.users.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	m.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	err := userService.Register(context.Background(), &v1.RegisterRequest{Username: "alice", Email: "alice@example.org", Password: "password"})
	assert.ErrorIs(t, err, v1.ErrInternalServerError)
}

func TestUserService_Login(t *testing.T) {
	userService, m := newUserService(t)
	ctx := context.Background()
	user := &model.User{UserId: "u1", Username: "alice", Email: "alice@example.org", Password: hashed(t, "password")}

	m.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
	token, err := userService.Login(ctx, &v1.LoginRequest{Account: "alice", Password: "password"})
	require.NoError(t, err)
	claims, err := m.jwt.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserId)
	assert.NotEmpty(t, claims.ID, "tokens carry a jti so they can be revoked")

	m.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.org").Return(user, nil)
	_, err = userService.Login(ctx, &v1.LoginRequest{Account: "alice@example.org", Password: "password"})
	assert.NoError(t, err)

	m.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
	_, err = userService.Login(ctx, &v1.LoginRequest{Account: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, v1.ErrUnauthorized)

	m.users.EXPECT().GetByUsername(gomock.Any(), "nobody").Return(nil, nil)
	_, err = userService.Login(ctx, &v1.LoginRequest{Account: "nobody", Password: "password"})
	assert.ErrorIs(t, err, v1.ErrUnauthorized)
}

func TestUserService_Logout(t *testing.T) {
	userService, m := newUserService(t)
	expires := time.Now().Add(time.Hour)

	m.sessions.EXPECT().Revoke(gomock.Any(), "u1", "jti-1", expires).Return(nil)
	assert.NoError(t, userService.Logout(context.Background(), "u1", "jti-1", expires))
	assert.ErrorIs(t, userService.Logout(context.Background(), "u1", "", expires), v1.ErrUnauthorized)
}

func TestUserService_GetProfile(t *testing.T) {
	userService, m := newUserService(t)

	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(&model.User{UserId: "u1", Username: "alice", Email: "alice@example.org"}, nil)
	m.profiles.EXPECT().GetByUserID(gomock.Any(), "u1").Return(&model.Profile{UserId: "u1", DisplayName: "Alice", Language: "de"}, nil)

	profile, err := userService.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "de", profile.Language)
}

func TestUserService_UpdateProfile_Password(t *testing.T) {
	userService, m := newUserService(t)
	ctx := context.Background()
	user := func() *model.User {
		return &model.User{UserId: "u1", Username: "alice", Email: "alice@example.org", Password: hashed(t, "old-password")}
	}

	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(user(), nil)
	err := userService.UpdateProfile(ctx, "u1", &v1.UpdateProfileRequest{
		OldPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "typo-password",
	})
	assert.ErrorIs(t, err, v1.ErrPasswordMismatch)

	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(user(), nil)
	err = userService.UpdateProfile(ctx, "u1", &v1.UpdateProfileRequest{
		OldPassword: "guess", NewPassword: "new-password", ConfirmPassword: "new-password",
	})
	assert.ErrorIs(t, err, v1.ErrIncorrectPassword)

	// the old password alone must not reset the password to empty
	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(user(), nil)
	err = userService.UpdateProfile(ctx, "u1", &v1.UpdateProfileRequest{OldPassword: "old-password"})
	assert.ErrorIs(t, err, v1.ErrBadRequest)

	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(user(), nil)
	m.profiles.EXPECT().GetByUserID(gomock.Any(), "u1").Return(&model.Profile{Id: 7, UserId: "u1"}, nil)
	m.users.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, u *model.User) error {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-password")))
		return nil
	})
	m.profiles.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, p *model.Profile) error {
		assert.Equal(t, "Alice", p.DisplayName)
		return nil
	})
	err = userService.UpdateProfile(ctx, "u1", &v1.UpdateProfileRequest{
		DisplayName: "Alice", OldPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "new-password",
	})
	assert.NoError(t, err)
}

func TestUserService_DeleteUser(t *testing.T) {
	userService, m := newUserService(t)
	ctx := context.Background()

	m.users.EXPECT().GetByID(gomock.Any(), "root").Return(&model.User{UserId: "root", Username: "root", IsSuperuser: true}, nil)
	m.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&model.User{UserId: "u1", Username: "alice"}, nil)
	gomock.InOrder(
		m.perms.EXPECT().DeleteByUserID(gomock.Any(), "u1").Return(nil),
		m.profiles.EXPECT().DeleteByUserID(gomock.Any(), "u1").Return(nil),
		m.users.EXPECT().Delete(gomock.Any(), "u1").Return(nil),
	)
	assert.NoError(t, userService.DeleteUser(ctx, "root", "alice"))

	m.users.EXPECT().GetByID(gomock.Any(), "u1").Return(&model.User{UserId: "u1", Username: "alice"}, nil)
	assert.ErrorIs(t, userService.DeleteUser(ctx, "u1", "bob"), v1.ErrForbidden)
}
