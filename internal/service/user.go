package service

import (
	"context"
	"strings"
	"time"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *v1.RegisterRequest) error
	Login(ctx context.Context, req *v1.LoginRequest) (string, error)
	// Logout revokes the token carrying tokenId until it would have expired anyway.
	Logout(ctx context.Context, userId, tokenId string, expiresAt time.Time) error
	GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error)
	UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error
	DeleteUser(ctx context.Context, userId, username string) error
}

func NewUserService(
	service *Service,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	permRepo repository.PermissionRepository,
	sessionRepo repository.SessionRepository,
) UserService {
	return &userService{
		Service:     service,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		permRepo:    permRepo,
		sessionRepo: sessionRepo,
	}
}

type userService struct {
	*Service
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	permRepo    repository.PermissionRepository
	sessionRepo repository.SessionRepository
}

func (s *userService) Register(ctx context.Context, req *v1.RegisterRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to check email", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrEmailAlreadyUse
	}
	user, err = s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to check username", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrUsernameAlreadyUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// Generate user ID
	userId, err := s.sid.GenString()
	if err != nil {
		return err
	}
	user = &model.User{
		UserId:   userId,
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	// the profile exists exactly as long as its user
	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		if err = s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.profileRepo.Create(ctx, &model.Profile{UserId: userId, DisplayName: req.Username, Language: "en"})
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to register user", zap.String("username", req.Username), zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *userService) Login(ctx context.Context, req *v1.LoginRequest) (string, error) {
	var (
		user *model.User
		err  error
	)
	if strings.Contains(req.Account, "@") {
		user, err = s.userRepo.GetByEmail(ctx, req.Account)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Account)
	}
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load account", zap.Error(err))
		return "", v1.ErrInternalServerError
	}
	if user == nil {
		return "", v1.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", v1.ErrUnauthorized
	}
	tokenId, err := s.sid.GenString()
	if err != nil {
		return "", err
	}
	token, err := s.jwt.GenToken(user.UserId, tokenId, time.Now().Add(s.jwt.TTL()))
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) Logout(ctx context.Context, userId, tokenId string, expiresAt time.Time) error {
	if tokenId == "" {
		return v1.ErrUnauthorized
	}
	if err := s.sessionRepo.Revoke(ctx, userId, tokenId, expiresAt); err != nil {
		s.logger.WithContext(ctx).Error("failed to revoke token", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error) {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load profile", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	data := &v1.GetProfileResponseData{
		UserId:      user.UserId,
		Username:    user.Username,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
	}
	if profile != nil {
		data.DisplayName = profile.DisplayName
		data.Language = profile.Language
	}
	return data, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		return err
	}

	if req.NewPassword != "" || req.OldPassword != "" {
		if req.NewPassword == "" {
			return v1.ErrBadRequest
		}
		if req.NewPassword != req.ConfirmPassword {
			return v1.ErrPasswordMismatch
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
			return v1.ErrIncorrectPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashedPassword)
	}
	if req.Email != "" && req.Email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to check email", zap.Error(err))
			return v1.ErrInternalServerError
		}
		if other != nil {
			return v1.ErrEmailAlreadyUse
		}
		user.Email = req.Email
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load profile", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if profile == nil {
		profile = &model.Profile{UserId: userId, Language: "en"}
	}
	if req.DisplayName != "" {
		profile.DisplayName = req.DisplayName
	}
	if req.Language != "" {
		profile.Language = req.Language
	}

	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		if profile.Id == 0 {
			return s.profileRepo.Create(ctx, profile)
		}
		return s.profileRepo.Update(ctx, profile)
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to update profile", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

// DeleteUser removes username with its profile and grants. Only superusers may do it, and not to themselves.
func (s *userService) DeleteUser(ctx context.Context, userId, username string) error {
	actor, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		return err
	}
	if !actor.IsSuperuser {
		return v1.ErrForbidden
	}
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if target == nil {
		return v1.ErrNotFound
	}
	if target.UserId == actor.UserId {
		return v1.ErrBadRequest
	}

	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		if err := s.permRepo.DeleteByUserID(ctx, target.UserId); err != nil {
			return err
		}
		if err := s.profileRepo.DeleteByUserID(ctx, target.UserId); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, target.UserId)
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to delete user", zap.String("username", username), zap.Error(err))
		return v1.ErrInternalServerError
	}
	s.logger.WithContext(ctx).Info("user deleted", zap.String("username", username), zap.String("by", actor.Username))
	return nil
}
