package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"go.uber.org/zap"
)

// Authorize decides whether user may act with grants on a cluster: superusers always may,
// everyone else needs at least one of required. It never touches storage.
func Authorize(user *model.User, grants model.CapabilitySet, required ...model.Capability) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return grants.Any(required...)
}

type PermissionService interface {
	// Subject loads the acting user; a missing user is ErrUnauthorized.
	Subject(ctx context.Context, userId string) (*model.User, error)
	Authorize(ctx context.Context, user *model.User, clusterID int64, required ...model.Capability) (bool, error)
	// Require is Authorize turned into ErrForbidden.
	Require(ctx context.Context, user *model.User, clusterID int64, required ...model.Capability) error
	Capabilities(ctx context.Context, user *model.User, clusterID int64) (model.CapabilitySet, error)
	// VisibleClusterIDs returns nil for superusers, meaning every cluster.
	VisibleClusterIDs(ctx context.Context, user *model.User) ([]int64, error)
	ListByCluster(ctx context.Context, userId, slug string) (*v1.ListPermissionResponseData, error)
	ListMine(ctx context.Context, userId string) (*v1.ListPermissionResponseData, error)
	SetCapabilities(ctx context.Context, userId, slug, username string, req *v1.SetPermissionRequest) (*v1.PermissionItem, error)
	Revoke(ctx context.Context, userId, slug, username string) error
}

func NewPermissionService(
	service *Service,
	permRepo repository.PermissionRepository,
	userRepo repository.UserRepository,
	clusterRepo repository.ClusterRepository,
) PermissionService {
	return &permissionService{
		Service:     service,
		permRepo:    permRepo,
		userRepo:    userRepo,
		clusterRepo: clusterRepo,
	}
}

type permissionService struct {
	*Service
	permRepo    repository.PermissionRepository
	userRepo    repository.UserRepository
	clusterRepo repository.ClusterRepository
}

func (s *permissionService) Subject(ctx context.Context, userId string) (*model.User, error) {
	if userId == "" {
		return nil, v1.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		if errors.Is(err, v1.ErrNotFound) {
			return nil, v1.ErrUnauthorized
		}
		s.logger.WithContext(ctx).Error("failed to load user", zap.String("user_id", userId), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return user, nil
}

func (s *permissionService) Capabilities(ctx context.Context, user *model.User, clusterID int64) (model.CapabilitySet, error) {
	perm, err := s.permRepo.Get(ctx, user.UserId, clusterID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load grants", zap.String("user_id", user.UserId), zap.Int64("cluster_id", clusterID), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return perm.CapabilitySet(), nil
}

func (s *permissionService) Authorize(ctx context.Context, user *model.User, clusterID int64, required ...model.Capability) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}
	grants, err := s.Capabilities(ctx, user, clusterID)
	if err != nil {
		return false, err
	}
	return Authorize(user, grants, required...), nil
}

func (s *permissionService) Require(ctx context.Context, user *model.User, clusterID int64, required ...model.Capability) error {
	ok, err := s.Authorize(ctx, user, clusterID, required...)
	if err != nil {
		return err
	}
	if !ok {
		return v1.ErrForbidden
	}
	return nil
}

func (s *permissionService) VisibleClusterIDs(ctx context.Context, user *model.User) ([]int64, error) {
	if user.IsSuperuser {
		return nil, nil
	}
	perms, err := s.permRepo.ListByUser(ctx, user.UserId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list grants", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		if len(p.CapabilitySet()) > 0 {
			ids = append(ids, p.ClusterID)
		}
	}
	return ids, nil
}

// manageable loads the cluster and checks the caller may edit its grants.
func (s *permissionService) manageable(ctx context.Context, userId, slug string) (*model.User, *model.Cluster, error) {
	user, err := s.Subject(ctx, userId)
	if err != nil {
		return nil, nil, err
	}
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.Error(err))
		return nil, nil, v1.ErrInternalServerError
	}
	if cluster == nil {
		return nil, nil, v1.ErrNotFound
	}
	if err := s.Require(ctx, user, cluster.Id, model.CapAdmin); err != nil {
		return nil, nil, err
	}
	return user, cluster, nil
}

func (s *permissionService) ListByCluster(ctx context.Context, userId, slug string) (*v1.ListPermissionResponseData, error) {
	_, cluster, err := s.manageable(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	perms, err := s.permRepo.ListByCluster(ctx, cluster.Id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list grants", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	userIds := make([]string, 0, len(perms))
	for _, p := range perms {
		userIds = append(userIds, p.UserId)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIds)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load users", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	data := &v1.ListPermissionResponseData{List: make([]v1.PermissionItem, 0, len(perms))}
	for _, p := range perms {
		item := v1.PermissionItem{UserId: p.UserId, Cluster: cluster.Slug, Capabilities: p.CapabilitySet().Slice()}
		if u, ok := users[p.UserId]; ok {
			item.Username = u.Username
		}
		data.List = append(data.List, item)
	}
	return data, nil
}

func (s *permissionService) ListMine(ctx context.Context, userId string) (*v1.ListPermissionResponseData, error) {
	user, err := s.Subject(ctx, userId)
	if err != nil {
		return nil, err
	}
	perms, err := s.permRepo.ListByUser(ctx, user.UserId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list grants", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ClusterID)
	}
	clusters, err := s.clusterRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load clusters", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	data := &v1.ListPermissionResponseData{List: make([]v1.PermissionItem, 0, len(perms))}
	for _, p := range perms {
		c, ok := clusters[p.ClusterID]
		if !ok {
			continue
		}
		data.List = append(data.List, v1.PermissionItem{
			UserId:       user.UserId,
			Username:     user.Username,
			Cluster:      c.Slug,
			Capabilities: p.CapabilitySet().Slice(),
		})
	}
	return data, nil
}

// SetCapabilities replaces the whole grant of username on the cluster. An empty set revokes it.
func (s *permissionService) SetCapabilities(ctx context.Context, userId, slug, username string, req *v1.SetPermissionRequest) (*v1.PermissionItem, error) {
	caps := make([]model.Capability, 0, len(req.Capabilities))
	for _, c := range req.Capabilities {
		if !model.IsCapability(c) {
			return nil, fmt.Errorf("%w: unknown capability %q", v1.ErrBadRequest, c)
		}
		caps = append(caps, model.Capability(c))
	}

	actor, cluster, err := s.manageable(ctx, userId, slug)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if target == nil {
		return nil, v1.ErrNotFound
	}

	set := model.NewCapabilitySet(caps...)
	err = s.tm.Transaction(ctx, func(ctx context.Context) error {
		if len(set) == 0 {
			return s.permRepo.Delete(ctx, target.UserId, cluster.Id)
		}
		return s.permRepo.Save(ctx, &model.Permission{
			UserId:       target.UserId,
			ClusterID:    cluster.Id,
			Capabilities: set.String(),
			CreateTime:   time.Now(),
			Creator:      actor.Username,
			Modifier:     actor.Username,
		})
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to save grant", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	s.logger.WithContext(ctx).Info("grant updated",
		zap.String("cluster", cluster.Slug),
		zap.String("user", target.Username),
		zap.String("capabilities", set.String()),
		zap.String("by", actor.Username))

	return &v1.PermissionItem{
		UserId:       target.UserId,
		Username:     target.Username,
		Cluster:      cluster.Slug,
		Capabilities: set.Slice(),
	}, nil
}

func (s *permissionService) Revoke(ctx context.Context, userId, slug, username string) error {
	_, err := s.SetCapabilities(ctx, userId, slug, username, &v1.SetPermissionRequest{Capabilities: []string{}})
	return err
}
