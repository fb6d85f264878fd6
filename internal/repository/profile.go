package repository

import (
	"context"
	"errors"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
	GetByUserID(ctx context.Context, userId string) (*model.Profile, error)
	DeleteByUserID(ctx context.Context, userId string) error
}

func NewProfileRepository(r *Repository) ProfileRepository {
	return &profileRepository{Repository: r}
}

type profileRepository struct {
	*Repository
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.DB(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.DB(ctx).Save(profile).Error
}

func (r *profileRepository) GetByUserID(ctx context.Context, userId string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.DB(ctx).Where("user_id = ?", userId).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userId string) error {
	return r.DB(ctx).Where("user_id = ?", userId).Delete(&model.Profile{}).Error
}
