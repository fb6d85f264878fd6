package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const revokedKeyPrefix = "gwm:revoked:"

// SessionRepository tracks logged out tokens by their jti. Redis is used when configured,
// the revoked_token table otherwise.
type SessionRepository interface {
	Revoke(ctx context.Context, userId, tokenId string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

func NewSessionRepository(r *Repository) SessionRepository {
	return &sessionRepository{Repository: r}
}

type sessionRepository struct {
	*Repository
}

func (r *sessionRepository) Revoke(ctx context.Context, userId, tokenId string, expiresAt time.Time) error {
	if r.rdb != nil {
		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			return nil
		}
		return r.rdb.Set(ctx, revokedKeyPrefix+tokenId, userId, ttl).Err()
	}
	return r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.RevokedToken{
		TokenId:   tokenId,
		UserId:    userId,
		ExpiresAt: expiresAt,
	}).Error
}

func (r *sessionRepository) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	if tokenId == "" {
		return false, nil
	}
	if r.rdb != nil {
		err := r.rdb.Get(ctx, revokedKeyPrefix+tokenId).Err()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return err == nil, err
	}
	var token model.RevokedToken
	err := r.DB(ctx).Where("token_id = ?", tokenId).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired removes table rows for tokens past their expiry. Redis entries expire on their own.
func (r *sessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.rdb != nil {
		return 0, nil
	}
	res := r.DB(ctx).Where("expires_at < ?", time.Now()).Delete(&model.RevokedToken{})
	return res.RowsAffected, res.Error
}
