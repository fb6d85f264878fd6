package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"go.uber.org/zap"
)

// TokenRevocations reports whether a token was logged out before it expired.
type TokenRevocations interface {
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

func StrictAuth(j *jwt.JWT, revocations TokenRevocations, logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := ctx.Request.Header.Get("Authorization")
		// browsers cannot set headers on a websocket handshake
		if tokenString == "" && strings.EqualFold(ctx.GetHeader("Upgrade"), "websocket") {
			tokenString = ctx.Query("token")
		}
		if tokenString == "" {
			logger.WithContext(ctx).Warn("No token", zap.Any("data", map[string]interface{}{
				"url":    ctx.Request.URL,
				"params": ctx.Params,
			}))
			v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
			ctx.Abort()
			return
		}

		claims, err := j.ParseToken(tokenString)
		if err != nil {
			logger.WithContext(ctx).Warn("token error", zap.Any("data", map[string]interface{}{
				"url":    ctx.Request.URL,
				"params": ctx.Params,
			}), zap.Error(err))
			v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
			ctx.Abort()
			return
		}

		revoked, err := revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.WithContext(ctx).Error("failed to check token revocation", zap.Error(err))
			v1.HandleError(ctx, http.StatusInternalServerError, v1.ErrInternalServerError, nil)
			ctx.Abort()
			return
		}
		if revoked {
			v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
			ctx.Abort()
			return
		}

		ctx.Set("claims", claims)
		recoveryLoggerFunc(ctx, logger)
		ctx.Next()
	}
}

func recoveryLoggerFunc(ctx *gin.Context, logger *log.Logger) {
	if userInfo, ok := ctx.MustGet("claims").(*jwt.MyCustomClaims); ok {
		logger.WithValue(ctx, zap.String("UserId", userInfo.UserId))
	}
}
