package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
)

type Handler struct {
	logger *log.Logger
}

func NewHandler(
	logger *log.Logger,
) *Handler {
	return &Handler{
		logger: logger,
	}
}

// GetClaimsFromCtx returns the claims the auth middleware stored, or nil.
func GetClaimsFromCtx(ctx *gin.Context) *jwt.MyCustomClaims {
	v, exists := ctx.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := v.(*jwt.MyCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

func GetUserIdFromCtx(ctx *gin.Context) string {
	claims := GetClaimsFromCtx(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserId
}
