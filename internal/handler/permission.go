package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"go.uber.org/zap"
)

type PermissionHandler struct {
	*Handler
	permissionService service.PermissionService
}

func NewPermissionHandler(handler *Handler, permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		Handler:           handler,
		permissionService: permissionService,
	}
}

// ListClusterPermissions godoc
// @Summary Grants on a cluster
// @Description Needs admin on the cluster
// @Tags Permissions
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.ListPermissionResponse
// @Router /api/v1/clusters/{slug}/permissions [get]
func (h *PermissionHandler) ListClusterPermissions(ctx *gin.Context) {
	data, err := h.permissionService.ListByCluster(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// ListMyPermissions godoc
// @Summary Grants of the current user
// @Tags Permissions
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.ListPermissionResponse
// @Router /api/v1/user/permissions [get]
func (h *PermissionHandler) ListMyPermissions(ctx *gin.Context) {
	data, err := h.permissionService.ListMine(ctx, GetUserIdFromCtx(ctx))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// SetPermission godoc
// @Summary Replace the grant of a user on a cluster
// @Description Needs admin on the cluster. An empty list revokes the grant.
// @Tags Permissions
// @Accept json
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param username path string true "username"
// @Param request body v1.SetPermissionRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/permissions/{username} [put]
func (h *PermissionHandler) SetPermission(ctx *gin.Context) {
	req := new(v1.SetPermissionRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	item, err := h.permissionService.SetCapabilities(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("username"), req)
	if err != nil {
		h.logger.WithContext(ctx).Warn("permissionService.SetCapabilities error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, item)
}

// RevokePermission godoc
// @Summary Revoke the grant of a user on a cluster
// @Tags Permissions
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param username path string true "username"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/permissions/{username} [delete]
func (h *PermissionHandler) RevokePermission(ctx *gin.Context) {
	if err := h.permissionService.Revoke(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("username")); err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}
