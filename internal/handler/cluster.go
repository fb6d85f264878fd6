package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"go.uber.org/zap"
)

type ClusterHandler struct {
	*Handler
	clusterService service.ClusterService
	syncService    service.ClusterSyncService
}

func NewClusterHandler(handler *Handler, clusterService service.ClusterService, syncService service.ClusterSyncService) *ClusterHandler {
	return &ClusterHandler{
		Handler:        handler,
		clusterService: clusterService,
		syncService:    syncService,
	}
}

// CreateCluster godoc
// @Summary Register a cluster
// @Description Superusers only
// @Tags Clusters
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateClusterRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters [post]
func (h *ClusterHandler) CreateCluster(ctx *gin.Context) {
	req := new(v1.CreateClusterRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	item, err := h.clusterService.CreateCluster(ctx, GetUserIdFromCtx(ctx), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("clusterService.CreateCluster error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, item)
}

// UpdateCluster godoc
// @Summary Update a cluster
// @Description Superusers only. Absent fields are left alone.
// @Tags Clusters
// @Accept json
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param request body v1.UpdateClusterRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug} [put]
func (h *ClusterHandler) UpdateCluster(ctx *gin.Context) {
	req := new(v1.UpdateClusterRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.clusterService.UpdateCluster(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), req); err != nil {
		h.logger.WithContext(ctx).Error("clusterService.UpdateCluster error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DeleteCluster godoc
// @Summary Delete a cluster
// @Description Superusers only. Drops the cached nodes and instances and every grant on the cluster.
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug} [delete]
func (h *ClusterHandler) DeleteCluster(ctx *gin.Context) {
	if err := h.clusterService.DeleteCluster(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug")); err != nil {
		h.logger.WithContext(ctx).Error("clusterService.DeleteCluster error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetCluster godoc
// @Summary Get a cluster
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.GetClusterResponse
// @Router /api/v1/clusters/{slug} [get]
func (h *ClusterHandler) GetCluster(ctx *gin.Context) {
	cluster, err := h.clusterService.GetCluster(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, cluster)
}

// ListClusters godoc
// @Summary List clusters
// @Description Only clusters the caller holds a capability on
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} v1.ListClusterResponse
// @Router /api/v1/clusters [get]
func (h *ClusterHandler) ListClusters(ctx *gin.Context) {
	req := new(v1.ListClusterRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.clusterService.ListClusters(ctx, GetUserIdFromCtx(ctx), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("clusterService.ListClusters error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// RefreshCluster godoc
// @Summary Refresh the cluster cache
// @Description Re-reads info, nodes and instances from the cluster. Needs admin on the cluster.
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/refresh [post]
func (h *ClusterHandler) RefreshCluster(ctx *gin.Context) {
	data, err := h.syncService.RefreshCluster(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"))
	if err != nil {
		h.logger.WithContext(ctx).Warn("syncService.RefreshCluster error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// GetClusterInfo godoc
// @Summary Live cluster info
// @Description Asks the cluster directly instead of the cache
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/info [get]
func (h *ClusterHandler) GetClusterInfo(ctx *gin.Context) {
	info, err := h.clusterService.GetClusterInfo(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, info)
}

// ListOperatingSystems godoc
// @Summary List OS definitions
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/os [get]
func (h *ClusterHandler) ListOperatingSystems(ctx *gin.Context) {
	data, err := h.clusterService.ListOperatingSystems(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// ListActionLogs godoc
// @Summary Recent actions on a cluster
// @Description Needs admin on the cluster
// @Tags Clusters
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param limit query int false "max entries"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/logs [get]
func (h *ClusterHandler) ListActionLogs(ctx *gin.Context) {
	req := new(v1.ListActionLogRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.clusterService.ListActionLogs(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), req)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
