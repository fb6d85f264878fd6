package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"go.uber.org/zap"
)

type NodeHandler struct {
	*Handler
	nodeService service.NodeService
	dispatcher  service.JobDispatcher
}

func NewNodeHandler(handler *Handler, nodeService service.NodeService, dispatcher service.JobDispatcher) *NodeHandler {
	return &NodeHandler{
		Handler:     handler,
		nodeService: nodeService,
		dispatcher:  dispatcher,
	}
}

// ListNodes godoc
// @Summary List cached nodes
// @Tags Nodes
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Param role query string false "node role"
// @Success 200 {object} v1.ListNodeResponse
// @Router /api/v1/clusters/{slug}/nodes [get]
func (h *NodeHandler) ListNodes(ctx *gin.Context) {
	req := new(v1.ListNodeRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.nodeService.ListNodes(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), req)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// GetNode godoc
// @Summary Get a node
// @Description Needs admin or migrate on the cluster
// @Tags Nodes
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param hostname path string true "node hostname"
// @Success 200 {object} v1.GetNodeResponse
// @Router /api/v1/clusters/{slug}/nodes/{hostname} [get]
func (h *NodeHandler) GetNode(ctx *gin.Context) {
	data, err := h.nodeService.GetNode(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("hostname"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// PrimaryInstances godoc
// @Summary Instances with this node as primary
// @Tags Nodes
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param hostname path string true "node hostname"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/nodes/{hostname}/primary [get]
func (h *NodeHandler) PrimaryInstances(ctx *gin.Context) {
	data, err := h.nodeService.PrimaryInstances(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("hostname"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// SecondaryInstances godoc
// @Summary Instances with this node as secondary
// @Tags Nodes
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param hostname path string true "node hostname"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/nodes/{hostname}/secondary [get]
func (h *NodeHandler) SecondaryInstances(ctx *gin.Context) {
	data, err := h.nodeService.SecondaryInstances(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("hostname"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// NodeAction godoc
// @Summary Run an action on a node
// @Description migrate, evacuate or role. Answers with the submitted job.
// @Tags Nodes
// @Accept json
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param hostname path string true "node hostname"
// @Param action path string true "migrate | evacuate | role"
// @Param request body v1.ActionRequest false "params"
// @Success 200 {object} v1.JobActionResponse
// @Router /api/v1/clusters/{slug}/nodes/{hostname}/actions/{action} [post]
func (h *NodeHandler) NodeAction(ctx *gin.Context) {
	submitAction(ctx, h.Handler, h.dispatcher, model.TargetNode, ctx.Param("hostname"))
}

// submitAction is shared by the node and instance action endpoints.
func submitAction(ctx *gin.Context, h *Handler, dispatcher service.JobDispatcher, kind, target string) {
	req := new(v1.ActionRequest)
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(req); err != nil {
			v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
			return
		}
	}

	data, err := dispatcher.Submit(ctx, &service.DispatchRequest{
		UserId:      GetUserIdFromCtx(ctx),
		ClusterSlug: ctx.Param("slug"),
		Kind:        kind,
		Target:      target,
		Action:      ctx.Param("action"),
		Params:      req.Params,
	})
	if err != nil {
		h.logger.WithContext(ctx).Info("action rejected",
			zap.String("kind", kind),
			zap.String("target", target),
			zap.String("action", ctx.Param("action")),
			zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}
