package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
)

type InstanceHandler struct {
	*Handler
	instanceService service.InstanceService
	dispatcher      service.JobDispatcher
}

func NewInstanceHandler(handler *Handler, instanceService service.InstanceService, dispatcher service.JobDispatcher) *InstanceHandler {
	return &InstanceHandler{
		Handler:         handler,
		instanceService: instanceService,
		dispatcher:      dispatcher,
	}
}

// ListInstances godoc
// @Summary List cached instances
// @Tags Instances
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Param status query string false "running | admin_down | stopped | unknown"
// @Param node query string false "primary node"
// @Success 200 {object} v1.ListInstanceResponse
// @Router /api/v1/clusters/{slug}/instances [get]
func (h *InstanceHandler) ListInstances(ctx *gin.Context) {
	req := new(v1.ListInstanceRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.instanceService.ListInstances(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), req)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// GetInstance godoc
// @Summary Get an instance
// @Description With refresh=true the instance is re-read from the cluster first
// @Tags Instances
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param name path string true "instance name"
// @Param refresh query bool false "re-read from the cluster"
// @Success 200 {object} v1.GetInstanceResponse
// @Router /api/v1/clusters/{slug}/instances/{name} [get]
func (h *InstanceHandler) GetInstance(ctx *gin.Context) {
	req := new(v1.GetInstanceRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.instanceService.GetInstance(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("name"), req.Refresh)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// InstanceAction godoc
// @Summary Run an action on an instance
// @Description shutdown, startup, reboot, migrate or remove. Answers with the submitted job.
// @Tags Instances
// @Accept json
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param name path string true "instance name"
// @Param action path string true "shutdown | startup | reboot | migrate | remove"
// @Param request body v1.ActionRequest false "params"
// @Success 200 {object} v1.JobActionResponse
// @Router /api/v1/clusters/{slug}/instances/{name}/actions/{action} [post]
func (h *InstanceHandler) InstanceAction(ctx *gin.Context) {
	submitAction(ctx, h.Handler, h.dispatcher, model.TargetInstance, ctx.Param("name"))
}
