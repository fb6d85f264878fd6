package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type JobHandler struct {
	*Handler
	dispatcher     service.JobDispatcher
	streamInterval time.Duration
}

func NewJobHandler(handler *Handler, dispatcher service.JobDispatcher, conf *viper.Viper) *JobHandler {
	interval := conf.GetDuration("dispatch.stream_interval")
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &JobHandler{
		Handler:        handler,
		dispatcher:     dispatcher,
		streamInterval: interval,
	}
}

// GetJob godoc
// @Summary Poll a job
// @Description Advances the tracked action from the current job snapshot. A failed job answers with code 3002 and the remote error class and messages.
// @Tags Jobs
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param jobId path string true "job id"
// @Success 200 {object} v1.JobStatusResponse
// @Router /api/v1/clusters/{slug}/jobs/{jobId} [get]
func (h *JobHandler) GetJob(ctx *gin.Context) {
	data, err := h.dispatcher.Poll(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("jobId"))
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	if data.State == model.JobStateError {
		// the poll itself worked, the remote operation did not
		v1.HandleError(ctx, http.StatusOK, v1.ErrRemoteOperation, data)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// GetJobLog godoc
// @Summary Job log entries
// @Tags Jobs
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param jobId path string true "job id"
// @Param since query int false "only entries with a larger serial"
// @Success 200 {object} v1.JobLogResponse
// @Router /api/v1/clusters/{slug}/jobs/{jobId}/log [get]
func (h *JobHandler) GetJobLog(ctx *gin.Context) {
	req := new(v1.JobLogRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.dispatcher.JobLog(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("jobId"), req.Since)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// ListJobs godoc
// @Summary Recent jobs on a cluster
// @Description Cluster admins see every user's jobs, everyone else their own
// @Tags Jobs
// @Produce json
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param limit query int false "max entries"
// @Success 200 {object} v1.Response
// @Router /api/v1/clusters/{slug}/jobs [get]
func (h *JobHandler) ListJobs(ctx *gin.Context) {
	req := new(v1.ListJobRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.dispatcher.ListJobs(ctx, GetUserIdFromCtx(ctx), ctx.Param("slug"), req.Limit)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// StreamJob godoc
// @Summary Stream a job log over WebSocket
// @Description Sends a v1.JobLogData frame with the new entries on every poll and closes once the job is terminal.
// @Tags Jobs
// @Security Bearer
// @Param slug path string true "cluster slug"
// @Param jobId path string true "job id"
// @Param token query string false "access token, for clients that cannot send headers"
// @Router /api/v1/clusters/{slug}/jobs/{jobId}/stream [get]
func (h *JobHandler) StreamJob(ctx *gin.Context) {
	userId, slug, jobId := GetUserIdFromCtx(ctx), ctx.Param("slug"), ctx.Param("jobId")

	// reject before upgrading so plain HTTP errors still reach the client
	first, err := h.dispatcher.JobLog(ctx, userId, slug, jobId, 0)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.WithContext(ctx).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// reading is what notices the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	data := first
	var since int64
	for {
		if n := len(data.Entries); n > 0 {
			since = data.Entries[n-1].Serial
		}
		if err := conn.WriteJSON(data); err != nil {
			return
		}
		if data.Terminal {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, data.State))
			return
		}

		select {
		case <-streamCtx.Done():
			return
		case <-ticker.C:
		}

		data, err = h.dispatcher.JobLog(streamCtx, userId, slug, jobId, since)
		if err != nil {
			h.logger.WithContext(ctx).Warn("job stream poll failed", zap.String("job_id", jobId), zap.Error(err))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "job poll failed"))
			return
		}
	}
}
