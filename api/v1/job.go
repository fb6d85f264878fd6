package v1

import (
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
)

// ActionRequest carries the per-action parameters, e.g. {"mode": "live"} for migrate.
type ActionRequest struct {
	Params map[string]interface{} `json:"params"`
}

type JobActionResponse struct {
	Response
	Data JobActionData
}

type JobActionData struct {
	ActionId   string    `json:"action_id"`
	Cluster    string    `json:"cluster"`
	TargetKind string    `json:"target_kind"`
	Target     string    `json:"target"`
	Action     string    `json:"action"`
	JobId      string    `json:"job_id"`
	State      string    `json:"state"`
	CreateTime time.Time `json:"create_time"`
}

type RemoteErrorData struct {
	Class    string   `json:"class"`
	Messages []string `json:"messages"`
}

type JobStatusResponse struct {
	Response
	Data JobStatusData
}

type JobStatusData struct {
	JobActionData
	Terminal bool              `json:"terminal"`
	Summary  []string          `json:"summary"`
	Error    *RemoteErrorData  `json:"error,omitempty"`
	Job      *ganeti.JobRecord `json:"job"`
}

type JobLogRequest struct {
	Since int64 `form:"since" example:"0"`
}

type JobLogResponse struct {
	Response
	Data JobLogData
}

type JobLogData struct {
	State    string            `json:"state"`
	Terminal bool              `json:"terminal"`
	Entries  []ganeti.LogEntry `json:"entries"`
}

type ListJobRequest struct {
	Limit int `form:"limit" binding:"omitempty,max=200" example:"20"`
}

type ListJobResponseData struct {
	List []JobActionData `json:"list"`
}
