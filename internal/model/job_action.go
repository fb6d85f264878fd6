package model

import (
	"time"
)

const (
	JobStateRequested = "REQUESTED"
	JobStateSubmitted = "SUBMITTED"
	JobStateRunning   = "RUNNING"
	JobStateSuccess   = "SUCCESS"
	JobStateError     = "ERROR"
	JobStateCanceled  = "CANCELED"
)

const (
	TargetInstance = "instance"
	TargetNode     = "node"
)

func IsTerminalJobState(state string) bool {
	return state == JobStateSuccess || state == JobStateError || state == JobStateCanceled
}

// JobAction is one user action dispatched to a cluster and the job it became.
type JobAction struct {
	Id            string    `json:"id" gorm:"column:id;primaryKey;size:32"`
	ClusterID     int64     `json:"cluster_id" gorm:"column:cluster_id;index:idx_job_action_cluster_job"`
	TargetKind    string    `json:"target_kind" gorm:"column:target_kind;size:16"`
	TargetName    string    `json:"target_name" gorm:"column:target_name;size:255;index"`
	Action        string    `json:"action" gorm:"column:action;size:32"`
	Params        string    `json:"params" gorm:"column:params;type:text"`
	JobId         string    `json:"job_id" gorm:"column:job_id;size:64;index:idx_job_action_cluster_job"`
	State         string    `json:"state" gorm:"column:state;size:16"`
	ErrorClass    string    `json:"error_class" gorm:"column:error_class"`
	ErrorMessages string    `json:"error_messages" gorm:"column:error_messages;type:text"` // JSON array
	Snapshot      string    `json:"snapshot" gorm:"column:snapshot;type:text"`             // terminal job record
	UserId        string    `json:"user_id" gorm:"column:user_id;size:64;index"`
	CreateTime    time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime    time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (JobAction) TableName() string {
	return "job_action"
}

func (a *JobAction) IsTerminal() bool {
	return IsTerminalJobState(a.State)
}

// InflightKey identifies the target an action holds while it runs.
func InflightKey(kind, name string) string {
	return kind + "/" + name
}
