package model

import (
	"time"
)

// InflightJob marks a (cluster, target) pair as busy. The unique index is the lock.
type InflightJob struct {
	Id         int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ClusterID  int64     `json:"cluster_id" gorm:"column:cluster_id;uniqueIndex:idx_inflight_target"`
	Target     string    `json:"target" gorm:"column:target;size:255;uniqueIndex:idx_inflight_target"`
	ActionId   string    `json:"action_id" gorm:"column:action_id;size:32"`
	JobId      string    `json:"job_id" gorm:"column:job_id;size:64"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
}

func (InflightJob) TableName() string {
	return "inflight_job"
}
