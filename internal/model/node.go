package model

import (
	"time"
)

// Node is the cached view of a cluster node. It is only written by the refresh task.
type Node struct {
	Id                 int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ClusterID          int64     `json:"cluster_id" gorm:"column:cluster_id;uniqueIndex:idx_node_cluster_host"`
	Hostname           string    `json:"hostname" gorm:"column:hostname;size:255;uniqueIndex:idx_node_cluster_host"`
	UUID               string    `json:"uuid" gorm:"column:uuid"`
	Role               string    `json:"role" gorm:"column:role;size:16"`
	Offline            bool      `json:"offline" gorm:"column:offline"`
	Drained            bool      `json:"drained" gorm:"column:drained"`
	PrimaryIP          string    `json:"primary_ip" gorm:"column:primary_ip"`
	SecondaryIP        string    `json:"secondary_ip" gorm:"column:secondary_ip"`
	MemoryTotal        *int64    `json:"memory_total" gorm:"column:memory_total"` // MiB, NULL when unknown
	MemoryFree         *int64    `json:"memory_free" gorm:"column:memory_free"`
	DiskTotal          *int64    `json:"disk_total" gorm:"column:disk_total"`
	DiskFree           *int64    `json:"disk_free" gorm:"column:disk_free"`
	CPUTotal           *int64    `json:"cpu_total" gorm:"column:cpu_total"`
	CPUSockets         *int64    `json:"cpu_sockets" gorm:"column:cpu_sockets"`
	PrimaryInstances   string    `json:"primary_instances" gorm:"column:primary_instances;type:text"` // JSON array of VM names
	SecondaryInstances string    `json:"secondary_instances" gorm:"column:secondary_instances;type:text"`
	Tags               string    `json:"tags" gorm:"column:tags;type:text"`
	ResourceHash       string    `json:"resource_hash" gorm:"column:resource_hash;index"`
	LastSyncTime       time.Time `json:"last_sync_time" gorm:"column:last_sync_time"`
	CreateTime         time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime         time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (Node) TableName() string {
	return "node"
}
