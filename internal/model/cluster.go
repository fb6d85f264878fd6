package model

import (
	"strings"
	"time"
)

type Cluster struct {
	Id                 int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Slug               string    `json:"slug" gorm:"column:slug;uniqueIndex;size:50;not null"`
	Hostname           string    `json:"hostname" gorm:"column:hostname;not null"`
	Port               int       `json:"port" gorm:"column:port;default:5080"`
	Username           string    `json:"username" gorm:"column:username"`
	Password           string    `json:"-" gorm:"column:password"`
	Description        string    `json:"description" gorm:"column:description"`
	ClusterName        string    `json:"cluster_name" gorm:"column:cluster_name"` // name reported by /2/info
	MasterNode         string    `json:"master_node" gorm:"column:master_node"`
	DefaultHypervisor  string    `json:"default_hypervisor" gorm:"column:default_hypervisor"`
	EnabledHypervisors string    `json:"enabled_hypervisors" gorm:"column:enabled_hypervisors"` // comma separated
	SoftwareVersion    string    `json:"software_version" gorm:"column:software_version"`
	IsEnabled          int8      `json:"is_enabled" gorm:"column:is_enabled;default:1"` // 1: refreshed by the sync task
	LastSyncTime       time.Time `json:"last_sync_time" gorm:"column:last_sync_time"`
	CreateTime         time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime         time.Time `json:"update_time" gorm:"column:gmt_modified"`
	Creator            string    `json:"creator" gorm:"column:creator"`
	Modifier           string    `json:"modifier" gorm:"column:modifier"`
}

func (Cluster) TableName() string {
	return "cluster"
}

func (c *Cluster) Hypervisors() []string {
	if c.EnabledHypervisors == "" {
		return []string{}
	}
	return strings.Split(c.EnabledHypervisors, ",")
}
