package model

import (
	"time"
)

// VirtualMachine is the cached view of a Ganeti instance. hvparams, beparams and nicparams
// hold the JSON the cluster sent, untouched.
type VirtualMachine struct {
	Id             int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ClusterID      int64     `json:"cluster_id" gorm:"column:cluster_id;uniqueIndex:idx_vm_cluster_name"`
	Name           string    `json:"name" gorm:"column:name;size:255;uniqueIndex:idx_vm_cluster_name"`
	UUID           string    `json:"uuid" gorm:"column:uuid"`
	Status         string    `json:"status" gorm:"column:status;size:16"` // running|stopped|admin_down|unknown
	RawStatus      string    `json:"raw_status" gorm:"column:raw_status"`
	OS             string    `json:"os" gorm:"column:os"`
	Hypervisor     string    `json:"hypervisor" gorm:"column:hypervisor"`
	PrimaryNode    string    `json:"primary_node" gorm:"column:primary_node;index"`
	SecondaryNodes string    `json:"secondary_nodes" gorm:"column:secondary_nodes;type:text"` // JSON array
	DiskTemplate   string    `json:"disk_template" gorm:"column:disk_template"`
	DiskSize       int64     `json:"disk_size" gorm:"column:disk_size"` // MiB
	Memory         *int64    `json:"memory" gorm:"column:memory"`
	VCPUs          *int64    `json:"vcpus" gorm:"column:vcpus"`
	NetworkPort    *int64    `json:"network_port" gorm:"column:network_port"`
	OperRAM        *int64    `json:"oper_ram" gorm:"column:oper_ram"`
	OperVCPUs      *int64    `json:"oper_vcpus" gorm:"column:oper_vcpus"`
	HVParams       string    `json:"hvparams" gorm:"column:hvparams;type:text"`
	BEParams       string    `json:"beparams" gorm:"column:beparams;type:text"`
	NICParams      string    `json:"nicparams" gorm:"column:nicparams;type:text"`
	NICs           string    `json:"nics" gorm:"column:nics;type:text"`
	Tags           string    `json:"tags" gorm:"column:tags;type:text"`
	ResourceHash   string    `json:"resource_hash" gorm:"column:resource_hash;index"`
	LastSyncTime   time.Time `json:"last_sync_time" gorm:"column:last_sync_time"`
	CreateTime     time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime     time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (VirtualMachine) TableName() string {
	return "virtual_machine"
}
