package v1

import "time"

type ListInstanceRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100" example:"15"`
	Status   string `form:"status" example:"running"`
	Node     string `form:"node" example:"gtest1.example.bak"`
}

type ListInstanceResponse struct {
	Response
	Data ListInstanceResponseData
}

type ListInstanceResponseData struct {
	Total int64          `json:"total"`
	List  []InstanceItem `json:"list"`
}

type InstanceItem struct {
	Id             int64    `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	OS             string   `json:"os"`
	Hypervisor     string   `json:"hypervisor"`
	PrimaryNode    string   `json:"primary_node"`
	SecondaryNodes []string `json:"secondary_nodes"`
	DiskTemplate   string   `json:"disk_template"`
	Memory         *int64   `json:"memory"`
	VCPUs          *int64   `json:"vcpus"`
}

type GetInstanceRequest struct {
	Refresh bool `form:"refresh" example:"false"`
}

type GetInstanceResponse struct {
	Response
	Data InstanceDetail
}

// InstanceDetail carries the hypervisor, backend and nic parameters exactly as the cluster reported them.
type InstanceDetail struct {
	InstanceItem
	UUID          string                   `json:"uuid"`
	RawStatus     string                   `json:"raw_status"`
	NetworkPort   *int64                   `json:"network_port"`
	OperRAM       *int64                   `json:"oper_ram"`
	OperVCPUs     *int64                   `json:"oper_vcpus"`
	DiskSize      int64                    `json:"disk_size"`
	DiskSizeHuman string                   `json:"disk_size_human"`
	HVParams      map[string]interface{}   `json:"hvparams"`
	BEParams      map[string]interface{}   `json:"beparams"`
	NICParams     []map[string]interface{} `json:"nicparams"`
	NICs          []map[string]interface{} `json:"nics"`
	Tags          []string                 `json:"tags"`
	Actions       []string                 `json:"actions"`
	LastSyncTime  time.Time                `json:"last_sync_time"`
}
