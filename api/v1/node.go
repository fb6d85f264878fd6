package v1

import "time"

type ListNodeRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100" example:"15"`
	Role     string `form:"role" example:"master"`
}

type ListNodeResponse struct {
	Response
	Data ListNodeResponseData
}

type ListNodeResponseData struct {
	Total int64      `json:"total"`
	List  []NodeItem `json:"list"`
}

// NodeItem sizes are MiB; nil means the node did not report them.
type NodeItem struct {
	Id           int64  `json:"id"`
	Hostname     string `json:"hostname"`
	Role         string `json:"role"`
	Offline      bool   `json:"offline"`
	Drained      bool   `json:"drained"`
	PrimaryIP    string `json:"primary_ip"`
	SecondaryIP  string `json:"secondary_ip"`
	MemoryTotal  *int64 `json:"memory_total"`
	MemoryFree   *int64 `json:"memory_free"`
	DiskTotal    *int64 `json:"disk_total"`
	DiskFree     *int64 `json:"disk_free"`
	CPUTotal     *int64 `json:"cpu_total"`
	CPUSockets   *int64 `json:"cpu_sockets"`
	PrimaryVMs   int    `json:"primary_vm_count"`
	SecondaryVMs int    `json:"secondary_vm_count"`
}

type GetNodeResponse struct {
	Response
	Data NodeDetail
}

// NodeDetail adds human readable sizes and what the caller may do with the node.
type NodeDetail struct {
	NodeItem
	UUID               string    `json:"uuid"`
	MemoryTotalHuman   string    `json:"memory_total_human"`
	MemoryFreeHuman    string    `json:"memory_free_human"`
	DiskTotalHuman     string    `json:"disk_total_human"`
	DiskFreeHuman      string    `json:"disk_free_human"`
	PrimaryInstances   []string  `json:"primary_instances"`
	SecondaryInstances []string  `json:"secondary_instances"`
	Admin              bool      `json:"admin"`
	Modify             bool      `json:"modify"`
	Actions            []string  `json:"actions"`
	LastSyncTime       time.Time `json:"last_sync_time"`
}

type NodeInstancesResponseData struct {
	List []InstanceItem `json:"list"`
}
