package v1

import "time"

// CreateClusterRequest registers a Ganeti cluster by its RAPI endpoint.
type CreateClusterRequest struct {
	Slug        string `json:"slug" binding:"required,max=50" example:"ganeti-test"`
	Hostname    string `json:"hostname" binding:"required" example:"ganeti-test.example.bak"`
	Port        int    `json:"port" binding:"omitempty,min=1,max=65535" example:"5080"`
	Username    string `json:"username" example:"rapi"`
	Password    string `json:"password" example:"secret"`
	Description string `json:"description" example:"test cluster"`
	IsEnabled   *int8  `json:"is_enabled" example:"1"`
}

// UpdateClusterRequest only touches the fields that are present.
type UpdateClusterRequest struct {
	Hostname    *string `json:"hostname,omitempty"`
	Port        *int    `json:"port,omitempty" binding:"omitempty,min=1,max=65535"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	Description *string `json:"description,omitempty"`
	IsEnabled   *int8   `json:"is_enabled,omitempty"`
}

type ListClusterRequest struct {
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,max=100" example:"15"`
}

type ListClusterResponse struct {
	Response
	Data ListClusterResponseData
}

type ListClusterResponseData struct {
	Total int64         `json:"total"`
	List  []ClusterItem `json:"list"`
}

type ClusterItem struct {
	Id                int64  `json:"id"`
	Slug              string `json:"slug"`
	Hostname          string `json:"hostname"`
	Port              int    `json:"port"`
	Description       string `json:"description"`
	DefaultHypervisor string `json:"default_hypervisor"`
	SoftwareVersion   string `json:"software_version"`
	IsEnabled         int8   `json:"is_enabled"`
}

type GetClusterResponse struct {
	Response
	Data ClusterDetail
}

type ClusterDetail struct {
	ClusterItem
	Username           string    `json:"username"`
	ClusterName        string    `json:"cluster_name"`
	MasterNode         string    `json:"master_node"`
	EnabledHypervisors []string  `json:"enabled_hypervisors"`
	NodeCount          int64     `json:"node_count"`
	VMCount            int64     `json:"vm_count"`
	LastSyncTime       time.Time `json:"last_sync_time"`
	CreateTime         time.Time `json:"create_time"`
	UpdateTime         time.Time `json:"update_time"`
}

type RefreshClusterResponseData struct {
	Nodes    int       `json:"nodes"`
	VMs      int       `json:"vms"`
	Removed  int       `json:"removed"`
	Skipped  []string  `json:"skipped"`
	SyncedAt time.Time `json:"synced_at"`
}

type OperatingSystemsResponseData struct {
	List []string `json:"list"`
}

type ActionLogItem struct {
	Id         string    `json:"id"`
	UserId     string    `json:"user_id"`
	Cluster    string    `json:"cluster"`
	Target     string    `json:"target"`
	Action     string    `json:"action"`
	JobId      string    `json:"job_id"`
	State      string    `json:"state"`
	Message    string    `json:"message"`
	CreateTime time.Time `json:"create_time"`
}

type ListActionLogRequest struct {
	Limit int64 `form:"limit" binding:"omitempty,max=500" example:"50"`
}

type ListActionLogResponseData struct {
	List []ActionLogItem `json:"list"`
}
