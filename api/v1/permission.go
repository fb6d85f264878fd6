package v1

// SetPermissionRequest replaces the whole capability set of a user on a cluster.
type SetPermissionRequest struct {
	Capabilities []string `json:"capabilities" binding:"required" example:"migrate,power"`
}

type PermissionItem struct {
	UserId       string   `json:"user_id"`
	Username     string   `json:"username"`
	Cluster      string   `json:"cluster"`
	Capabilities []string `json:"capabilities"`
}

type ListPermissionResponse struct {
	Response
	Data ListPermissionResponseData
}

type ListPermissionResponseData struct {
	List []PermissionItem `json:"list"`
}
