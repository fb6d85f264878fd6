package ganeti

import (
	"encoding/json"
	"fmt"
	"time"
)

type ClusterInfo struct {
	Name               string                            `json:"name"`
	UUID               string                            `json:"uuid"`
	Master             string                            `json:"master"`
	SoftwareVersion    string                            `json:"software_version"`
	ProtocolVersion    int64                             `json:"protocol_version"`
	DefaultHypervisor  string                            `json:"default_hypervisor"`
	EnabledHypervisors []string                          `json:"enabled_hypervisors"`
	Architecture       []string                          `json:"architecture"`
	HVParams           map[string]map[string]interface{} `json:"hvparams"`
	BEParams           map[string]map[string]interface{} `json:"beparams"`
	NICParams          map[string]map[string]interface{} `json:"nicparams"`
	CandidatePoolSize  int64                             `json:"candidate_pool_size"`
	Tags               []string                          `json:"tags"`
	CreatedAt          *time.Time                        `json:"-"`
	ModifiedAt         *time.Time                        `json:"-"`
}

// MigrationMode is the cluster default for the given hypervisor, or "" when unset.
func (ci *ClusterInfo) MigrationMode(hypervisor string) string {
	if p, ok := ci.HVParams[hypervisor]; ok {
		return stringParam(p, "migration_mode")
	}
	return ""
}

func ParseClusterInfo(b []byte) (*ClusterInfo, error) {
	var aux struct {
		ClusterInfo
		CTime *float64 `json:"ctime"`
		MTime *float64 `json:"mtime"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return nil, fmt.Errorf("%w: cluster info: %v", ErrMalformed, err)
	}
	info := aux.ClusterInfo
	info.CreatedAt = epoch(aux.CTime)
	info.ModifiedAt = epoch(aux.MTime)
	if info.EnabledHypervisors == nil {
		info.EnabledHypervisors = []string{}
	}
	return &info, nil
}
