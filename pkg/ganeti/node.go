package ganeti

import (
	"encoding/json"
	"fmt"
	"time"
)

type NodeRole string

const (
	RoleMaster    NodeRole = "master"
	RoleCandidate NodeRole = "candidate"
	RoleRegular   NodeRole = "regular"
	RoleDrained   NodeRole = "drained"
	RoleOffline   NodeRole = "offline"
)

// NodeRecord is the normalized view of a node. Memory and disk figures are MiB.
type NodeRecord struct {
	Name               string      `json:"name"`
	UUID               string      `json:"uuid"`
	Role               NodeRole    `json:"role"`
	Offline            bool        `json:"offline"`
	Drained            bool        `json:"drained"`
	MasterCandidate    bool        `json:"master_candidate"`
	PrimaryIP          string      `json:"primary_ip"`
	SecondaryIP        string      `json:"secondary_ip"`
	MemoryTotal        OptionalInt `json:"memory_total"`
	MemoryFree         OptionalInt `json:"memory_free"`
	MemoryNode         OptionalInt `json:"memory_node"`
	DiskTotal          OptionalInt `json:"disk_total"`
	DiskFree           OptionalInt `json:"disk_free"`
	CPUTotal           OptionalInt `json:"cpu_total"`
	CPUNodes           OptionalInt `json:"cpu_nodes"`
	CPUSockets         OptionalInt `json:"cpu_sockets"`
	PrimaryInstances   []string    `json:"primary_instances"`
	SecondaryInstances []string    `json:"secondary_instances"`
	Tags               []string    `json:"tags"`
	SerialNo           int64       `json:"serial_no"`
	CreatedAt          *time.Time  `json:"ctime,omitempty"`
	ModifiedAt         *time.Time  `json:"mtime,omitempty"`
}

// NodeList is what ListNodes returns. Records is only filled for bulk listings.
type NodeList struct {
	Names   []string     `json:"names"`
	Records []NodeRecord `json:"records,omitempty"`
}

type rawNode struct {
	Name            string      `json:"name"`
	UUID            string      `json:"uuid"`
	Role            string      `json:"role"`
	Offline         bool        `json:"offline"`
	Drained         bool        `json:"drained"`
	MasterCandidate bool        `json:"master_candidate"`
	PIP             string      `json:"pip"`
	SIP             string      `json:"sip"`
	MTotal          OptionalInt `json:"mtotal"`
	MFree           OptionalInt `json:"mfree"`
	MNode           OptionalInt `json:"mnode"`
	DTotal          OptionalInt `json:"dtotal"`
	DFree           OptionalInt `json:"dfree"`
	CTotal          OptionalInt `json:"ctotal"`
	CNodes          OptionalInt `json:"cnodes"`
	CSockets        OptionalInt `json:"csockets"`
	PinstList       []string    `json:"pinst_list"`
	SinstList       []string    `json:"sinst_list"`
	Tags            []string    `json:"tags"`
	SerialNo        int64       `json:"serial_no"`
	CTime           *float64    `json:"ctime"`
	MTime           *float64    `json:"mtime"`
}

func (r rawNode) normalize() NodeRecord {
	return NodeRecord{
		Name:               r.Name,
		UUID:               r.UUID,
		Role:               roleFromWire(r.Role, r.Offline, r.Drained, r.MasterCandidate),
		Offline:            r.Offline,
		Drained:            r.Drained,
		MasterCandidate:    r.MasterCandidate,
		PrimaryIP:          r.PIP,
		SecondaryIP:        r.SIP,
		MemoryTotal:        r.MTotal,
		MemoryFree:         r.MFree,
		MemoryNode:         r.MNode,
		DiskTotal:          r.DTotal,
		DiskFree:           r.DFree,
		CPUTotal:           r.CTotal,
		CPUNodes:           r.CNodes,
		CPUSockets:         r.CSockets,
		PrimaryInstances:   nonNil(r.PinstList),
		SecondaryInstances: nonNil(r.SinstList),
		Tags:               nonNil(r.Tags),
		SerialNo:           r.SerialNo,
		CreatedAt:          epoch(r.CTime),
		ModifiedAt:         epoch(r.MTime),
	}
}

// roleFromWire maps the one-letter RAPI role code. Flags are the fallback for old masters
// that do not report a role.
func roleFromWire(code string, offline, drained, candidate bool) NodeRole {
	switch code {
	case "M":
		return RoleMaster
	case "C":
		return RoleCandidate
	case "R":
		return RoleRegular
	case "D":
		return RoleDrained
	case "O":
		return RoleOffline
	}
	switch {
	case offline:
		return RoleOffline
	case drained:
		return RoleDrained
	case candidate:
		return RoleCandidate
	}
	return RoleRegular
}

// ParseNode decodes a single node document.
func ParseNode(b []byte) (*NodeRecord, error) {
	var raw rawNode
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: node: %v", ErrMalformed, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: node without name", ErrMalformed)
	}
	rec := raw.normalize()
	return &rec, nil
}

// ParseNodeList decodes /2/nodes. Plain listings may be bare names or {id, uri} objects.
func ParseNodeList(b []byte, bulk bool) (*NodeList, error) {
	if bulk {
		var raws []rawNode
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, fmt.Errorf("%w: node list: %v", ErrMalformed, err)
		}
		list := &NodeList{Names: make([]string, 0, len(raws)), Records: make([]NodeRecord, 0, len(raws))}
		for _, raw := range raws {
			list.Names = append(list.Names, raw.Name)
			list.Records = append(list.Records, raw.normalize())
		}
		return list, nil
	}
	names, err := parseNames(b)
	if err != nil {
		return nil, fmt.Errorf("%w: node list: %v", ErrMalformed, err)
	}
	return &NodeList{Names: names}, nil
}

func parseNames(b []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var ref struct {
			ID  string `json:"id"`
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return nil, err
		}
		names = append(names, ref.ID)
	}
	return names, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
