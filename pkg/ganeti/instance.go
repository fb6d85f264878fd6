package ganeti

import (
	"encoding/json"
	"fmt"
	"time"
)

type InstanceStatus string

const (
	StatusRunning   InstanceStatus = "running"
	StatusStopped   InstanceStatus = "stopped"
	StatusAdminDown InstanceStatus = "admin_down"
	StatusUnknown   InstanceStatus = "unknown"
)

const (
	HypervisorKVM    = "kvm"
	HypervisorXenHVM = "xen-hvm"
	HypervisorXenPVM = "xen-pvm"
)

// Disk templates that replicate to a secondary node.
var mirroredTemplates = map[string]bool{
	"drbd": true,
}

// Disk templates that must not have secondaries.
var localTemplates = map[string]bool{
	"plain":      true,
	"file":       true,
	"diskless":   true,
	"sharedfile": true,
	"blockdev":   true,
	"rbd":        true,
	"ext":        true,
}

type NIC struct {
	MAC    string  `json:"mac"`
	IP     *string `json:"ip"`
	Mode   string  `json:"mode"`
	Link   string  `json:"link"`
	Bridge string  `json:"bridge"`
}

// HVSummary is the subset of hypervisor parameters every hypervisor can answer.
type HVSummary struct {
	BootOrder      string `json:"boot_order"`
	KernelPath     string `json:"kernel_path"`
	KernelArgs     string `json:"kernel_args"`
	InitrdPath     string `json:"initrd_path"`
	RootPath       string `json:"root_path"`
	CdromImagePath string `json:"cdrom_image_path"`
	DiskType       string `json:"disk_type"`
	NICType        string `json:"nic_type"`
	VNCBindAddress string `json:"vnc_bind_address"`
	ACPI           bool   `json:"acpi"`
	Bootloader     bool   `json:"use_bootloader"`
	SerialConsole  bool   `json:"serial_console"`
}

// InstanceRecord is the normalized view of a VM. Parameter maps are kept exactly as received.
type InstanceRecord struct {
	Name           string                   `json:"name"`
	UUID           string                   `json:"uuid"`
	OS             string                   `json:"os"`
	Hypervisor     string                   `json:"hypervisor"`
	Status         InstanceStatus           `json:"status"`
	RawStatus      string                   `json:"raw_status"`
	AdminState     bool                     `json:"admin_state"`
	OperState      bool                     `json:"oper_state"`
	PrimaryNode    string                   `json:"pnode"`
	SecondaryNodes []string                 `json:"snodes"`
	DiskTemplate   string                   `json:"disk_template"`
	DiskSizes      []int64                  `json:"disk_sizes"`
	DiskUsage      OptionalInt              `json:"disk_usage"`
	NICs           []NIC                    `json:"nics"`
	NetworkPort    OptionalInt              `json:"network_port"`
	OperRAM        OptionalInt              `json:"oper_ram"`
	OperVCPUs      OptionalInt              `json:"oper_vcpus"`
	Memory         OptionalInt              `json:"memory"`
	VCPUs          OptionalInt              `json:"vcpus"`
	HVParams       map[string]interface{}   `json:"hvparams"`
	BEParams       map[string]interface{}   `json:"beparams"`
	NICParams      []map[string]interface{} `json:"nicparams,omitempty"`
	CustomHVParams map[string]interface{}   `json:"custom_hvparams,omitempty"`
	CustomBEParams map[string]interface{}   `json:"custom_beparams,omitempty"`
	Summary        HVSummary                `json:"hv_summary"`
	Tags           []string                 `json:"tags"`
	SerialNo       int64                    `json:"serial_no"`
	CreatedAt      *time.Time               `json:"ctime,omitempty"`
	ModifiedAt     *time.Time               `json:"mtime,omitempty"`
}

// InstanceList is what ListInstances returns. Records is only filled for bulk listings.
type InstanceList struct {
	Names   []string         `json:"names"`
	Records []InstanceRecord `json:"records,omitempty"`
}

type rawInstance struct {
	Name            string                   `json:"name"`
	UUID            string                   `json:"uuid"`
	OS              string                   `json:"os"`
	Hypervisor      string                   `json:"hypervisor"`
	Status          string                   `json:"status"`
	AdminState      bool                     `json:"admin_state"`
	OperState       bool                     `json:"oper_state"`
	PNode           string                   `json:"pnode"`
	SNodes          []string                 `json:"snodes"`
	DiskTemplate    string                   `json:"disk_template"`
	DiskSizes       []int64                  `json:"disk.sizes"`
	DiskUsage       OptionalInt              `json:"disk_usage"`
	NICMacs         []string                 `json:"nic.macs"`
	NICIPs          []*string                `json:"nic.ips"`
	NICModes        []string                 `json:"nic.modes"`
	NICLinks        []string                 `json:"nic.links"`
	NICBridges      []string                 `json:"nic.bridges"`
	NetworkPort     OptionalInt              `json:"network_port"`
	OperRAM         OptionalInt              `json:"oper_ram"`
	OperVCPUs       OptionalInt              `json:"oper_vcpus"`
	HVParams        map[string]interface{}   `json:"hvparams"`
	BEParams        map[string]interface{}   `json:"beparams"`
	CustomHVParams  map[string]interface{}   `json:"custom_hvparams"`
	CustomBEParams  map[string]interface{}   `json:"custom_beparams"`
	CustomNICParams []map[string]interface{} `json:"custom_nicparams"`
	Tags            []string                 `json:"tags"`
	SerialNo        int64                    `json:"serial_no"`
	CTime           *float64                 `json:"ctime"`
	MTime           *float64                 `json:"mtime"`
}

func (r rawInstance) normalize() InstanceRecord {
	rec := InstanceRecord{
		Name:           r.Name,
		UUID:           r.UUID,
		OS:             r.OS,
		Hypervisor:     r.Hypervisor,
		Status:         normalizeStatus(r.Status),
		RawStatus:      r.Status,
		AdminState:     r.AdminState,
		OperState:      r.OperState,
		PrimaryNode:    r.PNode,
		SecondaryNodes: nonNil(r.SNodes),
		DiskTemplate:   r.DiskTemplate,
		DiskSizes:      r.DiskSizes,
		DiskUsage:      r.DiskUsage,
		NetworkPort:    r.NetworkPort,
		OperRAM:        r.OperRAM,
		OperVCPUs:      r.OperVCPUs,
		HVParams:       r.HVParams,
		BEParams:       r.BEParams,
		NICParams:      r.CustomNICParams,
		CustomHVParams: r.CustomHVParams,
		CustomBEParams: r.CustomBEParams,
		Tags:           nonNil(r.Tags),
		SerialNo:       r.SerialNo,
		CreatedAt:      epoch(r.CTime),
		ModifiedAt:     epoch(r.MTime),
	}
	if rec.DiskSizes == nil {
		rec.DiskSizes = []int64{}
	}
	if rec.HVParams == nil {
		rec.HVParams = map[string]interface{}{}
	}
	if rec.BEParams == nil {
		rec.BEParams = map[string]interface{}{}
	}
	rec.Memory = intParam(rec.BEParams, "memory", "maxmem")
	rec.VCPUs = intParam(rec.BEParams, "vcpus")

	rec.NICs = make([]NIC, len(r.NICMacs))
	for i, mac := range r.NICMacs {
		nic := NIC{MAC: mac}
		if i < len(r.NICIPs) {
			nic.IP = r.NICIPs[i]
		}
		if i < len(r.NICModes) {
			nic.Mode = r.NICModes[i]
		}
		if i < len(r.NICLinks) {
			nic.Link = r.NICLinks[i]
		}
		if i < len(r.NICBridges) {
			nic.Bridge = r.NICBridges[i]
		}
		rec.NICs[i] = nic
	}

	if rec.Hypervisor == "" {
		rec.Hypervisor = DetectHypervisor(rec.HVParams)
	}
	rec.Summary = summarize(rec.HVParams)
	return rec
}

func normalizeStatus(s string) InstanceStatus {
	switch s {
	case "running":
		return StatusRunning
	case "ADMIN_down", "ADMIN_offline":
		return StatusAdminDown
	case "USER_down", "ERROR_down":
		return StatusStopped
	}
	return StatusUnknown
}

// DetectHypervisor guesses the hypervisor from the parameter names it uses.
// An empty result means the parameters are not conclusive.
func DetectHypervisor(hv map[string]interface{}) string {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := hv[k]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case has("kvm_flag", "vhost_net", "kvm_path", "usb_mouse", "mem_path", "security_model"):
		return HypervisorKVM
	case has("device_model"):
		return HypervisorXenHVM
	case has("bootloader_path", "use_bootloader", "bootloader_args"):
		return HypervisorXenPVM
	}
	return ""
}

func summarize(hv map[string]interface{}) HVSummary {
	return HVSummary{
		BootOrder:      stringParam(hv, "boot_order"),
		KernelPath:     stringParam(hv, "kernel_path"),
		KernelArgs:     stringParam(hv, "kernel_args"),
		InitrdPath:     stringParam(hv, "initrd_path"),
		RootPath:       stringParam(hv, "root_path"),
		CdromImagePath: stringParam(hv, "cdrom_image_path"),
		DiskType:       stringParam(hv, "disk_type"),
		NICType:        stringParam(hv, "nic_type"),
		VNCBindAddress: stringParam(hv, "vnc_bind_address"),
		ACPI:           boolParam(hv, "acpi"),
		Bootloader:     boolParam(hv, "use_bootloader"),
		SerialConsole:  boolParam(hv, "serial_console"),
	}
}

func stringParam(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolParam(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func intParam(m map[string]interface{}, keys ...string) OptionalInt {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return Int(int64(v))
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return Int(n)
			}
		}
	}
	return Unknown()
}

// WithDefaultHypervisor fills in the cluster default when detection was inconclusive.
func (r *InstanceRecord) WithDefaultHypervisor(hv string) {
	if r.Hypervisor == "" {
		r.Hypervisor = hv
	}
}

// IsMirrored reports whether the disk template keeps a copy on secondary nodes.
func (r *InstanceRecord) IsMirrored() bool {
	return IsMirroredTemplate(r.DiskTemplate)
}

func IsMirroredTemplate(template string) bool {
	return mirroredTemplates[template]
}

// Validate checks that secondaries match what the disk template allows.
func (r *InstanceRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: instance without name", ErrInvalidRecord)
	}
	switch {
	case mirroredTemplates[r.DiskTemplate] && len(r.SecondaryNodes) == 0:
		return fmt.Errorf("%w: %s: disk template %s requires a secondary node", ErrInvalidRecord, r.Name, r.DiskTemplate)
	case localTemplates[r.DiskTemplate] && len(r.SecondaryNodes) > 0:
		return fmt.Errorf("%w: %s: disk template %s cannot have secondary nodes", ErrInvalidRecord, r.Name, r.DiskTemplate)
	}
	return nil
}

// ParseInstance decodes a single instance document.
func ParseInstance(b []byte) (*InstanceRecord, error) {
	var raw rawInstance
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: instance: %v", ErrMalformed, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: instance without name", ErrMalformed)
	}
	rec := raw.normalize()
	return &rec, nil
}

// ParseInstanceList decodes /2/instances with or without bulk.
func ParseInstanceList(b []byte, bulk bool) (*InstanceList, error) {
	if bulk {
		var raws []rawInstance
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, fmt.Errorf("%w: instance list: %v", ErrMalformed, err)
		}
		list := &InstanceList{Names: make([]string, 0, len(raws)), Records: make([]InstanceRecord, 0, len(raws))}
		for _, raw := range raws {
			list.Names = append(list.Names, raw.Name)
			list.Records = append(list.Records, raw.normalize())
		}
		return list, nil
	}
	names, err := parseNames(b)
	if err != nil {
		return nil, fmt.Errorf("%w: instance list: %v", ErrMalformed, err)
	}
	return &InstanceList{Names: names}, nil
}
