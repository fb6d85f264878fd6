package model

import (
	"sort"
	"strings"
	"time"
)

type Capability string

const (
	CapAdmin    Capability = "admin"
	CapCreateVM Capability = "create_vm"
	CapMigrate  Capability = "migrate"
	CapPower    Capability = "power"
	CapRemove   Capability = "remove"
	CapTags     Capability = "tags"
)

var knownCapabilities = map[Capability]bool{
	CapAdmin:    true,
	CapCreateVM: true,
	CapMigrate:  true,
	CapPower:    true,
	CapRemove:   true,
	CapTags:     true,
}

// AllCapabilities lists every capability name, sorted.
func AllCapabilities() []Capability {
	return []Capability{CapAdmin, CapCreateVM, CapMigrate, CapPower, CapRemove, CapTags}
}

func IsCapability(s string) bool {
	return knownCapabilities[Capability(s)]
}

// CapabilitySet is the set of capabilities one user holds on one cluster.
type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := CapabilitySet{}
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// ParseCapabilities reads the comma separated column form. Unknown names are dropped.
func ParseCapabilities(s string) CapabilitySet {
	set := CapabilitySet{}
	for _, part := range strings.Split(s, ",") {
		c := Capability(strings.TrimSpace(part))
		if knownCapabilities[c] {
			set[c] = struct{}{}
		}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Any reports whether the set holds at least one of required.
func (s CapabilitySet) Any(required ...Capability) bool {
	for _, c := range required {
		if s.Has(c) {
			return true
		}
	}
	return false
}

func (s CapabilitySet) Slice() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

func (s CapabilitySet) String() string {
	return strings.Join(s.Slice(), ",")
}

// Permission is a grant row: the full capability set of a user on a cluster, read as one unit.
type Permission struct {
	Id           int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId       string    `json:"user_id" gorm:"column:user_id;size:64;uniqueIndex:idx_perm_user_cluster"`
	ClusterID    int64     `json:"cluster_id" gorm:"column:cluster_id;uniqueIndex:idx_perm_user_cluster;index"`
	Capabilities string    `json:"capabilities" gorm:"column:capabilities"`
	CreateTime   time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime   time.Time `json:"update_time" gorm:"column:gmt_modified"`
	Creator      string    `json:"creator" gorm:"column:creator"`
	Modifier     string    `json:"modifier" gorm:"column:modifier"`
}

func (Permission) TableName() string {
	return "permission"
}

func (p *Permission) CapabilitySet() CapabilitySet {
	if p == nil {
		return CapabilitySet{}
	}
	return ParseCapabilities(p.Capabilities)
}
