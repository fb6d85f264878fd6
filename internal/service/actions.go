package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
)

const (
	ActionShutdown = "shutdown"
	ActionStartup  = "startup"
	ActionReboot   = "reboot"
	ActionMigrate  = "migrate"
	ActionEvacuate = "evacuate"
	ActionRole     = "role"
	ActionRemove   = "remove"
)

// actionCapabilities is checked before anything else about the action, holding any one is enough.
var actionCapabilities = map[string][]model.Capability{
	ActionShutdown: {model.CapAdmin, model.CapPower},
	ActionStartup:  {model.CapAdmin, model.CapPower},
	ActionReboot:   {model.CapAdmin, model.CapPower},
	ActionMigrate:  {model.CapAdmin, model.CapMigrate},
	ActionEvacuate: {model.CapAdmin, model.CapMigrate},
	ActionRole:     {model.CapAdmin},
	ActionRemove:   {model.CapAdmin, model.CapRemove},
}

// RequiredCapabilities returns the capabilities that allow action, or nil for an unknown action.
func RequiredCapabilities(action string) []model.Capability {
	return actionCapabilities[action]
}

// dispatchTarget is the cached state of the thing an action is aimed at.
type dispatchTarget struct {
	kind     string
	name     string
	instance *model.VirtualMachine
	node     *model.Node
}

// actionSpec describes one action on one kind of target. validate checks the target state
// and the caller parameters and returns the opcode parameters to submit.
type actionSpec struct {
	op       string
	validate func(t *dispatchTarget, p params) (map[string]interface{}, error)
}

var actionTable = map[string]map[string]actionSpec{
	model.TargetInstance: {
		ActionShutdown: {op: ganeti.OpInstanceShutdown, validate: validateShutdown},
		ActionStartup:  {op: ganeti.OpInstanceStartup, validate: validateStartup},
		ActionReboot:   {op: ganeti.OpInstanceReboot, validate: validateReboot},
		ActionMigrate:  {op: ganeti.OpInstanceMigrate, validate: validateInstanceMigrate},
		ActionRemove:   {op: ganeti.OpInstanceRemove, validate: validateRemove},
	},
	model.TargetNode: {
		ActionMigrate:  {op: ganeti.OpNodeMigrate, validate: validateNodeMigrate},
		ActionEvacuate: {op: ganeti.OpNodeEvacuate, validate: validateEvacuate},
		ActionRole:     {op: ganeti.OpNodeSetRole, validate: validateRole},
	},
}

// Actions lists the actions available on a target kind.
func Actions(kind string) []string {
	out := make([]string, 0, len(actionTable[kind]))
	for a := range actionTable[kind] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// allowedActions is Actions(kind) narrowed to what user may run on the cluster.
func allowedActions(ctx context.Context, permission PermissionService, user *model.User, clusterID int64, kind string) ([]string, error) {
	out := []string{}
	for _, a := range Actions(kind) {
		ok, err := permission.Authorize(ctx, user, clusterID, RequiredCapabilities(a)...)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{v1.ErrInvalidAction}, args...)...)
}

// params is the caller supplied parameter bag, decoded from JSON.
type params map[string]interface{}

// only rejects keys outside allowed.
func (p params) only(allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	for k := range p {
		if !ok[k] {
			return invalid("unexpected parameter %q", k)
		}
	}
	return nil
}

func (p params) getBool(key string) (bool, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, false, invalid("parameter %q must be a boolean", key)
	}
	return b, true, nil
}

func (p params) getString(key string, allowed ...string) (string, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return "", false, invalid("parameter %q must be a non-empty string", key)
	}
	if len(allowed) > 0 {
		for _, a := range allowed {
			if s == a {
				return s, true, nil
			}
		}
		return "", false, invalid("parameter %q must be one of %v", key, allowed)
	}
	return s, true, nil
}

func (p params) getInt(key string) (int64, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return 0, false, invalid("parameter %q must be an integer", key)
	}
	if n < 0 || n != math.Trunc(n) {
		return 0, false, invalid("parameter %q must be a non-negative integer", key)
	}
	if n >= 1<<63 {
		return 0, false, invalid("parameter %q is out of range", key)
	}
	return int64(n), true, nil
}

// copyBools moves the boolean flags that are present into out.
func (p params) copyBools(out map[string]interface{}, keys ...string) error {
	for _, k := range keys {
		b, ok, err := p.getBool(k)
		if err != nil {
			return err
		}
		if ok {
			out[k] = b
		}
	}
	return nil
}

func instanceParams(t *dispatchTarget) map[string]interface{} {
	return map[string]interface{}{"instance_name": t.name}
}

func nodeParams(t *dispatchTarget) map[string]interface{} {
	return map[string]interface{}{"node_name": t.name}
}

func validateShutdown(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("timeout", "no_remember"); err != nil {
		return nil, err
	}
	switch ganeti.InstanceStatus(t.instance.Status) {
	case ganeti.StatusStopped, ganeti.StatusAdminDown:
		return nil, invalid("instance %s is not running", t.name)
	}
	out := instanceParams(t)
	timeout, ok, err := p.getInt("timeout")
	if err != nil {
		return nil, err
	}
	if ok {
		out["timeout"] = timeout
	}
	if err := p.copyBools(out, "no_remember"); err != nil {
		return nil, err
	}
	return out, nil
}

func validateStartup(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("force", "no_remember"); err != nil {
		return nil, err
	}
	if ganeti.InstanceStatus(t.instance.Status) == ganeti.StatusRunning {
		return nil, invalid("instance %s is already running", t.name)
	}
	out := instanceParams(t)
	if err := p.copyBools(out, "force", "no_remember"); err != nil {
		return nil, err
	}
	return out, nil
}

func validateReboot(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("type", "ignore_secondaries"); err != nil {
		return nil, err
	}
	if ganeti.InstanceStatus(t.instance.Status) != ganeti.StatusRunning {
		return nil, invalid("instance %s is not running", t.name)
	}
	out := instanceParams(t)
	kind, ok, err := p.getString("type", "soft", "hard", "full")
	if err != nil {
		return nil, err
	}
	if !ok {
		kind = "soft"
	}
	out["reboot_type"] = kind
	if err := p.copyBools(out, "ignore_secondaries"); err != nil {
		return nil, err
	}
	return out, nil
}

func validateInstanceMigrate(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("mode", "cleanup", "target_node"); err != nil {
		return nil, err
	}
	if !ganeti.IsMirroredTemplate(t.instance.DiskTemplate) {
		return nil, invalid("instance %s uses disk template %q and cannot be migrated", t.name, t.instance.DiskTemplate)
	}
	cleanup, _, err := p.getBool("cleanup")
	if err != nil {
		return nil, err
	}
	// a cleanup run repairs an interrupted migration and does not need a running instance
	if !cleanup && ganeti.InstanceStatus(t.instance.Status) != ganeti.StatusRunning {
		return nil, invalid("instance %s is not running", t.name)
	}
	out := instanceParams(t)
	if err := migrateOptions(out, p); err != nil {
		return nil, err
	}
	if cleanup {
		out["cleanup"] = true
	}
	return out, nil
}

func migrateOptions(out map[string]interface{}, p params) error {
	mode, ok, err := p.getString("mode", "live", "non-live")
	if err != nil {
		return err
	}
	if ok {
		out["mode"] = mode
	}
	target, ok, err := p.getString("target_node")
	if err != nil {
		return err
	}
	if ok {
		out["target_node"] = target
	}
	return nil
}

func validateRemove(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only(); err != nil {
		return nil, err
	}
	return instanceParams(t), nil
}

func validateNodeMigrate(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("mode", "target_node", "iallocator"); err != nil {
		return nil, err
	}
	if t.node.Offline {
		return nil, invalid("node %s is offline", t.name)
	}
	out := nodeParams(t)
	if err := migrateOptions(out, p); err != nil {
		return nil, err
	}
	iallocator, ok, err := p.getString("iallocator")
	if err != nil {
		return nil, err
	}
	if ok {
		if _, both := out["target_node"]; both {
			return nil, invalid("target_node and iallocator are exclusive")
		}
		out["iallocator"] = iallocator
	}
	return out, nil
}

func validateEvacuate(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("iallocator", "remote_node", "mode", "early_release"); err != nil {
		return nil, err
	}
	out := nodeParams(t)
	iallocator, hasAlloc, err := p.getString("iallocator")
	if err != nil {
		return nil, err
	}
	remote, hasRemote, err := p.getString("remote_node")
	if err != nil {
		return nil, err
	}
	switch {
	case hasAlloc && hasRemote:
		return nil, invalid("iallocator and remote_node are exclusive")
	case hasAlloc:
		out["iallocator"] = iallocator
	case hasRemote:
		if remote == t.name {
			return nil, invalid("cannot evacuate node %s onto itself", t.name)
		}
		out["remote_node"] = remote
	}
	mode, ok, err := p.getString("mode", "primary-only", "secondary-only", "all")
	if err != nil {
		return nil, err
	}
	if ok {
		out["mode"] = mode
	}
	if err := p.copyBools(out, "early_release"); err != nil {
		return nil, err
	}
	return out, nil
}

// wire names of the roles a node can be given, and the cached role they correspond to
var settableRoles = map[string]string{
	"master-candidate": string(ganeti.RoleCandidate),
	"regular":          string(ganeti.RoleRegular),
	"drained":          string(ganeti.RoleDrained),
	"offline":          string(ganeti.RoleOffline),
}

func validateRole(t *dispatchTarget, p params) (map[string]interface{}, error) {
	if err := p.only("role", "force"); err != nil {
		return nil, err
	}
	role, ok, err := p.getString("role", "master-candidate", "regular", "drained", "offline")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("parameter %q is required", "role")
	}
	if t.node.Role == string(ganeti.RoleMaster) {
		return nil, invalid("the role of master node %s cannot be changed", t.name)
	}
	if settableRoles[role] == t.node.Role {
		return nil, invalid("node %s already has role %s", t.name, role)
	}
	out := nodeParams(t)
	out["role"] = role
	if err := p.copyBools(out, "force"); err != nil {
		return nil, err
	}
	return out, nil
}
