package ganeti

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	OpInstanceShutdown = "OP_INSTANCE_SHUTDOWN"
	OpInstanceStartup  = "OP_INSTANCE_STARTUP"
	OpInstanceReboot   = "OP_INSTANCE_REBOOT"
	OpInstanceMigrate  = "OP_INSTANCE_MIGRATE"
	OpInstanceRemove   = "OP_INSTANCE_REMOVE"
	OpNodeMigrate      = "OP_NODE_MIGRATE"
	OpNodeEvacuate     = "OP_NODE_EVACUATE"
	OpNodeSetRole      = "OP_NODE_SET_ROLE"
)

// jobRequest is the RAPI call that submits an opcode.
type jobRequest struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

type opBuilder func(params map[string]interface{}) (*jobRequest, error)

var opTable = map[string]opBuilder{
	OpInstanceShutdown: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "instance_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodPut,
			path:   "/2/instances/" + url.PathEscape(name) + "/shutdown",
			body:   pick(p, "timeout", "no_remember", "dry_run"),
		}, nil
	},
	OpInstanceStartup: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "instance_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodPut,
			path:   "/2/instances/" + url.PathEscape(name) + "/startup",
			query:  flags(p, "force", "no_remember", "dry_run"),
		}, nil
	},
	OpInstanceReboot: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "instance_name")
		if err != nil {
			return nil, err
		}
		q := flags(p, "ignore_secondaries", "dry_run")
		if t, ok := p["reboot_type"].(string); ok && t != "" {
			q.Set("type", t)
		}
		return &jobRequest{
			method: http.MethodPost,
			path:   "/2/instances/" + url.PathEscape(name) + "/reboot",
			query:  q,
		}, nil
	},
	OpInstanceMigrate: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "instance_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodPut,
			path:   "/2/instances/" + url.PathEscape(name) + "/migrate",
			body:   pick(p, "mode", "cleanup", "target_node", "iallocator"),
		}, nil
	},
	OpInstanceRemove: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "instance_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodDelete,
			path:   "/2/instances/" + url.PathEscape(name),
			query:  flags(p, "dry_run"),
		}, nil
	},
	OpNodeMigrate: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "node_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodPost,
			path:   "/2/nodes/" + url.PathEscape(name) + "/migrate",
			body:   pick(p, "mode", "target_node", "iallocator"),
		}, nil
	},
	OpNodeEvacuate: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "node_name")
		if err != nil {
			return nil, err
		}
		return &jobRequest{
			method: http.MethodPost,
			path:   "/2/nodes/" + url.PathEscape(name) + "/evacuate",
			body:   pick(p, "iallocator", "remote_node", "mode", "early_release"),
		}, nil
	},
	OpNodeSetRole: func(p map[string]interface{}) (*jobRequest, error) {
		name, err := requireName(p, "node_name")
		if err != nil {
			return nil, err
		}
		role, ok := p["role"].(string)
		if !ok || role == "" {
			return nil, fmt.Errorf("%w: %s requires a role", ErrUnknownOp, OpNodeSetRole)
		}
		return &jobRequest{
			method: http.MethodPut,
			path:   "/2/nodes/" + url.PathEscape(name) + "/role",
			query:  flags(p, "force"),
			body:   role,
		}, nil
	},
}

func buildJobRequest(op string, params map[string]interface{}) (*jobRequest, error) {
	build, ok := opTable[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
	return build(params)
}

func requireName(p map[string]interface{}, key string) (string, error) {
	name, ok := p[key].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: missing %s", ErrUnknownOp, key)
	}
	return name, nil
}

// pick copies the listed keys into a request body, or returns nil when none are present.
func pick(p map[string]interface{}, keys ...string) interface{} {
	var body map[string]interface{}
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		if body == nil {
			body = map[string]interface{}{}
		}
		body[k] = v
	}
	if body == nil {
		return nil
	}
	return body
}

// flags renders boolean parameters as RAPI query flags (dry_run becomes dry-run=1).
func flags(p map[string]interface{}, keys ...string) url.Values {
	q := url.Values{}
	for _, k := range keys {
		b, ok := p[k].(bool)
		if !ok || !b {
			continue
		}
		name := k
		if k == "dry_run" {
			name = "dry-run"
		}
		q.Set(name, strconv.Itoa(1))
	}
	return q
}
