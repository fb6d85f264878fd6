package ganetitest

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrNoResponse = errors.New("ganetitest: no canned response for call")

// ResponseMap answers a call from a table keyed by its exact positional and keyword arguments.
type ResponseMap struct {
	entries []responseEntry
}

type responseEntry struct {
	args     []interface{}
	kwargs   map[string]interface{}
	response interface{}
}

func NewResponseMap() *ResponseMap {
	return &ResponseMap{}
}

// Add registers the response for (args, kwargs). Nil and empty arguments are the same key.
func (m *ResponseMap) Add(args []interface{}, kwargs map[string]interface{}, response interface{}) *ResponseMap {
	m.entries = append(m.entries, responseEntry{
		args:     normArgs(args),
		kwargs:   normKwargs(kwargs),
		response: response,
	})
	return m
}

func (m *ResponseMap) Lookup(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	args, kwargs = normArgs(args), normKwargs(kwargs)
	for _, e := range m.entries {
		if reflect.DeepEqual(e.args, args) && reflect.DeepEqual(e.kwargs, kwargs) {
			return e.response, nil
		}
	}
	return nil, fmt.Errorf("%w: args=%v kwargs=%v", ErrNoResponse, args, kwargs)
}

func normArgs(args []interface{}) []interface{} {
	if args == nil {
		return []interface{}{}
	}
	return args
}

func normKwargs(kwargs map[string]interface{}) map[string]interface{} {
	if kwargs == nil {
		return map[string]interface{}{}
	}
	return kwargs
}

// NodesMap answers node listings the way a real master does for each spelling of the bulk flag.
func NodesMap() *ResponseMap {
	return NewResponseMap().
		Add(nil, nil, Nodes).
		Add([]interface{}{false}, nil, Nodes).
		Add(nil, map[string]interface{}{"bulk": false}, Nodes).
		Add([]interface{}{true}, nil, NodesBulk).
		Add(nil, map[string]interface{}{"bulk": true}, NodesBulk)
}

// InstancesMap is the instance counterpart of NodesMap.
func InstancesMap() *ResponseMap {
	return NewResponseMap().
		Add(nil, nil, Instances).
		Add([]interface{}{false}, nil, Instances).
		Add(nil, map[string]interface{}{"bulk": false}, Instances).
		Add([]interface{}{true}, nil, InstancesBulk).
		Add(nil, map[string]interface{}{"bulk": true}, InstancesBulk)
}
