package ganetitest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
)

// SubmittedJob records one SubmitJob call.
type SubmittedJob struct {
	ID     string
	Op     string
	Params map[string]interface{}
}

// FakeClient is an in-memory ganeti.Client serving canned documents through the real decoders.
type FakeClient struct {
	Nodes            *ResponseMap
	Instances        *ResponseMap
	NodeDocs         map[string]string
	InstanceDocs     map[string]string
	Info             string
	OperatingSystems []string

	// Err, when set, is returned by every call (e.g. ganeti.ErrRpcUnavailable).
	Err error
	// SubmitErr is returned by SubmitJob only.
	SubmitErr error
	// OnSubmit runs before a job id is allocated and can veto the submission.
	OnSubmit func(op string, params map[string]interface{}) error

	mu        sync.Mutex
	nextID    int
	jobs      map[string][]string
	submitted []SubmittedJob
	polls     map[string]int
}

var _ ganeti.Client = (*FakeClient)(nil)

// NewFakeClient serves the KVM test cluster fixtures.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Nodes:     NodesMap(),
		Instances: InstancesMap(),
		NodeDocs: map[string]string{
			"gtest1.example.bak": Node,
		},
		InstanceDocs: map[string]string{
			"gimager.example.bak": Instance,
			"hvm.example":         XenHVMInstance,
			"pvm.example":         XenPVMInstance,
		},
		Info:             Info,
		OperatingSystems: []string{"image+debian-osgeo", "image+ubuntu-lucid"},
		nextID:           1,
		jobs:             map[string][]string{},
		polls:            map[string]int{},
	}
}

// QueueJob scripts the snapshots PollJob returns for id, in order. The last one repeats.
func (f *FakeClient) QueueJob(id string, snapshots ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id] = append(f.jobs[id], snapshots...)
}

func (f *FakeClient) Submitted() []SubmittedJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SubmittedJob, len(f.submitted))
	copy(out, f.submitted)
	return out
}

func (f *FakeClient) Polls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[id]
}

func (f *FakeClient) ListNodes(ctx context.Context, bulk bool) (*ganeti.NodeList, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, err := f.Nodes.Lookup([]interface{}{bulk}, nil)
	if err != nil {
		return nil, err
	}
	return ganeti.ParseNodeList([]byte(doc.(string)), bulk)
}

func (f *FakeClient) GetNode(ctx context.Context, name string) (*ganeti.NodeRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := f.NodeDocs[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %s", ganeti.ErrNotFound, name)
	}
	return ganeti.ParseNode([]byte(doc))
}

func (f *FakeClient) ListInstances(ctx context.Context, bulk bool) (*ganeti.InstanceList, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, err := f.Instances.Lookup([]interface{}{bulk}, nil)
	if err != nil {
		return nil, err
	}
	return ganeti.ParseInstanceList([]byte(doc.(string)), bulk)
}

func (f *FakeClient) GetInstance(ctx context.Context, name string) (*ganeti.InstanceRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := f.InstanceDocs[name]
	if !ok {
		return nil, fmt.Errorf("%w: instance %s", ganeti.ErrNotFound, name)
	}
	return ganeti.ParseInstance([]byte(doc))
}

func (f *FakeClient) GetInfo(ctx context.Context) (*ganeti.ClusterInfo, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return ganeti.ParseClusterInfo([]byte(f.Info))
}

func (f *FakeClient) ListOperatingSystems(ctx context.Context) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string{}, f.OperatingSystems...), nil
}

func (f *FakeClient) SubmitJob(ctx context.Context, op string, params map[string]interface{}) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	if f.OnSubmit != nil {
		if err := f.OnSubmit(op, params); err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strconv.Itoa(f.nextID)
	f.nextID++
	f.submitted = append(f.submitted, SubmittedJob{ID: id, Op: op, Params: params})
	return id, nil
}

func (f *FakeClient) PollJob(ctx context.Context, id string) (*ganeti.JobRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	queue, ok := f.jobs[id]
	if !ok || len(queue) == 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: job %s", ganeti.ErrNotFound, id)
	}
	doc := queue[0]
	if len(queue) > 1 {
		f.jobs[id] = queue[1:]
	}
	f.polls[id]++
	f.mu.Unlock()
	return ganeti.ParseJob([]byte(doc))
}

// JobDoc renders a single-opcode job snapshot. Terminal error snapshots carry an OpExecError.
func JobDoc(id, op string, params map[string]interface{}, status, summary string) string {
	opcode := map[string]interface{}{"OP_ID": op}
	for k, v := range params {
		opcode[k] = v
	}
	var result interface{}
	if status == ganeti.JobStatusError {
		result = []interface{}{"OpExecError", []string{summary + " failed"}}
	}
	doc := map[string]interface{}{
		"id":          id,
		"status":      status,
		"ops":         []interface{}{opcode},
		"opstatus":    []string{status},
		"opresult":    []interface{}{result},
		"oplog":       [][]interface{}{{}},
		"summary":     []string{summary},
		"received_ts": []int64{1291845002, 555722},
		"start_ts":    nil,
		"end_ts":      nil,
	}
	if status != ganeti.JobStatusQueued && status != ganeti.JobStatusWaiting {
		doc["start_ts"] = []int64{1291845002, 595336}
	}
	if ganeti.IsTerminalStatus(status) {
		doc["end_ts"] = []int64{1291845036, 492131}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(b)
}
