package ganeti

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

const (
	JobStatusQueued    = "queued"
	JobStatusWaiting   = "waiting"
	JobStatusRunning   = "running"
	JobStatusCanceling = "canceling"
	JobStatusSuccess   = "success"
	JobStatusError     = "error"
	JobStatusCanceled  = "canceled"
)

var knownJobStatus = map[string]bool{
	JobStatusQueued:    true,
	JobStatusWaiting:   true,
	JobStatusRunning:   true,
	JobStatusCanceling: true,
	JobStatusSuccess:   true,
	JobStatusError:     true,
	JobStatusCanceled:  true,
}

func IsTerminalStatus(status string) bool {
	return status == JobStatusSuccess || status == JobStatusError || status == JobStatusCanceled
}

// Timestamp is the RAPI [seconds, microseconds] pair.
type Timestamp struct {
	Sec  int64
	Usec int64
}

func (t Timestamp) Time() time.Time {
	return time.Unix(t.Sec, t.Usec*1000).UTC()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d, %d]", t.Sec, t.Usec)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("timestamp: expected [sec, usec], got %d values", len(pair))
	}
	t.Sec, t.Usec = int64(pair[0]), int64(pair[1])
	return nil
}

// LogEntry is one line of a per-op job log: [serial, [sec, usec], type, message] on the wire.
type LogEntry struct {
	Serial    int64     `json:"serial"`
	Timestamp Timestamp `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
}

func (e LogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Serial, e.Timestamp, e.Type, e.Message})
}

func (e *LogEntry) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	if len(parts) != 4 {
		return fmt.Errorf("log entry: expected 4 fields, got %d", len(parts))
	}
	var serial float64
	if err := json.Unmarshal(parts[0], &serial); err != nil {
		return fmt.Errorf("log entry serial: %w", err)
	}
	e.Serial = int64(serial)
	if err := json.Unmarshal(parts[1], &e.Timestamp); err != nil {
		return fmt.Errorf("log entry timestamp: %w", err)
	}
	if err := json.Unmarshal(parts[2], &e.Type); err != nil {
		return fmt.Errorf("log entry type: %w", err)
	}
	// remote import/export entries carry structured messages
	if err := json.Unmarshal(parts[3], &e.Message); err != nil {
		var buf bytes.Buffer
		if cerr := json.Compact(&buf, parts[3]); cerr != nil {
			return fmt.Errorf("log entry message: %w", err)
		}
		e.Message = buf.String()
	}
	return nil
}

// OpError is the structured failure of an opcode: [error_class, [message, ...]].
type OpError struct {
	Class    string   `json:"class"`
	Messages []string `json:"messages"`
}

func (e *OpError) Error() string {
	if len(e.Messages) == 0 {
		return e.Class
	}
	return e.Class + ": " + e.Messages[0]
}

// JobRecord is a point-in-time snapshot of a Ganeti job. It marshals back into the wire shape,
// so a stored snapshot decodes into an identical record.
type JobRecord struct {
	ID         string                   `json:"id"`
	Status     string                   `json:"status"`
	Ops        []map[string]interface{} `json:"ops"`
	OpStatus   []string                 `json:"opstatus"`
	OpResult   []json.RawMessage        `json:"opresult"`
	OpLog      [][]LogEntry             `json:"oplog"`
	Summary    []string                 `json:"summary"`
	ReceivedTS *Timestamp               `json:"received_ts"`
	StartTS    *Timestamp               `json:"start_ts"`
	EndTS      *Timestamp               `json:"end_ts"`
}

func (j *JobRecord) UnmarshalJSON(b []byte) error {
	type alias JobRecord
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id, err := parseJobID(aux.ID)
	if err != nil {
		return err
	}
	j.ID = id
	return nil
}

// parseJobID accepts ids sent as JSON strings or numbers.
func parseJobID(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("job id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// Validate enforces len(ops) == len(opstatus) == len(opresult) and a known overall status.
func (j *JobRecord) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("%w: job without id", ErrMalformed)
	}
	if !knownJobStatus[j.Status] {
		return fmt.Errorf("%w: job %s: unknown status %q", ErrMalformed, j.ID, j.Status)
	}
	if len(j.Ops) != len(j.OpStatus) || len(j.Ops) != len(j.OpResult) {
		return fmt.Errorf("%w: job %s: %d ops, %d opstatus, %d opresult",
			ErrMalformed, j.ID, len(j.Ops), len(j.OpStatus), len(j.OpResult))
	}
	return nil
}

// IsTerminal is true only when the job and every one of its opcodes have finished.
func (j *JobRecord) IsTerminal() bool {
	if !IsTerminalStatus(j.Status) {
		return false
	}
	for _, s := range j.OpStatus {
		if !IsTerminalStatus(s) {
			return false
		}
	}
	return true
}

// OpError returns the failure of the first opcode that ended in error, or nil.
func (j *JobRecord) OpError() *OpError {
	for i, s := range j.OpStatus {
		if s != JobStatusError || i >= len(j.OpResult) {
			continue
		}
		return parseOpError(j.OpResult[i])
	}
	if j.Status == JobStatusError {
		return &OpError{Class: "OpExecError", Messages: []string{"job failed without an error result"}}
	}
	return nil
}

func parseOpError(raw json.RawMessage) *OpError {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
		return &OpError{Class: "OpExecError", Messages: []string{string(raw)}}
	}
	e := &OpError{Messages: []string{}}
	if err := json.Unmarshal(parts[0], &e.Class); err != nil {
		e.Class = string(parts[0])
	}
	if len(parts) < 2 {
		return e
	}
	var items []interface{}
	if err := json.Unmarshal(parts[1], &items); err != nil {
		var single interface{}
		_ = json.Unmarshal(parts[1], &single)
		items = []interface{}{single}
	}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			e.Messages = append(e.Messages, v)
		case nil:
		default:
			b, _ := json.Marshal(v)
			e.Messages = append(e.Messages, string(b))
		}
	}
	return e
}

// Log flattens the per-op logs into serial order, keeping entries newer than since.
func (j *JobRecord) Log(since int64) []LogEntry {
	entries := make([]LogEntry, 0)
	for _, op := range j.OpLog {
		for _, e := range op {
			if e.Serial > since {
				entries = append(entries, e)
			}
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Serial < entries[b].Serial
	})
	return entries
}

// ParseJob decodes and validates a job snapshot.
func ParseJob(b []byte) (*JobRecord, error) {
	var job JobRecord
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("%w: job: %v", ErrMalformed, err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}
