package ganeti

import (
	"errors"
	"fmt"
)

var (
	// ErrRpcUnavailable covers transport failures, timeouts and 5xx answers. Callers may retry.
	ErrRpcUnavailable = errors.New("ganeti: rapi unavailable")

	// ErrNotFound is returned when the RAPI answers 404 for a node, instance or job.
	ErrNotFound = errors.New("ganeti: not found")

	// ErrMalformed marks a response that could not be decoded or lacks required fields.
	ErrMalformed = errors.New("ganeti: malformed response")

	ErrUnknownOp     = errors.New("ganeti: unknown operation")
	ErrInvalidRecord = errors.New("ganeti: invalid record")
)

// APIError is a 4xx answer other than 404.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Explain    string `json:"explain"`
}

func (e *APIError) Error() string {
	if e.Explain != "" {
		return fmt.Sprintf("ganeti: rapi error (status %d): %s: %s", e.StatusCode, e.Message, e.Explain)
	}
	return fmt.Sprintf("ganeti: rapi error (status %d): %s", e.StatusCode, e.Message)
}
