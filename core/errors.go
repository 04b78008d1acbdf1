package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery       = errors.New("invalid query")
	ErrIndexNotReady      = errors.New("index not ready")
	ErrAuthentication     = errors.New("authentication failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrEmptyGeneration    = errors.New("empty generation")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrInvalidRequest     = errors.New("invalid chat request")
	ErrNodeNotFound       = errors.New("node not found")
	ErrInvalidGraph       = errors.New("invalid pipeline graph")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// ErrMissingCredential is returned by client constructors when a hosted
// provider has no API key. It matches ErrAuthentication under errors.Is.
var ErrMissingCredential = fmt.Errorf("%w: missing API key", ErrAuthentication)

// PipelineError attributes a failure to the stage that raised it.
type PipelineError struct {
	Op   string
	Node string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [node=%s]: %v", e.Op, e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(op, node string, err error) *PipelineError {
	return &PipelineError{Op: op, Node: node, Err: err}
}

// FailedNode reports the node named by the first PipelineError in err's chain.
func FailedNode(err error) (string, bool) {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return "", false
	}
	return pe.Node, true
}
