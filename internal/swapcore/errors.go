package swapcore

import (
	"errors"
	"fmt"
)

var (
	ErrEncoding             = errors.New("encoding error")
	ErrTransport            = errors.New("transport error")
	ErrProtocol             = errors.New("protocol error")
	ErrAllowanceCheckFailed = errors.New("allowance check failed")
	ErrSubmissionRejected   = errors.New("submission rejected")
	ErrReceiptTimeout       = errors.New("receipt timeout")
	ErrReceiptReverted      = errors.New("receipt reverted")
)

// RPCError is a well-formed JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// StepError attaches the orchestration step that failed.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

func encodingErr(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, a...))
}

func protocolErr(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, a...))
}
