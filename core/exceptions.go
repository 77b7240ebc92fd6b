package core

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrUnknownKind    = errors.New("unknown entity kind")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoStorage      = errors.New("storage not configured")
)

// StackTracer is implemented by errors that carry their own stack trace
type StackTracer interface {
	StackTrace() string
}

// PanicError wraps a recovered panic value with the stack captured at recovery
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StackTrace returns the captured goroutine frames
func (e *PanicError) StackTrace() string {
	return e.Stack
}

// NewPanicError builds a PanicError, skipping skip frames of the caller's stack
func NewPanicError(value any, skip int) *PanicError {
	return &PanicError{Value: value, Stack: captureStack(skip + 1)}
}

// captureStack renders up to maxDepth caller frames, one per line
func captureStack(skip int) string {
	const maxDepth = 16
	var stack string

	for i := skip; i < skip+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		funcName := "unknown"
		if fn != nil {
			funcName = fn.Name()
		}

		stack += fmt.Sprintf("%s:%d %s\n", file, line, funcName)
	}

	return stack
}
