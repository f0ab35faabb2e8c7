package stream

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by StateError.
var (
	ErrDetached    = errors.New("stream is detached")
	ErrClosed      = errors.New("stream is closed")
	ErrNotReadable = errors.New("stream is not readable")
	ErrNotWritable = errors.New("stream is not writable")
	ErrNotSeekable = errors.New("stream is not seekable")
)

// ErrNilSink is returned by New when no sink is given.
var ErrNilSink = errors.New("stream: nil sink")

// StateError reports an operation that is invalid for the stream's current state
// or capabilities. Err is one of the sentinel causes above.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("stream: %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// IOError reports that the underlying sink rejected a read, write, seek or close.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("stream: %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
