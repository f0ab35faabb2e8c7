// Package stream provides the seekable byte stream used for message bodies.
//
// A Stream wraps a sink and moves through three states: Open, Detached and
// Closed. Every operation checks the state and the capability it needs and
// fails with a *StateError when either is missing; sink failures surface as
// *IOError.
package stream

import (
	"fmt"
	"io"
	"io/fs"
)

// Mode describes how a sink was opened.
type Mode uint8

const (
	ModeRead Mode = 1 << iota
	ModeWrite

	ModeReadWrite = ModeRead | ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeReadWrite:
		return "r+"
	default:
		return ""
	}
}

// State is the lifecycle state of a Stream.
type State uint8

const (
	Open State = iota
	Detached
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Detached:
		return "detached"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Metadata describes a stream and its sink.
type Metadata struct {
	Mode     string
	State    State
	Readable bool
	Writable bool
	Seekable bool
	SinkType string
}

// Stream is a position-addressable byte stream over a sink. A Stream has a
// single owner and is not safe for concurrent use.
type Stream struct {
	state State
	mode  Mode
	sink  io.Closer

	r  io.Reader
	w  io.Writer
	sk io.Seeker

	pos int64
	eof bool
}

// New wraps sink. Readable and writable capabilities are the intersection of
// mode and the io.Reader/io.Writer interfaces the sink implements; the stream is
// seekable when the sink is an io.Seeker, in which case it is rewound.
func New(sink io.Closer, mode Mode) (*Stream, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	s := &Stream{state: Open, mode: mode, sink: sink}
	if r, ok := sink.(io.Reader); ok && mode&ModeRead != 0 {
		s.r = r
	}
	if w, ok := sink.(io.Writer); ok && mode&ModeWrite != 0 {
		s.w = w
	}
	if sk, ok := sink.(io.Seeker); ok {
		s.sk = sk
		if err := s.Rewind(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewTemp returns an empty read-write stream backed by a Buffer with the
// default memory limit.
func NewTemp() *Stream {
	return NewTempLimit(DefaultMemoryLimit)
}

// NewTempLimit is NewTemp with an explicit in-memory limit.
func NewTempLimit(limit int64) *Stream {
	// A fresh Buffer always accepts a seek to zero, so New cannot fail here.
	s, _ := New(NewBuffer(limit), ModeReadWrite)
	return s
}

// FromBytes returns a temp stream holding p, positioned at the start.
func FromBytes(p []byte) (*Stream, error) {
	return FromBytesLimit(p, DefaultMemoryLimit)
}

// FromBytesLimit is FromBytes with an explicit in-memory limit.
func FromBytesLimit(p []byte, limit int64) (*Stream, error) {
	s := NewTempLimit(limit)
	if _, err := s.Write(p); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.Rewind(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// FromString returns a temp stream holding str, positioned at the start.
func FromString(str string) (*Stream, error) {
	return FromBytes([]byte(str))
}

// State returns the current lifecycle state.
func (s *Stream) State() State { return s.state }

// IsReadable reports whether Read and Contents may be used.
func (s *Stream) IsReadable() bool { return s.state == Open && s.r != nil }

// IsWritable reports whether Write may be used.
func (s *Stream) IsWritable() bool { return s.state == Open && s.w != nil }

// IsSeekable reports whether Seek and Rewind may be used.
func (s *Stream) IsSeekable() bool { return s.state == Open && s.sk != nil }

// Read reads up to n bytes from the current position. A short or empty result
// marks the stream as being at EOF; it is not an error.
func (s *Stream) Read(n int) ([]byte, error) {
	if err := s.require("read", ModeRead); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	got, err := io.ReadFull(s.r, buf)
	s.pos += int64(got)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		s.eof = true
	default:
		return nil, &IOError{Op: "read", Err: err}
	}
	return buf[:got], nil
}

// Write writes p at the current position and returns the number of bytes written.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.require("write", ModeWrite); err != nil {
		return 0, err
	}

	n, err := s.w.Write(p)
	s.pos += int64(n)
	s.eof = false
	if err != nil {
		return n, &IOError{Op: "write", Err: err}
	}
	return n, nil
}

// Seek moves the cursor. whence is one of io.SeekStart, io.SeekCurrent, io.SeekEnd.
func (s *Stream) Seek(offset int64, whence int) error {
	if err := s.requireOpen("seek"); err != nil {
		return err
	}
	if s.sk == nil {
		return &StateError{Op: "seek", Err: ErrNotSeekable}
	}

	abs, err := s.sk.Seek(offset, whence)
	if err != nil {
		return &IOError{Op: fmt.Sprintf("seek to %d", offset), Err: err}
	}
	s.pos = abs
	s.eof = false
	return nil
}

// Rewind seeks to the start of the stream.
func (s *Stream) Rewind() error {
	return s.Seek(0, io.SeekStart)
}

// Tell returns the cursor position.
func (s *Stream) Tell() (int64, error) {
	if err := s.requireOpen("tell"); err != nil {
		return 0, err
	}
	return s.pos, nil
}

// EOF reports whether the last read reached the end of the data.
func (s *Stream) EOF() (bool, error) {
	if err := s.requireOpen("eof"); err != nil {
		return false, err
	}
	return s.eof, nil
}

type sizer interface {
	Size() int64
}

type stater interface {
	Stat() (fs.FileInfo, error)
}

// Size returns the total size of the sink in bytes.
func (s *Stream) Size() (int64, error) {
	if err := s.requireOpen("size"); err != nil {
		return 0, err
	}

	switch sink := s.sink.(type) {
	case sizer:
		return sink.Size(), nil
	case stater:
		info, err := sink.Stat()
		if err != nil {
			return 0, &IOError{Op: "stat", Err: err}
		}
		return info.Size(), nil
	}

	if s.sk == nil {
		return 0, &StateError{Op: "size", Err: ErrNotSeekable}
	}
	end, err := s.sk.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, &IOError{Op: "size", Err: err}
	}
	if _, err := s.sk.Seek(s.pos, io.SeekStart); err != nil {
		return 0, &IOError{Op: "size", Err: err}
	}
	return end, nil
}

// Contents reads everything from the cursor to the end and then rewinds,
// whatever the starting position was.
func (s *Stream) Contents() ([]byte, error) {
	if err := s.require("contents", ModeRead); err != nil {
		return nil, err
	}
	if s.sk == nil {
		return nil, &StateError{Op: "contents", Err: ErrNotSeekable}
	}

	data, err := io.ReadAll(s.r)
	s.pos += int64(len(data))
	if err != nil {
		return nil, &IOError{Op: "contents", Err: err}
	}
	if err := s.Rewind(); err != nil {
		return nil, err
	}
	return data, nil
}

// String returns Contents as a string, or "" when the stream cannot be read.
func (s *Stream) String() string {
	data, err := s.Contents()
	if err != nil {
		return ""
	}
	return string(data)
}

// Close releases the sink. Closing a detached or already closed stream does nothing.
func (s *Stream) Close() error {
	if s.state != Open {
		return nil
	}

	sink := s.sink
	s.release(Closed)
	if err := sink.Close(); err != nil {
		return &IOError{Op: "close", Err: err}
	}
	return nil
}

// Detach hands the sink to the caller and leaves the stream unusable. It returns
// nil when the stream is no longer open.
func (s *Stream) Detach() io.Closer {
	if s.state != Open {
		return nil
	}

	sink := s.sink
	s.release(Detached)
	return sink
}

// Metadata describes the stream. Capabilities read false once the stream is
// detached or closed.
func (s *Stream) Metadata() Metadata {
	md := Metadata{
		Mode:     s.mode.String(),
		State:    s.state,
		Readable: s.IsReadable(),
		Writable: s.IsWritable(),
		Seekable: s.IsSeekable(),
	}
	if s.sink != nil {
		md.SinkType = fmt.Sprintf("%T", s.sink)
	}
	return md
}

func (s *Stream) release(to State) {
	s.state = to
	s.sink = nil
	s.r, s.w, s.sk = nil, nil, nil
}

func (s *Stream) requireOpen(op string) error {
	switch s.state {
	case Detached:
		return &StateError{Op: op, Err: ErrDetached}
	case Closed:
		return &StateError{Op: op, Err: ErrClosed}
	}
	return nil
}

func (s *Stream) require(op string, capability Mode) error {
	if err := s.requireOpen(op); err != nil {
		return err
	}
	if capability&ModeRead != 0 && s.r == nil {
		return &StateError{Op: op, Err: ErrNotReadable}
	}
	if capability&ModeWrite != 0 && s.w == nil {
		return &StateError{Op: op, Err: ErrNotWritable}
	}
	return nil
}
