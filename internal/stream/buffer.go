package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMemoryLimit is the number of bytes a Buffer keeps in memory before
// spilling to a temporary file.
const DefaultMemoryLimit = 2 * 1024 * 1024 // 2 MB

var errNegativePosition = errors.New("negative position")

// Buffer is a growable, seekable read-write sink. It stays in memory until its
// size would exceed the configured limit, then moves its contents to a temporary
// file that is removed on Close.
type Buffer struct {
	limit  int64
	mem    []byte
	pos    int64
	file   *os.File
	closed bool
}

// NewBuffer returns an empty Buffer. A non-positive limit selects DefaultMemoryLimit.
func NewBuffer(limit int64) *Buffer {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Buffer{limit: limit}
}

// Spilled reports whether the buffer has moved to a temporary file.
func (b *Buffer) Spilled() bool {
	return b.file != nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, os.ErrClosed
	}
	if b.file != nil {
		return b.file.Read(p)
	}
	if b.pos >= int64(len(b.mem)) {
		return 0, io.EOF
	}
	n := copy(p, b.mem[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, os.ErrClosed
	}
	if b.file == nil && b.pos+int64(len(p)) > b.limit {
		if err := b.spill(); err != nil {
			return 0, err
		}
	}
	if b.file != nil {
		return b.file.Write(p)
	}

	end := b.pos + int64(len(p))
	if end > int64(len(b.mem)) {
		grown := make([]byte, end, max(end, 2*int64(cap(b.mem))))
		copy(grown, b.mem)
		b.mem = grown
	}
	copy(b.mem[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.closed {
		return 0, os.ErrClosed
	}
	if b.file != nil {
		return b.file.Seek(offset, whence)
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.mem)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errNegativePosition
	}
	b.pos = abs
	return abs, nil
}

// Size returns the number of bytes stored.
func (b *Buffer) Size() int64 {
	if b.file != nil {
		info, err := b.file.Stat()
		if err != nil {
			return 0
		}
		return info.Size()
	}
	return int64(len(b.mem))
}

// Close releases the memory and removes the temporary file, if any.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.mem = nil
	if b.file == nil {
		return nil
	}

	name := b.file.Name()
	err := b.file.Close()
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	b.file = nil
	return err
}

func (b *Buffer) spill() error {
	f, err := os.CreateTemp("", "loom-http-*")
	if err != nil {
		return fmt.Errorf("spill to temp file: %w", err)
	}
	if _, err := f.Write(b.mem); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("spill to temp file: %w", err)
	}
	if _, err := f.Seek(b.pos, io.SeekStart); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("spill to temp file: %w", err)
	}
	b.file = f
	b.mem = nil
	return nil
}
