// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package memio provides an in-memory resource that implements every
// segment capability. It backs tests and small composite views.
package memio

import (
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/moreio"
)

// Buffer is a seekable in-memory byte store. A fixed Buffer never grows
// through writes (though it may be truncated); a growable Buffer extends
// itself to fit writes past its end, zero-filling any gap.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data     []byte
	pos      int64
	growable bool
	closed   bool
	// Closes counts calls to Close.
	Closes int
}

// New returns a fixed-size Buffer over data. The Buffer takes ownership
// of data.
func New(data []byte) *Buffer { return &Buffer{data: data} }

// NewGrowable returns an appendable Buffer whose initial contents are
// data.
func NewGrowable(data []byte) *Buffer { return &Buffer{data: data, growable: true} }

func (b *Buffer) live() error {
	if b.closed {
		return errors.E(errors.Closed, "memio: buffer closed")
	}
	return nil
}

// Bytes returns the buffer's contents. It remains valid after Close.
func (b *Buffer) Bytes() []byte { return b.data }

// Closed tells whether Close was called.
func (b *Buffer) Closed() bool { return b.closed }

// Appendable implements moreio.Appender.
func (b *Buffer) Appendable() bool { return b.growable }

func (b *Buffer) Read(p []byte) (int, error) {
	n, err := b.ReadSomeAt(p, b.pos)
	b.pos += int64(n)
	return n, err
}

// ReadSomeAt copies up to len(p) bytes at off, returning (0, io.EOF) at
// or past the end.
func (b *Buffer) ReadSomeAt(p []byte, off int64) (int, error) {
	if err := b.live(); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	return copy(p, b.data[off:]), nil
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	n, err := b.ReadSomeAt(p, off)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (b *Buffer) Write(p []byte) (int, error) {
	n, err := b.WriteAt(p, b.pos)
	b.pos += int64(n)
	return n, err
}

func (b *Buffer) WriteSome(p []byte) (int, error) {
	n, err := b.WriteSomeAt(p, b.pos)
	b.pos += int64(n)
	return n, err
}

// WriteAt implements io.WriterAt. A fixed buffer stores what fits and
// returns moreio.ErrNoSpace for the rest.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	n, err := b.WriteSomeAt(p, off)
	if err == nil && n < len(p) {
		err = moreio.ErrNoSpace
	}
	return n, err
}

// WriteSomeAt stores up to len(p) bytes at off. It returns (0,
// moreio.ErrNoSpace) when a fixed buffer has no room at off.
func (b *Buffer) WriteSomeAt(p []byte, off int64) (int, error) {
	if err := b.live(); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if end := off + int64(len(p)); b.growable && end > int64(len(b.data)) {
		b.resize(end)
	}
	if off >= int64(len(b.data)) {
		return 0, moreio.ErrNoSpace
	}
	return copy(b.data[off:], p), nil
}

func (b *Buffer) Seek(off int64, whence int) (int64, error) {
	if err := b.live(); err != nil {
		return 0, err
	}
	target, err := moreio.ResolveSeek(b.pos, int64(len(b.data)), off, whence, b.growable)
	if err != nil {
		return 0, err
	}
	b.pos = target
	return target, nil
}

func (b *Buffer) Size() (int64, error) {
	if err := b.live(); err != nil {
		return 0, err
	}
	return int64(len(b.data)), nil
}

// Truncate resizes the buffer, zero-filling when it grows. The position
// is left alone.
func (b *Buffer) Truncate(size int64) error {
	if err := b.live(); err != nil {
		return err
	}
	if size < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("memio: negative size %d", size))
	}
	b.resize(size)
	return nil
}

func (b *Buffer) resize(size int64) {
	if size <= int64(len(b.data)) {
		b.data = b.data[:size]
		return
	}
	if size <= int64(cap(b.data)) {
		old := len(b.data)
		b.data = b.data[:size]
		for i := old; i < len(b.data); i++ {
			b.data[i] = 0
		}
		return
	}
	data := make([]byte, size, 2*size)
	copy(data, b.data)
	b.data = data
}

// Flush is a no-op.
func (b *Buffer) Flush() error { return b.live() }

// Close marks the buffer closed. Later operations, except Bytes, fail
// with errors.Closed; further calls to Close are counted and ignored.
func (b *Buffer) Close() error {
	b.Closes++
	b.closed = true
	return nil
}
