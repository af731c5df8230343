// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package moreio defines the blocking capability contracts that the
// segmented views program against, on top of the standard io
// interfaces, plus the "fully" operations derived from the "some"
// primitives.
//
// The contracts follow the io conventions:
//
//   - io.Reader is read-some: it returns n > 0, or (0, io.EOF) once
//     no data remains.
//   - SomeWriter is write-some: it returns n > 0, or (0, ErrNoSpace)
//     once the stream cannot grow.
//   - io.Writer, io.ReaderAt and io.WriterAt are "fully": they
//     transfer everything requested or return an error.
//
// A resource implements whichever subset it supports; combinators
// resolve the subset once, when they are constructed.
package moreio

import (
	"io"

	"github.com/grailbio/segio/errors"
)

// ErrNoSpace is the write-some sentinel. It is returned with n == 0 by
// WriteSome-style operations when the stream is full and cannot grow,
// in the way io.EOF is returned by Read once data is exhausted.
var ErrNoSpace = errors.New("no space left in stream")

// Sizer reports the size of a resource in bytes.
type Sizer interface {
	Size() (int64, error)
}

// Truncater changes the size of a resource, shrinking it or extending
// it with zeros.
type Truncater interface {
	Truncate(size int64) error
}

// Flusher forces buffered output to the underlying storage. It is a
// no-op for resources without buffering.
type Flusher interface {
	Flush() error
}

// Appender marks resources that accept writes past their current end,
// growing to fit. Appendable may depend on how the resource was
// opened (e.g., a read-only file is never appendable).
type Appender interface {
	Appendable() bool
}

// SomeWriter writes at least one byte when any space is available,
// never more than len(p), and returns (0, ErrNoSpace) when the stream
// is full.
type SomeWriter interface {
	WriteSome(p []byte) (n int, err error)
}

// SomeReaderAt is the positional read-some: it reads at least one byte
// at off if any is available, and returns (0, io.EOF) otherwise. It
// does not move any implicit cursor.
type SomeReaderAt interface {
	ReadSomeAt(p []byte, off int64) (n int, err error)
}

// SomeWriterAt is the positional write-some.
type SomeWriterAt interface {
	WriteSomeAt(p []byte, off int64) (n int, err error)
}

// FullReader reads exactly len(p) bytes or fails with an error of kind
// errors.OutOfData.
type FullReader interface {
	ReadFull(p []byte) error
}

// Skipper advances a stream by up to n bytes without returning them.
type Skipper interface {
	Skip(n int64) (int64, error)
}

// ReadWriteSeekCloser groups the capabilities of a fully featured
// resource.
type ReadWriteSeekCloser interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}
