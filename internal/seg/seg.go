// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package seg resolves the capabilities of a resource once, when it is
// wrapped by a view, and exposes them as context-aware operations.
//
// A resource may implement any subset of the stdlib/moreio contracts or
// of their ioctx counterparts, method by method; std methods are adapted
// with the ioctx.FromStd* wrappers. The views then depend only on the
// typed capability fields of a Segment and never inspect the resource
// again.
//
// Every operation checks its context before calling the resource. This
// is the suspension point of the asynchronous views: a canceled context
// stops an operation between resource calls, never during one.
//
// Segments are not safe for concurrent use.
package seg

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/segio/log"
	"github.com/grailbio/segio/moreio"
)

// unknownPos marks a resource whose own cursor position is not known.
const unknownPos = -1

// Segment is a resource with resolved capabilities. Nil fields denote
// missing capabilities.
type Segment struct {
	resource interface{}

	r  ioctx.Reader
	ra ioctx.ReaderAt
	w  ioctx.Writer
	wa ioctx.WriterAt
	s  ioctx.Seeker
	c  ioctx.Closer
	f  ioctx.Flusher
	t  ioctx.Truncater
	z  ioctx.Sizer

	appendable bool

	// pos is the position of the resource's own cursor as last observed
	// through this segment, or unknownPos.
	pos int64
	// shared resources may be moved by other owners between calls, so
	// pos is never trusted across calls.
	shared bool

	released, closed bool
}

// Resolve inspects r and returns its segment. It fails if r is nil or
// offers neither read nor write capabilities.
func Resolve(r interface{}) (*Segment, error) {
	if r == nil {
		return nil, errors.E(errors.Invalid, "nil resource")
	}
	s := &Segment{resource: r}
	switch v := r.(type) {
	case ioctx.Reader:
		s.r = v
	case io.Reader:
		s.r = ioctx.FromStdReader(v)
	}
	switch v := r.(type) {
	case ioctx.ReaderAt:
		s.ra = v
	case io.ReaderAt:
		s.ra = ioctx.FromStdReaderAt(v)
	}
	switch v := r.(type) {
	case ioctx.Writer:
		s.w = v
	case io.Writer:
		s.w = ioctx.FromStdWriter(v)
	}
	switch v := r.(type) {
	case ioctx.WriterAt:
		s.wa = v
	case io.WriterAt:
		s.wa = ioctx.FromStdWriterAt(v)
	}
	switch v := r.(type) {
	case ioctx.Seeker:
		s.s = v
	case io.Seeker:
		s.s = ioctx.FromStdSeeker(v)
	}
	switch v := r.(type) {
	case ioctx.Closer:
		s.c = v
	case io.Closer:
		s.c = ioctx.FromStdCloser(v)
	}
	switch v := r.(type) {
	case ioctx.Flusher:
		s.f = v
	case moreio.Flusher:
		s.f = ioctx.FromStdFlusher(v)
	}
	switch v := r.(type) {
	case ioctx.Truncater:
		s.t = v
	case moreio.Truncater:
		s.t = ioctx.FromStdTruncater(v)
	}
	switch v := r.(type) {
	case ioctx.Sizer:
		s.z = v
	case moreio.Sizer:
		s.z = ioctx.FromStdSizer(v)
	}
	if !s.Readable() && !s.Writable() {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("resource %T is neither readable nor writable", r))
	}
	if a, ok := r.(moreio.Appender); ok {
		s.appendable = a.Appendable() && s.Writable()
	}
	// A resource that cannot seek is a stream, consumed from its start.
	// One that can seek may have been moved by its previous owner.
	if s.s == nil {
		s.pos = 0
	} else {
		s.pos = unknownPos
	}
	return s, nil
}

// ResolveShared is Resolve for a resource that other owners may use
// between calls on the segment, such as the resource under several sub
// views. Sequential methods of a shared resource are always preceded by
// a seek.
func ResolveShared(r interface{}) (*Segment, error) {
	s, err := Resolve(r)
	if err != nil {
		return nil, err
	}
	s.shared = true
	return s, nil
}

// Resource returns the wrapped resource.
func (s *Segment) Resource() interface{} { return s.resource }

// Readable tells whether the segment can be read sequentially or at an
// offset.
func (s *Segment) Readable() bool { return s.r != nil || s.ra != nil }

// Writable tells whether the segment can be written.
func (s *Segment) Writable() bool { return s.w != nil || s.wa != nil }

// Appendable tells whether the segment accepts writes past its end.
func (s *Segment) Appendable() bool { return s.appendable }

// Truncatable tells whether the segment can be resized.
func (s *Segment) Truncatable() bool { return s.t != nil }

// Sizable tells whether the segment can report its size.
func (s *Segment) Sizable() bool { return s.z != nil || s.s != nil }

// Released tells whether the segment has been released or closed.
func (s *Segment) Released() bool { return s.released || s.closed }

func (s *Segment) live(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.E(err)
	}
	if s.closed {
		return errors.E(errors.Closed, "segment closed")
	}
	if s.released {
		return errors.E(errors.Closed, "segment released")
	}
	return nil
}

// Size returns the resource's size, from its Size method or, failing
// that, by seeking to its end.
func (s *Segment) Size(ctx context.Context) (int64, error) {
	if err := s.live(ctx); err != nil {
		return 0, err
	}
	if s.z != nil {
		return s.z.Size(ctx)
	}
	if s.s == nil {
		return 0, errors.E(errors.NotSupported, fmt.Sprintf("size of %T", s.resource))
	}
	n, err := s.s.Seek(ctx, 0, io.SeekEnd)
	if err != nil {
		s.pos = unknownPos
		return 0, err
	}
	s.pos = n
	return n, nil
}

// forget drops the cached cursor position of a shared, seekable
// resource.
func (s *Segment) forget() {
	if s.shared && s.s != nil {
		s.pos = unknownPos
	}
}

// seekTo moves the resource's own cursor to off.
func (s *Segment) seekTo(ctx context.Context, off int64) error {
	if s.pos == off {
		return nil
	}
	if s.s == nil {
		return errors.E(errors.NotSupported,
			fmt.Sprintf("%T cannot move from offset %d to %d", s.resource, s.pos, off))
	}
	n, err := s.s.Seek(ctx, off, io.SeekStart)
	if err != nil {
		s.pos = unknownPos
		return err
	}
	s.pos = n
	return nil
}

// ReadSome performs one read of up to len(p) bytes at offset off. It
// returns (0, io.EOF) when the resource has no data at off.
func (s *Segment) ReadSome(ctx context.Context, p []byte, off int64) (int, error) {
	if err := s.live(ctx); err != nil {
		return 0, err
	}
	s.forget()
	switch {
	case s.r != nil && s.pos == off:
		// Streams read in place.
	case s.ra != nil:
		n, err := s.ra.ReadAt(ctx, p, off)
		if n > 0 && err == io.EOF {
			err = nil
		}
		if n == 0 && err == nil && len(p) > 0 {
			err = io.ErrNoProgress
		}
		return n, err
	case s.r != nil:
		if err := s.seekTo(ctx, off); err != nil {
			return 0, err
		}
	default:
		return 0, errors.E(errors.NotSupported, fmt.Sprintf("%T is not readable", s.resource))
	}
	n, err := s.r.Read(ctx, p)
	s.pos += int64(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	if n == 0 && err == nil {
		err = io.ErrNoProgress
	}
	return n, err
}

// ReadAt reads exactly len(p) bytes at offset off, or returns the count
// read and the error that stopped it (io.EOF when the resource ended).
func (s *Segment) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := s.live(ctx); err != nil {
		return 0, err
	}
	s.forget()
	if s.ra != nil && (s.r == nil || s.pos != off) {
		n, err := s.ra.ReadAt(ctx, p, off)
		if n == len(p) {
			err = nil
		} else if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	var n int
	for n < len(p) {
		m, err := s.ReadSome(ctx, p[n:], off+int64(n))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Write writes all of p at offset off.
func (s *Segment) Write(ctx context.Context, p []byte, off int64) (int, error) {
	if err := s.live(ctx); err != nil {
		return 0, err
	}
	s.forget()
	switch {
	case s.w != nil && s.pos == off:
	case s.wa != nil:
		n, err := s.wa.WriteAt(ctx, p, off)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		return n, err
	case s.w != nil:
		if err := s.seekTo(ctx, off); err != nil {
			return 0, err
		}
	default:
		return 0, errors.E(errors.NotSupported, fmt.Sprintf("%T is not writable", s.resource))
	}
	n, err := s.w.Write(ctx, p)
	s.pos += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Truncate resizes the resource.
func (s *Segment) Truncate(ctx context.Context, size int64) error {
	if err := s.live(ctx); err != nil {
		return err
	}
	if s.t == nil {
		return errors.E(errors.NotSupported, fmt.Sprintf("%T is not resizable", s.resource))
	}
	return s.t.Truncate(ctx, size)
}

// Flush flushes the resource if it buffers output.
func (s *Segment) Flush(ctx context.Context) error {
	if err := s.live(ctx); err != nil {
		return err
	}
	if s.f == nil {
		return nil
	}
	return s.f.Flush(ctx)
}

// Close closes the resource. Only the first call reaches the resource.
func (s *Segment) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.c == nil {
		return nil
	}
	return s.c.Close(ctx)
}

// Release drops the segment once it has been consumed; later operations
// fail with errors.Closed. If close is true the resource is also closed.
func (s *Segment) Release(ctx context.Context, close bool) error {
	if s.Released() {
		return nil
	}
	s.released = true
	if !close {
		return nil
	}
	log.Debug.Printf("seg: closing released %T", s.resource)
	s.closed = true
	if s.c == nil {
		return nil
	}
	return s.c.Close(ctx)
}
