// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package sectionio exposes a fixed byte range [start, end) of a resource
// as a resource of its own, with positions relative to start.
//
// Every operation is delegated to the underlying resource at start plus
// the local position and is clamped to the range, so a sub view never
// observes or modifies bytes outside it. Reads and writes at the end of
// the range report exhaustion (io.EOF, moreio.ErrNoSpace) the way a
// resource of size end-start would. Sub views never grow.
//
// By default the caller keeps ownership of the resource, so several sub
// views may share one resource over disjoint ranges. As with concatio,
// a sub view is not safe for concurrent use.
package sectionio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/internal/seg"
	"github.com/grailbio/segio/moreio"
)

// Options configures a sub view.
type Options struct {
	// CloseUnderlying makes Close close the resource.
	CloseUnderlying bool
}

type engine struct {
	seg        *seg.Segment
	start, end int64
	pos        int64
	opts       Options
	closed     bool
}

func newEngine(ctx context.Context, r interface{}, start, end int64, opts Options) (*engine, error) {
	if start < 0 || end < start {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("sectionio: invalid range [%d, %d)", start, end))
	}
	// A view that does not close the resource does not own it; other
	// views may move its cursor.
	resolve := seg.ResolveShared
	if opts.CloseUnderlying {
		resolve = seg.Resolve
	}
	s, err := resolve(r)
	if err != nil {
		return nil, errors.E("sectionio", err)
	}
	if s.Sizable() {
		size, err := s.Size(ctx)
		if err != nil {
			return nil, errors.E("sectionio: size", err)
		}
		if end > size {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("sectionio: range [%d, %d) exceeds resource size %d", start, end, size))
		}
	}
	return &engine{seg: s, start: start, end: end, opts: opts}, nil
}

func (e *engine) len() int64 { return e.end - e.start }

func (e *engine) check(ctx context.Context) error {
	if e.closed {
		return errors.E(errors.Closed, "sectionio: view closed")
	}
	if err := ctx.Err(); err != nil {
		return errors.E(err)
	}
	return nil
}

func (e *engine) short(local int64) error {
	return errors.E(errors.Integrity,
		fmt.Sprintf("sectionio: resource ended at offset %d, inside range [%d, %d)", e.start+local, e.start, e.end),
		io.ErrUnexpectedEOF)
}

// span clamps p to the bytes between local offset off and the end.
func (e *engine) span(p []byte, off int64) []byte {
	if rem := e.len() - off; int64(len(p)) > rem {
		return p[:rem]
	}
	return p
}

func (e *engine) readSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= e.len() {
		return 0, io.EOF
	}
	n, err := e.seg.ReadSome(ctx, e.span(p, off), e.start+off)
	if n == 0 && err == io.EOF {
		return 0, e.short(off)
	}
	return n, err
}

func (e *engine) readAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if avail := e.len() - off; int64(len(p)) > avail {
		return 0, moreio.OutOfData(len(p), avail)
	}
	n, err := e.seg.ReadAt(ctx, p, e.start+off)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = e.short(off + int64(n))
	}
	return n, err
}

func (e *engine) writeSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= e.len() {
		return 0, moreio.ErrNoSpace
	}
	return e.seg.Write(ctx, e.span(p, off), e.start+off)
}

func (e *engine) writeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if avail := e.len() - off; int64(len(p)) > avail {
		return 0, moreio.OutOfSpace(len(p), avail)
	}
	return e.seg.Write(ctx, p, e.start+off)
}

// positional wraps a positional operation with the checks shared by all
// of them.
func (e *engine) positional(ctx context.Context, op func(context.Context, []byte, int64) (int, error), p []byte, off int64) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	return op(ctx, p, off)
}

// sequential is positional at the current position, which it advances
// by the bytes transferred.
func (e *engine) sequential(ctx context.Context, op func(context.Context, []byte, int64) (int, error), p []byte) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	n, err := op(ctx, p, e.pos)
	e.pos += int64(n)
	return n, err
}

func (e *engine) readFull(ctx context.Context, p []byte) error {
	_, err := e.sequential(ctx, e.readAt, p)
	return err
}

func (e *engine) seek(off int64, whence int) (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "sectionio: view closed")
	}
	target, err := moreio.ResolveSeek(e.pos, e.len(), off, whence, false)
	if err != nil {
		return 0, err
	}
	e.pos = target
	return target, nil
}

func (e *engine) skip(ctx context.Context, n int64) (int64, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckSkip(n); err != nil {
		return 0, err
	}
	if rem := e.len() - e.pos; n > rem {
		n = rem
	}
	e.pos += n
	return n, nil
}

func (e *engine) size() (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "sectionio: view closed")
	}
	return e.len(), nil
}

func (e *engine) position() (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "sectionio: view closed")
	}
	return e.pos, nil
}

func (e *engine) flush(ctx context.Context) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	return e.seg.Flush(ctx)
}

func (e *engine) close(ctx context.Context) error {
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.opts.CloseUnderlying {
		return nil
	}
	return e.seg.Close(ctx)
}
