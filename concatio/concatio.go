// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package concatio presents an ordered list of independent I/O segments
// as one logically contiguous, seekable stream.
//
// Two views share one engine: View is blocking and works with the
// stdlib io interfaces; AsyncView takes a context.Context on every call
// and implements the ioctx interfaces. Both resolve the capabilities of
// each segment once, at construction, and translate every call into
// calls on the segments:
//
//   - sequential "some" calls (Read, WriteSome) touch at most one
//     segment. When the current segment is exhausted they move to the
//     next non-empty one and retry exactly once.
//   - "fully" calls (ReadFull, Write) loop over the "some" calls and
//     fail with errors.OutOfData rather than returning partial results.
//   - positional calls (ReadAt, WriteAt, ReadSomeAt, WriteSomeAt)
//     locate the owning segment by binary search and never move the
//     view's position.
//   - Seek is pure arithmetic; segments are touched only by the next
//     read or write.
//
// Segment sizes are fixed when the view is built. Only the final
// segment may grow, and only if it is a moreio.Appender that reports
// itself appendable.
//
// Views are not safe for concurrent use. The caller must serialize all
// calls to one view, including calls on AsyncView: overlapping
// operations are a caller error and are not detected.
package concatio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/internal/seg"
	"github.com/grailbio/segio/log"
	"github.com/grailbio/segio/moreio"
)

// SizeUnknown as a Segment's Size asks the view to query the resource.
const SizeUnknown int64 = -1

// Segment is one resource of a view. R implements some subset of the
// io/moreio interfaces or their ioctx counterparts.
type Segment struct {
	R interface{}
	// Size is the number of bytes of R that belong to the view. If
	// SizeUnknown, the size is obtained from R when the view is built.
	Size int64
}

// Of returns segments for rs, each to be sized by querying it.
func Of(rs ...interface{}) []Segment {
	segs := make([]Segment, len(rs))
	for i, r := range rs {
		segs[i] = Segment{R: r, Size: SizeUnknown}
	}
	return segs
}

// Options configures a view. The zero value gives the view ownership of
// its segments.
type Options struct {
	// LeaveOpen leaves the segments open when the view is closed or
	// releases them; the caller keeps ownership.
	LeaveOpen bool
	// ReleaseConsumed drops each segment as soon as sequential access
	// moves past it, closing it unless LeaveOpen is set. Released
	// segments can no longer be read or written through the view.
	ReleaseConsumed bool
}

type engine struct {
	segs []*seg.Segment
	loc  locator
	cur  cursor
	// pos is the logical position of sequential operations.
	pos        int64
	opts       Options
	appendable bool
	closed     bool
}

func newEngine(ctx context.Context, segs []Segment, opts Options) (*engine, error) {
	e := &engine{
		segs: make([]*seg.Segment, len(segs)),
		opts: opts,
	}
	sizes := make([]int64, len(segs))
	for i, s := range segs {
		sg, err := seg.Resolve(s.R)
		if err != nil {
			return nil, errors.E(fmt.Sprintf("concatio: segment %d", i), err)
		}
		size := s.Size
		if size == SizeUnknown {
			if size, err = sg.Size(ctx); err != nil {
				return nil, errors.E(fmt.Sprintf("concatio: size of segment %d", i), err)
			}
		}
		if size < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("concatio: segment %d has negative size %d", i, size))
		}
		e.segs[i], sizes[i] = sg, size
	}
	e.loc = newLocator(sizes)
	if n := len(e.segs); n > 0 {
		e.appendable = e.segs[n-1].Appendable()
	}
	e.settle()
	return e, nil
}

func (e *engine) check(ctx context.Context) error {
	if e.closed {
		return errors.E(errors.Closed, "concatio: view closed")
	}
	if err := ctx.Err(); err != nil {
		return errors.E(err)
	}
	return nil
}

func (e *engine) last() int { return len(e.segs) - 1 }

// growTo records that the final segment now extends to local.
func (e *engine) growTo(local int64) {
	last := e.last()
	if local <= e.loc.size(last) {
		return
	}
	e.loc.resize(last, local)
	if e.cur.index != last {
		e.cur.valid = false
	}
}

// short is the error for a segment that ended before its declared size.
func (e *engine) short(i int, local int64) error {
	return errors.E(errors.Integrity,
		fmt.Sprintf("concatio: segment %d ended at offset %d, before its size %d", i, local, e.loc.size(i)),
		io.ErrUnexpectedEOF)
}

func clamp(p []byte, n int64) []byte {
	if int64(len(p)) > n {
		return p[:n]
	}
	return p
}

func (e *engine) readSome(ctx context.Context, p []byte) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	e.settle()
	for retried := false; ; retried = true {
		if i := e.cur.index; i >= 0 {
			if rem := e.loc.size(i) - e.cur.local; rem > 0 {
				n, err := e.segs[i].ReadSome(ctx, clamp(p, rem), e.cur.local)
				if n > 0 {
					e.advance(n)
					return n, err
				}
				if err == io.EOF {
					return 0, e.short(i, e.cur.local)
				}
				if err != nil {
					return 0, err
				}
			}
		}
		if retried {
			return 0, io.EOF
		}
		ok, err := e.goNext(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
	}
}

func (e *engine) readFull(ctx context.Context, p []byte) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	if avail := e.loc.total() - e.pos; int64(len(p)) > avail {
		return moreio.OutOfData(len(p), avail)
	}
	var n int
	for n < len(p) {
		m, err := e.readSome(ctx, p[n:])
		n += m
		if err == io.EOF {
			return moreio.ShortRead(n, len(p))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) skip(ctx context.Context, n int64) (int64, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckSkip(n); err != nil {
		return 0, err
	}
	avail := e.loc.total() - e.pos
	if avail < 0 {
		avail = 0
	}
	if n > avail {
		n = avail
	}
	e.moveTo(e.pos + n)
	return n, nil
}

func (e *engine) readSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	i, local := e.loc.locate(off)
	if i < 0 {
		return 0, io.EOF
	}
	n, err := e.segs[i].ReadSome(ctx, clamp(p, e.loc.size(i)-local), local)
	if n == 0 && err == io.EOF {
		return 0, e.short(i, local)
	}
	return n, err
}

func (e *engine) readAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if avail := e.loc.total() - off; int64(len(p)) > avail {
		return 0, moreio.OutOfData(len(p), avail)
	}
	var n int
	for n < len(p) {
		i, local := e.loc.locate(off + int64(n))
		want := clamp(p[n:], e.loc.size(i)-local)
		m, err := e.segs[i].ReadAt(ctx, want, local)
		n += m
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return n, e.short(i, local+int64(m))
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (e *engine) writeSome(ctx context.Context, p []byte) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	e.settle()
	last := e.last()
	for retried := false; ; retried = true {
		if e.cur.index < 0 && e.appendable {
			// At or past the end: writes extend the final segment.
			start := e.loc.start(last)
			e.cur = cursor{index: last, start: start, local: e.pos - start, valid: true}
		}
		if i := e.cur.index; i >= 0 {
			growable := e.appendable && i == last
			rem := e.loc.size(i) - e.cur.local
			if rem > 0 || growable {
				q := p
				if !growable {
					q = clamp(p, rem)
				}
				n, err := e.segs[i].Write(ctx, q, e.cur.local)
				if n > 0 {
					e.advance(n)
					if growable {
						e.growTo(e.cur.local)
					}
				}
				return n, err
			}
		}
		if retried {
			return 0, moreio.ErrNoSpace
		}
		ok, err := e.goNext(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, moreio.ErrNoSpace
		}
	}
}

func (e *engine) writeFull(ctx context.Context, p []byte) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if avail := e.loc.total() - e.pos; !e.appendable && int64(len(p)) > avail {
		return 0, moreio.OutOfSpace(len(p), avail)
	}
	var n int
	for n < len(p) {
		m, err := e.writeSome(ctx, p[n:])
		n += m
		if err == moreio.ErrNoSpace {
			return n, moreio.ShortWrite(n, len(p))
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// locateWrite is locate for writes: positions at or past the end belong
// to an appendable final segment.
func (e *engine) locateWrite(off int64) (i int, local int64, growable bool) {
	i, local = e.loc.locate(off)
	if i < 0 {
		if !e.appendable {
			return -1, 0, false
		}
		i, local = e.last(), off-e.loc.start(e.last())
	}
	return i, local, e.appendable && i == e.last()
}

func (e *engine) writeSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	i, local, growable := e.locateWrite(off)
	if i < 0 {
		return 0, moreio.ErrNoSpace
	}
	q := p
	if !growable {
		q = clamp(p, e.loc.size(i)-local)
	}
	n, err := e.segs[i].Write(ctx, q, local)
	if growable && n > 0 {
		e.growTo(local + int64(n))
	}
	return n, err
}

func (e *engine) writeAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}
	if err := moreio.CheckOffset(off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if avail := e.loc.total() - off; !e.appendable && int64(len(p)) > avail {
		return 0, moreio.OutOfSpace(len(p), avail)
	}
	var n int
	for n < len(p) {
		i, local, growable := e.locateWrite(off + int64(n))
		q := p[n:]
		if !growable {
			q = clamp(q, e.loc.size(i)-local)
		}
		m, err := e.segs[i].Write(ctx, q, local)
		n += m
		if growable && m > 0 {
			e.growTo(local + int64(m))
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (e *engine) seek(ctx context.Context, off int64, whence int) (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "concatio: view closed")
	}
	target, err := moreio.ResolveSeek(e.pos, e.loc.total(), off, whence, e.appendable)
	if err != nil {
		return 0, err
	}
	e.moveTo(target)
	return target, nil
}

func (e *engine) size() (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "concatio: view closed")
	}
	return e.loc.total(), nil
}

func (e *engine) position() (int64, error) {
	if e.closed {
		return 0, errors.E(errors.Closed, "concatio: view closed")
	}
	return e.pos, nil
}

// truncate resizes the view. Shrinking cuts the segment that owns the
// new end and empties the segments after it; growing extends an
// appendable final segment. Every affected segment must be resizable,
// which is checked before any of them is touched.
func (e *engine) truncate(ctx context.Context, size int64) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	if size < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("concatio: negative size %d", size))
	}
	total := e.loc.total()
	switch {
	case size == total:
		return nil
	case size > total:
		last := e.last()
		if !e.appendable {
			return errors.E(errors.NotSupported, "concatio: view cannot grow")
		}
		n := e.loc.size(last) + size - total
		if err := e.segs[last].Truncate(ctx, n); err != nil {
			return err
		}
		e.loc.resize(last, n)
		e.cur.valid = false
		return nil
	}
	i, local := e.loc.locate(size)
	type cut struct {
		index int
		size  int64
	}
	var cuts []cut
	for j := i; j <= e.last(); j++ {
		n := int64(0)
		if j == i {
			n = local
		}
		if e.loc.size(j) == n {
			continue
		}
		if !e.segs[j].Truncatable() {
			return errors.E(errors.NotSupported, fmt.Sprintf("concatio: segment %d is not resizable", j))
		}
		cuts = append(cuts, cut{j, n})
	}
	defer func() { e.cur.valid = false }()
	for _, c := range cuts {
		if err := e.segs[c.index].Truncate(ctx, c.size); err != nil {
			return err
		}
		e.loc.resize(c.index, c.size)
	}
	return nil
}

func (e *engine) flush(ctx context.Context) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	for _, s := range e.segs {
		if s.Released() {
			continue
		}
		if err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// close closes every owned, unreleased segment once, in order, and then
// marks the view closed. Close errors do not stop later segments from
// being closed; the first is returned with the rest chained to it.
func (e *engine) close(ctx context.Context) (err error) {
	if e.closed {
		return nil
	}
	if !e.opts.LeaveOpen {
		for i, s := range e.segs {
			if s.Released() {
				continue
			}
			log.Debug.Printf("concatio: closing segment %d", i)
			errors.CleanUpCtx(ctx, s.Close, &err)
		}
	}
	e.closed = true
	return err
}
