// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package concatio

import (
	"context"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/log"
)

// cursor is the sequential access state: the current segment, the
// logical offset at which it starts, and the offset within it. At the
// end of the view index is -1 and start is the end position.
//
// The cursor is kept lazily: seeks that leave the current segment only
// invalidate it, and the next sequential operation relocates it.
type cursor struct {
	index int
	start int64
	local int64
	valid bool
}

func (c cursor) pos() int64 { return c.start + c.local }

// settle makes the cursor describe the view's position.
func (e *engine) settle() {
	if e.cur.valid && e.cur.pos() == e.pos {
		return
	}
	i, local := e.loc.locate(e.pos)
	if i < 0 {
		e.cur = cursor{index: -1, start: e.pos, valid: true}
		return
	}
	e.cur = cursor{index: i, start: e.loc.start(i), local: local, valid: true}
}

// advance moves the cursor n bytes within the current segment. It never
// crosses into the next segment, even when the current one is exhausted.
func (e *engine) advance(n int) {
	e.cur.local += int64(n)
	e.pos += int64(n)
}

// moveTo repositions the view, keeping the cursor when the target is
// within the current segment.
func (e *engine) moveTo(target int64) {
	c := e.cur
	if c.valid && c.index >= 0 && target >= c.start && target <= c.start+e.loc.size(c.index) {
		e.cur.local = target - c.start
	} else {
		e.cur.valid = false
	}
	e.pos = target
}

// goNext moves the cursor from the exhausted current segment to the
// next non-empty one and reports whether there is one. The final
// segment is never skipped when it is appendable, since writes may
// still land in it. Consumed segments are released when the view was
// built with ReleaseConsumed.
func (e *engine) goNext(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.E(err)
	}
	i := e.cur.index
	if i < 0 {
		return false, nil
	}
	var err error
	last := len(e.segs) - 1
	// An appendable final segment still takes writes at the end of the
	// view, so only close releases it.
	if i != last || !e.appendable {
		e.release(ctx, i, &err)
	}
	next := i + 1
	for next <= last && e.loc.size(next) == 0 && !(next == last && e.appendable) {
		e.release(ctx, next, &err)
		next++
	}
	if next > last {
		e.cur = cursor{index: -1, start: e.loc.start(i) + e.loc.size(i), valid: true}
		return false, err
	}
	e.cur = cursor{index: next, start: e.loc.start(next), valid: true}
	return true, err
}

func (e *engine) release(ctx context.Context, i int, err *error) {
	if !e.opts.ReleaseConsumed || e.segs[i].Released() {
		return
	}
	log.Debug.Printf("concatio: releasing consumed segment %d", i)
	errors.CleanUpCtx(ctx, func(ctx context.Context) error {
		return e.segs[i].Release(ctx, !e.opts.LeaveOpen)
	}, err)
}
