// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package sectionio

import (
	"context"
	"io"

	"github.com/grailbio/segio/moreio"
)

// View is the blocking sub view.
type View struct{ e *engine }

var (
	_ moreio.ReadWriteSeekCloser = (*View)(nil)
	_ io.ReaderAt                = (*View)(nil)
	_ io.WriterAt                = (*View)(nil)
	_ moreio.SomeWriter          = (*View)(nil)
	_ moreio.SomeReaderAt        = (*View)(nil)
	_ moreio.SomeWriterAt        = (*View)(nil)
	_ moreio.FullReader          = (*View)(nil)
	_ moreio.Skipper             = (*View)(nil)
	_ moreio.Sizer               = (*View)(nil)
	_ moreio.Flusher             = (*View)(nil)
)

// New returns a view of bytes [start, end) of r. If r can report its
// size, the range must lie within it.
func New(r interface{}, start, end int64, opts Options) (*View, error) {
	e, err := newEngine(context.Background(), r, start, end, opts)
	if err != nil {
		return nil, err
	}
	return &View{e}, nil
}

func (v *View) Read(p []byte) (int, error) {
	return v.e.sequential(context.Background(), v.e.readSomeAt, p)
}

// ReadFull reads exactly len(p) bytes or, if fewer remain in the range,
// nothing; it then fails with errors.OutOfData.
func (v *View) ReadFull(p []byte) error { return v.e.readFull(context.Background(), p) }

func (v *View) ReadSomeAt(p []byte, off int64) (int, error) {
	return v.e.positional(context.Background(), v.e.readSomeAt, p, off)
}

func (v *View) ReadAt(p []byte, off int64) (int, error) {
	return v.e.positional(context.Background(), v.e.readAt, p, off)
}

func (v *View) WriteSome(p []byte) (int, error) {
	return v.e.sequential(context.Background(), v.e.writeSomeAt, p)
}

func (v *View) Write(p []byte) (int, error) {
	return v.e.sequential(context.Background(), v.e.writeAt, p)
}

func (v *View) WriteSomeAt(p []byte, off int64) (int, error) {
	return v.e.positional(context.Background(), v.e.writeSomeAt, p, off)
}

func (v *View) WriteAt(p []byte, off int64) (int, error) {
	return v.e.positional(context.Background(), v.e.writeAt, p, off)
}

func (v *View) Seek(off int64, whence int) (int64, error) { return v.e.seek(off, whence) }

func (v *View) Skip(n int64) (int64, error) { return v.e.skip(context.Background(), n) }

// Size returns end-start.
func (v *View) Size() (int64, error) { return v.e.size() }

func (v *View) Position() (int64, error) { return v.e.position() }

func (v *View) Flush() error { return v.e.flush(context.Background()) }

// Close closes the view and, with CloseUnderlying, the resource. It is
// idempotent.
func (v *View) Close() error { return v.e.close(context.Background()) }

// Bounds returns the range of the resource covered by the view.
func (v *View) Bounds() (start, end int64) { return v.e.start, v.e.end }
