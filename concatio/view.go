// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package concatio

import (
	"context"
	"io"

	"github.com/grailbio/segio/moreio"
)

// View is the blocking composite view.
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
	_ moreio.Truncater           = (*View)(nil)
	_ moreio.Flusher             = (*View)(nil)
	_ moreio.Appender            = (*View)(nil)
)

// New returns a blocking view over segs. Segments of unknown size are
// sized by querying them.
func New(segs []Segment, opts Options) (*View, error) {
	e, err := newEngine(context.Background(), segs, opts)
	if err != nil {
		return nil, err
	}
	return &View{e}, nil
}

// Read reads from the current segment. It returns (0, io.EOF) only when
// no segment has data left.
func (v *View) Read(p []byte) (int, error) { return v.e.readSome(context.Background(), p) }

// ReadFull reads exactly len(p) bytes, possibly spanning segments. If
// fewer remain, it reads nothing and fails with errors.OutOfData.
func (v *View) ReadFull(p []byte) error { return v.e.readFull(context.Background(), p) }

func (v *View) ReadSomeAt(p []byte, off int64) (int, error) {
	return v.e.readSomeAt(context.Background(), p, off)
}

// ReadAt implements io.ReaderAt.
func (v *View) ReadAt(p []byte, off int64) (int, error) {
	return v.e.readAt(context.Background(), p, off)
}

// WriteSome writes to the current segment, returning (0,
// moreio.ErrNoSpace) when the view is full.
func (v *View) WriteSome(p []byte) (int, error) { return v.e.writeSome(context.Background(), p) }

// Write writes all of p or fails. If the view is not appendable and p
// does not fit, nothing is written.
func (v *View) Write(p []byte) (int, error) { return v.e.writeFull(context.Background(), p) }

func (v *View) WriteSomeAt(p []byte, off int64) (int, error) {
	return v.e.writeSomeAt(context.Background(), p, off)
}

// WriteAt implements io.WriterAt.
func (v *View) WriteAt(p []byte, off int64) (int, error) {
	return v.e.writeAt(context.Background(), p, off)
}

// Seek implements io.Seeker. It touches no segment.
func (v *View) Seek(off int64, whence int) (int64, error) {
	return v.e.seek(context.Background(), off, whence)
}

// Skip advances the position by up to n bytes without reading them.
func (v *View) Skip(n int64) (int64, error) { return v.e.skip(context.Background(), n) }

// Size returns the total size of the segments.
func (v *View) Size() (int64, error) { return v.e.size() }

// Position returns the offset of the next sequential operation.
func (v *View) Position() (int64, error) { return v.e.position() }

func (v *View) Truncate(size int64) error { return v.e.truncate(context.Background(), size) }

func (v *View) Flush() error { return v.e.flush(context.Background()) }

// Close closes the segments the view owns. It is safe to call more than
// once; operations after Close fail with errors.Closed.
func (v *View) Close() error { return v.e.close(context.Background()) }

// Appendable tells whether writes at the end grow the view.
func (v *View) Appendable() bool { return v.e.appendable }

// Len returns the number of segments.
func (v *View) Len() int { return len(v.e.segs) }

// Sizes returns the current size of every segment.
func (v *View) Sizes() []int64 { return v.e.loc.sizes() }
