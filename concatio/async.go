// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package concatio

import (
	"context"

	"github.com/grailbio/segio/ioctx"
)

// AsyncView is the composite view with a context on every operation.
// The context is checked before each call on a segment; an operation
// stopped by cancellation fails with errors.Canceled or
// errors.Timeout and leaves the view positioned after the bytes already
// transferred.
type AsyncView struct{ e *engine }

var (
	_ ioctx.ReadWriteSeeker = (*AsyncView)(nil)
	_ ioctx.Closer          = (*AsyncView)(nil)
	_ ioctx.ReaderAt        = (*AsyncView)(nil)
	_ ioctx.WriterAt        = (*AsyncView)(nil)
	_ ioctx.SomeWriter      = (*AsyncView)(nil)
	_ ioctx.FullReader      = (*AsyncView)(nil)
	_ ioctx.Skipper         = (*AsyncView)(nil)
	_ ioctx.Sizer           = (*AsyncView)(nil)
	_ ioctx.Truncater       = (*AsyncView)(nil)
	_ ioctx.Flusher         = (*AsyncView)(nil)
)

// NewAsync returns an asynchronous view over segs. ctx bounds the size
// queries made while building it.
func NewAsync(ctx context.Context, segs []Segment, opts Options) (*AsyncView, error) {
	e, err := newEngine(ctx, segs, opts)
	if err != nil {
		return nil, err
	}
	return &AsyncView{e}, nil
}

func (v *AsyncView) Read(ctx context.Context, p []byte) (int, error) { return v.e.readSome(ctx, p) }

func (v *AsyncView) ReadFull(ctx context.Context, p []byte) error { return v.e.readFull(ctx, p) }

func (v *AsyncView) ReadSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.readSomeAt(ctx, p, off)
}

func (v *AsyncView) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.readAt(ctx, p, off)
}

func (v *AsyncView) WriteSome(ctx context.Context, p []byte) (int, error) {
	return v.e.writeSome(ctx, p)
}

func (v *AsyncView) Write(ctx context.Context, p []byte) (int, error) {
	return v.e.writeFull(ctx, p)
}

func (v *AsyncView) WriteSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.writeSomeAt(ctx, p, off)
}

func (v *AsyncView) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.writeAt(ctx, p, off)
}

func (v *AsyncView) Seek(ctx context.Context, off int64, whence int) (int64, error) {
	return v.e.seek(ctx, off, whence)
}

func (v *AsyncView) Skip(ctx context.Context, n int64) (int64, error) { return v.e.skip(ctx, n) }

func (v *AsyncView) Size(context.Context) (int64, error) { return v.e.size() }

func (v *AsyncView) Position() (int64, error) { return v.e.position() }

func (v *AsyncView) Truncate(ctx context.Context, size int64) error {
	return v.e.truncate(ctx, size)
}

func (v *AsyncView) Flush(ctx context.Context) error { return v.e.flush(ctx) }

// Close is View.Close with a context; it always runs to completion so
// that no owned segment is leaked.
func (v *AsyncView) Close(ctx context.Context) error { return v.e.close(ctx) }

func (v *AsyncView) Appendable() bool { return v.e.appendable }

func (v *AsyncView) Len() int { return len(v.e.segs) }

func (v *AsyncView) Sizes() []int64 { return v.e.loc.sizes() }
