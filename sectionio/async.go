// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package sectionio

import (
	"context"

	"github.com/grailbio/segio/ioctx"
)

// AsyncView is the sub view with a context on every operation.
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
	_ ioctx.Flusher         = (*AsyncView)(nil)
)

// NewAsync is New for the asynchronous view.
func NewAsync(ctx context.Context, r interface{}, start, end int64, opts Options) (*AsyncView, error) {
	e, err := newEngine(ctx, r, start, end, opts)
	if err != nil {
		return nil, err
	}
	return &AsyncView{e}, nil
}

func (v *AsyncView) Read(ctx context.Context, p []byte) (int, error) {
	return v.e.sequential(ctx, v.e.readSomeAt, p)
}

func (v *AsyncView) ReadFull(ctx context.Context, p []byte) error { return v.e.readFull(ctx, p) }

func (v *AsyncView) ReadSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.positional(ctx, v.e.readSomeAt, p, off)
}

func (v *AsyncView) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.positional(ctx, v.e.readAt, p, off)
}

func (v *AsyncView) WriteSome(ctx context.Context, p []byte) (int, error) {
	return v.e.sequential(ctx, v.e.writeSomeAt, p)
}

func (v *AsyncView) Write(ctx context.Context, p []byte) (int, error) {
	return v.e.sequential(ctx, v.e.writeAt, p)
}

func (v *AsyncView) WriteSomeAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.positional(ctx, v.e.writeSomeAt, p, off)
}

func (v *AsyncView) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	return v.e.positional(ctx, v.e.writeAt, p, off)
}

func (v *AsyncView) Seek(_ context.Context, off int64, whence int) (int64, error) {
	return v.e.seek(off, whence)
}

func (v *AsyncView) Skip(ctx context.Context, n int64) (int64, error) { return v.e.skip(ctx, n) }

func (v *AsyncView) Size(context.Context) (int64, error) { return v.e.size() }

func (v *AsyncView) Position() (int64, error) { return v.e.position() }

func (v *AsyncView) Flush(ctx context.Context) error { return v.e.flush(ctx) }

func (v *AsyncView) Close(ctx context.Context) error { return v.e.close(ctx) }

func (v *AsyncView) Bounds() (start, end int64) { return v.e.start, v.e.end }
