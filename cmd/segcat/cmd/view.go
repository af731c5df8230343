// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/segio/compress"
	"github.com/grailbio/segio/concatio"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/segio/log"
	"github.com/grailbio/segio/manifest"
	"github.com/grailbio/segio/morebufio"
	"github.com/grailbio/segio/sectionio"
)

// view is a readable, closable view: a composite view or a window of one.
type view interface {
	ioctx.ReadSeeker
	ioctx.ReaderAt
	ioctx.Closer
}

var (
	_ view = (*concatio.AsyncView)(nil)
	_ view = (*sectionio.AsyncView)(nil)
)

// manifestOf returns a manifest concatenating paths.
func (f *viewFlags) manifestOf(paths []string) (*manifest.Manifest, error) {
	if len(paths) == 0 {
		return nil, errors.E(errors.Invalid, "no input paths")
	}
	m := &manifest.Manifest{ReleaseConsumed: f.release, Rate: f.rate}
	for _, path := range paths {
		m.Segments = append(m.Segments, manifest.Segment{Path: path})
	}
	return m, nil
}

// open opens m and narrows it to the window selected by the flags.
func (f *viewFlags) open(ctx context.Context, env Env, m *manifest.Manifest) (view, error) {
	if f.release {
		m.ReleaseConsumed = true
	}
	if f.rate != "" {
		m.Rate = f.rate
	}
	v, err := m.Open(ctx, manifest.Openers{S3: env.S3})
	if err != nil {
		return nil, err
	}
	if !f.offset.set && !f.length.set {
		return v, nil
	}
	size, err := v.Size(ctx)
	if err != nil {
		_ = v.Close(ctx)
		return nil, err
	}
	start, end := f.offset.int64(), size
	if f.length.set {
		end = start + f.length.int64()
	}
	sub, err := sectionio.NewAsync(ctx, v, start, end, sectionio.Options{CloseUnderlying: true})
	if err != nil {
		_ = v.Close(ctx)
		return nil, err
	}
	log.Debug.Printf("segcat: window [%d, %d) of %d bytes", start, end, size)
	return sub, nil
}

// reader returns the stream to copy out of v.
func (f *viewFlags) reader(ctx context.Context, v view) (io.ReadCloser, error) {
	var r ioctx.Reader = v
	if f.buffer.set {
		if f.buffer.Bytes() == 0 {
			return nil, errors.E(errors.Invalid, "--buffer must be positive")
		}
		r = morebufio.NewReadSeekerSize(v, int(f.buffer.int64()))
	}
	std := ioctx.ToStdReader(ctx, r)
	if !f.decompress {
		return io.NopCloser(std), nil
	}
	rc, ok := compress.NewReader(std)
	if !ok {
		log.Info.Printf("segcat: input is not compressed, copying it as is")
	}
	return rc, nil
}

// create opens the output. The returned closer flushes any compressor
// and closes the output file.
func (f *outFlags) create(env Env) (w io.Writer, closeFn func() error, err error) {
	var (
		out   io.Writer = env.Stdout
		file  *fileio.File
		codec io.WriteCloser
	)
	if f.path != "" {
		if file, err = fileio.Create(f.path); err != nil {
			return nil, nil, err
		}
		out = file
	}
	switch strings.ToLower(f.compress) {
	case "":
		if f.path != "" {
			codec, err = compress.NewWriterPath(out, f.path)
		}
	case "none":
	case "gzip", "gz":
		codec, err = compress.NewWriter(out, fileio.Gzip)
	case "zstd", "zst":
		codec, err = compress.NewWriter(out, fileio.Zstd)
	case "lz4":
		codec, err = compress.NewWriter(out, fileio.LZ4)
	default:
		err = errors.E(errors.Invalid, "unknown compression", f.compress)
	}
	if err != nil {
		if file != nil {
			_ = file.Close()
			_ = os.Remove(f.path)
		}
		return nil, nil, err
	}
	closeFn = func() (err error) {
		if file != nil {
			defer fileio.CloseAndReport(file, &err)
		}
		if codec != nil {
			err = codec.Close()
		}
		return
	}
	if codec != nil {
		return codec, closeFn, nil
	}
	return out, closeFn, nil
}

// copyOut copies the view described by m to the output.
func copyOut(ctx context.Context, env Env, vf *viewFlags, of *outFlags, m *manifest.Manifest) (err error) {
	v, err := vf.open(ctx, env, m)
	if err != nil {
		return err
	}
	defer fileio.CloseAndReportCtx(ctx, v, &err)
	r, err := vf.reader(ctx, v)
	if err != nil {
		return err
	}
	defer errors.CleanUp(r.Close, &err)
	w, closeOut, err := of.create(env)
	if err != nil {
		return err
	}
	defer errors.CleanUp(closeOut, &err)
	n, err := io.Copy(w, r)
	if err != nil {
		return err
	}
	log.Debug.Printf("segcat: copied %d bytes", n)
	return nil
}
