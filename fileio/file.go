// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package fileio

import (
	"context"
	"os"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/log"
	"golang.org/x/sync/errgroup"
)

// File is a local file that can serve as a segment. It adds Size, Flush
// and Appendable to *os.File; a file opened for writing is appendable.
type File struct {
	*os.File
	writable bool
}

// Open opens the named file for reading.
func Open(name string) (*File, error) {
	return OpenFile(name, os.O_RDONLY, 0)
}

// Create creates or truncates the named file and opens it for reading
// and writing.
func Create(name string) (*File, error) {
	return OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// OpenFile is os.OpenFile. Errors are classified with errors.E, so that
// a missing file has kind errors.NotExist.
func OpenFile(name string, flag int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, errors.E(err)
	}
	return &File{File: f, writable: flag&(os.O_WRONLY|os.O_RDWR) != 0}, nil
}

// Size returns the file's current size.
func (f *File) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Flush commits the file's contents to stable storage.
func (f *File) Flush() error { return f.Sync() }

// Appendable implements moreio.Appender.
func (f *File) Appendable() bool { return f.writable }

// OpenAll opens names concurrently with the given flags. If any open
// fails, the files already opened are closed and the first error is
// returned.
func OpenAll(ctx context.Context, names []string, flag int) ([]*File, error) {
	files := make([]*File, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.E(err)
			}
			f, err := OpenFile(name, flag, 0666)
			if err != nil {
				return err
			}
			log.Debug.Printf("fileio: opened %s", name)
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range files {
			if f != nil {
				_ = f.Close()
			}
		}
		return nil, err
	}
	return files, nil
}
