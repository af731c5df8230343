// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package manifest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/grailbio/segio/concatio"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/segio/log"
	"github.com/grailbio/segio/s3io"
	"github.com/grailbio/segio/sectionio"
	"github.com/grailbio/segio/throttleio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Openers supplies the clients needed to open manifest segments.
type Openers struct {
	// S3 opens s3:// paths. Manifests naming S3 objects fail with
	// NotSupported if it is nil.
	S3 s3iface.S3API
}

// resource is an opened segment resource together with its size.
type resource struct {
	r    interface{}
	size int64
	c    ioctx.Closer
}

func (o Openers) open(ctx context.Context, path string) (resource, error) {
	_, corrected, path := fileio.SpellCorrectS3(path)
	if corrected {
		log.Printf("manifest: reading %s", path)
	}
	switch fileio.DetermineAPI(path) {
	case fileio.S3API:
		if o.S3 == nil {
			return resource{}, errors.E(errors.NotSupported, "manifest: no S3 client for", path)
		}
		obj, err := s3io.Open(ctx, o.S3, path)
		if err != nil {
			return resource{}, err
		}
		size, err := obj.Size(ctx)
		if err != nil {
			_ = obj.Close(ctx)
			return resource{}, err
		}
		return resource{obj, size, obj}, nil
	default:
		f, err := fileio.Open(path)
		if err != nil {
			return resource{}, err
		}
		size, err := f.Size()
		if err != nil {
			_ = f.Close()
			return resource{}, err
		}
		return resource{f, size, ioctx.FromStdCloser(f)}, nil
	}
}

// throttled limits the reads of a segment and closes it along with
// itself.
type throttled struct {
	ra ioctx.ReaderAt
	c  ioctx.Closer
}

func (t throttled) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	return t.ra.ReadAt(ctx, p, off)
}

func (t throttled) Close(ctx context.Context) error { return t.c.Close(ctx) }

// Open opens every segment of m concurrently and returns a read-only
// composite view over them. The view owns the opened resources:
// closing it closes them.
func (m *Manifest) Open(ctx context.Context, o Openers) (*concatio.AsyncView, error) {
	var limiter *rate.Limiter
	if m.Rate != "" {
		var err error
		if limiter, err = throttleio.ParseRate(m.Rate); err != nil {
			return nil, err
		}
	}
	resources := make([]resource, len(m.Segments))
	g, gctx := errgroup.WithContext(ctx)
	for i := range m.Segments {
		i := i
		g.Go(func() error {
			res, err := o.open(gctx, m.Segments[i].Path)
			if err != nil {
				return err
			}
			resources[i] = res
			return nil
		})
	}
	closeAll := func() {
		var (
			errs errors.Once
			wg   sync.WaitGroup
		)
		for _, res := range resources {
			if res.c == nil {
				continue
			}
			wg.Add(1)
			go func(c ioctx.Closer) {
				defer wg.Done()
				errs.Set(c.Close(ctx))
			}(res.c)
		}
		wg.Wait()
		if err := errs.Err(); err != nil {
			log.Error.Printf("manifest: closing segments: %v", err)
		}
	}
	if err := g.Wait(); err != nil {
		closeAll()
		return nil, err
	}
	segs := make([]concatio.Segment, len(m.Segments))
	for i, s := range m.Segments {
		res := resources[i]
		seg := concatio.Segment{R: res.r, Size: res.size}
		if s.Bounded() {
			start, end, err := s.bounds(res.size)
			if err != nil {
				closeAll()
				return nil, errors.E(fmt.Sprintf("manifest: segment %d", i), err)
			}
			sub, err := sectionio.NewAsync(ctx, res.r, start, end, sectionio.Options{CloseUnderlying: true})
			if err != nil {
				closeAll()
				return nil, err
			}
			seg = concatio.Segment{R: sub, Size: end - start}
		}
		if limiter != nil {
			var ra ioctx.ReaderAt
			switch r := seg.R.(type) {
			case ioctx.ReaderAt:
				ra = r
			case io.ReaderAt:
				ra = ioctx.FromStdReaderAt(r)
			}
			seg.R = throttled{throttleio.NewReaderAt(ra, limiter), closerOf(seg.R, res.c)}
		}
		segs[i] = seg
		log.Debug.Printf("manifest: segment %d: %s (%d bytes)", i, s.Path, seg.Size)
	}
	v, err := concatio.NewAsync(ctx, segs, concatio.Options{ReleaseConsumed: m.ReleaseConsumed})
	if err != nil {
		closeAll()
		return nil, err
	}
	return v, nil
}

func closerOf(r interface{}, c ioctx.Closer) ioctx.Closer {
	if rc, ok := r.(ioctx.Closer); ok {
		return rc
	}
	return c
}

// bounds returns the window of a resource of the given size covered by s.
func (s Segment) bounds(size int64) (start, end int64, err error) {
	if s.Offset != nil {
		start = int64(s.Offset.Bytes())
	}
	end = size
	if s.Length != nil {
		end = start + int64(s.Length.Bytes())
	}
	if start > size || end > size || end < start {
		return 0, 0, errors.E(errors.Invalid,
			fmt.Sprintf("window [%d, %d) exceeds resource size %d", start, end, size))
	}
	return start, end, nil
}
