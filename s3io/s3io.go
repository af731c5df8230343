// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package s3io exposes S3 objects as read-only, context-aware segments.
// Each positional read is one ranged GetObject request, so an object can
// be sliced with sectionio or concatenated with concatio without being
// downloaded in full.
package s3io

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/segio/log"
	"github.com/grailbio/segio/retry"
)

// Options configures S3 objects.
type Options struct {
	// Retry is consulted when a request fails with a temporary error,
	// e.g. when S3 throttles requests. A nil policy disables retries.
	Retry retry.Policy
}

// DefaultOptions tries each request up to five times with jittered
// exponential backoff.
var DefaultOptions = Options{
	Retry: retry.MaxTries(retry.Jitter(retry.Backoff(100*time.Millisecond, 5*time.Second, 2), 0.5), 5),
}

// Object is an S3 object. It implements ioctx.ReaderAt, ioctx.Sizer and
// ioctx.Closer. Its size is fetched once, by the first call to Size, and
// the object is assumed not to change while it is read.
type Object struct {
	client      s3iface.S3API
	bucket, key string
	size        int64
	opts        Options
	closed      bool
}

var (
	_ ioctx.ReaderAt = (*Object)(nil)
	_ ioctx.Sizer    = (*Object)(nil)
	_ ioctx.Closer   = (*Object)(nil)
)

// NewObject returns the object bucket/key. It makes no requests.
func NewObject(client s3iface.S3API, bucket, key string, opts Options) *Object {
	return &Object{client: client, bucket: bucket, key: key, size: -1, opts: opts}
}

// Open returns the object named by an s3://bucket/key path, after
// checking that it exists. It uses DefaultOptions.
func Open(ctx context.Context, client s3iface.S3API, path string) (*Object, error) {
	return OpenOptions(ctx, client, path, DefaultOptions)
}

// OpenOptions is Open with the given options.
func OpenOptions(ctx context.Context, client s3iface.S3API, path string, opts Options) (*Object, error) {
	_, _, path = fileio.SpellCorrectS3(path)
	bucket, key, ok := fileio.ParseS3(path)
	if !ok {
		return nil, errors.E(errors.Invalid, "s3io.Open: could not parse", path)
	}
	o := NewObject(client, bucket, key, opts)
	if _, err := o.Size(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Name returns the object's s3:// path.
func (o *Object) Name() string { return fmt.Sprintf("s3://%s/%s", o.bucket, o.key) }

// do runs a request under the object's retry policy.
func (o *Object) do(ctx context.Context, name string, op func() error) error {
	if o.opts.Retry == nil {
		return op()
	}
	return retry.Do(ctx, o.opts.Retry, name, op)
}

func (o *Object) live() error {
	if o.closed {
		return errors.E(errors.Closed, "s3io:", o.Name())
	}
	return nil
}

// Size returns the object's content length.
func (o *Object) Size(ctx context.Context) (int64, error) {
	if err := o.live(); err != nil {
		return 0, err
	}
	if o.size >= 0 {
		return o.size, nil
	}
	var output *s3.HeadObjectOutput
	err := o.do(ctx, "s3io.Size", func() (err error) {
		output, err = o.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(o.bucket),
			Key:    aws.String(o.key),
		})
		if err != nil {
			return annotate(err, "s3io.Size", o.Name())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if output.ContentLength == nil {
		return 0, errors.E(errors.NotExist, "s3io.Size: nil ContentLength", o.Name())
	}
	o.size = *output.ContentLength
	return o.size, nil
}

// ReadAt reads len(p) bytes at off with a single ranged request. Like
// io.ReaderAt, it returns io.EOF when fewer bytes remain.
func (o *Object) ReadAt(ctx context.Context, p []byte, off int64) (n int, err error) {
	if err := o.live(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("s3io.ReadAt: negative offset %d", off))
	}
	if len(p) == 0 {
		return 0, nil
	}
	if o.size >= 0 && off >= o.size {
		return 0, io.EOF
	}
	err = o.do(ctx, "s3io.ReadAt", func() error {
		var rerr error
		n, rerr = o.readAt(ctx, p, off)
		return rerr
	})
	return n, err
}

// readAt issues one ranged request for p at off.
func (o *Object) readAt(ctx context.Context, p []byte, off int64) (n int, err error) {
	output, err := o.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-", off)),
	})
	if err != nil {
		if output != nil && output.Body != nil {
			if errClose := output.Body.Close(); errClose != nil {
				log.Printf("s3io.ReadAt: ignoring body close error: %v", errClose)
			}
		}
		if awsErr, ok := getAWSError(err); ok && awsErr.Code() == "InvalidRange" {
			return 0, io.EOF
		}
		return 0, annotate(err, "s3io.ReadAt", o.Name())
	}
	defer errors.CleanUp(output.Body.Close, &err)
	n, err = io.ReadFull(output.Body, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

// Close marks the object closed. No connection is held between reads.
func (o *Object) Close(context.Context) error {
	o.closed = true
	return nil
}
