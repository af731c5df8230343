// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package throttleio rate-limits context-aware readers and writers with
// a token bucket from golang.org/x/time/rate. Waiting for tokens honors
// the caller's context, so a throttled segment is a cancelation point
// like any other.
package throttleio

import (
	"context"
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
	"golang.org/x/time/rate"
)

// Named rates, in bytes per second.
const (
	Low    = 50000
	Medium = 500000
	High   = 1500000
)

// burstFactor is the number of seconds of traffic a limiter may bank.
const burstFactor = 3

// ParseRate returns a limiter for rstr, which is one of "low",
// "medium", "high", "unlimited" (or "0", or empty), or a byte size per
// second such as "100KB" or "2 MB".
func ParseRate(rstr string) (*rate.Limiter, error) {
	var n int
	switch rstr = strings.ToLower(strings.TrimSpace(rstr)); rstr {
	case "low":
		n = Low
	case "medium":
		n = Medium
	case "high":
		n = High
	case "unlimited", "0", "":
		return rate.NewLimiter(rate.Inf, 0), nil
	default:
		var v datasize.ByteSize
		if err := v.UnmarshalText([]byte(rstr)); err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("throttleio: rate %q", rstr), err)
		}
		if v > 1<<31-1 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("throttleio: rate %q too large", rstr))
		}
		n = int(v)
	}
	return rate.NewLimiter(rate.Limit(n), n*burstFactor), nil
}

// chunk limits p to what l can grant in one wait.
func chunk(l *rate.Limiter, p []byte) []byte {
	if l.Limit() == rate.Inf {
		return p
	}
	if b := l.Burst(); b > 0 && len(p) > b {
		return p[:b]
	}
	return p
}

func wait(ctx context.Context, l *rate.Limiter, n int) error {
	if n == 0 {
		return nil
	}
	if err := l.WaitN(ctx, n); err != nil {
		if ctx.Err() != nil {
			return errors.E(ctx.Err())
		}
		return errors.E(errors.Unavailable, "throttleio", err)
	}
	return nil
}

type reader struct {
	r ioctx.Reader
	l *rate.Limiter
}

// NewReader returns a reader that draws tokens for the bytes it has
// read. A single read never returns more than the limiter's burst.
func NewReader(r ioctx.Reader, l *rate.Limiter) ioctx.Reader { return &reader{r, l} }

func (r *reader) Read(ctx context.Context, p []byte) (int, error) {
	n, err := r.r.Read(ctx, chunk(r.l, p))
	if werr := wait(ctx, r.l, n); werr != nil && err == nil {
		err = werr
	}
	return n, err
}

type readerAt struct {
	r ioctx.ReaderAt
	l *rate.Limiter
}

// NewReaderAt returns a throttled ReaderAt. Unlike NewReader, reads are
// not split: the full request is granted before the read is issued, in
// burst-sized waits.
func NewReaderAt(r ioctx.ReaderAt, l *rate.Limiter) ioctx.ReaderAt { return &readerAt{r, l} }

func (r *readerAt) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	for rem := p; len(rem) > 0; {
		c := chunk(r.l, rem)
		if err := wait(ctx, r.l, len(c)); err != nil {
			return 0, err
		}
		rem = rem[len(c):]
	}
	return r.r.ReadAt(ctx, p, off)
}

type writer struct {
	w ioctx.Writer
	l *rate.Limiter
}

// NewWriter returns a writer that waits for tokens before each burst
// of output.
func NewWriter(w ioctx.Writer, l *rate.Limiter) ioctx.Writer { return &writer{w, l} }

func (w *writer) Write(ctx context.Context, p []byte) (int, error) {
	var n int
	for n < len(p) {
		c := chunk(w.l, p[n:])
		if err := wait(ctx, w.l, len(c)); err != nil {
			return n, err
		}
		m, err := w.w.Write(ctx, c)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
