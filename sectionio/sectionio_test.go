// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package sectionio

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/memio"
	"github.com/grailbio/segio/moreio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digits = "0123456789"

func TestRead(t *testing.T) {
	r := memio.New([]byte(digits))
	v, err := New(r, 3, 7, Options{})
	require.NoError(t, err)

	b := make([]byte, 10)
	n, err := v.Read(b)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(b[:n]))
	n, err = v.Read(b)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	n, err = v.ReadAt(b[:2], 1)
	require.NoError(t, err)
	assert.Equal(t, "45", string(b[:n]))
	_, err = v.ReadAt(b[:4], 1)
	assert.True(t, errors.Is(errors.OutOfData, err))
	n, err = v.ReadSomeAt(b, 2)
	require.NoError(t, err)
	assert.Equal(t, "56", string(b[:n]))
	n, err = v.ReadSomeAt(b, 4)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	pos, err := v.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pos)
	require.NoError(t, v.ReadFull(b[:3]))
	assert.Equal(t, "456", string(b[:3]))

	_, err = v.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.True(t, errors.Is(errors.OutOfData, v.ReadFull(b[:5])))
	pos, err = v.Position()
	require.NoError(t, err)
	assert.EqualValues(t, 0, pos)

	skipped, err := v.Skip(10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, skipped)

	start, end := v.Bounds()
	assert.EqualValues(t, 3, start)
	assert.EqualValues(t, 7, end)
}

func TestWriteContainment(t *testing.T) {
	r := memio.New([]byte(digits))
	v, err := New(r, 3, 7, Options{})
	require.NoError(t, err)

	_, err = v.Write([]byte("abcde"))
	assert.True(t, errors.Is(errors.OutOfData, err))
	assert.Equal(t, digits, string(r.Bytes()))

	n, err := v.WriteSome([]byte("abcde"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = v.WriteSome([]byte("e"))
	assert.Equal(t, 0, n)
	assert.Equal(t, moreio.ErrNoSpace, err)
	assert.Equal(t, "012abcd789", string(r.Bytes()))

	n, err = v.WriteSomeAt([]byte("XYZ"), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = v.WriteAt([]byte("Q"), 4)
	assert.True(t, errors.Is(errors.OutOfData, err))
	assert.Equal(t, "012abXY789", string(r.Bytes()))

	_, err = v.Seek(1, io.SeekEnd)
	assert.True(t, errors.Is(errors.OutOfData, err))
}

// TestRandomContainment checks that random operations through a sub
// view never read or modify bytes outside its range.
func TestRandomContainment(t *testing.T) {
	const size = 256
	rnd := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		orig := make([]byte, size)
		_, _ = rnd.Read(orig)
		r := memio.New(append([]byte(nil), orig...))
		start := rnd.Int63n(size + 1)
		end := start + rnd.Int63n(size-start+1)
		v, err := New(r, start, end, Options{})
		require.NoError(t, err)
		want := append([]byte(nil), orig...)
		for op := 0; op < 20; op++ {
			off := rnd.Int63n(end - start + 1)
			b := make([]byte, rnd.Intn(32))
			switch rnd.Intn(3) {
			case 0:
				n, err := v.ReadSomeAt(b, off)
				if err == io.EOF {
					assert.Equal(t, end-start, off)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, want[start+off:start+off+int64(n)], b[:n])
			case 1:
				_, _ = rnd.Read(b)
				n, err := v.WriteSomeAt(b, off)
				if err == moreio.ErrNoSpace {
					assert.Equal(t, end-start, off)
					continue
				}
				require.NoError(t, err)
				copy(want[start+off:], b[:n])
			case 2:
				_, _ = rnd.Read(b)
				if _, err := v.WriteAt(b, off); err == nil {
					copy(want[start+off:], b)
				} else {
					assert.True(t, errors.Is(errors.OutOfData, err))
				}
			}
		}
		assert.Equal(t, orig[:start], r.Bytes()[:start])
		assert.Equal(t, orig[end:], r.Bytes()[end:])
		assert.Equal(t, want, r.Bytes())
	}
}

func TestDisjointViews(t *testing.T) {
	r := memio.New([]byte(digits))
	a, err := New(r, 0, 5, Options{})
	require.NoError(t, err)
	b, err := New(r, 5, 10, Options{})
	require.NoError(t, err)
	pa, pb := make([]byte, 5), make([]byte, 5)
	require.NoError(t, a.ReadFull(pa))
	require.NoError(t, b.ReadFull(pb))
	assert.Equal(t, "01234", string(pa))
	assert.Equal(t, "56789", string(pb))
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	assert.False(t, r.Closed())
}

func TestNew(t *testing.T) {
	r := memio.New([]byte(digits))
	for _, c := range []struct{ start, end int64 }{{-1, 2}, {3, 2}, {0, 11}} {
		_, err := New(r, c.start, c.end, Options{})
		assert.True(t, errors.Is(errors.Invalid, err), "range [%d, %d)", c.start, c.end)
	}
	_, err := New(nil, 0, 0, Options{})
	assert.True(t, errors.Is(errors.Invalid, err))

	// Streams cannot be sized, so any range is accepted.
	v, err := New(bytes.NewBufferString("abc"), 0, 100, Options{})
	require.NoError(t, err)
	b := make([]byte, 3)
	require.NoError(t, v.ReadFull(b))
	assert.Equal(t, "abc", string(b))
	_, err = v.Read(b)
	assert.True(t, errors.Is(errors.Integrity, err))
}

func TestClose(t *testing.T) {
	r := memio.New([]byte(digits))
	v, err := New(r, 1, 2, Options{CloseUnderlying: true})
	require.NoError(t, err)
	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Equal(t, 1, r.Closes)

	_, err = v.Read(make([]byte, 1))
	assert.True(t, errors.Is(errors.Closed, err))
	_, err = v.WriteAt(make([]byte, 1), 0)
	assert.True(t, errors.Is(errors.Closed, err))
	_, err = v.Seek(0, io.SeekStart)
	assert.True(t, errors.Is(errors.Closed, err))
	_, err = v.Size()
	assert.True(t, errors.Is(errors.Closed, err))
}

func TestAsync(t *testing.T) {
	ctx := context.Background()
	r := memio.New([]byte(digits))
	v, err := NewAsync(ctx, r, 2, 6, Options{CloseUnderlying: true})
	require.NoError(t, err)

	b := make([]byte, 8)
	n, err := v.Read(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(b[:n]))
	n, err = v.Read(ctx, b)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	_, err = v.Seek(ctx, 1, io.SeekStart)
	require.NoError(t, err)
	n, err = v.Write(ctx, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "012ab56789", string(r.Bytes()))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = v.ReadAt(canceled, b[:1], 0)
	assert.True(t, errors.Is(errors.Canceled, err))
	assert.True(t, errors.Is(errors.Canceled, v.ReadFull(canceled, b[:1])))

	size, err := v.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)
	require.NoError(t, v.Close(ctx))
	assert.True(t, r.Closed())
}

// readSeeker hides every method of a bytes.Reader but Read and Seek, so
// views over it must move its single cursor.
type readSeeker struct{ r *bytes.Reader }

func (s readSeeker) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s readSeeker) Seek(off int64, whence int) (int64, error) {
	return s.r.Seek(off, whence)
}

func TestDisjointViewsShareCursor(t *testing.T) {
	r := readSeeker{bytes.NewReader([]byte("AAAABBBB"))}
	a, err := New(r, 0, 4, Options{})
	require.NoError(t, err)
	b, err := New(r, 4, 8, Options{})
	require.NoError(t, err)

	p := make([]byte, 2)
	for i := 0; i < 2; i++ {
		n, err := a.Read(p)
		require.NoError(t, err)
		assert.Equal(t, "AA", string(p[:n]))
		n, err = b.Read(p)
		require.NoError(t, err)
		assert.Equal(t, "BB", string(p[:n]))
	}
	n, err := a.Read(p)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
	n, err = b.ReadAt(p, 1)
	require.NoError(t, err)
	assert.Equal(t, "BB", string(p[:n]))
}

func TestEmptyPastEnd(t *testing.T) {
	v, err := New(memio.New([]byte(digits)), 3, 7, Options{})
	require.NoError(t, err)
	n, err := v.ReadAt(nil, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = v.WriteAt(nil, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}
