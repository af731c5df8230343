package ioctx_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/segio/memio"
	"github.com/grailbio/segio/moreio"
	"github.com/grailbio/testutil/assert"
)

func TestStdRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := ioctx.FromStdReader(strings.NewReader("hello"))
	b, err := io.ReadAll(ioctx.ToStdReader(ctx, r))
	assert.NoError(t, err)
	assert.EQ(t, string(b), "hello")

	var buf bytes.Buffer
	w := ioctx.ToStdWriter(ctx, ioctx.FromStdWriter(&buf))
	_, err = io.WriteString(w, "world")
	assert.NoError(t, err)
	assert.EQ(t, buf.String(), "world")

	ra := ioctx.ToStdReaderAt(ctx, ioctx.FromStdReaderAt(strings.NewReader("0123456789")))
	p := make([]byte, 3)
	n, err := ra.ReadAt(p, 4)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "456")
}

func TestReadFull(t *testing.T) {
	ctx := context.Background()
	p := make([]byte, 4)
	assert.NoError(t, ioctx.ReadFull(ctx, ioctx.FromStdReader(strings.NewReader("abcdef")), p))
	assert.EQ(t, string(p), "abcd")
	err := ioctx.ReadFull(ctx, ioctx.FromStdReader(strings.NewReader("ab")), p)
	assert.True(t, errors.Is(errors.OutOfData, err))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = ioctx.ReadFull(canceled, ioctx.FromStdReader(strings.NewReader("abcdef")), p)
	assert.True(t, errors.Is(errors.Canceled, err))
}

// someWriter adapts a memio.Buffer's WriteSome to ioctx.SomeWriter.
type someWriter struct{ b *memio.Buffer }

func (w someWriter) Write(_ context.Context, p []byte) (int, error) { return w.b.Write(p) }

func (w someWriter) WriteSome(_ context.Context, p []byte) (int, error) { return w.b.WriteSome(p) }

func TestWriteFull(t *testing.T) {
	ctx := context.Background()
	b := memio.New(make([]byte, 3))
	err := ioctx.WriteFull(ctx, someWriter{b}, []byte("abcd"))
	assert.True(t, errors.Is(errors.OutOfData, err))
	assert.True(t, errors.Recover(err).Err == moreio.ErrNoSpace)
	assert.EQ(t, string(b.Bytes()), "abc")

	var buf bytes.Buffer
	assert.NoError(t, ioctx.WriteFull(ctx, ioctx.FromStdWriter(&buf), []byte("xy")))
	assert.EQ(t, buf.String(), "xy")
}

type seekReader struct {
	ioctx.Reader
	ioctx.Seeker
}

func TestSkip(t *testing.T) {
	ctx := context.Background()
	r := strings.NewReader("0123456789")
	sr := seekReader{ioctx.FromStdReader(r), ioctx.FromStdSeeker(r)}
	n, err := ioctx.Skip(ctx, sr, 4)
	assert.NoError(t, err)
	assert.EQ(t, n, int64(4))
	n, err = ioctx.Skip(ctx, sr, 40)
	assert.NoError(t, err)
	assert.EQ(t, n, int64(6))

	n, err = ioctx.Skip(ctx, ioctx.FromStdReader(strings.NewReader("012")), 2)
	assert.NoError(t, err)
	assert.EQ(t, n, int64(2))

	_, err = ioctx.Skip(ctx, sr, -1)
	assert.True(t, errors.Is(errors.Invalid, err))
}
