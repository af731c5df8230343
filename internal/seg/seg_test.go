package seg

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/memio"
	"github.com/grailbio/testutil/assert"
)

type nothing struct{}

func TestResolve(t *testing.T) {
	_, err := Resolve(nil)
	assert.True(t, errors.Is(errors.Invalid, err))
	_, err = Resolve(nothing{})
	assert.True(t, errors.Is(errors.Invalid, err))

	s, err := Resolve(strings.NewReader("abc"))
	assert.NoError(t, err)
	assert.True(t, s.Readable())
	assert.False(t, s.Writable())
	assert.True(t, s.Sizable())
	assert.False(t, s.Truncatable())
	assert.False(t, s.Appendable())

	s, err = Resolve(memio.NewGrowable(nil))
	assert.NoError(t, err)
	assert.True(t, s.Writable())
	assert.True(t, s.Truncatable())
	assert.True(t, s.Appendable())

	s, err = Resolve(memio.New(nil))
	assert.NoError(t, err)
	assert.False(t, s.Appendable())
}

func TestStream(t *testing.T) {
	ctx := context.Background()
	s, err := Resolve(bytes.NewBufferString("0123456789"))
	assert.NoError(t, err)
	assert.False(t, s.Sizable())
	_, err = s.Size(ctx)
	assert.True(t, errors.Is(errors.NotSupported, err))

	p := make([]byte, 4)
	n, err := s.ReadSome(ctx, p, 0)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "0123")
	n, err = s.ReadAt(ctx, p, 4)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "4567")
	// A stream cannot move backwards.
	_, err = s.ReadSome(ctx, p, 0)
	assert.True(t, errors.Is(errors.NotSupported, err))
	n, err = s.ReadAt(ctx, p, 8)
	assert.EQ(t, n, 2)
	assert.True(t, err == io.EOF)
}

func TestPositional(t *testing.T) {
	ctx := context.Background()
	s, err := Resolve(strings.NewReader("0123456789"))
	assert.NoError(t, err)
	size, err := s.Size(ctx)
	assert.NoError(t, err)
	assert.EQ(t, size, int64(10))

	p := make([]byte, 4)
	n, err := s.ReadSome(ctx, p, 8)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "89")
	n, err = s.ReadSome(ctx, p, 10)
	assert.EQ(t, n, 0)
	assert.True(t, err == io.EOF)
	n, err = s.ReadAt(ctx, p, 7)
	assert.EQ(t, n, 3)
	assert.True(t, err == io.EOF)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	b := memio.NewGrowable(nil)
	s, err := Resolve(b)
	assert.NoError(t, err)
	n, err := s.Write(ctx, []byte("abc"), 2)
	assert.NoError(t, err)
	assert.EQ(t, n, 3)
	assert.EQ(t, b.Bytes(), []byte{0, 0, 'a', 'b', 'c'})
	assert.NoError(t, s.Truncate(ctx, 3))
	assert.EQ(t, len(b.Bytes()), 3)
	assert.NoError(t, s.Flush(ctx))

	ro, err := Resolve(strings.NewReader("x"))
	assert.NoError(t, err)
	_, err = ro.Write(ctx, []byte("y"), 0)
	assert.True(t, errors.Is(errors.NotSupported, err))
	assert.True(t, errors.Is(errors.NotSupported, ro.Truncate(ctx, 0)))
}

func TestCloseRelease(t *testing.T) {
	ctx := context.Background()
	b := memio.New([]byte("abc"))
	s, err := Resolve(b)
	assert.NoError(t, err)
	assert.NoError(t, s.Close(ctx))
	assert.NoError(t, s.Close(ctx))
	assert.EQ(t, b.Closes, 1)
	assert.True(t, s.Released())
	_, err = s.ReadSome(ctx, make([]byte, 1), 0)
	assert.True(t, errors.Is(errors.Closed, err))

	b = memio.New([]byte("abc"))
	s, _ = Resolve(b)
	assert.NoError(t, s.Release(ctx, false))
	assert.EQ(t, b.Closes, 0)
	_, err = s.Size(ctx)
	assert.True(t, errors.Is(errors.Closed, err))

	b = memio.New([]byte("abc"))
	s, _ = Resolve(b)
	assert.NoError(t, s.Release(ctx, true))
	assert.NoError(t, s.Close(ctx))
	assert.EQ(t, b.Closes, 1)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := Resolve(strings.NewReader("abc"))
	assert.NoError(t, err)
	_, err = s.ReadSome(ctx, make([]byte, 1), 0)
	assert.True(t, errors.Is(errors.Canceled, err))
}

// readSeeker hides every method of a bytes.Reader but Read and Seek.
type readSeeker struct{ r *bytes.Reader }

func (s readSeeker) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s readSeeker) Seek(off int64, whence int) (int64, error) {
	return s.r.Seek(off, whence)
}

func TestShared(t *testing.T) {
	ctx := context.Background()
	r := readSeeker{bytes.NewReader([]byte("AAAABBBB"))}
	a, err := ResolveShared(r)
	assert.NoError(t, err)
	b, err := ResolveShared(r)
	assert.NoError(t, err)

	p := make([]byte, 2)
	n, err := a.ReadSome(ctx, p, 0)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "AA")
	n, err = b.ReadSome(ctx, p, 4)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "BB")
	n, err = a.ReadSome(ctx, p, 2)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "AA")
	n, err = b.ReadAt(ctx, p, 6)
	assert.NoError(t, err)
	assert.EQ(t, string(p[:n]), "BB")
}

// stuck is a ReaderAt that never makes progress.
type stuck struct{}

func (stuck) ReadAt([]byte, int64) (int, error) { return 0, nil }

func TestNoProgress(t *testing.T) {
	s, err := Resolve(stuck{})
	assert.NoError(t, err)
	_, err = s.ReadSome(context.Background(), make([]byte, 4), 0)
	assert.True(t, err == io.ErrNoProgress)
}
