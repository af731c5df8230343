package morebufio

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
)

// readerAt buffers serial, mostly contiguous positional reads, such as
// those a composite view issues to an S3 segment. It holds a single
// buffer: while one ReadAt uses it, concurrent ReadAts go straight to
// the underlying ReaderAt.
type readerAt struct {
	r      ioctx.ReaderAt
	inUse  atomic.Bool
	seeker *ReadSeeker
}

// NewReaderAtSize returns a ReaderAt that serves contiguous reads of r
// from a buffer of at least size bytes.
func NewReaderAtSize(r ioctx.ReaderAt, size int) ioctx.ReaderAt {
	return &readerAt{
		r:      r,
		seeker: NewReadSeekerSize(&readerAtSeeker{r: r}, size),
	}
}

func (r *readerAt) ReadAt(ctx context.Context, dst []byte, off int64) (int, error) {
	if !r.inUse.CompareAndSwap(false, true) {
		return r.r.ReadAt(ctx, dst, off)
	}
	defer r.inUse.Store(false)
	if _, err := r.seeker.Seek(ctx, off, io.SeekStart); err != nil {
		return 0, errors.E(err, "morebufio: seeking for ReadAt")
	}
	var n int
	for n < len(dst) {
		m, err := r.seeker.Read(ctx, dst[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

// readerAtSeeker reads a ReaderAt sequentially. It supports only the
// seeks ReadSeeker issues: relative ones, and, at initialization, the
// end, which it reports as 0 since the buffer never seeks from the end
// of a ReaderAt.
type readerAtSeeker struct {
	r   ioctx.ReaderAt
	pos int64
}

func (r *readerAtSeeker) Read(ctx context.Context, p []byte) (int, error) {
	n, err := r.r.ReadAt(ctx, p, r.pos)
	r.pos += int64(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (r *readerAtSeeker) Seek(_ context.Context, off int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		r.pos += off
	case io.SeekStart:
		r.pos = off
	default:
		r.pos = 0
	}
	return r.pos, nil
}
