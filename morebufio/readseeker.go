package morebufio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
)

// ReadSeeker buffers reads from an ioctx.ReadSeeker, such as an
// asynchronous view. Seeks that land inside the buffer do not touch
// the underlying stream.
type ReadSeeker struct {
	r ioctx.ReadSeeker
	// buf[off:] is buffered and unread.
	buf []byte
	off int

	// pos is the caller's position in r's stream. r itself is at
	// pos + len(buf) - off. end is the size of the stream. Both are -1
	// until the first operation.
	pos, end int64
}

var _ ioctx.ReadSeeker = (*ReadSeeker)(nil)

// minBufferSize equals bufio.minBufferSize.
const minBufferSize = 16

// NewReadSeekerSize returns a ReadSeeker with a buffer of at least size
// bytes. If r is already a ReadSeeker with a large enough buffer, it is
// returned as is.
func NewReadSeekerSize(r ioctx.ReadSeeker, size int) *ReadSeeker {
	if b, ok := r.(*ReadSeeker); ok && cap(b.buf) >= size {
		return b
	}
	if size < minBufferSize {
		size = minBufferSize
	}
	return &ReadSeeker{r: r, buf: make([]byte, 0, size), pos: -1, end: -1}
}

// Buffered returns the number of bytes that can be read without
// touching the underlying stream.
func (b *ReadSeeker) Buffered() int { return len(b.buf) - b.off }

func (b *ReadSeeker) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := b.init(ctx); err != nil {
		return 0, err
	}
	var err error
	if b.Buffered() == 0 {
		var n int
		n, err = b.r.Read(ctx, b.buf[:cap(b.buf)])
		b.buf, b.off = b.buf[:n], 0
	}
	n := copy(p, b.buf[b.off:])
	b.off += n
	b.pos += int64(n)
	if n > 0 && err == io.EOF {
		// EOF is reported by the next read, once the buffer is drained.
		err = nil
	}
	return n, err
}

func (b *ReadSeeker) Seek(ctx context.Context, off int64, whence int) (int64, error) {
	if err := b.init(ctx); err != nil {
		return 0, err
	}
	var diff int64
	switch whence {
	case io.SeekStart:
		diff = off - b.pos
	case io.SeekCurrent:
		diff = off
	case io.SeekEnd:
		diff = b.end + off - b.pos
	default:
		return 0, errors.E(errors.Invalid, fmt.Sprintf("morebufio: invalid whence %d", whence))
	}
	if -int64(b.off) <= diff && diff <= int64(b.Buffered()) {
		b.off += int(diff)
		b.pos += diff
		return b.pos, nil
	}
	// Drop the buffer and move r relative to where it actually is.
	diff -= int64(b.Buffered())
	b.buf, b.off = b.buf[:0], 0
	pos, err := b.r.Seek(ctx, diff, io.SeekCurrent)
	if err != nil {
		// r's position is unknown; find it again next time.
		b.pos, b.end = -1, -1
		return 0, err
	}
	b.pos = pos
	return b.pos, nil
}

// init finds the stream's position and size. Streams that report their
// size, as views do, cost one seek; others cost three.
func (b *ReadSeeker) init(ctx context.Context) error {
	if b.pos >= 0 && b.end >= 0 {
		return nil
	}
	pos, err := b.r.Seek(ctx, 0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if s, ok := b.r.(ioctx.Sizer); ok {
		if b.end, err = s.Size(ctx); err != nil {
			return err
		}
		b.pos = pos
		return nil
	}
	if b.end, err = b.r.Seek(ctx, 0, io.SeekEnd); err != nil {
		return err
	}
	if _, err = b.r.Seek(ctx, pos, io.SeekStart); err != nil {
		return err
	}
	b.pos = pos
	return nil
}
