package ioctx

import (
	"context"
	"io"

	"github.com/grailbio/segio/moreio"
)

// FullReader is moreio.FullReader with context added.
type FullReader interface {
	ReadFull(context.Context, []byte) error
}

// ReadFull is moreio.ReadFull with context added. The context is checked
// between reads; a read in progress is not interrupted.
func ReadFull(ctx context.Context, r Reader, p []byte) error {
	if fr, ok := r.(FullReader); ok {
		return fr.ReadFull(ctx, p)
	}
	var n int
	for n < len(p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.Read(ctx, p[n:])
		n += m
		if n == len(p) {
			break
		}
		if err == io.EOF {
			return moreio.ShortRead(n, len(p))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFull is moreio.WriteFull with context added.
func WriteFull(ctx context.Context, w Writer, p []byte) error {
	sw, ok := w.(SomeWriter)
	if !ok {
		n, err := w.Write(ctx, p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		return err
	}
	var n int
	for n < len(p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := sw.WriteSome(ctx, p[n:])
		n += m
		if n == len(p) {
			break
		}
		if err == moreio.ErrNoSpace {
			return moreio.ShortWrite(n, len(p))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Skipper is moreio.Skipper with context added.
type Skipper interface {
	Skip(_ context.Context, n int64) (int64, error)
}

// Skip is moreio.Skip with context added. Readers that are neither
// Skippers nor Seekers are drained.
func Skip(ctx context.Context, r Reader, n int64) (int64, error) {
	if err := moreio.CheckSkip(n); err != nil {
		return 0, err
	}
	switch s := r.(type) {
	case Skipper:
		return s.Skip(ctx, n)
	case Seeker:
		pos, err := s.Seek(ctx, 0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		end, err := s.Seek(ctx, 0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		target := pos + n
		if target > end || target < pos {
			target = end
		}
		if _, err := s.Seek(ctx, target, io.SeekStart); err != nil {
			return 0, err
		}
		return target - pos, nil
	}
	return io.CopyN(io.Discard, ToStdReader(ctx, r), n)
}
