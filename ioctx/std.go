package ioctx

import (
	"context"
	"io"

	"github.com/grailbio/segio/moreio"
)

type (
	stdReader    struct{ io.Reader }
	stdWriter    struct{ io.Writer }
	stdCloser    struct{ io.Closer }
	stdSeeker    struct{ io.Seeker }
	stdReaderAt  struct{ io.ReaderAt }
	stdWriterAt  struct{ io.WriterAt }
	stdSizer     struct{ moreio.Sizer }
	stdTruncater struct{ moreio.Truncater }
	stdFlusher   struct{ moreio.Flusher }
)

// FromStdReader wraps io.Reader as Reader.
func FromStdReader(r io.Reader) Reader { return stdReader{r} }

func (r stdReader) Read(_ context.Context, dst []byte) (n int, err error) {
	return r.Reader.Read(dst)
}

// FromStdWriter wraps io.Writer as Writer.
func FromStdWriter(w io.Writer) Writer { return stdWriter{w} }

func (w stdWriter) Write(_ context.Context, src []byte) (n int, err error) {
	return w.Writer.Write(src)
}

// FromStdCloser wraps io.Closer as Closer.
func FromStdCloser(c io.Closer) Closer { return stdCloser{c} }

func (c stdCloser) Close(context.Context) error { return c.Closer.Close() }

// FromStdSeeker wraps io.Seeker as Seeker.
func FromStdSeeker(s io.Seeker) Seeker { return stdSeeker{s} }

func (s stdSeeker) Seek(_ context.Context, offset int64, whence int) (int64, error) {
	return s.Seeker.Seek(offset, whence)
}

// FromStdReadCloser wraps io.ReadCloser as ReadCloser.
func FromStdReadCloser(rc io.ReadCloser) ReadCloser {
	return struct {
		Reader
		Closer
	}{FromStdReader(rc), FromStdCloser(rc)}
}

// FromStdReaderAt wraps io.ReaderAt as ReaderAt.
func FromStdReaderAt(r io.ReaderAt) ReaderAt { return stdReaderAt{r} }

func (r stdReaderAt) ReadAt(_ context.Context, dst []byte, off int64) (n int, err error) {
	return r.ReaderAt.ReadAt(dst, off)
}

// FromStdWriterAt wraps io.WriterAt as WriterAt.
func FromStdWriterAt(w io.WriterAt) WriterAt { return stdWriterAt{w} }

func (w stdWriterAt) WriteAt(_ context.Context, src []byte, off int64) (n int, err error) {
	return w.WriterAt.WriteAt(src, off)
}

// FromStdSizer wraps moreio.Sizer as Sizer.
func FromStdSizer(s moreio.Sizer) Sizer { return stdSizer{s} }

func (s stdSizer) Size(context.Context) (int64, error) { return s.Sizer.Size() }

// FromStdTruncater wraps moreio.Truncater as Truncater.
func FromStdTruncater(t moreio.Truncater) Truncater { return stdTruncater{t} }

func (t stdTruncater) Truncate(_ context.Context, size int64) error {
	return t.Truncater.Truncate(size)
}

// FromStdFlusher wraps moreio.Flusher as Flusher.
func FromStdFlusher(f moreio.Flusher) Flusher { return stdFlusher{f} }

func (f stdFlusher) Flush(context.Context) error { return f.Flusher.Flush() }

type (
	ctxReader struct {
		ctx context.Context
		r   Reader
	}
	ctxWriter struct {
		ctx context.Context
		w   Writer
	}
	ctxReaderAt struct {
		ctx context.Context
		r   ReaderAt
	}
)

// ToStdReader binds r to ctx, returning an io.Reader suitable for
// stdlib consumers such as io.Copy.
func ToStdReader(ctx context.Context, r Reader) io.Reader { return ctxReader{ctx, r} }

func (r ctxReader) Read(dst []byte) (int, error) { return r.r.Read(r.ctx, dst) }

// ToStdWriter binds w to ctx, returning an io.Writer.
func ToStdWriter(ctx context.Context, w Writer) io.Writer { return ctxWriter{ctx, w} }

func (w ctxWriter) Write(src []byte) (int, error) { return w.w.Write(w.ctx, src) }

// ToStdReaderAt binds r to ctx, returning an io.ReaderAt.
func ToStdReaderAt(ctx context.Context, r ReaderAt) io.ReaderAt { return ctxReaderAt{ctx, r} }

func (r ctxReaderAt) ReadAt(dst []byte, off int64) (int, error) { return r.r.ReadAt(r.ctx, dst, off) }
