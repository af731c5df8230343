// ioctx adds context.Context to io APIs.
//
// The interfaces here are the context-aware (asynchronous) form of the
// capability contracts in moreio: every call is a point where the
// caller's context may cancel the operation before the underlying
// resource is touched. Conversions to and from the stdlib and moreio
// forms live in std.go; derived "fully" operations in full.go.
package ioctx

import "context"

// Reader is io.Reader with context added.
type Reader interface {
	Read(context.Context, []byte) (n int, err error)
}

// Writer is io.Writer with context added.
type Writer interface {
	Write(context.Context, []byte) (n int, err error)
}

// Closer is io.Closer with context added.
type Closer interface {
	Close(context.Context) error
}

// Seeker is io.Seeker with context added.
type Seeker interface {
	Seek(_ context.Context, offset int64, whence int) (int64, error)
}

// ReaderAt is io.ReaderAt with context added.
type ReaderAt interface {
	ReadAt(_ context.Context, dst []byte, off int64) (n int, err error)
}

// WriterAt is io.WriterAt with context added.
type WriterAt interface {
	WriteAt(_ context.Context, src []byte, off int64) (n int, err error)
}

// Sizer is moreio.Sizer with context added.
type Sizer interface {
	Size(context.Context) (int64, error)
}

// Truncater is moreio.Truncater with context added.
type Truncater interface {
	Truncate(_ context.Context, size int64) error
}

// Flusher is moreio.Flusher with context added.
type Flusher interface {
	Flush(context.Context) error
}

// SomeWriter is moreio.SomeWriter with context added.
type SomeWriter interface {
	WriteSome(context.Context, []byte) (n int, err error)
}

// ReadCloser is io.ReadCloser with context added.
type ReadCloser interface {
	Reader
	Closer
}

// ReadSeeker is io.ReadSeeker with context added.
type ReadSeeker interface {
	Reader
	Seeker
}

// ReadWriteSeeker is io.ReadWriteSeeker with context added.
type ReadWriteSeeker interface {
	Reader
	Writer
	Seeker
}
