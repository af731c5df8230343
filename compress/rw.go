// Package compress provides convenience functions for creating compressors and
// uncompressors based on filenames or magic headers. It lets segmented
// views be written out compressed, and lets concatenated compressed
// members (gzip members, zstd or lz4 frames) be read back as one stream.
package compress

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// errorReader is a ReadCloser implementation that always returns the given
// error.
type errorReader struct{ err error }

func (r *errorReader) Read(buf []byte) (int, error) { return 0, r.err }
func (r *errorReader) Close() error                 { return r.err }

func isBzip2Header(buf []byte) bool {
	// https://www.forensicswiki.org/wiki/Bzip2
	if len(buf) < 10 {
		return false
	}
	if !(buf[0] == 'B' && buf[1] == 'Z' && buf[2] == 'h' && buf[3] >= '1' && buf[3] <= '9') {
		return false
	}
	if buf[4] == 0x31 && buf[5] == 0x41 &&
		buf[6] == 0x59 && buf[7] == 0x26 &&
		buf[8] == 0x53 && buf[9] == 0x59 { // block magic
		return true
	}
	if buf[4] == 0x17 && buf[5] == 0x72 &&
		buf[6] == 0x45 && buf[7] == 0x38 &&
		buf[8] == 0x50 && buf[9] == 0x90 { // eos magic, happens only for an empty bz2 file.
		return true
	}
	return false
}

func isGzipHeader(buf []byte) bool {
	if len(buf) < 10 {
		return false
	}
	if !(buf[0] == 0x1f && buf[1] == 0x8b) {
		return false
	}
	if !(buf[2] <= 3 || buf[2] == 8) {
		return false
	}
	if (buf[3] & 0xc0) != 0 {
		return false
	}
	if !(buf[9] <= 0xd || buf[9] == 0xff) {
		return false
	}
	return true
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// sniff returns the compression format announced by buf.
func sniff(buf []byte) fileio.FileType {
	switch {
	case isGzipHeader(buf):
		return fileio.Gzip
	case isBzip2Header(buf):
		return fileio.Bzip2
	case bytes.HasPrefix(buf, zstdMagic):
		return fileio.Zstd
	case bytes.HasPrefix(buf, lz4Magic):
		return fileio.LZ4
	}
	return fileio.Other
}

// NewReader creates an uncompressing reader by reading the first few bytes of
// the input and finding a magic header for gzip, bzip2, zstd or lz4. If the
// magic header is found, it returns an uncompressing ReadCloser and true.
// Else, it returns io.NopCloser(r) and false.
//
// CAUTION: this function will misbehave when the input is a binary string that
// happens to have the same magic header as one of the formats.
func NewReader(r io.Reader) (io.ReadCloser, bool) {
	buf := bytes.Buffer{}
	_, err := io.CopyN(&buf, r, 128)
	var m io.Reader
	switch err {
	case io.EOF:
		m = &buf
	case nil:
		m = io.MultiReader(&buf, r)
	default:
		m = io.MultiReader(&buf, &errorReader{err})
	}
	typ := sniff(buf.Bytes())
	if typ == fileio.Other {
		return io.NopCloser(m), false
	}
	rc, err := newReader(m, typ)
	if err != nil {
		return &errorReader{err}, false
	}
	return rc, true
}

type zstdReader struct{ *zstd.Decoder }

func (r zstdReader) Close() error {
	r.Decoder.Close()
	return nil
}

func newReader(r io.Reader, typ fileio.FileType) (io.ReadCloser, error) {
	switch typ {
	case fileio.Gzip:
		return gzip.NewReader(r)
	case fileio.Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case fileio.Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReader{d}, nil
	case fileio.LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, errors.E(errors.NotSupported, fmt.Sprintf("compress: no reader for %s", fileio.FileSuffix(typ)))
}

// NewReaderPath creates a reader that uncompresses data read from the given
// reader. The compression format is determined by the pathname extensions.
// The following extensions are recognized:
//
//	.gz => gzip format
//	.bz2 => bz2 format
//	.zst => zstd format
//	.lz4 => lz4 frame format
//
// For other extensions, this function returns nil, nil.
//
// If the caller receives a non-nil reader from this function, it must close the
// reader after use. For some file formats, Close() is the only place that
// reports file corruption.
func NewReaderPath(r io.Reader, path string) (io.ReadCloser, error) {
	typ := fileio.DetermineType(path)
	if !IsCompressed(typ) {
		return nil, nil
	}
	rc, err := newReader(r, typ)
	if err != nil {
		return nil, errors.E(path, err)
	}
	return rc, nil
}

// NewWriter creates a WriteCloser that compresses data in format typ.
// The caller must call Close() once after writing all the data; Close
// does not close w.
func NewWriter(w io.Writer, typ fileio.FileType) (io.WriteCloser, error) {
	switch typ {
	case fileio.Gzip:
		return gzip.NewWriter(w), nil
	case fileio.Zstd:
		return zstd.NewWriter(w)
	case fileio.LZ4:
		return lz4.NewWriter(w), nil
	case fileio.Bzip2:
		return nil, errors.E(errors.NotSupported, "compress: bzip2 writer not supported")
	}
	return nil, errors.E(errors.NotSupported, fmt.Sprintf("compress: file type %d is not a compression format", typ))
}

// NewWriterPath is NewWriter with the format determined by the pathname
// extension. For extensions that do not name a compression format, it
// returns nil, nil.
func NewWriterPath(w io.Writer, path string) (io.WriteCloser, error) {
	typ := fileio.DetermineType(path)
	if !IsCompressed(typ) {
		return nil, nil
	}
	wc, err := NewWriter(w, typ)
	if err != nil {
		return nil, errors.E(path, err)
	}
	return wc, nil
}

// IsCompressed tells whether typ is a compression format.
func IsCompressed(typ fileio.FileType) bool {
	switch typ {
	case fileio.Gzip, fileio.Bzip2, fileio.Zstd, fileio.LZ4:
		return true
	}
	return false
}
