// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package moreio

import (
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
)

// ReadFull reads exactly len(p) bytes from r. Unlike io.ReadFull, running
// out of data is reported as an error of kind errors.OutOfData (which
// unwraps to io.ErrUnexpectedEOF), whether or not any bytes were read.
// If r implements FullReader, its ReadFull is used directly.
func ReadFull(r io.Reader, p []byte) error {
	if fr, ok := r.(FullReader); ok {
		return fr.ReadFull(p)
	}
	var n int
	for n < len(p) {
		m, err := r.Read(p[n:])
		n += m
		if n == len(p) {
			break
		}
		if err == io.EOF {
			return ShortRead(n, len(p))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFull writes all of p to w. If w is a SomeWriter, WriteFull loops
// over WriteSome and reports ErrNoSpace as an error of kind
// errors.OutOfData; otherwise it defers to w.Write, whose contract
// already requires a complete write.
func WriteFull(w io.Writer, p []byte) error {
	sw, ok := w.(SomeWriter)
	if !ok {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		return err
	}
	var n int
	for n < len(p) {
		m, err := sw.WriteSome(p[n:])
		n += m
		if n == len(p) {
			break
		}
		if err == ErrNoSpace {
			return ShortWrite(n, len(p))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Skip advances r by up to n bytes and returns the number of bytes
// skipped; fewer than n means the stream ended. Skippers and Seekers are
// advanced without reading.
func Skip(r io.Reader, n int64) (int64, error) {
	if err := CheckSkip(n); err != nil {
		return 0, err
	}
	switch r := r.(type) {
	case Skipper:
		return r.Skip(n)
	case io.Seeker:
		return skipSeeker(r, n)
	}
	return io.CopyN(io.Discard, r, n)
}

func skipSeeker(s io.Seeker, n int64) (int64, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	target := pos + n
	if target > end || target < pos {
		target = end
	}
	if _, err := s.Seek(target, io.SeekStart); err != nil {
		return 0, err
	}
	return target - pos, nil
}

// ShortRead returns the OutOfData error reported by "fully" reads that
// obtained only got of the want bytes.
func ShortRead(got, want int) error {
	return errors.E(errors.OutOfData, fmt.Sprintf("read %d of %d bytes", got, want), io.ErrUnexpectedEOF)
}

// ShortWrite returns the OutOfData error reported by "fully" writes that
// stored only got of the want bytes.
func ShortWrite(got, want int) error {
	return errors.E(errors.OutOfData, fmt.Sprintf("wrote %d of %d bytes", got, want), ErrNoSpace)
}

// OutOfData returns the error reported by "fully" reads that are refused
// up front because only avail bytes remain.
func OutOfData(want int, avail int64) error {
	if avail < 0 {
		avail = 0
	}
	return errors.E(errors.OutOfData, fmt.Sprintf("want %d bytes, %d available", want, avail), io.ErrUnexpectedEOF)
}

// OutOfSpace is OutOfData for writes.
func OutOfSpace(want int, avail int64) error {
	if avail < 0 {
		avail = 0
	}
	return errors.E(errors.OutOfData, fmt.Sprintf("want to write %d bytes, room for %d", want, avail), ErrNoSpace)
}
