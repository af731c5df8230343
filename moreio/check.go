package moreio

import (
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
)

// CheckOffset validates an absolute offset passed to a positional
// operation.
func CheckOffset(off int64) error {
	if off < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative offset %d", off))
	}
	return nil
}

// CheckSkip validates a skip count.
func CheckSkip(n int64) error {
	if n < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative skip %d", n))
	}
	return nil
}

// ResolveSeek computes the target of a seek on a stream positioned at pos
// whose size is size. Targets before the start are invalid; targets past
// the end are out of data unless the stream is growable.
func ResolveSeek(pos, size, off int64, whence int, growable bool) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = off
	case io.SeekCurrent:
		target = pos + off
	case io.SeekEnd:
		target = size + off
	default:
		return 0, errors.E(errors.Invalid, fmt.Sprintf("invalid whence %d", whence))
	}
	if target < 0 {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("seek to %d moves before start", target))
	}
	if target > size && !growable {
		return 0, errors.E(errors.OutOfData, fmt.Sprintf("seek to %d moves past end %d", target, size))
	}
	return target, nil
}
