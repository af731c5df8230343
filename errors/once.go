// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"sync/atomic"
)

// Once keeps the first error reported to it by any number of
// goroutines, e.g. by segments closed concurrently. A zero Once is
// ready to use.
//
//	var e errors.Once
//	e.Set(errors.New("test error 0"))
type Once struct {
	// Ignored lists errors that Set drops. Errors match by the
	// standard library's errors.Is, so wrapped errors are dropped too.
	// Ignored typically includes io.EOF.
	Ignored []error
	err     atomic.Pointer[error]
}

// Err returns the first non-nil, non-ignored error passed to Set.
func (e *Once) Err() error {
	if p := e.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Set records err unless it is nil, ignored, or preceded by another
// error.
func (e *Once) Set(err error) {
	if err == nil {
		return
	}
	for _, ignored := range e.Ignored {
		if errors.Is(err, ignored) {
			return
		}
	}
	e.err.CompareAndSwap(nil, &err)
}
