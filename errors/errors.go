// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package errors implements an error type that defines standard
// interpretable error codes for the conditions raised by segmented
// I/O: closed resources, exhausted streams, invalid arguments, and
// so on. Errors also carry an optional severity so that callers can
// decide whether an operation is worth retrying. Errors returned by
// this package can be chained, attributing one error to another.
//
// The package is designed so that errors raised by the views in
// concatio and sectionio can be told apart by kind, while errors
// raised by the underlying resources pass through untouched:
//
//	if errors.Is(errors.OutOfData, err) {
//		// a "fully" operation could not be satisfied
//	}
package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/grailbio/segio/log"
)

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically
// meaningful, and may be interpreted by the receiver of an error
// (e.g., to tell an exhausted stream from a broken one).
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Canceled indicates a context cancellation.
	Canceled
	// Timeout indicates an operation time out.
	Timeout
	// NotExist indicates a nonexistent resource.
	NotExist
	// NotAllowed indicates a permission failure.
	NotAllowed
	// NotSupported indicates that a resource lacks the capability an
	// operation needs, e.g. writing to a read-only segment.
	NotSupported
	// Invalid indicates that the caller supplied invalid parameters.
	Invalid
	// Closed indicates that the resource was closed, or released,
	// before the operation was attempted.
	Closed
	// OutOfData indicates that a "fully" operation ran out of data
	// (reads) or space (writes) before it could complete.
	OutOfData
	// Integrity indicates that a resource violated its declared
	// shape, e.g. a segment that ended before its declared size.
	Integrity
	// Precondition indicates that a precondition was not met.
	Precondition
	// Unavailable indicates that a resource was unavailable.
	Unavailable

	maxKind
)

var kinds = [maxKind]string{
	Other:        "unknown error",
	Canceled:     "operation was canceled",
	Timeout:      "operation timed out",
	NotExist:     "resource does not exist",
	NotAllowed:   "access denied",
	NotSupported: "operation not supported",
	Invalid:      "invalid argument",
	Closed:       "resource closed",
	OutOfData:    "out of data",
	Integrity:    "integrity error",
	Precondition: "precondition failed",
	Unavailable:  "resource unavailable",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	if k < 0 || k >= maxKind {
		return fmt.Sprintf("kind %d", int(k))
	}
	return kinds[k]
}

// Severity defines an Error's severity. An Error's severity determines
// whether an error-producing operation may be retried or not.
type Severity int

const (
	// Temporary indicates that the underlying error condition is likely
	// temporary, and can be possibly be retried.
	Temporary Severity = -1
	// Unknown indicates the error's severity is unknown. This is the default
	// severity level.
	Unknown Severity = 0
	// Fatal indicates that the underlying error condition is unrecoverable;
	// retrying is unlikely to help.
	Fatal Severity = 1
)

var severities = map[Severity]string{
	Temporary: "temporary",
	Unknown:   "unknown",
	Fatal:     "fatal",
}

// String returns a human-readable explanation of the error severity s.
func (s Severity) String() string {
	return severities[s]
}

// Error is the standard error type, carrying a kind (error code),
// message (error message), and potentially an underlying error.
// Errors should be constructed by errors.E, which interprets
// arguments according to a set of rules.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Severity is an optional severity.
	Severity Severity
	// Message is an optional error message associated with this error.
	Message string
	// Err is the error that caused this error, if any.
	// Errors can form chains through Err: the full chain is printed
	// by Error().
	Err error
}

// E constructs an error from its arguments, interpreted by type:
//
//   - Kind: the error's kind
//   - Severity: the error's severity
//   - string: the message; multiple strings are joined by a space
//   - *Error: a copy becomes the cause (E(e) alone returns a copy of e)
//   - error: the cause
//
// Any other argument yields an error of kind Invalid describing the
// bad call.
//
// Without an explicit kind, the error takes its cause's: the kind of an
// *Error cause moves up to the new error, and foreign causes are
// classified by classify. Severity is inherited the same way, and
// causes with a Temporary() method that returns true make the error
// Temporary.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Severity:
			e.Severity = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			copy := *arg
			if len(args) == 1 {
				return &copy
			}
			e.Err = &copy
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("errors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{
				Kind:    Invalid,
				Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg),
			}
		}
	}
	e.Message = msg.String()
	switch prev := e.Err.(type) {
	case nil:
	case *Error:
		e.inherit(prev)
	default:
		if t, ok := prev.(interface{ Temporary() bool }); ok && t.Temporary() && e.Severity == Unknown {
			e.Severity = Temporary
		}
		if e.Kind == Other {
			e.Kind = classify(prev)
		}
	}
	return e
}

// inherit moves the kind and severity of the cause prev up to e, unless
// e sets different ones. A moved attribute is cleared in prev so that
// it is printed once.
func (e *Error) inherit(prev *Error) {
	if prev.Kind == e.Kind || e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	if prev.Severity == e.Severity || e.Severity == Unknown {
		e.Severity = prev.Severity
		prev.Severity = Unknown
	}
}

// classify returns the kind of a foreign error: filesystem and context
// errors map to their kinds, errors with a Timeout() method that
// returns true are Timeout, and the rest are Other.
func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotExist
	case errors.Is(err, fs.ErrPermission):
		return NotAllowed
	case errors.Is(err, fs.ErrClosed):
		return Closed
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}
	if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
		return Timeout
	}
	return Other
}

// Recover recovers any error into an *Error. If the passed-in Error is already
// an error, it is simply returned; otherwise it is wrapped in an error.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(*Error); ok {
		return err
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
// It uses the separator defined by errors.Separator.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Severity != Unknown {
		pad(b, " ")
		b.WriteByte('(')
		b.WriteString(e.Severity.String())
		b.WriteByte(')')
	}

	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Unwrap returns the error's cause, so that the standard library's
// errors.Is and errors.As see through the chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout tells whether this error is a timeout error.
func (e *Error) Timeout() bool {
	return e.Kind == Timeout
}

// Temporary tells whether this error is temporary.
func (e *Error) Temporary() bool {
	return e.Severity <= Temporary
}

// Is tells whether an error has a specified kind, except for the
// indeterminate kind Other. In the case an error has kind Other, the
// chain is traversed until a non-Other error is encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// IsTemporary tells whether the provided error is likely temporary.
func IsTemporary(err error) bool {
	return Recover(err).Temporary()
}

// Match tells whether every nonempty field in err1
// matches the corresponding fields in err2. The comparison
// recurses on chained errors. Match is designed to aid in
// testing errors.
func Match(err1, err2 error) bool {
	var (
		e1 = Recover(err1)
		e2 = Recover(err2)
	)
	if e1.Kind != Other && e1.Kind != e2.Kind {
		return false
	}
	if e1.Severity != Unknown && e1.Severity != e2.Severity {
		return false
	}
	if e1.Message != "" && e1.Message != e2.Message {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		switch e1.Err.(type) {
		case *Error:
			return Match(e1.Err, e2.Err)
		default:
			return e1.Err.Error() == e2.Err.Error()
		}
	}
	return true
}

// Visit calls the given function for every error object in the chain, including
// itself.  Recursion stops after the function finds an error object of type
// other than *Error.
func Visit(err error, callback func(err error)) {
	callback(err)
	for {
		next, ok := err.(*Error)
		if !ok {
			break
		}
		err = next.Err
		callback(err)
	}
}

// New is synonymous with errors.New, and is provided here so that
// users need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
