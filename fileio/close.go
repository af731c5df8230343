package fileio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
)

type named interface {
	// Name returns the path name.
	Name() string
}

// CloseAndReport returns a defer-able helper that calls f.Close and reports errors, if any,
// to *err. Pass your function's named return error. Example usage:
//
//	func processFile(filename string) (_ int, err error) {
//	  f, err := fileio.Open(filename)
//	  if err != nil { ... }
//	  defer fileio.CloseAndReport(f, &err)
//	  ...
//	}
//
// If your function returns with an error, any f.Close error will be chained appropriately.
func CloseAndReport(f io.Closer, err *error) {
	report(f, f.Close(), err)
}

// CloseAndReportCtx is CloseAndReport for context-aware closers, such as
// asynchronous views.
func CloseAndReportCtx(ctx context.Context, f ioctx.Closer, err *error) {
	report(f, f.Close(ctx), err)
}

func report(f interface{}, err2 error, err *error) {
	if err2 == nil {
		return
	}
	if *err != nil {
		var message string
		if namer, ok := f.(named); ok {
			message = fmt.Sprintf("second error on Close %s: %v", namer.Name(), err2)
		} else {
			message = fmt.Sprintf("second error on Close: %v", err2)
		}
		*err = errors.E(*err, message)
		return
	}
	*err = err2
}
