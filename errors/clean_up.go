package errors

import (
	"context"
	"fmt"
)

// CleanUp calls cleanUp and reports its error, if any, to *dst. It is
// meant to be deferred with the caller's named error result:
//
//	func copySegment(v *concatio.View, w io.Writer) (err error) {
//		defer errors.CleanUp(v.Close, &err)
//		...
//	}
//
// If the caller already returns an error, the cleanup error is noted
// in its message and the caller's error keeps its kind and cause.
func CleanUp(cleanUp func() error, dst *error) {
	addErr(cleanUp(), dst)
}

// CleanUpCtx is CleanUp for cleanups that take a context, such as the
// Close methods of asynchronous views and segments.
func CleanUpCtx(ctx context.Context, cleanUp func(context.Context) error, dst *error) {
	addErr(cleanUp(ctx), dst)
}

func addErr(err2 error, dst *error) {
	if err2 == nil {
		return
	}
	if *dst == nil {
		*dst = err2
		return
	}
	*dst = E(*dst, fmt.Sprintf("second error in Close: %v", err2))
}
