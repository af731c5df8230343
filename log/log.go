// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package log provides leveled logging for the segmented views and
// the tools built on them. Messages go to an Outputter; the default
// one writes to Go's standard log package, filtered by the level set
// with SetLevel or LevelFlag. A Recorder keeps messages in memory so
// that tests can inspect what the views reported, e.g. segment
// releases.
//
// With the default configuration the toplevel functions behave like
// their counterparts in the standard log package.
package log

import (
	"fmt"
	"os"
)

// An Outputter is a destination for leveled messages.
type Outputter interface {
	// Level is the most verbose level the outputter accepts.
	Level() Level

	// Output writes s at the given level. Calldepth counts the frames
	// between the caller of the logging function and Output, for
	// outputters that annotate messages with source positions.
	Output(calldepth int, level Level, s string) error
}

var out Outputter = gologOutputter{}

// SetOutputter installs newOut and returns the previous outputter. It
// must not race with logging, so programs call it during
// initialization and tests restore the old outputter when done:
//
//	defer log.SetOutputter(log.SetOutputter(rec))
func SetOutputter(newOut Outputter) Outputter {
	old := out
	out = newOut
	return old
}

// GetOutputter returns the installed outputter.
func GetOutputter() Outputter {
	return out
}

// At tells whether messages at level are output.
func At(level Level) bool {
	return level <= out.Level()
}

// Output writes s at level to the installed outputter.
func Output(calldepth int, level Level, s string) error {
	return out.Output(calldepth+1, level, s)
}

// A Level is a verbosity level. Smaller levels are more important: an
// outputter at level L outputs the messages of every level M <= L.
type Level int

const (
	// Off outputs nothing.
	Off = Level(-3)
	// Error is for failures, such as a segment that could not be closed.
	Error = Level(-2)
	// Info is the default level.
	Info = Level(0)
	// Debug reports the inner workings of views: segment transitions,
	// releases and closes. Levels above Debug are "debug2", "debug3"
	// and so on.
	Debug = Level(1)
)

var levelNames = map[Level]string{
	Off:   "off",
	Error: "error",
	Info:  "info",
	Debug: "debug",
}

// String returns the name of l, as accepted by ParseLevel.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	if l < 0 {
		panic(fmt.Sprintf("invalid log level %d", int(l)))
	}
	return fmt.Sprintf("debug%d", l)
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "debug%d", &n); err == nil && n > 0 {
		return Level(n), nil
	}
	return Off, fmt.Errorf("invalid log level %q", s)
}

// Print outputs fmt.Sprint(v...) at level l.
func (l Level) Print(v ...interface{}) {
	if At(l) {
		_ = out.Output(2, l, fmt.Sprint(v...))
	}
}

// Printf outputs fmt.Sprintf(format, v...) at level l.
func (l Level) Printf(format string, v ...interface{}) {
	if At(l) {
		_ = out.Output(2, l, fmt.Sprintf(format, v...))
	}
}

// Print is Info.Print.
func Print(v ...interface{}) {
	if At(Info) {
		_ = out.Output(2, Info, fmt.Sprint(v...))
	}
}

// Printf is Info.Printf.
func Printf(format string, v ...interface{}) {
	if At(Info) {
		_ = out.Output(2, Info, fmt.Sprintf(format, v...))
	}
}

// Fatal outputs fmt.Sprint(v...) at level Error and exits with status 1.
func Fatal(v ...interface{}) {
	_ = out.Output(2, Error, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf outputs fmt.Sprintf(format, v...) at level Error and exits
// with status 1.
func Fatalf(format string, v ...interface{}) {
	_ = out.Output(2, Error, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Panicf outputs fmt.Sprintf(format, v...) at level Error and panics
// with the message.
func Panicf(format string, v ...interface{}) {
	s := fmt.Sprintf(format, v...)
	_ = out.Output(2, Error, s)
	panic(s)
}
