// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package log

import (
	"flag"
	"io"
	golog "log"
	"sync/atomic"

	"github.com/spf13/pflag"
)

// golevel is the level of the default outputter.
var golevel = Info

var flagsAdded int32

const levelUsage = "set log level (off, error, info, debug)"

// AddFlags registers the -log flag with flag.CommandLine. It may be
// called only once.
func AddFlags() {
	if !atomic.CompareAndSwapInt32(&flagsAdded, 0, 1) {
		Error.Printf("log.AddFlags: called twice")
		return
	}
	flag.Var(LevelFlag(), "log", levelUsage)
}

// RegisterFlags registers the --log flag with a pflag flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Var(LevelFlag(), "log", levelUsage)
}

// Flags for SetFlags; see the standard log package.
const (
	Ldate         = golog.Ldate
	Ltime         = golog.Ltime
	Lmicroseconds = golog.Lmicroseconds
	Lshortfile    = golog.Lshortfile
	LstdFlags     = Ldate | Ltime
)

// SetFlags sets the output flags of the standard logger.
func SetFlags(flag int) {
	golog.SetFlags(flag)
}

// SetOutput sets the destination of the standard logger.
func SetOutput(w io.Writer) {
	golog.SetOutput(w)
}

// SetPrefix sets the prefix of the standard logger.
func SetPrefix(prefix string) {
	golog.SetPrefix(prefix)
}

// SetLevel sets the level of the default outputter. Call it at the
// start of main, before any logging.
func SetLevel(level Level) {
	golevel = level
}

// LevelFlag returns a flag value that sets the level of the default
// outputter. It is both a flag.Value and a pflag.Value.
func LevelFlag() *Flag {
	return new(Flag)
}

// Flag is the flag value returned by LevelFlag.
type Flag struct{}

var (
	_ flag.Getter = (*Flag)(nil)
	_ pflag.Value = (*Flag)(nil)
)

func (*Flag) String() string { return golevel.String() }

// Type implements pflag.Value.
func (*Flag) Type() string { return "level" }

// Set implements flag.Value.
func (*Flag) Set(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	golevel = l
	return nil
}

// Get implements flag.Getter.
func (*Flag) Get() interface{} {
	return golevel
}

// gologOutputter writes to the standard logger.
type gologOutputter struct{}

func (gologOutputter) Level() Level { return golevel }

func (gologOutputter) Output(calldepth int, level Level, s string) error {
	if golevel < level {
		return nil
	}
	return golog.Output(calldepth+1, s)
}
