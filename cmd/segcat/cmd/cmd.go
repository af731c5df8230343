// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package cmd implements the segcat subcommands. Each subcommand reads
// or writes a composite view of local files and S3 objects.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/log"
	"github.com/spf13/pflag"
)

// Env is the environment in which subcommands run.
type Env struct {
	// Stdin and Stdout are the standard streams.
	Stdin  io.Reader
	Stdout io.Writer
	// S3 opens s3:// paths. It may be nil if no S3 paths are given.
	S3 s3iface.S3API
}

var commands = []struct {
	name     string
	callback func(ctx context.Context, env Env, args []string) error
	help     string
}{
	{"cat", Cat, `Cat concatenates files and S3 objects and writes them out. A window of the
concatenation can be selected with --offset and --length.`},
	{"slice", Slice, `Slice writes the window [--offset, --offset+--length) of a single file.`},
	{"digest", Digest, `Digest prints the BLAKE3 digest of the concatenation of its arguments.`},
	{"stat", Stat, `Stat prints the segment table of the concatenation of its arguments.`},
	{"split", Split, `Split copies stdin into the given files. Every file but the last receives
--size bytes; the last one receives the remainder.`},
	{"manifest", Manifest, `Manifest opens the view described by a YAML manifest and writes it out.`},
}

// PrintHelp prints the subcommand summary to stderr.
func PrintHelp() {
	fmt.Fprintln(os.Stderr, "Usage: segcat [--log level] subcommand [flags] args...")
	fmt.Fprintln(os.Stderr, "Subcommands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "%s: %s\n", c.name, c.help)
	}
}

// Run parses the global flags and runs the subcommand named by args.
func Run(ctx context.Context, env Env, args []string) error {
	flags := pflag.NewFlagSet("segcat", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	log.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	args = flags.Args()
	if len(args) == 0 {
		PrintHelp()
		return errors.E(errors.Invalid, "no subcommand given")
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.callback(ctx, env, args[1:])
		}
	}
	PrintHelp()
	return errors.E(errors.Invalid, "unknown command", args[0])
}
