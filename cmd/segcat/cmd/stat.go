// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/manifest"
	"github.com/spf13/pflag"
)

// Stat prints one line per segment: its index, offset within the
// view, size and path, followed by the total.
func Stat(ctx context.Context, env Env, args []string) (err error) {
	var (
		flags    = pflag.NewFlagSet("stat", pflag.ContinueOnError)
		exact    = flags.BoolP("bytes", "b", false, "print sizes in bytes")
		fromFile = flags.StringP("manifest", "m", "", "read the segments from a manifest")
	)
	if err = flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	var (
		m  *manifest.Manifest
		vf viewFlags
	)
	if *fromFile != "" {
		if flags.NArg() != 0 {
			return errors.E(errors.Invalid, "stat: paths and --manifest are exclusive")
		}
		m, err = manifest.LoadFile(*fromFile)
	} else {
		m, err = vf.manifestOf(flags.Args())
	}
	if err != nil {
		return err
	}
	v, err := m.Open(ctx, manifest.Openers{S3: env.S3})
	if err != nil {
		return err
	}
	defer errors.CleanUpCtx(ctx, v.Close, &err)
	format := func(n int64) string {
		if *exact {
			return fmt.Sprint(n)
		}
		return humanize.IBytes(uint64(n))
	}
	tw := tabwriter.NewWriter(env.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\toffset\tsize\tpath")
	var off int64
	for i, size := range v.Sizes() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, format(off), format(size), m.Segments[i].Path)
		off += size
	}
	fmt.Fprintf(tw, "total\t\t%s\t%d segments\n", format(off), v.Len())
	return tw.Flush()
}
