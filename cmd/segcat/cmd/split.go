// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/segio/concatio"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/segio/log"
	"github.com/spf13/pflag"
)

func Split(ctx context.Context, env Env, args []string) (err error) {
	var (
		flags = pflag.NewFlagSet("split", pflag.ContinueOnError)
		size  sizeFlag
	)
	flags.Var(&size, "size", "size of every output but the last")
	if err = flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	if !size.set || size.Bytes() == 0 {
		return errors.E(errors.Invalid, "split: --size must be positive")
	}
	if flags.NArg() == 0 {
		return errors.E(errors.Invalid, "split: no output paths")
	}
	files, err := fileio.OpenAll(ctx, flags.Args(), os.O_RDWR|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	segs := make([]concatio.Segment, len(files))
	for i, f := range files {
		segs[i] = concatio.Segment{R: f, Size: size.int64()}
	}
	// The last file is empty and grows with the input.
	segs[len(segs)-1].Size = 0
	v, err := concatio.New(segs, concatio.Options{})
	if err != nil {
		for _, f := range files {
			_ = f.Close()
		}
		return err
	}
	defer errors.CleanUp(v.Close, &err)
	n, err := io.Copy(v, env.Stdin)
	if err != nil {
		return err
	}
	if err = v.Flush(); err != nil {
		return err
	}
	log.Debug.Printf("split: segment sizes %v", v.Sizes())
	_, err = fmt.Fprintf(env.Stdout, "wrote %s to %d files\n", humanize.IBytes(uint64(n)), len(files))
	return err
}
