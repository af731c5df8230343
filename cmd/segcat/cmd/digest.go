// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"
)

// Digest prints the BLAKE3 digest of the selected view followed by its
// length, in the form "<hex digest>  <length>".
func Digest(ctx context.Context, env Env, args []string) (err error) {
	var (
		flags = pflag.NewFlagSet("digest", pflag.ContinueOnError)
		vf    viewFlags
	)
	vf.register(flags)
	if err = flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	m, err := vf.manifestOf(flags.Args())
	if err != nil {
		return err
	}
	v, err := vf.open(ctx, env, m)
	if err != nil {
		return err
	}
	defer fileio.CloseAndReportCtx(ctx, v, &err)
	r, err := vf.reader(ctx, v)
	if err != nil {
		return err
	}
	defer errors.CleanUp(r.Close, &err)
	h := blake3.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.Stdout, "%s  %d\n", hex.EncodeToString(h.Sum(nil)), n)
	return err
}
