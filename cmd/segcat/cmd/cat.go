// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/manifest"
	"github.com/spf13/pflag"
)

func Cat(ctx context.Context, env Env, args []string) error {
	var (
		flags = pflag.NewFlagSet("cat", pflag.ContinueOnError)
		vf    viewFlags
		of    outFlags
	)
	vf.register(flags)
	of.register(flags)
	if err := flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	m, err := vf.manifestOf(flags.Args())
	if err != nil {
		return err
	}
	return copyOut(ctx, env, &vf, &of, m)
}

func Slice(ctx context.Context, env Env, args []string) error {
	var (
		flags = pflag.NewFlagSet("slice", pflag.ContinueOnError)
		vf    viewFlags
		of    outFlags
	)
	vf.register(flags)
	of.register(flags)
	if err := flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	if flags.NArg() != 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("slice: want one path, got %d", flags.NArg()))
	}
	if !vf.offset.set && !vf.length.set {
		return errors.E(errors.Invalid, "slice: --offset or --length is required")
	}
	m, err := vf.manifestOf(flags.Args())
	if err != nil {
		return err
	}
	return copyOut(ctx, env, &vf, &of, m)
}

func Manifest(ctx context.Context, env Env, args []string) error {
	var (
		flags     = pflag.NewFlagSet("manifest", pflag.ContinueOnError)
		vf        viewFlags
		of        outFlags
		printOnly = flags.Bool("print", false, "print the parsed manifest instead of its contents")
	)
	vf.register(flags)
	of.register(flags)
	if err := flags.Parse(args); err != nil {
		return errors.E(errors.Invalid, err)
	}
	if flags.NArg() != 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("manifest: want one manifest path, got %d", flags.NArg()))
	}
	m, err := manifest.LoadFile(flags.Arg(0))
	if err != nil {
		return err
	}
	if *printOnly {
		b, err := m.Marshal()
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(b)
		return err
	}
	return copyOut(ctx, env, &vf, &of, m)
}
