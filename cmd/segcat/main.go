// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Command segcat reads and writes segmented views of files and S3
// objects. Run it without arguments for a list of subcommands.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/grailbio/segio/cmd/segcat/cmd"
	"github.com/grailbio/segio/log"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	sess, err := session.NewSessionWithOptions(session.Options{SharedConfigState: session.SharedConfigEnable})
	if err != nil {
		log.Fatal(err)
	}
	env := cmd.Env{Stdin: os.Stdin, Stdout: os.Stdout, S3: s3.New(sess)}
	if err := cmd.Run(context.Background(), env, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
