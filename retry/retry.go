// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package retry implements retry policies for requests to remote
// segments, such as ranged S3 reads.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/log"
)

// A Policy tells whether, and after how long, a request that failed
// for the retry'th time should be tried again. Retries count from 0.
type Policy interface {
	Retry(retry int) (bool, time.Duration)
}

// Wait sleeps until the next try permitted by policy. It returns an
// error of kind Unavailable if the policy prohibits further tries, of
// kind Timeout if ctx's deadline would pass first, and ctx's error if
// ctx is done while waiting.
func Wait(ctx context.Context, policy Policy, retry int) error {
	keepgoing, wait := policy.Retry(retry)
	if !keepgoing {
		return errors.E(errors.Unavailable, fmt.Sprintf("gave up after %d tries", retry+1))
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
		return errors.E(errors.Timeout, "ran out of time while waiting for retry")
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do calls op until it succeeds, fails with an error that is not
// temporary (see errors.IsTemporary), or policy gives up. In the last
// case the returned error chains op's final error.
func Do(ctx context.Context, policy Policy, name string, op func() error) error {
	for retry := 0; ; retry++ {
		err := op()
		if err == nil || !errors.IsTemporary(err) {
			return err
		}
		log.Debug.Printf("%s: retry %d: %v", name, retry, err)
		if werr := Wait(ctx, policy, retry); werr != nil {
			return errors.E(err, name, werr.Error())
		}
	}
}

type backoff struct {
	factor       float64
	initial, max time.Duration
}

// Backoff returns a Policy that initially waits for the amount of
// time specified by parameter initial; on each try this value is
// multiplied by the provided factor, up to the max duration.
func Backoff(initial, max time.Duration, factor float64) Policy {
	return &backoff{
		initial: initial,
		max:     max,
		factor:  factor,
	}
}

func (b *backoff) Retry(retries int) (bool, time.Duration) {
	wait := float64(b.initial) * math.Pow(b.factor, float64(retries))
	if wait > float64(b.max) || math.IsInf(wait, 0) {
		return true, b.max
	}
	return true, time.Duration(wait)
}

type jitter struct {
	policy Policy
	frac   float64
}

// Jitter returns a policy that randomizes the waits of policy: a wait w
// becomes a uniform draw from [w*(1-frac), w]. Jitter(p, 1) is "full
// jitter" and Jitter(p, 0.5) "equal jitter".
func Jitter(policy Policy, frac float64) Policy {
	if frac < 0 || frac > 1 {
		panic("retry.Jitter: frac must be in [0, 1]")
	}
	return &jitter{policy, frac}
}

func (j *jitter) Retry(retries int) (bool, time.Duration) {
	ok, wait := j.policy.Retry(retries)
	if !ok || wait <= 0 {
		return ok, wait
	}
	cut := time.Duration(j.frac * rand.Float64() * float64(wait))
	return true, wait - cut
}

type maxtries struct {
	policy Policy
	max    int
}

// MaxTries returns a policy that permits at most n tries in total. The
// provided policy is invoked when the current number of tries is
// within the limit; if it is nil, retries are immediate.
func MaxTries(policy Policy, n int) Policy {
	if n < 1 {
		panic("retry.MaxTries: n < 1")
	}
	return &maxtries{policy, n - 1}
}

func (m *maxtries) Retry(retries int) (bool, time.Duration) {
	if retries >= m.max {
		return false, time.Duration(0)
	}
	if m.policy != nil {
		return m.policy.Retry(retries)
	}
	return true, time.Duration(0)
}
