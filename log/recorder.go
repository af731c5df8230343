// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package log

import (
	"strings"
	"sync"
)

// Recorder is an Outputter that keeps the messages it accepts in
// memory. It is safe for concurrent use.
type Recorder struct {
	level Level

	mu       sync.Mutex
	messages []Message
}

// Message is a message kept by a Recorder.
type Message struct {
	Level Level
	Text  string
}

// NewRecorder returns a recorder that accepts messages up to level.
func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

// Level implements Outputter.
func (r *Recorder) Level() Level { return r.level }

// Output implements Outputter.
func (r *Recorder) Output(_ int, level Level, s string) error {
	if level > r.level {
		return nil
	}
	r.mu.Lock()
	r.messages = append(r.messages, Message{level, s})
	r.mu.Unlock()
	return nil
}

// Messages returns the messages recorded so far, oldest first.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Count returns the number of recorded messages at level that contain
// substr.
func (r *Recorder) Count(level Level, substr string) int {
	var n int
	for _, m := range r.Messages() {
		if m.Level == level && strings.Contains(m.Text, substr) {
			n++
		}
	}
	return n
}

// Reset drops the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}
