// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package manifest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/go-test/deep"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/ioctx"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/s3test"
)

func size(n datasize.ByteSize) *Size { return &Size{n} }

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`
release_consumed: true
rate: medium
segments:
  - path: a.bin
  - path: b.bin
    offset: 4KB
    length: 1MB
  - path: s3://bucket/key
    length: 12
`))
	assert.NoError(t, err)
	want := &Manifest{
		ReleaseConsumed: true,
		Rate:            "medium",
		Segments: []Segment{
			{Path: "a.bin"},
			{Path: "b.bin", Offset: size(4 * datasize.KB), Length: size(datasize.MB)},
			{Path: "s3://bucket/key", Length: size(12)},
		},
	}
	if diff := deep.Equal(m, want); diff != nil {
		t.Error(diff)
	}
	assert.False(t, m.Segments[0].Bounded())
	assert.True(t, m.Segments[2].Bounded())
}

func TestParseErrors(t *testing.T) {
	for _, c := range []struct {
		name, yaml string
	}{
		{"empty", ""},
		{"no segments", "release_consumed: true\n"},
		{"no path", "segments:\n  - offset: 1\n"},
		{"unknown field", "segments:\n  - path: a\n    size: 3\n"},
		{"bad size", "segments:\n  - path: a\n    offset: 3 parsecs\n"},
		{"structured size", "segments:\n  - path: a\n    offset: [1]\n"},
		{"bad s3 path", "segments:\n  - path: s3://bucket\n"},
		{"bad rate", "rate: fast\nsegments:\n  - path: a\n"},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.yaml))
			assert.True(t, errors.Is(errors.Invalid, err), "got %v", err)
		})
	}
}

func TestMarshal(t *testing.T) {
	m := &Manifest{Segments: []Segment{{Path: "x", Offset: size(2 * datasize.KB)}}}
	b, err := m.Marshal()
	assert.NoError(t, err)
	m2, err := Parse(b)
	assert.NoError(t, err)
	if diff := deep.Equal(m, m2); diff != nil {
		t.Error(diff)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0600))
	}
}

func readAll(t *testing.T, m *Manifest, o Openers) string {
	t.Helper()
	ctx := context.Background()
	v, err := m.Open(ctx, o)
	assert.NoError(t, err)
	b, err := io.ReadAll(ioctx.ToStdReader(ctx, v))
	assert.NoError(t, err)
	assert.NoError(t, v.Close(ctx))
	return string(b)
}

func TestOpenFiles(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "manifest")
	defer cleanup()
	writeFiles(t, dir, map[string]string{
		"a": "hello, ",
		"b": "xxxworld",
		"c": "",
		"d": "!???",
	})
	path := filepath.Join(dir, "m.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
segments:
  - path: %[1]s/a
  - path: %[1]s/b
    offset: 3
  - path: %[1]s/c
  - path: %[1]s/d
    length: 1
`, dir)), 0600))
	m, err := LoadFile(path)
	assert.NoError(t, err)
	assert.EQ(t, readAll(t, m, Openers{}), "hello, world!")

	m.ReleaseConsumed = true
	m.Rate = "unlimited"
	assert.EQ(t, readAll(t, m, Openers{}), "hello, world!")
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "manifest")
	defer cleanup()
	writeFiles(t, dir, map[string]string{"a": "abc"})
	a := filepath.Join(dir, "a")

	m := &Manifest{Segments: []Segment{{Path: a}, {Path: filepath.Join(dir, "missing")}}}
	_, err := m.Open(ctx, Openers{})
	assert.True(t, errors.Is(errors.NotExist, err), "got %v", err)

	m = &Manifest{Segments: []Segment{{Path: a, Offset: size(2), Length: size(2)}}}
	_, err = m.Open(ctx, Openers{})
	assert.True(t, errors.Is(errors.Invalid, err), "got %v", err)

	m = &Manifest{Segments: []Segment{{Path: "s3://b/k"}}}
	_, err = m.Open(ctx, Openers{})
	assert.True(t, errors.Is(errors.NotSupported, err), "got %v", err)
}

type content struct{ data []byte }

func (c *content) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(c.data)) {
		return 0, io.EOF
	}
	n := copy(p, c.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (c *content) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(c.data) {
		data := make([]byte, end)
		copy(data, c.data)
		c.data = data
	}
	return copy(c.data[off:], p), nil
}

func (c *content) Size() int64 { return int64(len(c.data)) }

func (c *content) Checksum() string {
	checksum := sha256.Sum256(c.data)
	return fmt.Sprintf("%x", checksum[:])
}

func TestOpenMixed(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "manifest")
	defer cleanup()
	writeFiles(t, dir, map[string]string{"local": "local;"})
	client := s3test.NewClient(t, "b")
	c := &content{[]byte("remote object")}
	client.SetFileContentAt("obj", c, c.Checksum())

	m, err := Load(strings.NewReader(fmt.Sprintf(`
segments:
  - path: %s/local
  - path: s3://b/obj
    offset: 7
  - path: s3://b/obj
    length: 6
`, dir)))
	assert.NoError(t, err)
	assert.EQ(t, readAll(t, m, Openers{S3: client}), "local;objectremote")

	// Misspelled S3 paths are corrected before dispatch.
	m, err = Load(strings.NewReader("segments:\n  - path: s3:/b/obj\n    length: 6\n"))
	assert.NoError(t, err)
	assert.EQ(t, readAll(t, m, Openers{S3: client}), "remote")
}
