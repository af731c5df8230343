// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package fileio_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "fileio")
	defer cleanup()
	path := filepath.Join(dir, "seg")

	f, err := fileio.Create(path)
	require.NoError(t, err)
	assert.True(t, f.Appendable())
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Flush())
	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
	require.NoError(t, f.Close())

	f, err = fileio.Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, f.Appendable())
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, path, f.Name())
}

func TestOpenAll(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "fileio")
	defer cleanup()
	var names []string
	for _, s := range []string{"a", "bb", "ccc"} {
		name := filepath.Join(dir, s)
		require.NoError(t, os.WriteFile(name, []byte(s), 0600))
		names = append(names, name)
	}
	files, err := fileio.OpenAll(context.Background(), names, os.O_RDONLY)
	require.NoError(t, err)
	require.Len(t, files, 3)
	for i, f := range files {
		size, err := f.Size()
		require.NoError(t, err)
		assert.EqualValues(t, i+1, size)
		require.NoError(t, f.Close())
	}

	_, err = fileio.OpenAll(context.Background(), append(names, filepath.Join(dir, "missing")), os.O_RDONLY)
	assert.True(t, errors.Is(errors.NotExist, err))
}
