package compress_test

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/segio/compress"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/testutil/assert"
)

// Generate a random ASCII text.
func randomText(buf *strings.Builder, r *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(byte(r.Intn(96) + 32))
	}
}

func compressed(t *testing.T, typ fileio.FileType, in string) []byte {
	var buf bytes.Buffer
	w, err := compress.NewWriter(&buf, typ)
	assert.NoError(t, err)
	_, err = io.Copy(w, strings.NewReader(in))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return buf.Bytes()
}

func testReader(t *testing.T, plaintext string, typ fileio.FileType) {
	r, ok := compress.NewReader(bytes.NewReader(compressed(t, typ, plaintext)))
	assert.True(t, ok)
	got := bytes.Buffer{}
	_, err := io.Copy(&got, r)
	assert.NoError(t, err)
	assert.NoError(t, r.Close())
	assert.EQ(t, got.String(), plaintext)
}

func TestReaderSmall(t *testing.T) {
	for _, typ := range []fileio.FileType{fileio.Gzip, fileio.Zstd, fileio.LZ4} {
		t.Run(fileio.FileSuffix(typ), func(t *testing.T) {
			testReader(t, "hello", typ)
			n := 1
			for i := 1; i < 25; i++ {
				r := rand.New(rand.NewSource(int64(i)))
				n = (n + 1) * 3 / 2
				buf := strings.Builder{}
				randomText(&buf, r, n)
				testReader(t, buf.String(), typ)
			}
		})
	}
}

// TestConcatenatedMembers checks that independently compressed pieces,
// laid end to end, decompress as the concatenation of their contents.
func TestConcatenatedMembers(t *testing.T) {
	for _, typ := range []fileio.FileType{fileio.Gzip, fileio.Zstd} {
		t.Run(fileio.FileSuffix(typ), func(t *testing.T) {
			var all bytes.Buffer
			for _, part := range []string{"first,", "second,", "third"} {
				all.Write(compressed(t, typ, part))
			}
			r, ok := compress.NewReader(&all)
			assert.True(t, ok)
			got, err := io.ReadAll(r)
			assert.NoError(t, err)
			assert.EQ(t, string(got), "first,second,third")
		})
	}
}

func TestReaderUncompressed(t *testing.T) {
	data := make([]byte, 1<<10+1)
	for n := 1; n <= len(data); n *= 2 {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			for i := range data[:n] {
				// Plain ASCII never matches a magic header.
				data[i] = byte('a' + i%26)
			}
			r, ok := compress.NewReader(bytes.NewReader(data[:n]))
			assert.False(t, ok)
			got, err := io.ReadAll(r)
			assert.NoError(t, err)
			assert.NoError(t, r.Close())
			assert.EQ(t, got, data[:n])
		})
	}
}

func TestPath(t *testing.T) {
	var buf bytes.Buffer
	w, err := compress.NewWriterPath(&buf, "out.zst")
	assert.NoError(t, err)
	_, err = w.Write([]byte("segments"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	r, err := compress.NewReaderPath(&buf, "in.zst")
	assert.NoError(t, err)
	got, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.EQ(t, string(got), "segments")

	w, err = compress.NewWriterPath(&buf, "plain.txt")
	assert.NoError(t, err)
	assert.True(t, w == nil)
	_, err = compress.NewWriterPath(&buf, "x.bz2")
	assert.True(t, errors.Is(errors.NotSupported, err))
}
