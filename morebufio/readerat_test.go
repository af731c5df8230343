package morebufio

import (
	"context"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/segio/ioctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// countingReaderAt counts the reads that reach the underlying ReaderAt.
type countingReaderAt struct {
	ioctx.ReaderAt
	reads int
}

func (c *countingReaderAt) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	c.reads++
	return c.ReaderAt.ReadAt(ctx, p, off)
}

func TestReaderAt(t *testing.T) {
	const want = "abcdefghijklmnopqrstuvwxyz"
	ctx := context.Background()
	rawReaderAt := ioctx.FromStdReaderAt(strings.NewReader(want))

	t.Run("sequential", func(t *testing.T) {
		counting := &countingReaderAt{ReaderAt: rawReaderAt}
		bufAt := NewReaderAtSize(counting, 16)
		got := make([]byte, 0, len(want))
		for len(got) < len(want) {
			end := len(got) + 2
			if end > len(want) {
				end = len(want)
			}
			n, err := bufAt.ReadAt(ctx, got[len(got):end], int64(len(got)))
			got = got[:len(got)+n]
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		assert.Equal(t, want, string(got))
		assert.Equal(t, 2, counting.reads)
	})

	t.Run("random", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(1))
		for _, parallelism := range []int{1, len(want) / 2} {
			t.Run(strconv.Itoa(parallelism), func(t *testing.T) {
				bufAt := NewReaderAtSize(rawReaderAt, 5)
				got := make([]byte, len(want))
				perm := rnd.Perm(len(want) / 2)
				work := make(chan int)
				var g errgroup.Group
				for w := 0; w < parallelism; w++ {
					g.Go(func() error {
						for i := range work {
							start := i * 2
							limit := start + 2
							n, err := bufAt.ReadAt(ctx, got[start:limit], int64(start))
							if n != limit-start {
								return io.ErrShortBuffer
							}
							if err != nil && err != io.EOF {
								return err
							}
						}
						return nil
					})
				}
				for _, i := range perm {
					work <- i
				}
				close(work)
				require.NoError(t, g.Wait())
				assert.Equal(t, want, string(got))
			})
		}
	})
}
