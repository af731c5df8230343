package errors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// closer is a segment whose Close fails with err.
type closer struct {
	err    error
	closed int
}

func (c *closer) Close() error { c.closed++; return c.err }

func (c *closer) CloseCtx(context.Context) error { return c.Close() }

func TestCleanUp(t *testing.T) {
	var (
		closeErr = New("close segment 2")
		readErr  = E(OutOfData, "read 3 of 8 bytes")
	)
	cleanUps := map[string]func(*closer, *error){
		"CleanUp":    func(c *closer, err *error) { CleanUp(c.Close, err) },
		"CleanUpCtx": func(c *closer, err *error) { CleanUpCtx(context.Background(), c.CloseCtx, err) },
	}
	for name, cleanUp := range cleanUps {
		t.Run(name, func(t *testing.T) {
			run := func(c *closer, ret error) (err error) {
				defer cleanUp(c, &err)
				return ret
			}

			c := &closer{}
			assert.NoError(t, run(c, nil))
			assert.Equal(t, 1, c.closed)

			c = &closer{err: closeErr}
			assert.Equal(t, closeErr, run(c, nil))

			c = &closer{}
			assert.Equal(t, readErr, run(c, readErr))

			c = &closer{err: closeErr}
			err := run(c, readErr)
			assert.Contains(t, err.Error(), "read 3 of 8 bytes")
			assert.Contains(t, err.Error(), "second error in Close: close segment 2")
			assert.True(t, Is(OutOfData, err), "kind of the returned error survives: %v", err)
		})
	}
}
