package blackboxstd

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/fieldimpl"
)

type countingBackend struct {
	calls atomic.Int32
}

func (c *countingBackend) Call(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	c.calls.Add(1)
	return []fieldimpl.BN254{fieldimpl.NewBN254FromUint64(7)}, nil
}

func TestCachingBackendSequentialIdenticalCallsEachReachInner(t *testing.T) {
	inner := &countingBackend{}
	c := NewCachingBackend(inner)

	r1, err := c.Call("sha256", [][]byte{{1, 2, 3}}, 1)
	assert.NoError(t, err)
	r2, err := c.Call("sha256", [][]byte{{1, 2, 3}}, 1)
	assert.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, int32(2), inner.calls.Load()) // sequential calls still each invoke inner; singleflight dedupes only concurrent overlap
}

func TestCacheKeyDistinguishesInputs(t *testing.T) {
	k1 := cacheKey("sha256", [][]byte{{1, 2}}, 1)
	k2 := cacheKey("sha256", [][]byte{{1, 3}}, 1)
	assert.NotEqual(t, k1, k2)
}
