package blackboxstd

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/leopardracer/noir/fieldimpl"
)

// backend is the narrow capability CachingBackend wraps; it matches
// acvm.BlackBoxBackend[fieldimpl.BN254] without importing the acvm
// package, keeping blackboxstd usable independently of it.
type backend interface {
	Call(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error)
}

// CachingBackend deduplicates concurrent, identical blackbox calls across
// independently-running ACVM instances (one per nested Call opcode, per
// spec.md §5) using singleflight: callers racing on the same
// (name, inputs, numOutputs) key share one underlying computation instead
// of repeating it.
type CachingBackend struct {
	inner backend
	group singleflight.Group
}

// NewCachingBackend wraps an existing backend with call deduplication.
func NewCachingBackend(inner backend) *CachingBackend {
	return &CachingBackend{inner: inner}
}

func (c *CachingBackend) Call(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	key := cacheKey(name, inputs, numOutputs)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.inner.Call(name, inputs, numOutputs)
	})
	if err != nil {
		return nil, err
	}
	return v.([]fieldimpl.BN254), nil
}

func cacheKey(name string, inputs [][]byte, numOutputs int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(numOutputs))
	for _, in := range inputs {
		b.WriteByte('|')
		b.WriteString(hex.EncodeToString(in))
	}
	return b.String()
}
