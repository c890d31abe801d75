package witnessio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/fieldimpl"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	w := acvm.NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, fieldimpl.NewBN254FromUint64(10)))
	assert.NoError(t, w.Insert(5, fieldimpl.NewBN254FromUint64(42)))

	enc, err := Encode(w)
	assert.NoError(t, err)

	decoded, err := Decode(enc)
	assert.NoError(t, err)
	assert.Equal(t, w.Len(), decoded.Len())

	v0, ok := decoded.Get(0)
	assert.True(t, ok)
	assert.True(t, v0.Equal(fieldimpl.NewBN254FromUint64(10)))

	v5, ok := decoded.Get(5)
	assert.True(t, ok)
	assert.True(t, v5.Equal(fieldimpl.NewBN254FromUint64(42)))
}

func TestEncodeEmptyWitnessMap(t *testing.T) {
	w := acvm.NewWitnessMap[fieldimpl.BN254]()
	enc, err := Encode(w)
	assert.NoError(t, err)

	decoded, err := Decode(enc)
	assert.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
}
