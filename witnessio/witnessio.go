// Package witnessio encodes and decodes acvm.WitnessMap values using
// go-ark-serialize's canonical (arkworks-compatible) binary format, the
// same codec the teacher project uses for its transcript and proving-key
// artifacts.
package witnessio

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	arkSerialize "github.com/reilabs/go-ark-serialize"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/fieldimpl"
)

// entry is the canonical on-wire shape of one witness assignment: a
// 32-bit index paired with the element's big-endian byte encoding.
type entry struct {
	Index uint32
	Value [32]byte
}

// Encode serializes a witness map in index order into the canonical
// arkworks format.
func Encode(w *acvm.WitnessMap[fieldimpl.BN254]) ([]byte, error) {
	raw := w.Raw()
	entries := make([]entry, 0, len(raw))
	for id, v := range raw {
		entries = append(entries, entry{Index: uint32(id), Value: v.Bytes()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })

	var buf bytes.Buffer
	if _, err := arkSerialize.CanonicalSerializeWithMode(&buf, entries, false); err != nil {
		return nil, fmt.Errorf("witnessio: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a canonical witness map byte string produced by
// Encode (or by a compatible arkworks-side writer) back into a
// WitnessMap.
func Decode(data []byte) (*acvm.WitnessMap[fieldimpl.BN254], error) {
	var entries []entry
	if _, err := arkSerialize.CanonicalDeserializeWithMode(bytes.NewReader(data), &entries, false, false); err != nil {
		return nil, fmt.Errorf("witnessio: decode: %w", err)
	}

	w := acvm.NewWitnessMap[fieldimpl.BN254]()
	for _, e := range entries {
		v := fieldimpl.NewBN254FromBigInt(new(big.Int).SetBytes(e.Value[:]))
		if err := w.Insert(acvm.Witness(e.Index), v); err != nil {
			return nil, fmt.Errorf("witnessio: decode: %w", err)
		}
	}
	return w, nil
}
