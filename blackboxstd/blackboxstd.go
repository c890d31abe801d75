// Package blackboxstd provides a native-Go acvm.BlackBoxBackend: concrete
// implementations of every blackbox primitive over
// fieldimpl.BN254, backed by gnark-crypto and x/crypto.
package blackboxstd

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/leopardracer/noir/fieldimpl"
)

// Primitive names the dispatcher may invoke. These mirror the names ACIR
// assigns its blackbox functions; the core (acvm.BlackBoxCall.Name) treats
// them as opaque strings, so this package is the only place that must
// agree on spelling.
const (
	Keccak256           = "keccak256"
	Sha256              = "sha256"
	Blake2sHash         = "blake2s"
	MimcBn254           = "mimc_bn254"
	EmbeddedCurveAdd    = "embedded_curve_add"
	EmbeddedCurveDouble = "embedded_curve_double"
	RangeCheck          = "range_check"
)

// Failed reports a primitive rejecting its inputs outright (malformed
// point, division by a non-invertible element, etc.), mapped by the
// dispatcher to ErrBlackBoxFunctionFailed.
type Failed struct {
	Primitive string
	Reason    string
}

func (f *Failed) Error() string {
	return fmt.Sprintf("%s: %s", f.Primitive, f.Reason)
}

// Backend implements acvm.BlackBoxBackend over fieldimpl.BN254, dispatching
// on the primitive name.
type Backend struct{}

// NewBackend returns the default native backend.
func NewBackend() *Backend { return &Backend{} }

// Call dispatches a single blackbox primitive invocation.
func (b *Backend) Call(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	switch name {
	case Keccak256:
		return hashBytes(name, inputs, numOutputs, sha3.NewLegacyKeccak256())
	case Sha256:
		return hashBytes(name, inputs, numOutputs, sha256.New())
	case Blake2sHash:
		return blake2sHash(name, inputs, numOutputs)
	case MimcBn254:
		return mimcHash(inputs, numOutputs)
	case EmbeddedCurveAdd:
		return curveAdd(inputs)
	case EmbeddedCurveDouble:
		return curveDouble(inputs)
	case RangeCheck:
		return rangeCheck(inputs, numOutputs)
	default:
		return nil, &Failed{Primitive: name, Reason: "unknown blackbox primitive"}
	}
}

func bytesToDigestFields(digest []byte, numOutputs int) []fieldimpl.BN254 {
	out := make([]fieldimpl.BN254, numOutputs)
	for i := 0; i < numOutputs && i < len(digest); i++ {
		out[i] = fieldimpl.NewBN254FromUint64(uint64(digest[i]))
	}
	return out
}

func joinBytes(inputs [][]byte) []byte {
	var total int
	for _, in := range inputs {
		total += len(in)
	}
	out := make([]byte, 0, total)
	for _, in := range inputs {
		out = append(out, in...)
	}
	return out
}

// hasher is the subset of hash.Hash Sum needs; kept narrow so both sha3
// and crypto/sha256 digests satisfy it without an adapter type.
type hasher interface {
	Write([]byte) (int, error)
	Sum([]byte) []byte
}

func hashBytes(name string, inputs [][]byte, numOutputs int, h hasher) ([]fieldimpl.BN254, error) {
	if _, err := h.Write(joinBytes(inputs)); err != nil {
		return nil, &Failed{Primitive: name, Reason: err.Error()}
	}
	digest := h.Sum(nil)
	return bytesToDigestFields(digest, numOutputs), nil
}

func blake2sHash(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	h, err := blake2s.New256(nil)
	if err != nil {
		return nil, &Failed{Primitive: name, Reason: err.Error()}
	}
	return hashBytes(name, inputs, numOutputs, h)
}

// mimcHash hashes already-reduced BN254 field elements (reconstructed
// from their canonical big-endian byte encoding) using gnark-crypto's
// native MiMC permutation, avoiding any in-circuit gadget dependency.
func mimcHash(inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	h := mimc.NewMiMC()
	for _, in := range inputs {
		if _, err := h.Write(in); err != nil {
			return nil, &Failed{Primitive: MimcBn254, Reason: err.Error()}
		}
	}
	digest := h.Sum(nil)
	result := fieldimpl.NewBN254FromBigInt(new(big.Int).SetBytes(digest))
	out := make([]fieldimpl.BN254, numOutputs)
	if numOutputs > 0 {
		out[0] = result
	}
	return out, nil
}

func curveAdd(inputs [][]byte) ([]fieldimpl.BN254, error) {
	if len(inputs) != 4 {
		return nil, &Failed{Primitive: EmbeddedCurveAdd, Reason: "expected 4 inputs (x1,y1,x2,y2)"}
	}
	p1, err := pointFromBytes(inputs[0], inputs[1])
	if err != nil {
		return nil, &Failed{Primitive: EmbeddedCurveAdd, Reason: err.Error()}
	}
	p2, err := pointFromBytes(inputs[2], inputs[3])
	if err != nil {
		return nil, &Failed{Primitive: EmbeddedCurveAdd, Reason: err.Error()}
	}
	var sum twistededwards.PointAffine
	sum.Add(p1, p2)
	return pointToFields(&sum), nil
}

func curveDouble(inputs [][]byte) ([]fieldimpl.BN254, error) {
	if len(inputs) != 2 {
		return nil, &Failed{Primitive: EmbeddedCurveDouble, Reason: "expected 2 inputs (x,y)"}
	}
	p, err := pointFromBytes(inputs[0], inputs[1])
	if err != nil {
		return nil, &Failed{Primitive: EmbeddedCurveDouble, Reason: err.Error()}
	}
	var dbl twistededwards.PointAffine
	dbl.Add(p, p)
	return pointToFields(&dbl), nil
}

func pointFromBytes(xb, yb []byte) (*twistededwards.PointAffine, error) {
	var p twistededwards.PointAffine
	p.X.SetBytes(xb)
	p.Y.SetBytes(yb)
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("point not on embedded curve")
	}
	return &p, nil
}

func pointToFields(p *twistededwards.PointAffine) []fieldimpl.BN254 {
	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)
	return []fieldimpl.BN254{
		fieldimpl.NewBN254FromBigInt(&x),
		fieldimpl.NewBN254FromBigInt(&y),
	}
}

// rangeCheck validates that the single input's resolved value already fit
// within its declared bit width; by the time Call runs, InputToValue has
// already enforced that upstream, so this primitive is a no-op returning
// numOutputs zero elements (none for the usual zero-output call). It exists so Opcode.BlackBoxCall.Name == RangeCheck has a
// concrete home rather than falling through to the unknown-primitive case.
func rangeCheck(_ [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	return make([]fieldimpl.BN254, numOutputs), nil
}
