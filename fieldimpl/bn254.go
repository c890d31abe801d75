// Package fieldimpl provides a reference Field implementation for the ACVM
// core, backed by gnark-crypto's BN254 scalar field element type.
package fieldimpl

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// BN254 is a Field implementation over the BN254 scalar field, wrapping
// gnark-crypto's fr.Element. It satisfies acvm.Field.
type BN254 struct {
	inner fr.Element
}

// NewBN254FromUint64 builds a BN254 element from a small unsigned integer.
func NewBN254FromUint64(v uint64) BN254 {
	var e BN254
	e.inner.SetUint64(v)
	return e
}

// NewBN254FromBigInt reduces a big.Int modulo the BN254 scalar field.
func NewBN254FromBigInt(v *big.Int) BN254 {
	var e BN254
	e.inner.SetBigInt(v)
	return e
}

// ZeroBN254 returns the additive identity.
func ZeroBN254() BN254 { return BN254{} }

// OneBN254 returns the multiplicative identity.
func OneBN254() BN254 {
	var e BN254
	e.inner.SetOne()
	return e
}

func (e BN254) Add(other BN254) BN254 {
	var r BN254
	r.inner.Add(&e.inner, &other.inner)
	return r
}

func (e BN254) Mul(other BN254) BN254 {
	var r BN254
	r.inner.Mul(&e.inner, &other.inner)
	return r
}

func (e BN254) Sub(other BN254) BN254 {
	var r BN254
	r.inner.Sub(&e.inner, &other.inner)
	return r
}

func (e BN254) Neg() BN254 {
	var r BN254
	r.inner.Neg(&e.inner)
	return r
}

func (e BN254) Zero() BN254 { return ZeroBN254() }

func (e BN254) One() BN254 { return OneBN254() }

func (e BN254) Inverse() BN254 {
	var r BN254
	r.inner.Inverse(&e.inner)
	return r
}

func (e BN254) IsZero() bool { return e.inner.IsZero() }

func (e BN254) IsOne() bool { return e.inner.IsOne() }

func (e BN254) Equal(other BN254) bool { return e.inner.Equal(&other.inner) }

// NumBits returns the number of bits needed to represent the element's
// canonical (non-Montgomery) integer value.
func (e BN254) NumBits() uint {
	var b big.Int
	e.inner.BigInt(&b)
	return uint(b.BitLen())
}

// Uint64 returns the element's canonical value truncated to 64 bits.
func (e BN254) Uint64() uint64 {
	var b big.Int
	e.inner.BigInt(&b)
	return b.Uint64()
}

func (e BN254) String() string {
	return e.inner.String()
}

// BigInt returns the element's canonical value as a big.Int.
func (e BN254) BigInt() *big.Int {
	var b big.Int
	e.inner.BigInt(&b)
	return &b
}

// Bytes returns the element as fixed-size big-endian bytes, used by the
// byte-decomposing blackbox primitives (hashes operating on byte strings).
func (e BN254) Bytes() [32]byte {
	return e.inner.Bytes()
}
