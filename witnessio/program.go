package witnessio

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/fieldimpl"
)

// ProgramFile is the JSON shape the driver binaries read a program and its
// initial witness from. It is a convenience format for this repo's own
// tests and demos, not a standardized ACIR bytecode encoding.
type ProgramFile struct {
	Opcodes []OpcodeJSON      `json:"opcodes"`
	Witness map[string]string `json:"witness"` // witness index -> decimal value
}

// OpcodeJSON is the tagged-union JSON encoding of an acvm.Opcode: exactly
// one of its fields is non-nil, naming which opcode variant this entry is.
type OpcodeJSON struct {
	AssertZero *ExpressionJSON `json:"assert_zero,omitempty"`
}

// ExpressionJSON is the JSON encoding of an acvm.Expression over decimal
// string coefficients (field elements don't round-trip through JSON
// numbers without precision loss).
type ExpressionJSON struct {
	MulTerms  []MulTermJSON `json:"mul_terms,omitempty"`
	LinTerms  []LinTermJSON `json:"lin_terms,omitempty"`
	QConstant string        `json:"q_c"`
}

type MulTermJSON struct {
	Coefficient string `json:"coefficient"`
	Left        uint32 `json:"left"`
	Right       uint32 `json:"right"`
}

type LinTermJSON struct {
	Coefficient string `json:"coefficient"`
	Witness     uint32 `json:"witness"`
}

// ParseProgram decodes a ProgramFile's JSON bytes into opcodes and an
// initial witness map over fieldimpl.BN254. Only AssertZero opcodes are
// representable in this convenience format; richer programs (blackbox
// calls, memory, Brillig, nested Call) are constructed directly in Go by
// callers that need them, e.g. in tests.
func ParseProgram(data []byte) ([]acvm.Opcode[fieldimpl.BN254], *acvm.WitnessMap[fieldimpl.BN254], error) {
	var pf ProgramFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, nil, fmt.Errorf("witnessio: parse program: %w", err)
	}

	opcodes := make([]acvm.Opcode[fieldimpl.BN254], 0, len(pf.Opcodes))
	for _, oj := range pf.Opcodes {
		if oj.AssertZero == nil {
			return nil, nil, fmt.Errorf("witnessio: opcode with no recognized variant")
		}
		expr, err := parseExpression(oj.AssertZero)
		if err != nil {
			return nil, nil, err
		}
		opcodes = append(opcodes, acvm.Opcode[fieldimpl.BN254]{AssertZero: expr})
	}

	w := acvm.NewWitnessMap[fieldimpl.BN254]()
	for idxStr, valStr := range pf.Witness {
		idx, err := parseWitnessIndex(idxStr)
		if err != nil {
			return nil, nil, err
		}
		v, err := parseFieldDecimal(valStr)
		if err != nil {
			return nil, nil, err
		}
		if err := w.Insert(idx, v); err != nil {
			return nil, nil, err
		}
	}

	return opcodes, w, nil
}

func parseExpression(ej *ExpressionJSON) (*acvm.Expression[fieldimpl.BN254], error) {
	expr := &acvm.Expression[fieldimpl.BN254]{}
	for _, mt := range ej.MulTerms {
		c, err := parseFieldDecimal(mt.Coefficient)
		if err != nil {
			return nil, err
		}
		expr.MulTerms = append(expr.MulTerms, acvm.MulTerm[fieldimpl.BN254]{
			Coefficient: c,
			Left:        acvm.Witness(mt.Left),
			Right:       acvm.Witness(mt.Right),
		})
	}
	for _, lt := range ej.LinTerms {
		c, err := parseFieldDecimal(lt.Coefficient)
		if err != nil {
			return nil, err
		}
		expr.LinTerms = append(expr.LinTerms, acvm.LinearTerm[fieldimpl.BN254]{
			Coefficient: c,
			Witness:     acvm.Witness(lt.Witness),
		})
	}
	qc, err := parseFieldDecimal(ej.QConstant)
	if err != nil {
		return nil, err
	}
	expr.QConstant = qc
	return expr, nil
}

func parseFieldDecimal(s string) (fieldimpl.BN254, error) {
	if s == "" {
		return fieldimpl.ZeroBN254(), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fieldimpl.BN254{}, fmt.Errorf("witnessio: invalid decimal field value %q", s)
	}
	return fieldimpl.NewBN254FromBigInt(n), nil
}

func parseWitnessIndex(s string) (acvm.Witness, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, fmt.Errorf("witnessio: invalid witness index %q", s)
	}
	return acvm.Witness(n.Uint64()), nil
}
