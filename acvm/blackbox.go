package acvm

import "fmt"

// FunctionInput is one input to a blackbox primitive call: an expression
// to resolve against the witness map, plus the bit width the resolved
// value is declared to fit within.
type FunctionInput[F Field[F]] struct {
	Value   *Expression[F]
	NumBits uint32
}

// BlackBoxCall is a fully-described invocation of a named blackbox
// primitive (a cryptographic or bit-manipulation function ACIR treats as
// opaque), with its outputs as witnesses to assign.
type BlackBoxCall[F Field[F]] struct {
	Name      string
	Inputs    []FunctionInput[F]
	Outputs   []Witness
	Predicate *Expression[F] // nil means "always true"
}

// BlackBoxBackend supplies the actual cryptographic implementations for
// every primitive name the dispatcher may encounter. Concrete instances
// (blackboxstd.Backend) are constructed by the host application and
// injected into the ACVM; the core package only depends on this interface.
type BlackBoxBackend[F Field[F]] interface {
	// Call evaluates the named primitive over already-validated input
	// values (one []byte per FunctionInput, big-endian, already checked
	// against NumBits) and returns one field element per declared
	// output. An error here is wrapped as ErrBlackBoxFunctionFailed.
	Call(name string, inputs [][]byte, numOutputs int) ([]F, error)
}

// BlackBoxDispatcher validates blackbox call inputs against their declared
// bit widths and drives a BlackBoxBackend, assigning results back into the
// witness map.
type BlackBoxDispatcher[F Field[F]] struct {
	backend  BlackBoxBackend[F]
	solver   *ExpressionSolver[F]
	pedantic bool
}

// NewBlackBoxDispatcher wraps a backend with input validation. When
// pedantic is set, predicates are additionally checked to be exactly 0 or
// 1 (ErrPredicateLargerThanOne) rather than merely tested for zeroness.
func NewBlackBoxDispatcher[F Field[F]](backend BlackBoxBackend[F], pedantic bool) *BlackBoxDispatcher[F] {
	return &BlackBoxDispatcher[F]{backend: backend, solver: NewExpressionSolver[F](), pedantic: pedantic}
}

// InputToValue resolves a FunctionInput's expression against the witness
// map and checks its value fits within the declared bit width, per
// spec.md §4.3. A violation raises ErrInvalidInputBitSize naming both the
// offending value and its actual bit length.
func InputToValue[F Field[F]](solver *ExpressionSolver[F], in FunctionInput[F], w *WitnessMap[F]) (F, error) {
	var zero F
	value, err := solver.GetValue(in.Value, w)
	if err != nil {
		return zero, err
	}
	if nb := value.NumBits(); nb > uint(in.NumBits) {
		return zero, &ACVMError[F]{
			Kind:         ErrInvalidInputBitSize,
			Location:     UnresolvedLocation(),
			Value:        value,
			ValueNumBits: nb,
			MaxBits:      in.NumBits,
		}
	}
	return value, nil
}

// Solve resolves every input, checks the predicate, invokes the backend
// (skipping it entirely and zero-filling outputs when the predicate is
// false), and assigns results into the witness map.
func (d *BlackBoxDispatcher[F]) Solve(call *BlackBoxCall[F], w *WitnessMap[F]) error {
	// Inputs are resolved and bit-size-checked before the predicate is
	// inspected, so a malformed input is reported even when the call
	// turns out to be predicated off.
	rawInputs := make([][]byte, len(call.Inputs))
	for i, in := range call.Inputs {
		value, err := InputToValue(d.solver, in, w)
		if err != nil {
			return err
		}
		rawInputs[i] = toBytes(value)
	}

	predicateTrue := true
	if call.Predicate != nil {
		pv, err := d.solver.GetValue(call.Predicate, w)
		if err != nil {
			return err
		}
		if d.pedantic && !pv.IsZero() && !pv.IsOne() {
			return &ACVMError[F]{Kind: ErrPredicateLargerThanOne, Location: UnresolvedLocation(), PredValue: pv}
		}
		predicateTrue = !pv.IsZero()
	}

	if !predicateTrue {
		var zero F
		for _, out := range call.Outputs {
			if err := w.Insert(out, zero.Zero()); err != nil {
				return err
			}
		}
		return nil
	}

	results, err := d.backend.Call(call.Name, rawInputs, len(call.Outputs))
	if err != nil {
		return &ACVMError[F]{
			Kind:     ErrBlackBoxFunctionFailed,
			Location: UnresolvedLocation(),
			Func:     call.Name,
			Reason:   err.Error(),
			Payload:  &AssertionResult[F]{String: stringPayload(fmt.Sprintf("%s: %v", call.Name, err))},
		}
	}
	if len(results) != len(call.Outputs) {
		return &ACVMError[F]{
			Kind:     ErrBlackBoxFunctionFailed,
			Location: UnresolvedLocation(),
			Func:     call.Name,
			Reason:   fmt.Sprintf("backend returned %d results, expected %d", len(results), len(call.Outputs)),
		}
	}
	for i, out := range call.Outputs {
		if err := w.Insert(out, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// byter is satisfied by Field implementations that can serialize to
// canonical big-endian bytes, letting Solve hand the backend raw
// bytes without the Field interface itself depending on a fixed width.
type byter interface {
	Bytes() [32]byte
}

func toBytes[F Field[F]](v F) []byte {
	if b, ok := any(v).(byter); ok {
		raw := b.Bytes()
		return raw[:]
	}
	// Fall back to the decimal string form for Field implementations
	// that don't expose canonical bytes; backends for such fields must
	// parse accordingly.
	return []byte(v.String())
}
