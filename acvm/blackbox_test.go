package acvm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/fieldimpl"
)

type recordingBackend struct {
	gotName   string
	gotInputs [][]byte
	result    []fieldimpl.BN254
	err       error
}

func (b *recordingBackend) Call(name string, inputs [][]byte, numOutputs int) ([]fieldimpl.BN254, error) {
	b.gotName = name
	b.gotInputs = inputs
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

func TestInputToValueBitSizeViolation(t *testing.T) {
	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(256))) // needs 9 bits

	in := FunctionInput[fieldimpl.BN254]{Value: linear(f(1), 0), NumBits: 8}
	_, err := InputToValue(NewExpressionSolver[fieldimpl.BN254](), in, w)
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidInputBitSize, err.(*ACVMError[fieldimpl.BN254]).Kind)
}

func TestInputToValueWithinBitSize(t *testing.T) {
	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(255)))

	in := FunctionInput[fieldimpl.BN254]{Value: linear(f(1), 0), NumBits: 8}
	v, err := InputToValue(NewExpressionSolver[fieldimpl.BN254](), in, w)
	assert.NoError(t, err)
	assert.True(t, v.Equal(f(255)))
}

func TestBlackBoxDispatcherSolveCallsBackend(t *testing.T) {
	backend := &recordingBackend{result: []fieldimpl.BN254{f(99)}}
	d := NewBlackBoxDispatcher[fieldimpl.BN254](backend, false)

	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(5)))

	call := &BlackBoxCall[fieldimpl.BN254]{
		Name:    "keccak256",
		Inputs:  []FunctionInput[fieldimpl.BN254]{{Value: linear(f(1), 0), NumBits: 8}},
		Outputs: []Witness{1},
	}
	assert.NoError(t, d.Solve(call, w))
	assert.Equal(t, "keccak256", backend.gotName)

	v, ok := w.Get(1)
	assert.True(t, ok)
	assert.True(t, v.Equal(f(99)))
}

func TestBlackBoxDispatcherPredicateFalseZeroFillsSkipsBackend(t *testing.T) {
	backend := &recordingBackend{result: []fieldimpl.BN254{f(99)}}
	d := NewBlackBoxDispatcher[fieldimpl.BN254](backend, false)

	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(5)))
	assert.NoError(t, w.Insert(1, f(0))) // predicate witness

	call := &BlackBoxCall[fieldimpl.BN254]{
		Name:      "keccak256",
		Inputs:    []FunctionInput[fieldimpl.BN254]{{Value: linear(f(1), 0), NumBits: 8}},
		Outputs:   []Witness{2},
		Predicate: linear(f(1), 1),
	}
	assert.NoError(t, d.Solve(call, w))
	assert.Equal(t, "", backend.gotName) // backend never invoked

	v, ok := w.Get(2)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestBlackBoxDispatcherPedanticRejectsNonBinaryPredicate(t *testing.T) {
	backend := &recordingBackend{result: []fieldimpl.BN254{f(1)}}
	d := NewBlackBoxDispatcher[fieldimpl.BN254](backend, true)

	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(5)))
	assert.NoError(t, w.Insert(1, f(2))) // predicate = 2, neither 0 nor 1

	call := &BlackBoxCall[fieldimpl.BN254]{
		Name:      "keccak256",
		Inputs:    []FunctionInput[fieldimpl.BN254]{{Value: linear(f(1), 0), NumBits: 8}},
		Outputs:   []Witness{2},
		Predicate: linear(f(1), 1),
	}
	err := d.Solve(call, w)
	assert.Error(t, err)
	assert.Equal(t, ErrPredicateLargerThanOne, err.(*ACVMError[fieldimpl.BN254]).Kind)
}

func TestBlackBoxDispatcherInputsValidatedBeforePredicate(t *testing.T) {
	// Open Question (b): inputs are resolved/bit-checked before the
	// predicate is evaluated or pedantically checked, even when the
	// predicate would ultimately skip the call.
	backend := &recordingBackend{}
	d := NewBlackBoxDispatcher[fieldimpl.BN254](backend, true)

	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(256))) // violates NumBits: 8
	assert.NoError(t, w.Insert(1, f(0)))   // predicate false

	call := &BlackBoxCall[fieldimpl.BN254]{
		Name:      "keccak256",
		Inputs:    []FunctionInput[fieldimpl.BN254]{{Value: linear(f(1), 0), NumBits: 8}},
		Outputs:   []Witness{2},
		Predicate: linear(f(1), 1),
	}
	err := d.Solve(call, w)
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidInputBitSize, err.(*ACVMError[fieldimpl.BN254]).Kind)
}

func TestBlackBoxDispatcherBackendFailureWraps(t *testing.T) {
	backend := &recordingBackend{err: errors.New("boom")}
	d := NewBlackBoxDispatcher[fieldimpl.BN254](backend, false)

	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(5)))

	call := &BlackBoxCall[fieldimpl.BN254]{
		Name:    "sha256",
		Inputs:  []FunctionInput[fieldimpl.BN254]{{Value: linear(f(1), 0), NumBits: 8}},
		Outputs: []Witness{1},
	}
	err := d.Solve(call, w)
	assert.Error(t, err)
	acvmErr := err.(*ACVMError[fieldimpl.BN254])
	assert.Equal(t, ErrBlackBoxFunctionFailed, acvmErr.Kind)
	assert.Equal(t, "sha256", acvmErr.Func)
}
