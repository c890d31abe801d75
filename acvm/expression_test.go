package acvm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/fieldimpl"
)

func f(v int64) fieldimpl.BN254 {
	if v < 0 {
		return fieldimpl.NewBN254FromUint64(uint64(-v)).Neg()
	}
	return fieldimpl.NewBN254FromUint64(uint64(v))
}

func TestExpressionSolverEvaluateMissingWitness(t *testing.T) {
	expr := &Expression[fieldimpl.BN254]{
		LinTerms: []LinearTerm[fieldimpl.BN254]{{Coefficient: f(1), Witness: 0}},
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	solver := NewExpressionSolver[fieldimpl.BN254]()

	_, ok := solver.Evaluate(expr, w)
	assert.False(t, ok)
}

func TestExpressionSolverSolveSingleUnknown(t *testing.T) {
	// 1*w1 + 2*w2 - 7 == 0, w1 = 3 => w2 = 2 (scenario S1)
	expr := &Expression[fieldimpl.BN254]{
		LinTerms: []LinearTerm[fieldimpl.BN254]{
			{Coefficient: f(1), Witness: 0},
			{Coefficient: f(2), Witness: 1},
		},
		QConstant: f(-7),
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	require := assert.New(t)
	require.NoError(w.Insert(0, f(3)))

	solver := NewExpressionSolver[fieldimpl.BN254]()
	err := solver.Solve(expr, w)
	require.NoError(err)

	v, ok := w.Get(1)
	require.True(ok)
	require.True(v.Equal(f(2)))
}

func TestExpressionSolverUnsatisfiedConstant(t *testing.T) {
	// S2: AssertZero(5) with no witnesses.
	expr := &Expression[fieldimpl.BN254]{QConstant: f(5)}
	w := NewWitnessMap[fieldimpl.BN254]()
	solver := NewExpressionSolver[fieldimpl.BN254]()

	err := solver.Solve(expr, w)
	assert.Error(t, err)
	acvmErr, ok := err.(*ACVMError[fieldimpl.BN254])
	assert.True(t, ok)
	assert.Equal(t, ErrUnsatisfiedConstrain, acvmErr.Kind)
}

func TestExpressionSolverTooManyUnknowns(t *testing.T) {
	expr := &Expression[fieldimpl.BN254]{
		LinTerms: []LinearTerm[fieldimpl.BN254]{
			{Coefficient: f(1), Witness: 0},
			{Coefficient: f(1), Witness: 1},
		},
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	solver := NewExpressionSolver[fieldimpl.BN254]()

	err := solver.Solve(expr, w)
	assert.Error(t, err)
	acvmErr := err.(*ACVMError[fieldimpl.BN254])
	assert.Equal(t, ErrExpressionTooManyUnknowns, acvmErr.Kind)
}

func TestExpressionSolverAlreadySatisfied(t *testing.T) {
	expr := &Expression[fieldimpl.BN254]{
		LinTerms:  []LinearTerm[fieldimpl.BN254]{{Coefficient: f(1), Witness: 0}},
		QConstant: f(-3),
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(3)))

	solver := NewExpressionSolver[fieldimpl.BN254]()
	assert.NoError(t, solver.Solve(expr, w))
}

func TestExpressionSolverMulTermBlocksProgress(t *testing.T) {
	expr := &Expression[fieldimpl.BN254]{
		MulTerms: []MulTerm[fieldimpl.BN254]{{Coefficient: f(1), Left: 0, Right: 1}},
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	solver := NewExpressionSolver[fieldimpl.BN254]()

	err := solver.Solve(expr, w)
	assert.Error(t, err)
	assert.Equal(t, ErrExpressionTooManyUnknowns, err.(*ACVMError[fieldimpl.BN254]).Kind)
}

func TestExpressionSolverMulTermFoldsSingleKnownFactor(t *testing.T) {
	// AssertZero(x*y - z) with x=2, z=6 known, y unknown => y = 3.
	expr := &Expression[fieldimpl.BN254]{
		MulTerms: []MulTerm[fieldimpl.BN254]{{Coefficient: f(1), Left: 0, Right: 1}},
		LinTerms: []LinearTerm[fieldimpl.BN254]{{Coefficient: f(-1), Witness: 2}},
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(2)))
	assert.NoError(t, w.Insert(2, f(6)))

	solver := NewExpressionSolver[fieldimpl.BN254]()
	assert.NoError(t, solver.Solve(expr, w))

	v, ok := w.Get(1)
	assert.True(t, ok)
	assert.True(t, v.Equal(f(3)))
}

func TestExpressionSolverGetValueReportsMissingAssignment(t *testing.T) {
	expr := &Expression[fieldimpl.BN254]{
		LinTerms: []LinearTerm[fieldimpl.BN254]{{Coefficient: f(1), Witness: 7}},
	}
	w := NewWitnessMap[fieldimpl.BN254]()
	solver := NewExpressionSolver[fieldimpl.BN254]()

	_, err := solver.GetValue(expr, w)
	assert.Error(t, err)
	acvmErr := err.(*ACVMError[fieldimpl.BN254])
	assert.Equal(t, ErrMissingAssignment, acvmErr.Kind)
	assert.Equal(t, Witness(7), acvmErr.Witness)
}

func TestWitnessMapMonotoneInsertion(t *testing.T) {
	w := NewWitnessMap[fieldimpl.BN254]()
	assert.NoError(t, w.Insert(0, f(5)))
	// Same value again: no-op success.
	assert.NoError(t, w.Insert(0, f(5)))
	// Different value: fails.
	err := w.Insert(0, f(6))
	assert.Error(t, err)
	assert.Equal(t, ErrUnsatisfiedConstrain, err.(*ACVMError[fieldimpl.BN254]).Kind)
}
