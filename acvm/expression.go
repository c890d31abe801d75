package acvm

// MulTerm is one quadratic term coeff*w_l*w_r in an Expression.
type MulTerm[F Field[F]] struct {
	Coefficient F
	Left        Witness
	Right       Witness
}

// LinearTerm is one affine term coeff*w in an Expression.
type LinearTerm[F Field[F]] struct {
	Coefficient F
	Witness     Witness
}

// Expression is a degree-2 polynomial over witnesses: a sum of quadratic
// terms, a sum of linear terms, and a constant. AssertZero opcodes require
// this sum to evaluate to zero; gates with higher degree are not
// representable and are rejected at circuit-construction time upstream of
// this package.
type Expression[F Field[F]] struct {
	MulTerms  []MulTerm[F]
	LinTerms  []LinearTerm[F]
	QConstant F
}

// ExpressionSolver evaluates and solves single-unknown AssertZero
// expressions against a witness map.
type ExpressionSolver[F Field[F]] struct{}

// NewExpressionSolver returns a stateless expression solver.
func NewExpressionSolver[F Field[F]]() *ExpressionSolver[F] {
	return &ExpressionSolver[F]{}
}

// Evaluate substitutes every witness in expr from w, returning the fully
// reduced constant. Any unassigned witness makes evaluation impossible;
// the bool result reports whether every witness was resolved.
func (s *ExpressionSolver[F]) Evaluate(expr *Expression[F], w *WitnessMap[F]) (F, bool) {
	var zero F
	total := zero.Zero()

	for _, t := range expr.MulTerms {
		l, ok := w.Get(t.Left)
		if !ok {
			return zero, false
		}
		r, ok := w.Get(t.Right)
		if !ok {
			return zero, false
		}
		total = total.Add(t.Coefficient.Mul(l).Mul(r))
	}
	for _, t := range expr.LinTerms {
		v, ok := w.Get(t.Witness)
		if !ok {
			return zero, false
		}
		total = total.Add(t.Coefficient.Mul(v))
	}
	total = total.Add(expr.QConstant)
	return total, true
}

// GetValue is spec.md §4.1's get_value helper: it reduces expr to a
// constant via Evaluate, or, when some witness remains unassigned, reports
// OpcodeNotSolvable::MissingAssignment naming a deterministically chosen
// one (the first linear term's witness, else the first mul term's
// witness still unassigned) for diagnostics. Every call site that needs a
// concrete value rather than a solve (predicates, memory indices, blackbox
// and Brillig inputs) goes through this rather than raw Evaluate, so a
// genuinely missing assignment is reported distinctly from an expression
// this package cannot solve.
func (s *ExpressionSolver[F]) GetValue(expr *Expression[F], w *WitnessMap[F]) (F, error) {
	if v, ok := s.Evaluate(expr, w); ok {
		return v, nil
	}
	var zero F
	for _, t := range expr.LinTerms {
		if _, ok := w.Get(t.Witness); !ok {
			return zero, &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation(), Witness: t.Witness}
		}
	}
	for _, t := range expr.MulTerms {
		if _, ok := w.Get(t.Left); !ok {
			return zero, &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation(), Witness: t.Left}
		}
		if _, ok := w.Get(t.Right); !ok {
			return zero, &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation(), Witness: t.Right}
		}
	}
	// Unreachable: Evaluate only fails when some witness above is missing.
	return zero, &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation()}
}

// unknownTerm accumulates every contribution to Solve's single remaining
// unknown witness: a LinTerm on that witness folds in directly, and a
// MulTerm with exactly one unassigned factor folds in as coefficient times
// the other (known) factor, per spec.md §4.1 ("exactly one linear unknown
// remains and no unsolvable mul term").
type unknownTerm[F Field[F]] struct {
	coefficient F
	witness     Witness
	set         bool
}

// add folds another contribution to the same unknown witness into this
// accumulator, or reports too-many-unknowns if it names a different one.
func (u *unknownTerm[F]) add(witness Witness, coefficient F) error {
	if u.set && u.witness != witness {
		return &ACVMError[F]{Kind: ErrExpressionTooManyUnknowns, Location: UnresolvedLocation()}
	}
	if !u.set {
		u.witness = witness
		u.coefficient = coefficient
		u.set = true
		return nil
	}
	u.coefficient = u.coefficient.Add(coefficient)
	return nil
}

// Solve attempts to resolve expr down to exactly one unknown witness and
// assign it the value that zeroes the expression. It returns nil if expr
// was already fully known and evaluated to zero, or if expr had exactly
// one unknown linear witness, which was solved and inserted into w. A
// MulTerm with both factors unassigned blocks progress outright
// (ErrExpressionTooManyUnknowns); a MulTerm with exactly one unassigned
// factor instead folds into the single tracked unknown, coefficient times
// the known factor, per spec.md §3's invariant and §4.1's solve contract.
// It returns ErrUnsatisfiedConstrain if expr has zero unknowns but
// evaluates nonzero, or ErrExpressionTooManyUnknowns if more than one
// witness remains unassigned (or the unknown's net coefficient cancels to
// zero).
func (s *ExpressionSolver[F]) Solve(expr *Expression[F], w *WitnessMap[F]) error {
	var zeroF F
	sum := zeroF.Zero()
	var unknown unknownTerm[F]

	for _, t := range expr.MulTerms {
		l, lok := w.Get(t.Left)
		r, rok := w.Get(t.Right)
		switch {
		case lok && rok:
			sum = sum.Add(t.Coefficient.Mul(l).Mul(r))
		case !lok && !rok:
			return &ACVMError[F]{Kind: ErrExpressionTooManyUnknowns, Location: UnresolvedLocation()}
		case lok:
			if err := unknown.add(t.Right, t.Coefficient.Mul(l)); err != nil {
				return err
			}
		default:
			if err := unknown.add(t.Left, t.Coefficient.Mul(r)); err != nil {
				return err
			}
		}
	}

	for _, t := range expr.LinTerms {
		v, ok := w.Get(t.Witness)
		if ok {
			sum = sum.Add(t.Coefficient.Mul(v))
			continue
		}
		if err := unknown.add(t.Witness, t.Coefficient); err != nil {
			return err
		}
	}
	sum = sum.Add(expr.QConstant)

	if !unknown.set {
		if !sum.IsZero() {
			return &ACVMError[F]{Kind: ErrUnsatisfiedConstrain, Location: UnresolvedLocation()}
		}
		return nil
	}

	if unknown.coefficient.IsZero() {
		return &ACVMError[F]{Kind: ErrExpressionTooManyUnknowns, Location: UnresolvedLocation()}
	}

	// coefficient*w + sum == 0  =>  w == -sum / coefficient
	value := sum.Neg().Mul(unknown.coefficient.Inverse())
	return w.Insert(unknown.witness, value)
}
