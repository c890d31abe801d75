package acvm

// BrilligProgram is a compiled unconstrained program, ready to be
// instantiated with calldata each time a BrilligCallOp references it. A
// single program is typically invoked many times (e.g. once per loop
// iteration unrolled into separate opcodes), so the table holds programs,
// not live VM instances.
type BrilligProgram[F Field[F]] interface {
	NewInstance(calldata []F) UnconstrainedVM[F]
}

// BrilligTable holds every compiled Brillig program a circuit's
// BrilligCall opcodes may reference, indexed by the opcode's ID field.
type BrilligTable[F Field[F]] []BrilligProgram[F]

// UnconstrainedStatus is the result of a single UnconstrainedVM.Run step.
type UnconstrainedStatus int

const (
	// UnconstrainedFinished: the program ran to completion.
	UnconstrainedFinished UnconstrainedStatus = iota
	// UnconstrainedForeignCall: the program hit a foreign call
	// instruction and is suspended awaiting its result.
	UnconstrainedForeignCall
	// UnconstrainedFailed: the program raised a runtime trap.
	UnconstrainedFailed
)

// ForeignCallWaitInfo describes the foreign call an UnconstrainedVM has
// suspended on: its name and the already-resolved argument values.
type ForeignCallWaitInfo[F Field[F]] struct {
	Function string
	Inputs   [][]F
}

// BrilligOutputValue is one resolved output slot from a finished VM run:
// either a scalar, matching a BrilligOutputs.Simple slot, or an array,
// matching a BrilligOutputs.Array slot.
type BrilligOutputValue[F Field[F]] struct {
	Scalar F
	Vector []F
}

// UnconstrainedResult is what an UnconstrainedVM.Run call returns.
type UnconstrainedResult[F Field[F]] struct {
	Status      UnconstrainedStatus
	ForeignCall *ForeignCallWaitInfo[F]
	Err         error
	// Outputs is populated only when Status is UnconstrainedFinished, one
	// entry per BrilligCallOp.Outputs slot in order.
	Outputs []BrilligOutputValue[F]
}

// UnconstrainedVM is the minimal interface the core dispatcher needs from
// a Brillig interpreter: step until completion or suspension, and accept
// a foreign call's result to resume a suspended run. Concrete interpreters
// (brillig/bytecode.VM) are constructed by the host and plugged in per
// BrilligTable entry; the core never inspects bytecode directly.
type UnconstrainedVM[F Field[F]] interface {
	// Run executes from the current instruction pointer until the
	// program finishes, traps, or issues a foreign call.
	Run() UnconstrainedResult[F]
	// ResolveForeignCall supplies the result of the most recent foreign
	// call and allows the next Run call to resume execution.
	ResolveForeignCall(result []F) error
}

// ProfilingSample records one executed Brillig instruction's location,
// collected only when profiling is enabled (spec.md §6 config flag
// profiling_active).
type ProfilingSample struct {
	BrilligFunctionID uint32
	Index             uint32
}

// BranchToFeatureMap optionally labels specific Brillig branch
// instructions with a feature name, letting host tooling aggregate
// coverage by feature rather than raw instruction index.
type BranchToFeatureMap map[ProfilingSample]string

// MemoryWirer is an optional capability an UnconstrainedVM implementation
// may satisfy to receive read/write access to the ACIR memory blocks live
// in the enclosing ACVM instance, matching spec.md §4.4's memory_blocks
// parameter of new_call. Brillig programs that never touch indexed memory
// need not implement it; the dispatcher checks for it with a type
// assertion rather than widening UnconstrainedVM itself.
type MemoryWirer[F Field[F]] interface {
	WithMemory(blocks map[uint32][]F)
}

// BrilligSolver drives a single BrilligCallOp's VM instance to completion
// (or suspension), translating between the opcode's Expression-based
// inputs/outputs and the VM's plain field-slice calldata convention.
type BrilligSolver[F Field[F]] struct {
	vm        UnconstrainedVM[F]
	call      *BrilligCallOp[F]
	acirIndex uint32
	solver    *ExpressionSolver[F]
	mem       *MemoryOpSolver[F]
	profiling bool
	samples   *[]ProfilingSample
	pedantic  bool
}

// NewBrilligSolver constructs a solver bound to one already-selected VM
// instance and the BrilligCallOp that invoked it. mem is the owning
// ACVM's memory solver, used to materialize array-valued outputs as fresh
// memory blocks.
func NewBrilligSolver[F Field[F]](vm UnconstrainedVM[F], call *BrilligCallOp[F], acirIndex uint32, mem *MemoryOpSolver[F], profiling bool, samples *[]ProfilingSample, pedantic bool) *BrilligSolver[F] {
	return &BrilligSolver[F]{
		vm:        vm,
		call:      call,
		acirIndex: acirIndex,
		solver:    NewExpressionSolver[F](),
		mem:       mem,
		profiling: profiling,
		samples:   samples,
		pedantic:  pedantic,
	}
}

// Solve resolves the call's predicate and, if true, runs the VM to either
// completion (assigning Outputs into w) or suspension (returning a
// ForeignCallWaitInfo for the dispatcher to surface to the host). A false
// predicate skips VM execution entirely and zero-fills every Simple output,
// matching BlackBoxDispatcher's predicate semantics; Array outputs get no
// memory block.
func (s *BrilligSolver[F]) Solve(w *WitnessMap[F]) (*ForeignCallWaitInfo[F], error) {
	predicateTrue := true
	if s.call.PredicateExpr != nil {
		pv, err := s.solver.GetValue(s.call.PredicateExpr, w)
		if err != nil {
			return nil, err
		}
		if s.pedantic && !pv.IsZero() && !pv.IsOne() {
			return nil, &ACVMError[F]{Kind: ErrPredicateLargerThanOne, Location: UnresolvedLocation(), PredValue: pv}
		}
		predicateTrue = !pv.IsZero()
	}

	if !predicateTrue {
		return nil, s.zeroFillOutputs(w)
	}

	result := s.vm.Run()
	switch result.Status {
	case UnconstrainedForeignCall:
		return result.ForeignCall, nil
	case UnconstrainedFailed:
		return nil, &ACVMError[F]{
			Kind:       ErrBrilligFunctionFailed,
			Location:   UnresolvedLocation(),
			FunctionID: s.call.ID,
			Payload:    &AssertionResult[F]{String: errStringPtr(result.Err)},
		}
	default:
		return nil, s.assignOutputs(w, result.Outputs)
	}
}

// Resume supplies a pending foreign call's result and continues running
// the VM, following the same completion/suspension/failure handling as
// Solve.
func (s *BrilligSolver[F]) Resume(w *WitnessMap[F], result []F) (*ForeignCallWaitInfo[F], error) {
	if err := s.vm.ResolveForeignCall(result); err != nil {
		return nil, &ACVMError[F]{Kind: ErrBrilligFunctionFailed, Location: UnresolvedLocation(), FunctionID: s.call.ID}
	}
	r := s.vm.Run()
	switch r.Status {
	case UnconstrainedForeignCall:
		return r.ForeignCall, nil
	case UnconstrainedFailed:
		return nil, &ACVMError[F]{
			Kind:       ErrBrilligFunctionFailed,
			Location:   UnresolvedLocation(),
			FunctionID: s.call.ID,
			Payload:    &AssertionResult[F]{String: errStringPtr(r.Err)},
		}
	default:
		return nil, s.assignOutputs(w, r.Outputs)
	}
}

func (s *BrilligSolver[F]) assignOutputs(w *WitnessMap[F], outputs []BrilligOutputValue[F]) error {
	if len(outputs) != len(s.call.Outputs) {
		return &ACVMError[F]{Kind: ErrBrilligFunctionFailed, Location: UnresolvedLocation(), FunctionID: s.call.ID}
	}
	for i, out := range s.call.Outputs {
		switch {
		case out.Simple != nil:
			if err := w.Insert(*out.Simple, outputs[i].Scalar); err != nil {
				return err
			}
		case out.Array != nil:
			s.mem.Init(*out.Array, outputs[i].Vector)
		}
	}
	return nil
}

func (s *BrilligSolver[F]) zeroFillOutputs(w *WitnessMap[F]) error {
	var zero F
	for _, out := range s.call.Outputs {
		if out.Simple != nil {
			if err := w.Insert(*out.Simple, zero.Zero()); err != nil {
				return err
			}
		}
	}
	return nil
}

func errStringPtr(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
