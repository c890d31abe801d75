package acvm

import "github.com/rs/zerolog"

// Config carries the optional solving flags spec.md §6 names. The zero
// value (all false, nil map) is the default, fully-checked configuration.
type Config struct {
	// ProfilingActive is handed to each BrilligSolver the dispatcher
	// builds. The dispatcher itself records no ProfilingSample, so
	// ProfilingSamples stays empty whether or not it is set.
	ProfilingActive bool
	// BrilligBranchToFeatureMap labels specific branch instructions for
	// coverage aggregation. The dispatcher stores it but does not read it
	// and captures no branch trace of its own.
	BrilligBranchToFeatureMap BranchToFeatureMap
	// PedanticSolving additionally rejects predicates that evaluate to
	// neither 0 nor 1 (ErrPredicateLargerThanOne), rather than merely
	// testing zeroness.
	PedanticSolving bool
	// SkipBitsizeChecks is not read by the dispatcher: blackbox
	// FunctionInput bit-width validation (InputToValue) always runs.
	SkipBitsizeChecks bool
	// Logger receives opcode-dispatch, suspension, and failure events.
	// The zero value is zerolog.Nop(), so logging is opt-in.
	Logger zerolog.Logger
}

// ACVMStatusKind tags the dispatcher's current state.
type ACVMStatusKind int

const (
	// StatusInProgress: more opcodes remain to execute. Solve never
	// returns this; it is only observable via Status before the first
	// Solve call.
	StatusInProgress ACVMStatusKind = iota
	// StatusSolved: every opcode executed successfully.
	StatusSolved
	// StatusFailure: an opcode raised an unrecoverable ACVMError.
	StatusFailure
	// StatusRequiresAcirCall: a Call opcode needs its nested circuit
	// solved out-of-band; see AcirCallWaitInfo.
	StatusRequiresAcirCall
	// StatusRequiresForeignCall: a Brillig program suspended on a
	// foreign call; see ForeignCallWaitInfo.
	StatusRequiresForeignCall
)

// AcirCallWaitInfo describes a nested circuit invocation the host must
// solve independently (in its own ACVM instance, per spec.md §5) and
// report back via ResolvePendingAcirCall.
type AcirCallWaitInfo[F Field[F]] struct {
	ID       AcirFunctionID
	Inputs   []F
	Location OpcodeLocation
}

// ACVMStatus is the full result of driving the machine: at most one of
// Err, AcirCall, or ForeignCall is populated, matching Kind (none for
// StatusSolved and StatusInProgress).
type ACVMStatus[F Field[F]] struct {
	Kind        ACVMStatusKind
	Err         *ACVMError[F]
	AcirCall    *AcirCallWaitInfo[F]
	ForeignCall *ForeignCallWaitInfo[F]
}

// ACVM is the opcode dispatcher: single-threaded, deterministic, and
// resumable at exactly two suspension points (a nested Call opcode, or a
// Brillig foreign call). Re-entering a suspended instance before
// resolving its pending suspension is a caller bug; Solve does not guard
// against it (spec.md §5: "no re-entrancy").
type ACVM[F Field[F]] struct {
	opcodes           []Opcode[F]
	witness           *WitnessMap[F]
	mem               *MemoryOpSolver[F]
	exprSolver        *ExpressionSolver[F]
	blackbox          *BlackBoxDispatcher[F]
	brilligTable      BrilligTable[F]
	assertionPayloads map[OpcodeLocation]*AssertionPayload[F]
	config            Config

	pc     int
	status ACVMStatus[F]

	acirCallResults [][]F
	acirCallCounter int

	pendingBrillig    *BrilligSolver[F]
	pendingForeignRes []F
	hasPendingForeign bool

	profilingSamples []ProfilingSample
}

// NewACVM constructs a dispatcher over a fixed opcode sequence, a seeded
// witness map (the host's initial inputs), a blackbox backend, the table
// of compiled Brillig programs the circuit's BrilligCall opcodes
// reference by ID, and any compile-time assertion payloads keyed by
// opcode location.
func NewACVM[F Field[F]](
	opcodes []Opcode[F],
	initialWitness *WitnessMap[F],
	backend BlackBoxBackend[F],
	brilligTable BrilligTable[F],
	assertionPayloads map[OpcodeLocation]*AssertionPayload[F],
	config Config,
) *ACVM[F] {
	if assertionPayloads == nil {
		assertionPayloads = make(map[OpcodeLocation]*AssertionPayload[F])
	}
	return &ACVM[F]{
		opcodes:           opcodes,
		witness:           initialWitness,
		mem:               NewMemoryOpSolver[F](),
		exprSolver:        NewExpressionSolver[F](),
		blackbox:          NewBlackBoxDispatcher[F](backend, config.PedanticSolving),
		brilligTable:      brilligTable,
		assertionPayloads: assertionPayloads,
		config:            config,
		status:            ACVMStatus[F]{Kind: StatusInProgress},
	}
}

// logDispatch emits one debug line per opcode dispatched, mirroring the
// level-guard-then-build pattern gnark's R1CS solver uses around its own
// zerolog.Logger field: skip building the event entirely when the logger
// is disabled, rather than building and discarding it.
func (a *ACVM[F]) logDispatch(loc OpcodeLocation, kind string) {
	if a.config.Logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	a.config.Logger.Debug().
		Str("opcode", kind).
		Uint32("pc", uint32(a.pc)).
		Str("location", loc.String()).
		Msg("dispatching opcode")
}

func (a *ACVM[F]) logFailure(err *ACVMError[F]) {
	if a.config.Logger.GetLevel() > zerolog.WarnLevel {
		return
	}
	a.config.Logger.Warn().
		Str("kind", err.Kind.String()).
		Str("location", err.Location.String()).
		Msg("opcode solving failed")
}

func (a *ACVM[F]) logSuspend(kind string) {
	if a.config.Logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	a.config.Logger.Debug().
		Uint32("pc", uint32(a.pc)).
		Msg(kind)
}

// WitnessMap returns the dispatcher's live witness map. Callers should
// treat it as read-only until the machine reaches StatusSolved.
func (a *ACVM[F]) WitnessMap() *WitnessMap[F] { return a.witness }

// Status reports the machine's current state without advancing it.
func (a *ACVM[F]) Status() ACVMStatus[F] { return a.status }

// ProfilingSamples returns the dispatcher's profiling sample buffer. No
// code path appends to it, so it is nil regardless of
// Config.ProfilingActive.
func (a *ACVM[F]) ProfilingSamples() []ProfilingSample { return a.profilingSamples }

// Solve drives the machine opcode by opcode until it reaches a terminal
// or suspended state (Solved, Failure, RequiresAcirCall, or
// RequiresForeignCall).
func (a *ACVM[F]) Solve() ACVMStatus[F] {
	for {
		st := a.step()
		a.status = st
		if st.Kind != StatusInProgress {
			return st
		}
	}
}

// ResolvePendingAcirCall supplies the result of a nested circuit the host
// solved out-of-band in response to a StatusRequiresAcirCall. Results
// accumulate in call order; a Call opcode only consumes one once the
// dispatcher's internal counter reaches it, so pushing ahead of that
// counter is accepted and simply queues the value for a later Call.
func (a *ACVM[F]) ResolvePendingAcirCall(result []F) {
	a.acirCallResults = append(a.acirCallResults, result)
}

// ResolvePendingForeignCall supplies the result of a foreign call in
// response to a StatusRequiresForeignCall, letting the next Solve/step
// resume the suspended Brillig program.
func (a *ACVM[F]) ResolvePendingForeignCall(result []F) {
	a.pendingForeignRes = result
	a.hasPendingForeign = true
}

// step executes exactly one unit of work: either resuming a suspended
// Brillig program, or dispatching the opcode at pc, advancing pc on
// success.
func (a *ACVM[F]) step() ACVMStatus[F] {
	if a.pendingBrillig != nil {
		return a.resumeBrillig()
	}

	if a.pc >= len(a.opcodes) {
		return ACVMStatus[F]{Kind: StatusSolved}
	}

	op := a.opcodes[a.pc]
	loc := AcirLocation(uint32(a.pc))

	var err error
	var suspend *ACVMStatus[F]

	switch {
	case op.AssertZero != nil:
		a.logDispatch(loc, "assert_zero")
		err = a.exprSolver.Solve(op.AssertZero, a.witness)
	case op.BlackBoxCall != nil:
		a.logDispatch(loc, "blackbox_call")
		err = a.blackbox.Solve(op.BlackBoxCall, a.witness)
	case op.MemoryInit != nil:
		a.logDispatch(loc, "memory_init")
		err = a.solveMemoryInit(op.MemoryInit)
	case op.MemoryOp != nil:
		a.logDispatch(loc, "memory_op")
		err = a.solveMemoryOp(op.MemoryOp)
	case op.BrilligCall != nil:
		a.logDispatch(loc, "brillig_call")
		suspend, err = a.solveBrilligCall(op.BrilligCall, loc)
	case op.Call != nil:
		a.logDispatch(loc, "call")
		suspend, err = a.solveCall(op.Call, loc)
	}

	if suspend != nil {
		return *suspend
	}
	if err != nil {
		localized := a.localize(err, loc)
		a.logFailure(localized)
		return ACVMStatus[F]{Kind: StatusFailure, Err: localized}
	}

	a.pc++
	return ACVMStatus[F]{Kind: StatusInProgress}
}

func (a *ACVM[F]) solveMemoryInit(op *MemoryInitOp[F]) error {
	values := make([]F, len(op.InitValue))
	for i, w := range op.InitValue {
		v, ok := a.witness.Get(w)
		if !ok {
			return &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation(), Witness: w}
		}
		values[i] = v
	}
	a.mem.Init(op.BlockID, values)
	return nil
}

func (a *ACVM[F]) solveMemoryOp(op *MemoryOpInstr[F]) error {
	predicateTrue := true
	if op.Predicate != nil {
		pv, err := a.exprSolver.GetValue(op.Predicate, a.witness)
		if err != nil {
			return err
		}
		if a.config.PedanticSolving && !pv.IsZero() && !pv.IsOne() {
			return &ACVMError[F]{Kind: ErrPredicateLargerThanOne, Location: UnresolvedLocation(), PredValue: pv}
		}
		predicateTrue = !pv.IsZero()
	}

	idxVal, err := a.exprSolver.GetValue(op.Index, a.witness)
	if err != nil {
		return err
	}
	idx := int(idxVal.Uint64())

	switch op.Kind {
	case MemRead:
		v, err := a.mem.Read(op.BlockID, idx, predicateTrue)
		if err != nil {
			if e, ok := err.(*ACVMError[F]); ok && e.Kind == ErrIndexOutOfBounds {
				e.Index = idxVal
			}
			return err
		}
		// A MemoryOp read's destination witness is encoded as the sole
		// linear term of op.Value (coefficient 1, constant 0), matching
		// ACIR's convention of reusing Expression for read targets.
		return a.assignReadTarget(op.Value, v)
	case MemWrite:
		val, err := a.exprSolver.GetValue(op.Value, a.witness)
		if err != nil {
			return err
		}
		err = a.mem.Write(op.BlockID, idx, val, predicateTrue)
		if e, ok := err.(*ACVMError[F]); ok && e.Kind == ErrIndexOutOfBounds {
			e.Index = idxVal
		}
		return err
	default:
		return nil
	}
}

func (a *ACVM[F]) assignReadTarget(target *Expression[F], value F) error {
	if len(target.LinTerms) != 1 || len(target.MulTerms) != 0 {
		return &ACVMError[F]{Kind: ErrExpressionTooManyUnknowns, Location: UnresolvedLocation()}
	}
	return a.witness.Insert(target.LinTerms[0].Witness, value)
}

func (a *ACVM[F]) solveBrilligCall(op *BrilligCallOp[F], loc OpcodeLocation) (*ACVMStatus[F], error) {
	if int(op.ID) >= len(a.brilligTable) {
		return nil, &ACVMError[F]{Kind: ErrBrilligFunctionFailed, Location: UnresolvedLocation(), FunctionID: op.ID}
	}

	calldata, err := a.flattenBrilligInputs(op.Inputs)
	if err != nil {
		return nil, err
	}

	vm := a.brilligTable[op.ID].NewInstance(calldata)
	if mw, ok := vm.(MemoryWirer[F]); ok {
		mw.WithMemory(a.mem.All())
	}
	solver := NewBrilligSolver[F](vm, op, uint32(a.pc), a.mem, a.config.ProfilingActive, &a.profilingSamples, a.config.PedanticSolving)

	fc, err := solver.Solve(a.witness)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		a.pendingBrillig = solver
		a.logSuspend("suspending for foreign call")
		return &ACVMStatus[F]{Kind: StatusRequiresForeignCall, ForeignCall: fc}, nil
	}
	return nil, nil
}

func (a *ACVM[F]) resumeBrillig() ACVMStatus[F] {
	if !a.hasPendingForeign {
		// Shouldn't happen: resumeBrillig is only reached after
		// ResolvePendingForeignCall set this flag.
		return ACVMStatus[F]{Kind: StatusRequiresForeignCall, ForeignCall: nil}
	}
	solver := a.pendingBrillig
	result := a.pendingForeignRes
	a.hasPendingForeign = false
	a.pendingForeignRes = nil

	fc, err := solver.Resume(a.witness, result)
	if err != nil {
		a.pendingBrillig = nil
		return ACVMStatus[F]{Kind: StatusFailure, Err: a.localize(err, AcirLocation(uint32(a.pc)))}
	}
	if fc != nil {
		return ACVMStatus[F]{Kind: StatusRequiresForeignCall, ForeignCall: fc}
	}
	a.pendingBrillig = nil
	a.pc++
	return ACVMStatus[F]{Kind: StatusInProgress}
}

func (a *ACVM[F]) flattenBrilligInputs(inputs []BrilligInputs[F]) ([]F, error) {
	var out []F
	for _, in := range inputs {
		switch {
		case in.Single != nil:
			v, err := a.exprSolver.GetValue(in.Single, a.witness)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case in.Array != nil:
			for i := range in.Array {
				v, err := a.exprSolver.GetValue(&in.Array[i], a.witness)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (a *ACVM[F]) solveCall(op *CallOp[F], loc OpcodeLocation) (*ACVMStatus[F], error) {
	if op.FunctionID == 0 {
		return nil, &ACVMError[F]{Kind: ErrAcirMainCallAttempted, Location: UnresolvedLocation()}
	}

	predicateTrue := true
	if op.Predicate != nil {
		pv, err := a.exprSolver.GetValue(op.Predicate, a.witness)
		if err != nil {
			return nil, err
		}
		if a.config.PedanticSolving && !pv.IsZero() && !pv.IsOne() {
			return nil, &ACVMError[F]{Kind: ErrPredicateLargerThanOne, Location: UnresolvedLocation(), PredValue: pv}
		}
		predicateTrue = !pv.IsZero()
	}

	if !predicateTrue {
		var zero F
		for _, w := range op.Outputs {
			if err := a.witness.Insert(w, zero.Zero()); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	if a.acirCallCounter < len(a.acirCallResults) {
		results := a.acirCallResults[a.acirCallCounter]
		a.acirCallCounter++
		if len(results) != len(op.Outputs) {
			return nil, &ACVMError[F]{
				Kind:        ErrAcirCallOutputsMismatch,
				Location:    UnresolvedLocation(),
				ResultsSize: len(results),
				OutputsSize: len(op.Outputs),
			}
		}
		for i, w := range op.Outputs {
			if err := a.witness.Insert(w, results[i]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	inputs := make([]F, len(op.Inputs))
	for i, w := range op.Inputs {
		v, ok := a.witness.Get(w)
		if !ok {
			return nil, &ACVMError[F]{Kind: ErrMissingAssignment, Location: UnresolvedLocation(), Witness: w}
		}
		inputs[i] = v
	}

	a.logSuspend("suspending for nested acir call")
	return &ACVMStatus[F]{
		Kind: StatusRequiresAcirCall,
		AcirCall: &AcirCallWaitInfo[F]{
			ID:       op.FunctionID,
			Inputs:   inputs,
			Location: loc,
		},
	}, nil
}

// localizableKinds are the only error kinds spec.md §4.5 upgrades from an
// unresolved to a resolved OpcodeLocation. Every other kind passes through
// step() with its location (and payload) untouched.
var localizableKinds = map[ErrorKind]bool{
	ErrIndexOutOfBounds:     true,
	ErrUnsatisfiedConstrain: true,
	ErrInvalidInputBitSize:  true,
}

// localize upgrades an unresolved error's location to the opcode that
// raised it, restricted to the three kinds spec.md §4.5 names; every other
// kind is returned unchanged. Assertion-payload resolution (spec.md §4.6)
// is narrower still: it only ever applies to ErrUnsatisfiedConstrain.
func (a *ACVM[F]) localize(err error, loc OpcodeLocation) *ACVMError[F] {
	e, ok := err.(*ACVMError[F])
	if !ok {
		e = &ACVMError[F]{Kind: ErrUnsatisfiedConstrain}
	}
	if !localizableKinds[e.Kind] {
		return e
	}
	if !e.Location.IsResolved() {
		e.Location = ResolvedLocation(loc)
	}
	if e.Kind == ErrUnsatisfiedConstrain && e.Payload == nil {
		if payload, ok := a.assertionPayloads[e.Location.Location()]; ok {
			e.Payload = a.resolvePayload(payload)
		}
	}
	return e
}

// resolvePayload reconstructs an AssertionResult from compile-time
// metadata, evaluating each referenced expression or dumping each
// referenced memory block against the witness map at failure time.
func (a *ACVM[F]) resolvePayload(payload *AssertionPayload[F]) *AssertionResult[F] {
	if payload.Static != nil {
		return &AssertionResult[F]{Selector: ErrorSelector(payload.ErrorSelector), String: payload.Static}
	}
	data := make([]F, 0, len(payload.Items))
	for _, item := range payload.Items {
		switch {
		case item.Expr != nil:
			if v, ok := a.exprSolver.Evaluate(item.Expr, a.witness); ok {
				data = append(data, v)
			}
		case item.Memory != nil:
			if vals, err := a.mem.Values(*item.Memory); err == nil {
				data = append(data, vals...)
			}
		}
	}
	return &AssertionResult[F]{Selector: ErrorSelector(payload.ErrorSelector), Data: data}
}
