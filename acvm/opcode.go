package acvm

// Opcode is the sum type of every instruction the dispatcher can execute.
// ACIR's opcode stream is represented here as a tagged union implemented
// via a closed set of concrete struct types rather than an interface with
// many implementers, since the dispatcher needs to switch exhaustively on
// opcode kind and every variant carries different fields.
type Opcode[F Field[F]] struct {
	AssertZero   *Expression[F]
	BlackBoxCall *BlackBoxCall[F]
	MemoryInit   *MemoryInitOp[F]
	MemoryOp     *MemoryOpInstr[F]
	BrilligCall  *BrilligCallOp[F]
	Call         *CallOp[F]
}

// MemoryInitOp declares a memory block's initial contents, sourced from
// witnesses already present in the witness map at the time this opcode
// runs.
type MemoryInitOp[F Field[F]] struct {
	BlockID   BlockID
	InitValue []Witness
}

// MemOpKind distinguishes a MemoryOpInstr's direction.
type MemOpKind int

const (
	MemRead MemOpKind = iota
	MemWrite
)

// MemoryOpInstr is a single predicate-gated read or write against a
// MemoryBlock. Index and (for writes) Value are themselves Expressions
// rather than bare witnesses, since ACIR allows computed addresses;
// Solve resolves them before touching the block.
type MemoryOpInstr[F Field[F]] struct {
	BlockID   BlockID
	Kind      MemOpKind
	Index     *Expression[F]
	Value     *Expression[F] // MemWrite: value to store; MemRead: destination witness as its sole linear term
	Predicate *Expression[F] // nil means "always true"
}

// AcirFunctionID identifies a nested ACIR circuit to invoke via a Call
// opcode. 0 is reserved for the top-level/main circuit and can never be
// the target of a Call.
type AcirFunctionID uint32

// CallOp invokes a separate ACIR circuit (identified by FunctionID) as a
// nested computation, passing Inputs and expecting len(Outputs) results
// back. The dispatcher suspends with RequiresAcirCall when it reaches one
// and the host hasn't pre-supplied a result. A false Predicate skips the
// call entirely and zero-fills Outputs, the same as MemoryOp/BrilligCall.
type CallOp[F Field[F]] struct {
	FunctionID AcirFunctionID
	Inputs     []Witness
	Outputs    []Witness
	Predicate  *Expression[F] // nil means "always true"
}

// BrilligInputs is one entry of a BrilligCallOp's input list: either a
// single resolved expression, or a full array of expressions (passed by
// value into the unconstrained program's calldata).
type BrilligInputs[F Field[F]] struct {
	Single *Expression[F]
	Array  []Expression[F]
}

// BrilligOutputs is one entry of a BrilligCallOp's output list: either a
// single witness to receive a scalar result, or a fresh memory block to
// receive an array result.
type BrilligOutputs struct {
	Simple *Witness
	Array  *BlockID
}

// BrilligCallOp invokes an unconstrained Brillig program. PredicateExpr
// gates the whole call: when it evaluates false, the dispatcher skips
// execution and zero-fills every Simple output rather than entering the
// VM; Array outputs are left uninitialized.
type BrilligCallOp[F Field[F]] struct {
	ID            uint32 // index into the BrilligTable
	Inputs        []BrilligInputs[F]
	Outputs       []BrilligOutputs
	PredicateExpr *Expression[F]
}
