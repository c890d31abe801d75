package acvm

import "fmt"

// ErrorKind tags the taxonomy of errors the core can raise (spec.md §7).
// None of these are retried internally; all bubble to the dispatcher,
// which localises them and parks the machine in Failure(e).
type ErrorKind int

const (
	// ErrMissingAssignment: a required witness has no value yet.
	ErrMissingAssignment ErrorKind = iota
	// ErrMissingMemoryBlock: access to an uninitialized memory block.
	ErrMissingMemoryBlock
	// ErrExpressionTooManyUnknowns: the expression is non-linear or
	// under-determined given the currently-assigned witnesses.
	ErrExpressionTooManyUnknowns
	// ErrUnsatisfiedConstrain: an assertion evaluated to a nonzero
	// constant.
	ErrUnsatisfiedConstrain
	// ErrIndexOutOfBounds: a memory index fell outside its block.
	ErrIndexOutOfBounds
	// ErrInvalidInputBitSize: a witness value exceeds its declared max
	// bit width.
	ErrInvalidInputBitSize
	// ErrBlackBoxFunctionFailed: the blackbox backend rejected a call.
	ErrBlackBoxFunctionFailed
	// ErrBrilligFunctionFailed: the unconstrained VM raised an error.
	ErrBrilligFunctionFailed
	// ErrAcirMainCallAttempted: a Call opcode targeted function id 0.
	ErrAcirMainCallAttempted
	// ErrAcirCallOutputsMismatch: a resumed Call's result arity didn't
	// match its declared outputs.
	ErrAcirCallOutputsMismatch
	// ErrPredicateLargerThanOne: pedantic solving rejected a predicate
	// outside {0,1}.
	ErrPredicateLargerThanOne
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingAssignment:
		return "MissingAssignment"
	case ErrMissingMemoryBlock:
		return "MissingMemoryBlock"
	case ErrExpressionTooManyUnknowns:
		return "ExpressionHasTooManyUnknowns"
	case ErrUnsatisfiedConstrain:
		return "UnsatisfiedConstrain"
	case ErrIndexOutOfBounds:
		return "IndexOutOfBounds"
	case ErrInvalidInputBitSize:
		return "InvalidInputBitSize"
	case ErrBlackBoxFunctionFailed:
		return "BlackBoxFunctionFailed"
	case ErrBrilligFunctionFailed:
		return "BrilligFunctionFailed"
	case ErrAcirMainCallAttempted:
		return "AcirMainCallAttempted"
	case ErrAcirCallOutputsMismatch:
		return "AcirCallOutputsMismatch"
	case ErrPredicateLargerThanOne:
		return "PredicateLargerThanOne"
	default:
		return "Unknown"
	}
}

// ACVMError is the single tagged error type the core raises. Representing
// the taxonomy as one struct (rather than a forest of wrapped stdlib
// errors) lets the dispatcher pattern-match on Kind to decide location
// upgrading (spec.md §4.5) without type-asserting through multiple wrapper
// layers.
type ACVMError[F Field[F]] struct {
	Kind     ErrorKind
	Location ErrorLocation

	Witness Witness // ErrMissingAssignment
	BlockID BlockID // ErrMissingMemoryBlock, ErrIndexOutOfBounds

	Index     F      // ErrIndexOutOfBounds
	ArraySize uint32 // ErrIndexOutOfBounds

	Value        F      // ErrInvalidInputBitSize
	ValueNumBits uint   // ErrInvalidInputBitSize
	MaxBits      uint32 // ErrInvalidInputBitSize

	Func   string // ErrBlackBoxFunctionFailed
	Reason string // ErrBlackBoxFunctionFailed

	FunctionID uint32           // ErrBrilligFunctionFailed
	CallStack  []OpcodeLocation // ErrBrilligFunctionFailed

	ResultsSize int // ErrAcirCallOutputsMismatch
	OutputsSize int // ErrAcirCallOutputsMismatch

	PredValue F // ErrPredicateLargerThanOne

	Payload *AssertionResult[F] // ErrUnsatisfiedConstrain, ErrBrilligFunctionFailed, ErrBlackBoxFunctionFailed
}

func (e *ACVMError[F]) Error() string {
	switch e.Kind {
	case ErrMissingAssignment:
		return fmt.Sprintf("missing assignment for witness %d", e.Witness)
	case ErrMissingMemoryBlock:
		return fmt.Sprintf("missing memory block %d", e.BlockID)
	case ErrExpressionTooManyUnknowns:
		return "expression has too many unknowns"
	case ErrUnsatisfiedConstrain:
		return fmt.Sprintf("unsatisfied constraint at %s", e.Location)
	case ErrIndexOutOfBounds:
		return fmt.Sprintf("index %s out of bounds (array size %d) at %s", e.Index, e.ArraySize, e.Location)
	case ErrInvalidInputBitSize:
		return fmt.Sprintf("value %s needs %d bits, exceeds declared max %d at %s", e.Value, e.ValueNumBits, e.MaxBits, e.Location)
	case ErrBlackBoxFunctionFailed:
		return fmt.Sprintf("blackbox function %s failed: %s", e.Func, e.Reason)
	case ErrBrilligFunctionFailed:
		return fmt.Sprintf("brillig function %d failed, call stack %v", e.FunctionID, e.CallStack)
	case ErrAcirMainCallAttempted:
		return fmt.Sprintf("attempted to call reserved main function (id 0) at %s", e.Location)
	case ErrAcirCallOutputsMismatch:
		return fmt.Sprintf("acir call returned %d results, expected %d outputs at %s", e.ResultsSize, e.OutputsSize, e.Location)
	case ErrPredicateLargerThanOne:
		return fmt.Sprintf("predicate value %s is neither 0 nor 1 at %s", e.PredValue, e.Location)
	default:
		return "unknown acvm error"
	}
}

// ErrorSelector identifies which compile-time assertion message template an
// AssertionResult's payload corresponds to.
type ErrorSelector uint64

// AssertionItem is one element of an AssertionPayload: either an
// expression to be evaluated against the witness map, or a reference to a
// memory block whose full contents should be dumped.
type AssertionItem[F Field[F]] struct {
	Expr   *Expression[F]
	Memory *BlockID
}

// AssertionPayload is compile-time metadata attached to a specific opcode
// location, describing how to reconstruct a human/tool-readable assertion
// message when that location's constraint fails.
type AssertionPayload[F Field[F]] struct {
	Location      OpcodeLocation
	ErrorSelector uint64
	Items         []AssertionItem[F]
	// Static, when non-nil, replaces Items entirely: the message is a
	// fixed compile-time string with no dynamic data.
	Static *string
}

// AssertionResult is what the dispatcher surfaces once a payload has been
// resolved against the witness map at failure time (or a bare string, for
// static payloads and for backend errors, which the blackbox dispatcher
// always reports as ErrBlackBoxFunctionFailed; no backend error is turned
// into ErrUnsatisfiedConstrain).
type AssertionResult[F Field[F]] struct {
	Selector ErrorSelector
	Data     []F
	String   *string
}

// BlockID identifies a MemoryBlock.
type BlockID uint32
