package bytecode

import (
	"errors"
	"fmt"

	"github.com/leopardracer/noir/acvm"
)

// ---- Error sentinels -------------------------------------------------------

// ErrHalted is returned when Step is called on a halted VM.
var ErrHalted = errors.New("bytecode: already halted")

// ErrDivisionByZero is returned by OpDiv when the divisor is zero.
var ErrDivisionByZero = errors.New("bytecode: division by zero")

// ErrInvalidOpcode is returned when the fetched instruction does not
// correspond to a known opcode, or when one of its operands (constant
// index, memory index, foreign-function selector) is out of range.
var ErrInvalidOpcode = errors.New("bytecode: invalid opcode")

// ErrCallStackUnderflow is returned when OpReturn executes with no
// pending call frame.
var ErrCallStackUnderflow = errors.New("bytecode: call stack underflow")

// errTrap is the failure an OpTrap instruction raises.
var errTrap = errors.New("bytecode: program trapped")

// Instruction is one fixed-shape unit of Brillig bytecode. The field
// register file makes a flat byte encoding impractical (Field values are
// not fixed-width across implementations), so each instruction is a
// struct rather than 4 packed bytes; the 3-address/wide-immediate shape
// it models is otherwise unchanged.
type Instruction struct {
	Op      Opcode
	A, B, C uint8
	Imm     uint16
	BlockID uint32 // OpMemLoad / OpMemStore target block
	Feature uint32 // profiling/branch-coverage site id, 0 if unlabeled
}

// frame captures the state needed to resume a caller after an OpCall
// returns.
type frame struct {
	returnPC uint32
}

// Suspended records the pending call while execution is stopped on
// OpForeignCall; Run reports its Function and Inputs to the caller as an
// acvm.ForeignCallWaitInfo.
type Suspended[F acvm.Field[F]] struct {
	Function string
	Inputs   [][]F
}

// OutputSlot names where one of a program's results lives once it halts:
// either a register, for a scalar output, or a memory block, for an array
// output. Programs declare these up front so the interpreter doesn't need
// to infer a calling convention from OpReturn.
type OutputSlot struct {
	Register    *uint8
	MemoryBlock *uint32
}

// Program is a compiled, reusable Brillig bytecode unit: code, constant
// pool, a foreign-call selector table (index -> function name), the
// output slots populated on success, and an optional branch-coverage
// feature map. It implements acvm.BrilligProgram[F], minting a fresh VM
// per invocation.
type Program[F acvm.Field[F]] struct {
	Code             []Instruction
	Constants        []F
	ForeignFunctions []string
	Outputs          []OutputSlot
	BranchMap        acvm.BranchToFeatureMap
}

// NewInstance creates a VM bound to this program, with calldata loaded
// into registers 1..len(calldata) (register 0 is the zero register).
func (p *Program[F]) NewInstance(calldata []F) acvm.UnconstrainedVM[F] {
	vm := &VM[F]{
		program: p,
	}
	vm.registers[0] = vm.zero()
	for i, v := range calldata {
		if i+1 >= len(vm.registers) {
			break
		}
		vm.registers[i+1] = v
	}
	return vm
}

// numRegisters is the size of the VM's general-purpose register file.
// Brillig programs the teacher's pack would emit rarely need more than a
// few dozen live values at once; 32 keeps register indices a single byte
// with headroom, matching the reference VM's fixed-width philosophy.
const numRegisters = 32

// VM is one running instance of a compiled Program, implementing
// acvm.UnconstrainedVM. Registers hold Field values; R0 is a zero
// register whose writes are silently discarded and whose reads always
// return the field's additive identity.
type VM[F acvm.Field[F]] struct {
	program *Program[F]

	registers [numRegisters]F
	pc        uint32
	callStack []frame
	halted    bool
	failed    error

	memory map[uint32][]F

	pendingForeign *Suspended[F]

	profilingActive bool
	samples         []acvm.ProfilingSample
	branchesTaken   []uint32
}

// WithMemory injects the memory blocks (owned by the enclosing ACVM
// instance's MemoryOpSolver) that OpMemLoad/OpMemStore instructions
// operate on. Brillig programs that read or write circuit arrays need
// this wired before the first Run; programs using only registers do not.
// Implements acvm.MemoryWirer, which the ACVM dispatcher type-asserts for
// after constructing each BrilligCall's VM instance.
func (vm *VM[F]) WithMemory(blocks map[uint32][]F) {
	vm.memory = blocks
}

// EnableProfiling turns on per-instruction sampling.
func (vm *VM[F]) EnableProfiling() *VM[F] {
	vm.profilingActive = true
	return vm
}

// Samples returns every ProfilingSample collected so far.
func (vm *VM[F]) Samples() []acvm.ProfilingSample { return vm.samples }

// BranchesTaken returns the feature-mapped branch-site ids that fired
// during execution, for branch-coverage trace capture.
func (vm *VM[F]) BranchesTaken() []uint32 { return vm.branchesTaken }

func (vm *VM[F]) zero() F {
	var z F
	return z.Zero()
}

// Run executes from the current program counter until the program
// finishes, traps, or issues a foreign call, implementing
// acvm.UnconstrainedVM.
func (vm *VM[F]) Run() acvm.UnconstrainedResult[F] {
	for {
		if vm.halted {
			if vm.failed != nil {
				return acvm.UnconstrainedResult[F]{Status: acvm.UnconstrainedFailed, Err: vm.failed}
			}
			return acvm.UnconstrainedResult[F]{Status: acvm.UnconstrainedFinished, Outputs: vm.collectOutputs()}
		}
		if err := vm.Step(); err != nil {
			vm.halted = true
			vm.failed = err
			return acvm.UnconstrainedResult[F]{Status: acvm.UnconstrainedFailed, Err: err}
		}
		if vm.pendingForeign != nil {
			fc := vm.pendingForeign
			return acvm.UnconstrainedResult[F]{
				Status: acvm.UnconstrainedForeignCall,
				ForeignCall: &acvm.ForeignCallWaitInfo[F]{
					Function: fc.Function,
					Inputs:   fc.Inputs,
				},
			}
		}
	}
}

// ResolveForeignCall supplies the result of the most recent foreign call,
// splicing it into the registers the call's OpForeignCall instruction
// designated, then clears the suspension so the next Run call resumes at
// the instruction after it.
func (vm *VM[F]) ResolveForeignCall(result []F) error {
	if vm.pendingForeign == nil {
		return fmt.Errorf("bytecode: no pending foreign call to resolve")
	}
	inst := vm.program.Code[vm.pc]
	base := inst.A
	for i, v := range result {
		dest := int(base) + i
		if dest >= numRegisters {
			break
		}
		vm.setReg(uint8(dest), v)
	}
	vm.pendingForeign = nil
	vm.pc++
	return nil
}

// collectOutputs reads the program's declared OutputSlots from the final
// register file and memory blocks once execution halts successfully.
func (vm *VM[F]) collectOutputs() []acvm.BrilligOutputValue[F] {
	out := make([]acvm.BrilligOutputValue[F], len(vm.program.Outputs))
	for i, slot := range vm.program.Outputs {
		switch {
		case slot.Register != nil:
			out[i] = acvm.BrilligOutputValue[F]{Scalar: vm.registers[*slot.Register]}
		case slot.MemoryBlock != nil:
			out[i] = acvm.BrilligOutputValue[F]{Vector: vm.memory[*slot.MemoryBlock]}
		}
	}
	return out
}
