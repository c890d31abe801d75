package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/fieldimpl"
)

func reg(i uint8) *uint8 { return &i }

// TestAddConstants runs LoadConst R1=1, LoadConst R2=2, Add R3=R1+R2, Halt,
// and checks the declared scalar output.
func TestAddConstants(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{
		Code: []Instruction{
			{Op: OpLoadConst, A: 1, Imm: 0},
			{Op: OpLoadConst, A: 2, Imm: 1},
			{Op: OpAdd, A: 3, B: 1, C: 2},
			{Op: OpHalt},
		},
		Constants: []fieldimpl.BN254{fieldimpl.NewBN254FromUint64(1), fieldimpl.NewBN254FromUint64(2)},
		Outputs:   []OutputSlot{{Register: reg(3)}},
	}
	vm := prog.NewInstance(nil)
	result := vm.Run()

	assert.Equal(t, acvm.UnconstrainedFinished, result.Status)
	assert.Len(t, result.Outputs, 1)
	assert.True(t, result.Outputs[0].Scalar.Equal(fieldimpl.NewBN254FromUint64(3)))
}

func TestDivisionByZeroTraps(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{
		Code: []Instruction{
			{Op: OpLoadConst, A: 1, Imm: 0},
			{Op: OpLoadConst, A: 2, Imm: 1}, // zero
			{Op: OpDiv, A: 3, B: 1, C: 2},
		},
		Constants: []fieldimpl.BN254{fieldimpl.NewBN254FromUint64(5), fieldimpl.ZeroBN254()},
	}
	vm := prog.NewInstance(nil)
	result := vm.Run()

	assert.Equal(t, acvm.UnconstrainedFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrDivisionByZero)
}

func TestForeignCallSuspendsAndResumes(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{
		Code: []Instruction{
			{Op: OpLoadConst, A: 1, Imm: 0}, // arg count = 1
			{Op: OpLoadConst, A: 2, Imm: 1}, // argument value
			{Op: OpForeignCall, A: 1, Imm: 0},
			{Op: OpHalt},
		},
		Constants:        []fieldimpl.BN254{fieldimpl.NewBN254FromUint64(1), fieldimpl.NewBN254FromUint64(21)},
		ForeignFunctions: []string{"double"},
		Outputs:          []OutputSlot{{Register: reg(1)}},
	}
	vm := prog.NewInstance(nil)

	result := vm.Run()
	assert.Equal(t, acvm.UnconstrainedForeignCall, result.Status)
	assert.Equal(t, "double", result.ForeignCall.Function)

	err := vm.ResolveForeignCall([]fieldimpl.BN254{fieldimpl.NewBN254FromUint64(42)})
	assert.NoError(t, err)

	result = vm.Run()
	assert.Equal(t, acvm.UnconstrainedFinished, result.Status)
	assert.True(t, result.Outputs[0].Scalar.Equal(fieldimpl.NewBN254FromUint64(42)))
}

func TestMemoryLoadStore(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{
		Code: []Instruction{
			{Op: OpLoadConst, A: 1, Imm: 0}, // index 0
			{Op: OpLoadConst, A: 2, Imm: 1}, // value 7
			{Op: OpMemStore, BlockID: 0, B: 1, C: 2},
			{Op: OpMemLoad, A: 3, BlockID: 0, B: 1},
			{Op: OpHalt},
		},
		Constants: []fieldimpl.BN254{fieldimpl.ZeroBN254(), fieldimpl.NewBN254FromUint64(7)},
		Outputs:   []OutputSlot{{Register: reg(3)}},
	}
	vmAny := prog.NewInstance(nil)
	vm := vmAny.(*VM[fieldimpl.BN254])
	vm.WithMemory(map[uint32][]fieldimpl.BN254{0: make([]fieldimpl.BN254, 1)})

	result := vm.Run()
	assert.Equal(t, acvm.UnconstrainedFinished, result.Status)
	assert.True(t, result.Outputs[0].Scalar.Equal(fieldimpl.NewBN254FromUint64(7)))
}

func TestJumpIfZeroSkipsLoadWhenZero(t *testing.T) {
	// R1 = 0; JumpIfZero R1 -> pc 3; (skipped) R2 = 99; pc 3: Halt.
	prog := &Program[fieldimpl.BN254]{
		Code: []Instruction{
			{Op: OpLoadConst, A: 1, Imm: 0},
			{Op: OpJumpIfZero, A: 1, Imm: 3},
			{Op: OpLoadConst, A: 2, Imm: 1},
			{Op: OpHalt},
		},
		Constants: []fieldimpl.BN254{fieldimpl.ZeroBN254(), fieldimpl.NewBN254FromUint64(99)},
		Outputs:   []OutputSlot{{Register: reg(2)}},
	}
	vm := prog.NewInstance(nil)
	result := vm.Run()
	assert.Equal(t, acvm.UnconstrainedFinished, result.Status)
	assert.True(t, result.Outputs[0].Scalar.IsZero()) // R2 never assigned, stays zero
}

func TestCalldataLoadedIntoRegisters(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{
		Code:    []Instruction{{Op: OpHalt}},
		Outputs: []OutputSlot{{Register: reg(1)}, {Register: reg(2)}},
	}
	vm := prog.NewInstance([]fieldimpl.BN254{fieldimpl.NewBN254FromUint64(10), fieldimpl.NewBN254FromUint64(20)})
	result := vm.Run()

	assert.True(t, result.Outputs[0].Scalar.Equal(fieldimpl.NewBN254FromUint64(10)))
	assert.True(t, result.Outputs[1].Scalar.Equal(fieldimpl.NewBN254FromUint64(20)))
}

func TestTrapFails(t *testing.T) {
	prog := &Program[fieldimpl.BN254]{Code: []Instruction{{Op: OpTrap}}}
	vm := prog.NewInstance(nil)
	result := vm.Run()
	assert.Equal(t, acvm.UnconstrainedFailed, result.Status)
	assert.ErrorIs(t, result.Err, errTrap)
}
