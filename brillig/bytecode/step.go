package bytecode

import "github.com/leopardracer/noir/acvm"

// Step executes exactly one instruction, advancing pc on every path
// except OpForeignCall (which parks pc on the call until
// ResolveForeignCall runs) and OpHalt/OpTrap (which set halted).
func (vm *VM[F]) Step() error {
	if vm.halted {
		return ErrHalted
	}
	if int(vm.pc) >= len(vm.program.Code) {
		vm.halted = true
		return nil
	}

	inst := vm.program.Code[vm.pc]

	if vm.profilingActive {
		vm.samples = append(vm.samples, acvm.ProfilingSample{Index: vm.pc})
	}

	return vm.execute(inst)
}

func (vm *VM[F]) execute(inst Instruction) error {
	switch inst.Op {
	case OpAdd:
		vm.setReg(inst.A, vm.getReg(inst.B).Add(vm.getReg(inst.C)))
		vm.pc++
	case OpSub:
		vm.setReg(inst.A, vm.getReg(inst.B).Sub(vm.getReg(inst.C)))
		vm.pc++
	case OpMul:
		vm.setReg(inst.A, vm.getReg(inst.B).Mul(vm.getReg(inst.C)))
		vm.pc++
	case OpDiv:
		divisor := vm.getReg(inst.C)
		if divisor.IsZero() {
			return ErrDivisionByZero
		}
		vm.setReg(inst.A, vm.getReg(inst.B).Mul(divisor.Inverse()))
		vm.pc++
	case OpNeg:
		vm.setReg(inst.A, vm.getReg(inst.B).Neg())
		vm.pc++
	case OpEq:
		vm.setReg(inst.A, vm.boolField(vm.getReg(inst.B).Equal(vm.getReg(inst.C))))
		vm.pc++
	case OpLt:
		vm.setReg(inst.A, vm.boolField(vm.getReg(inst.B).NumBits() < vm.getReg(inst.C).NumBits()))
		vm.pc++
	case OpLoadConst:
		idx := inst.Imm
		if int(idx) >= len(vm.program.Constants) {
			return ErrInvalidOpcode
		}
		vm.setReg(inst.A, vm.program.Constants[idx])
		vm.pc++
	case OpMove:
		vm.setReg(inst.A, vm.getReg(inst.B))
		vm.pc++
	case OpMemLoad:
		block := vm.memory[inst.BlockID]
		idx := int(vm.getReg(inst.B).Uint64())
		if idx < 0 || idx >= len(block) {
			return ErrInvalidOpcode
		}
		vm.setReg(inst.A, block[idx])
		vm.pc++
	case OpMemStore:
		block := vm.memory[inst.BlockID]
		idx := int(vm.getReg(inst.B).Uint64())
		if idx < 0 || idx >= len(block) {
			return ErrInvalidOpcode
		}
		block[idx] = vm.getReg(inst.C)
		vm.pc++
	case OpJump:
		vm.pc = uint32(inst.Imm)
	case OpJumpIfZero:
		taken := vm.getReg(inst.A).IsZero()
		if inst.Feature != 0 {
			vm.recordBranch(inst.Feature, taken)
		}
		if taken {
			vm.pc = uint32(inst.Imm)
		} else {
			vm.pc++
		}
	case OpCall:
		vm.callStack = append(vm.callStack, frame{returnPC: vm.pc + 1})
		vm.pc = uint32(inst.Imm)
	case OpReturn:
		if len(vm.callStack) == 0 {
			return ErrCallStackUnderflow
		}
		top := vm.callStack[len(vm.callStack)-1]
		vm.callStack = vm.callStack[:len(vm.callStack)-1]
		vm.pc = top.returnPC
	case OpForeignCall:
		if int(inst.Imm) >= len(vm.program.ForeignFunctions) {
			return ErrInvalidOpcode
		}
		argCount := int(vm.getReg(inst.A).Uint64())
		inputs := make([][]F, 0, argCount)
		for i := 0; i < argCount; i++ {
			reg := int(inst.A) + 1 + i
			if reg >= numRegisters {
				break
			}
			inputs = append(inputs, []F{vm.registers[reg]})
		}
		vm.pendingForeign = &Suspended[F]{
			Function: vm.program.ForeignFunctions[inst.Imm],
			Inputs:   inputs,
		}
		// pc intentionally not advanced: ResolveForeignCall does so once
		// the result is spliced in, so Step is never re-entered on the
		// same OpForeignCall instruction.
	case OpTrap:
		vm.halted = true
		return errTrap
	case OpHalt:
		vm.halted = true
	default:
		return ErrInvalidOpcode
	}
	return nil
}

func (vm *VM[F]) recordBranch(feature uint32, taken bool) {
	if !taken {
		return
	}
	vm.branchesTaken = append(vm.branchesTaken, feature)
}

func (vm *VM[F]) boolField(b bool) F {
	var z F
	if b {
		return z.One()
	}
	return z.Zero()
}

func (vm *VM[F]) getReg(idx uint8) F {
	return vm.registers[idx]
}

func (vm *VM[F]) setReg(idx uint8, v F) {
	if idx == 0 {
		return // R0 is the zero register; writes are discarded
	}
	vm.registers[idx] = v
}
