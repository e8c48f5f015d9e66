package vm

import (
	"fmt"

	"github.com/ember-lang/ember/internal/disasm"
	"github.com/ember-lang/ember/lang/value"
)

// run executes bytecode from the current top call frame until it returns to
// an empty frame stack or hits a runtime error.
func (vm *VM) run() error {
	fr := &vm.frames[vm.frameCount-1]
	code := fr.closure.Function.Chunk.Code

	readByte := func() byte {
		b := code[fr.ip]
		fr.ip++
		return b
	}
	readShort := func() int {
		hi, lo := code[fr.ip], code[fr.ip+1]
		fr.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return fr.closure.Function.Chunk.Constants[readByte()]
	}
	readConstantLong := func() value.Value {
		lo, mid, hi := readByte(), readByte(), readByte()
		idx := int(lo) | int(mid)<<8 | int(hi)<<16
		return fr.closure.Function.Chunk.Constants[idx]
	}
	readString := func() *value.String {
		return readConstant().(*value.String)
	}

	for {
		if vm.traceExec {
			vm.printStackTrace()
			disasm.Instruction(vm.Stdout, fr.closure.Function.Chunk, fr.ip)
		}

		op := value.Op(readByte())

		switch op {
		case value.OpConstant:
			vm.push(readConstant())
		case value.OpConstantLong:
			vm.push(readConstantLong())
		case value.OpNil:
			vm.push(value.Nil{})
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := fr.slots + int(readByte())
			vm.push(vm.stack[slot])
		case value.OpSetLocal:
			slot := fr.slots + int(readByte())
			vm.stack[slot] = vm.peek(0)

		case value.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case value.OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case value.OpGetUpvalue:
			slot := readByte()
			vm.push(*fr.closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := readByte()
			*fr.closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpGetProperty:
			if err := vm.getProperty(readString()); err != nil {
				return err
			}
		case value.OpSetProperty:
			if err := vm.setProperty(readString()); err != nil {
				return err
			}
		case value.OpGetSuper:
			name := readString()
			superclass := vm.pop().(*value.Class)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case value.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpGreater, value.OpLess, value.OpAdd, value.OpSubtract, value.OpMultiply, value.OpDivide:
			if err := vm.binaryOp(op); err != nil {
				return err
			}
		case value.OpNot:
			vm.push(value.Bool(value.IsFalsey(vm.pop())))
		case value.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case value.OpPrint:
			fmt.Fprintln(vm.Stdout, value.Print(vm.pop()))

		case value.OpJump:
			fr.ip += readShort()
		case value.OpJumpIfFalse:
			offset := readShort()
			if value.IsFalsey(vm.peek(0)) {
				fr.ip += offset
			}
		case value.OpLoop:
			fr.ip -= readShort()

		case value.OpCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpInvoke:
			method := readString()
			argCount := int(readByte())
			if err := vm.invoke(method, argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpSuperInvoke:
			method := readString()
			argCount := int(readByte())
			superclass := vm.pop().(*value.Class)
			if err := vm.invokeFromClass(superclass, method, argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpClosure:
			fn := readConstant().(*value.Function)
			closure := value.NewClosure(fn)
			vm.track(closure)
			vm.push(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.slots + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}

		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(fr.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = fr.slots
			vm.push(result)
			fr = &vm.frames[vm.frameCount-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpClass:
			class := value.NewClass(readString().Chars)
			vm.track(class)
			vm.push(class)
		case value.OpInherit:
			superclass, ok := vm.peek(1).(*value.Class)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).(*value.Class)
			for name, m := range superclass.Methods {
				subclass.Methods[name] = m
			}
			vm.pop() // subclass
		case value.OpMethod:
			vm.defineMethod(readString())

		default:
			return vm.runtimeError("unimplemented opcode %s", op)
		}
	}
}

// printStackTrace dumps the current operand stack, bottom to top, when
// EMBER_DEBUG_TRACE is on, mirroring original_source/vm.c's
// DEBUG_TRACE_EXECUTION slot-by-slot dump.
func (vm *VM) printStackTrace() {
	fmt.Fprint(vm.Stdout, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.Stdout, "[ %s ]", value.Print(vm.stack[i]))
	}
	fmt.Fprintln(vm.Stdout)
}

func (vm *VM) binaryOp(op value.Op) error {
	b, a := vm.peek(0), vm.peek(1)

	if op == value.OpAdd {
		as, aIsStr := a.(*value.String)
		bs, bIsStr := b.(*value.String)
		if aIsStr && bIsStr {
			vm.pop()
			vm.pop()
			vm.push(vm.InternString(as.Chars + bs.Chars))
			return nil
		}
	}

	an, aok := a.(value.Number)
	bn, bok := b.(value.Number)
	if !aok || !bok {
		if op == value.OpAdd {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()

	switch op {
	case value.OpAdd:
		vm.push(an + bn)
	case value.OpSubtract:
		vm.push(an - bn)
	case value.OpMultiply:
		vm.push(an * bn)
	case value.OpDivide:
		vm.push(an / bn)
	case value.OpGreater:
		vm.push(value.Bool(an > bn))
	case value.OpLess:
		vm.push(value.Bool(an < bn))
	}
	return nil
}
