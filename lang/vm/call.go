package vm

import (
	"unsafe"

	"github.com/ember-lang/ember/lang/value"
)

// callValue dispatches OP_CALL by the callee's runtime kind, per spec.md
// §4.4: Closure, Class, BoundMethod, Native, or a runtime error.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case *value.Closure:
		return vm.call(c, argCount)
	case *value.Class:
		inst := value.NewInstance(c)
		vm.track(inst)
		vm.stack[vm.stackTop-argCount-1] = inst
		if init, ok := c.Methods["init"]; ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		vm.stack[vm.stackTop-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)
	case *value.Native:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) call(closure *value.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("Stack overflow.")
	}

	fr := &vm.frames[vm.frameCount]
	vm.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = vm.stackTop - argCount - 1
	return nil
}

func (vm *VM) getProperty(name *value.String) error {
	inst, ok := vm.peek(0).(*value.Instance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}

	if v, ok := inst.Fields[name.Chars]; ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	return vm.bindMethod(inst.Class, name)
}

func (vm *VM) setProperty(name *value.String) error {
	inst, ok := vm.peek(1).(*value.Instance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	inst.Fields[name.Chars] = vm.peek(0)

	v := vm.pop()
	vm.pop()
	vm.push(v)
	return nil
}

func (vm *VM) bindMethod(class *value.Class, name *value.String) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}

	bound := &value.BoundMethod{Receiver: vm.peek(0).(*value.Instance), Method: method}
	vm.pop()
	vm.push(bound)
	vm.track(bound)
	return nil
}

func (vm *VM) invoke(name *value.String, argCount int) error {
	receiver, ok := vm.peek(argCount).(*value.Instance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}

	if v, ok := receiver.Fields[name.Chars]; ok {
		vm.stack[vm.stackTop-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	return vm.invokeFromClass(receiver.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *value.Class, name *value.String, argCount int) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method, argCount)
}

func (vm *VM) defineMethod(name *value.String) {
	method := vm.pop().(*value.Closure)
	class := vm.peek(0).(*value.Class)
	class.Methods[name.Chars] = method
}

// ptrAddr returns the raw address of a stack slot pointer, so the
// open-upvalue list can be kept ordered exactly as original_source/vm.c
// orders it: by comparing Value* addresses directly.
func ptrAddr(loc *value.Value) uintptr { return uintptr(unsafe.Pointer(loc)) }

// captureUpvalue returns the open upvalue for stack slot absSlot, creating
// and inserting one in descending-address order if none exists yet.
func (vm *VM) captureUpvalue(absSlot int) *value.Upvalue {
	target := &vm.stack[absSlot]
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && ptrAddr(cur.Location) > ptrAddr(target) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == target {
		return cur
	}

	created := value.NewUpvalue(target)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	vm.track(created)
	return created
}

// closeUpvalues closes (hoists onto the heap) every open upvalue at or above
// stack slot last, popping them off the open list.
func (vm *VM) closeUpvalues(last int) {
	target := &vm.stack[last]
	for vm.openUpvalues != nil && ptrAddr(vm.openUpvalues.Location) >= ptrAddr(target) {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.NextOpen
	}
}
