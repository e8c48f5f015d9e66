// Package disasm implements a textual disassembler for a compiled chunk,
// used by the "ember disassemble" subcommand and by EMBER_DEBUG_TRACE
// single-instruction tracing. It is grounded on original_source/debug.c's
// disassembleChunk/disassembleInstruction, translated from printf-based
// offset dumping to writing into an io.Writer.
package disasm

import (
	"fmt"
	"io"

	"github.com/ember-lang/ember/lang/value"
)

// Chunk disassembles every instruction in c, labeled with name, to w.
func Chunk(w io.Writer, c *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction disassembles the single instruction at offset and returns the
// offset of the next one.
func Instruction(w io.Writer, c *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	line := c.GetLine(offset)
	if offset > 0 && line == c.GetLine(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := value.Op(c.Code[offset])
	switch op {
	case value.OpConstant:
		return constantInstruction(w, op, c, offset)
	case value.OpConstantLong:
		return constantLongInstruction(w, op, c, offset)
	case value.OpNil, value.OpTrue, value.OpFalse, value.OpPop,
		value.OpEqual, value.OpGreater, value.OpLess,
		value.OpAdd, value.OpSubtract, value.OpMultiply, value.OpDivide,
		value.OpNot, value.OpNegate, value.OpPrint, value.OpCloseUpvalue,
		value.OpReturn, value.OpInherit:
		return simpleInstruction(w, op, offset)
	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue, value.OpCall:
		return byteInstruction(w, op, c, offset)
	case value.OpGetGlobal, value.OpDefineGlobal, value.OpSetGlobal,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper,
		value.OpClass, value.OpMethod:
		return constantInstruction(w, op, c, offset)
	case value.OpJump, value.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, c, offset)
	case value.OpLoop:
		return jumpInstruction(w, op, -1, c, offset)
	case value.OpInvoke, value.OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case value.OpClosure:
		return closureInstruction(w, op, c, offset)
	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, op value.Op, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func byteInstruction(w io.Writer, op value.Op, c *value.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op value.Op, sign int, c *value.Chunk, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func constantInstruction(w io.Writer, op value.Op, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, value.Print(c.Constants[idx]))
	return offset + 2
}

func constantLongInstruction(w io.Writer, op value.Op, c *value.Chunk, offset int) int {
	idx := int(c.Code[offset+1]) | int(c.Code[offset+2])<<8 | int(c.Code[offset+3])<<16
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, value.Print(c.Constants[idx]))
	return offset + 4
}

func invokeInstruction(w io.Writer, op value.Op, c *value.Chunk, offset int) int {
	nameIdx := c.Code[offset+1]
	argCount := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argCount, nameIdx, value.Print(c.Constants[nameIdx]))
	return offset + 3
}

func closureInstruction(w io.Writer, op value.Op, c *value.Chunk, offset int) int {
	offset++
	constIdx := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, constIdx, value.Print(c.Constants[constIdx]))

	fn, ok := c.Constants[constIdx].(*value.Function)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
