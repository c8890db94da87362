package interpreter

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of code followed by every code
// object reachable through its constant pool.
func Disassemble(code Code) string {
	var sb strings.Builder
	disassemble(&sb, code, make(map[Code]bool))
	return sb.String()
}

func disassemble(sb *strings.Builder, code Code, seen map[Code]bool) {
	if seen[code] {
		return
	}
	seen[code] = true

	sb.WriteString(fmt.Sprintf("== %s ==\n", code))

	bc := code.Bytecode()
	consts := code.Constants()
	offset := 0
	for offset < len(bc) {
		offset = disassembleInstruction(sb, bc, consts, offset)
	}

	for _, c := range consts {
		if inner, ok := c.(Code); ok && !seen[inner] {
			sb.WriteByte('\n')
			disassemble(sb, inner, seen)
		}
	}
}

// disassembleInstruction writes the instruction at offset and returns the
// offset of the next one.
func disassembleInstruction(sb *strings.Builder, bc []int, consts []Value, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	op := Opcode(bc[offset])
	if !op.Valid() || op.Operands() == 0 {
		return simpleInstruction(sb, op, offset)
	}

	if offset+1 >= len(bc) {
		sb.WriteString(fmt.Sprintf("%-12s <truncated>\n", op))
		return len(bc)
	}

	arg := bc[offset+1]
	switch {
	case op == LOAD_CONST:
		return constantInstruction(sb, consts, arg, offset)
	case op.IsJump():
		return jumpInstruction(sb, op, arg, offset)
	default:
		sb.WriteString(fmt.Sprintf("%-12s %4d\n", op, arg))
		return offset + 2
	}
}

func simpleInstruction(sb *strings.Builder, op Opcode, offset int) int {
	sb.WriteString(fmt.Sprintf("%s\n", op))
	return offset + 1
}

func constantInstruction(sb *strings.Builder, consts []Value, idx, offset int) int {
	if idx < 0 || idx >= len(consts) {
		sb.WriteString(fmt.Sprintf("%-12s %4d ; <bad index>\n", LOAD_CONST, idx))
	} else {
		sb.WriteString(fmt.Sprintf("%-12s %4d ; %s\n", LOAD_CONST, idx, consts[idx]))
	}
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, op Opcode, delta, offset int) int {
	sb.WriteString(fmt.Sprintf("%-12s %4d -> %04d\n", op, delta, offset+1+delta))
	return offset + 2
}
