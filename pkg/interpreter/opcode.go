package interpreter

import "fmt"

// Opcode is one bytecode word. Operands follow their opcode as separate
// words; every opcode here takes zero or one operand.
type Opcode int

const (
	LOAD_CONST Opcode = iota
	ADD
	INVOKE
	TAIL_CALL
	DUP_NTH
	RETURN
	COND_BR
	JMP
	EQ
	MAKE_CLOSURE
	CLOSED_OVER
	SET_VAR
	POP
	DEREF_VAR

	// total number of opcodes
	NUM_OPS
)

var opcodeNames = [NUM_OPS]string{
	LOAD_CONST:   "LOAD_CONST",
	ADD:          "ADD",
	INVOKE:       "INVOKE",
	TAIL_CALL:    "TAIL_CALL",
	DUP_NTH:      "DUP_NTH",
	RETURN:       "RETURN",
	COND_BR:      "COND_BR",
	JMP:          "JMP",
	EQ:           "EQ",
	MAKE_CLOSURE: "MAKE_CLOSURE",
	CLOSED_OVER:  "CLOSED_OVER",
	SET_VAR:      "SET_VAR",
	POP:          "POP",
	DEREF_VAR:    "DEREF_VAR",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, NUM_OPS)
	for op, name := range opcodeNames {
		m[name] = Opcode(op)
	}
	return m
}()

// String returns the mnemonic, or UNKNOWN(n) for words that are not opcodes.
func (op Opcode) String() string {
	if op.Valid() {
		return opcodeNames[op]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(op))
}

// Valid reports whether op has a handler.
func (op Opcode) Valid() bool {
	return op >= 0 && op < NUM_OPS
}

// Operands returns how many operand words follow op.
func (op Opcode) Operands() int {
	switch op {
	case LOAD_CONST, INVOKE, TAIL_CALL, DUP_NTH, COND_BR, JMP, MAKE_CLOSURE, CLOSED_OVER:
		return 1
	default:
		return 0
	}
}

// IsJump reports whether the operand of op is a relative jump offset.
func (op Opcode) IsJump() bool {
	return op == COND_BR || op == JMP
}

// LookupOpcode maps a mnemonic to its opcode.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}
