// Package assembler turns textual bytecode into code objects.
//
// A program is a sequence of code blocks:
//
//	.code countdown
//	        DUP_NTH 3
//	        LOAD_CONST 0
//	        EQ
//	        COND_BR recur
//	        LOAD_CONST 0
//	        RETURN
//	recur:  DUP_NTH 4
//	        ...
//	.end
//
// LOAD_CONST takes a literal (integer, nil, true, false, @block or $var)
// which is interned in the block's constant pool. COND_BR and JMP take a
// label or a raw offset. Blocks may nest; block names share one namespace.
package assembler

import (
	"errors"
	"strconv"

	"loki/pkg/assembler/stack"
	"loki/pkg/interpreter"
	"loki/pkg/lexer"
)

// Program is the result of assembling one source.
type Program struct {
	Entry     *interpreter.Function
	Functions []*interpreter.Function // definition order
	Vars      []*interpreter.Var      // first use order
}

// Function returns the block with the given name, or nil.
func (p *Program) Function(name string) *interpreter.Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Var returns the var cell with the given name, or nil.
func (p *Program) Var(name string) *interpreter.Var {
	for _, v := range p.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

type fixup struct {
	at   int // index patched (operand word or constant slot)
	base int // address of the jumping opcode
	name string
	pos  lexer.Position
}

type constKey struct {
	kind lexer.TokenType
	lit  string
}

type block struct {
	fn     *interpreter.Function
	pos    lexer.Position
	top    bool
	labels map[string]int
	jumps  []fixup
	refs   []fixup
	consts map[constKey]int
}

type Assembler struct {
	lx     *lexer.Lexer
	open   *stack.Stack[*block]
	blocks []*block
	names  map[string]*block
	vars   map[string]*interpreter.Var
	order  []*interpreter.Var
	errors []error
}

// NewAssembler creates an assembler over src.
func NewAssembler(src string) *Assembler {
	return &Assembler{
		lx:    lexer.NewLexer(src),
		open:  stack.NewStack[*block](),
		names: make(map[string]*block),
		vars:  make(map[string]*interpreter.Var),
	}
}

// Assemble assembles src. All diagnostics are joined into the error.
func Assemble(src string) (*Program, error) {
	return NewAssembler(src).Assemble()
}

// Assemble runs the assembler to completion.
func (a *Assembler) Assemble() (*Program, error) {
	for {
		tok := a.lx.NextToken()
		if tok.Type == lexer.EOF {
			break
		}
		a.statement(tok)
	}

	for a.open.Size() > 0 {
		b, _ := a.open.Pop()
		a.addError(b.pos, "code block %s is missing .end", b.fn.Name)
	}

	a.resolveRefs()

	if len(a.blocks) == 0 && len(a.errors) == 0 {
		a.addError(lexer.NewPosition(1, 1, 0), "no code blocks")
	}
	if len(a.errors) > 0 {
		return nil, errors.Join(a.errors...)
	}

	prog := &Program{Vars: a.order}
	for _, b := range a.blocks {
		prog.Functions = append(prog.Functions, b.fn)
		if prog.Entry == nil && b.top {
			prog.Entry = b.fn
		}
	}
	if main, ok := a.names["main"]; ok {
		prog.Entry = main.fn
	}

	return prog, nil
}

func (a *Assembler) statement(tok lexer.Token) {
	switch tok.Type {
	case lexer.CODE:
		a.beginBlock(tok)

	case lexer.END:
		b, ok := a.open.Pop()
		if !ok {
			a.addError(tok.Pos, "unexpected .end outside a code block")
			return
		}
		a.resolveJumps(b)

	case lexer.ID:
		if a.lx.Peek().Type == lexer.COLON {
			a.lx.NextToken()
			a.label(tok)
			return
		}
		a.instruction(tok)

	default:
		a.addUnexpectedError(tok, "instruction, label or directive")
	}
}

func (a *Assembler) beginBlock(tok lexer.Token) {
	name := a.lx.NextToken()
	if name.Type != lexer.ID {
		a.addUnexpectedError(name, "code block name")
		return
	}
	if _, dup := a.names[name.Literal]; dup {
		a.addError(name.Pos, "redefinition of code block %s", name.Literal)
	}

	b := &block{
		fn:     interpreter.NewFunction(name.Literal, []int{}),
		pos:    tok.Pos,
		top:    a.open.Size() == 0,
		labels: make(map[string]int),
		consts: make(map[constKey]int),
	}
	a.names[name.Literal] = b
	a.blocks = append(a.blocks, b)
	a.open.Push(b)
}

func (a *Assembler) label(tok lexer.Token) {
	b, ok := a.open.Peek()
	if !ok {
		a.addError(tok.Pos, "label %s outside a code block", tok.Literal)
		return
	}
	if _, dup := b.labels[tok.Literal]; dup {
		a.addError(tok.Pos, "redefinition of label %s in %s", tok.Literal, b.fn.Name)
		return
	}
	b.labels[tok.Literal] = len(b.fn.Code)
}

func (a *Assembler) instruction(tok lexer.Token) {
	op, ok := interpreter.LookupOpcode(tok.Literal)
	if !ok {
		a.addError(tok.Pos, "unknown instruction %s", tok.Literal)
		return
	}
	b, ok := a.open.Peek()
	if !ok {
		a.addError(tok.Pos, "instruction %s outside a code block", op)
		return
	}

	addr := len(b.fn.Code)
	b.fn.Code = append(b.fn.Code, int(op))
	if op.Operands() == 0 {
		return
	}

	arg := a.lx.NextToken()
	switch {
	case op == interpreter.LOAD_CONST:
		if !arg.Type.IsConstant() {
			a.addUnexpectedError(arg, "constant")
			return
		}
		b.fn.Code = append(b.fn.Code, a.constant(b, arg))

	case op.IsJump() && arg.Type == lexer.ID:
		b.jumps = append(b.jumps, fixup{at: len(b.fn.Code), base: addr, name: arg.Literal, pos: arg.Pos})
		b.fn.Code = append(b.fn.Code, 0)

	case arg.Type == lexer.NUM:
		n, err := strconv.Atoi(arg.Literal)
		if err != nil {
			a.addError(arg.Pos, "operand %s out of range", arg.Literal)
			return
		}
		b.fn.Code = append(b.fn.Code, n)

	default:
		a.addUnexpectedError(arg, "operand for "+op.String())
	}
}

// constant interns the literal in b's pool and returns its index.
func (a *Assembler) constant(b *block, tok lexer.Token) int {
	key := constKey{tok.Type, tok.Literal}
	if idx, ok := b.consts[key]; ok {
		return idx
	}

	var v interpreter.Value
	switch tok.Type {
	case lexer.NIL:
		v = interpreter.Nil
	case lexer.TRUE:
		v = interpreter.True
	case lexer.FALSE:
		v = interpreter.False
	case lexer.NUM:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			a.addError(tok.Pos, "integer %s out of range", tok.Literal)
		}
		v = interpreter.Integer(n)
	case lexer.VAR:
		v = a.variable(tok.Literal)
	case lexer.REF:
		// patched once every block is known
		v = interpreter.Nil
		b.refs = append(b.refs, fixup{at: len(b.fn.Consts), name: tok.Literal, pos: tok.Pos})
	}

	idx := len(b.fn.Consts)
	b.fn.Consts = append(b.fn.Consts, v)
	b.consts[key] = idx
	return idx
}

func (a *Assembler) variable(name string) *interpreter.Var {
	if v, ok := a.vars[name]; ok {
		return v
	}
	v := interpreter.NewVar(name, nil)
	a.vars[name] = v
	a.order = append(a.order, v)
	return v
}

// resolveJumps encodes label operands relative to the opcode address + 1.
func (a *Assembler) resolveJumps(b *block) {
	for _, j := range b.jumps {
		target, ok := b.labels[j.name]
		if !ok {
			a.addError(j.pos, "undefined label %s in %s", j.name, b.fn.Name)
			continue
		}
		b.fn.Code[j.at] = target - (j.base + 1)
	}
}

func (a *Assembler) resolveRefs() {
	for _, b := range a.blocks {
		for _, r := range b.refs {
			target, ok := a.names[r.name]
			if !ok {
				a.addError(r.pos, "undefined code block @%s", r.name)
				continue
			}
			b.fn.Consts[r.at] = target.fn
		}
	}
}
