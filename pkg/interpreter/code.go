package interpreter

import (
	"fmt"
	"strings"
)

// Code is an executable unit: bytecode plus a constant pool. The interpreter
// only borrows it and never mutates either slice.
type Code interface {
	Value
	Bytecode() []int
	Constants() []Value
}

// Function is a plain code object as produced by the compiler or assembler.
type Function struct {
	Name   string
	Code   []int
	Consts []Value
}

// NewFunction creates a code object.
func NewFunction(name string, code []int, consts ...Value) *Function {
	return &Function{Name: name, Code: code, Consts: consts}
}

func (f *Function) Bytecode() []int    { return f.Code }
func (f *Function) Constants() []Value { return f.Consts }
func (*Function) isValue()             {}

func (f *Function) String() string {
	if f.Name == "" {
		return "<code>"
	}
	return "<code " + f.Name + ">"
}

// Closure pairs a code object with the values captured when it was made.
// Neither part changes after creation.
type Closure struct {
	fn       Code
	captured []Value
}

// NewClosure wraps fn. The captured slice is owned by the closure.
func NewClosure(fn Code, captured []Value) *Closure {
	return &Closure{fn: fn, captured: captured}
}

func (c *Closure) Bytecode() []int    { return c.fn.Bytecode() }
func (c *Closure) Constants() []Value { return c.fn.Constants() }
func (*Closure) isValue()             {}

// Code returns the wrapped code object.
func (c *Closure) Code() Code { return c.fn }

// Len returns the number of captured values.
func (c *Closure) Len() int { return len(c.captured) }

// ClosedOver returns captured value idx.
func (c *Closure) ClosedOver(idx int) Value { return c.captured[idx] }

func (c *Closure) String() string {
	parts := make([]string, len(c.captured))
	for i, v := range c.captured {
		parts[i] = v.String()
	}
	return fmt.Sprintf("<closure %s [%s]>", c.fn, strings.Join(parts, " "))
}

// Var is a mutable single-slot cell. It may be referenced from many code
// objects at once; all of them observe the same root.
type Var struct {
	Name string
	root Value
}

// NewVar allocates a cell bound to root. A nil root is stored as Nil.
func NewVar(name string, root Value) *Var {
	if root == nil {
		root = Nil
	}
	return &Var{Name: name, root: root}
}

// Deref returns the current root binding.
func (v *Var) Deref() Value { return v.root }

// SetRoot rebinds the cell.
func (v *Var) SetRoot(val Value) { v.root = val }

func (*Var) isValue() {}

func (v *Var) String() string {
	return "#'" + v.Name
}
