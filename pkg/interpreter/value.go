package interpreter

import (
	"fmt"
	"strconv"
)

// Value is a tagged value living on the value stack. The set of
// implementations is closed: Integer, *Boolean, *NilValue, *Function,
// *Closure and *Var.
type Value interface {
	String() string
	isValue()
}

// Integer is a boxed machine integer. Instruction pointers and argument
// counts are stored on the stack as Integers too.
type Integer int64

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (Integer) isValue()         {}

// Int returns the native value.
func (i Integer) Int() int { return int(i) }

// Boolean values are only ever the True and False singletons, so branch
// tests compare identity.
type Boolean struct {
	b bool
}

func (b *Boolean) String() string {
	if b.b {
		return "true"
	}
	return "false"
}
func (*Boolean) isValue() {}

// Bool reports the native value.
func (b *Boolean) Bool() bool { return b.b }

// NilValue is the type of the Nil sentinel.
type NilValue struct{}

func (*NilValue) String() string { return "nil" }
func (*NilValue) isValue()       {}

var (
	Nil   = &NilValue{}
	True  = &Boolean{b: true}
	False = &Boolean{b: false}
)

// Bool maps a native bool onto the boolean singletons.
func Bool(b bool) *Boolean {
	if b {
		return True
	}
	return False
}

// Truthy reports whether v takes the fall-through path of COND_BR. Only the
// Nil and False singletons are falsy; Integer(0) is truthy.
func Truthy(v Value) bool {
	return v != Value(Nil) && v != Value(False)
}

// TypeName names the tag of v for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "<empty>"
	case Integer:
		return "integer"
	case *Boolean:
		return "boolean"
	case *NilValue:
		return "nil"
	case *Function:
		return "function"
	case *Closure:
		return "closure"
	case *Var:
		return "var"
	default:
		return fmt.Sprintf("%T", v)
	}
}
