package interpreter

import (
	"errors"
	"fmt"
)

var (
	ErrDispatch         = errors.New("no dispatch for opcode")
	ErrTypeConfusion    = errors.New("type confusion")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrArithmetic       = errors.New("arithmetic fault")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)

// Fault is a fatal interpreter error. Kind is one of the Err* sentinels.
type Fault struct {
	Kind error
	Op   Opcode
	IP   int    // address of the faulting opcode
	Code string // active code object
	Msg  string
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%v at %s+%d (%s)", f.Kind, f.Code, f.IP, f.Op)
	if f.Msg != "" {
		msg += ": " + f.Msg
	}
	return msg
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

// raise aborts the current instruction. The panic is recovered once at the
// run boundary and turned into a *Fault error.
func raise(kind error, format string, a ...any) {
	panic(&Fault{Kind: kind, Msg: fmt.Sprintf(format, a...)})
}
