package interpreter

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Interpreter drives one Frame through the dispatch loop until the
// outermost activation returns.
type Interpreter struct {
	frame   *Frame
	numeric Numeric
	tracer  Tracer

	logger *log.Logger
	trace  bool // log every dispatched instruction at debug level

	stackSize int
	maxSteps  int // 0 = unlimited
	steps     int

	// opcode being dispatched, for fault reports
	opAddr int
	op     Opcode

	result Value
	halted bool
	fault  error
}

type Option func(*Interpreter)

// WithStackSize sets the value stack capacity.
func WithStackSize(n int) Option {
	return func(i *Interpreter) { i.stackSize = n }
}

// WithMaxSteps limits the number of dispatched instructions; exceeding it
// returns ErrMaxStepsExceeded.
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithNumeric replaces the arithmetic used by ADD and EQ.
func WithNumeric(n Numeric) Option {
	return func(i *Interpreter) { i.numeric = n }
}

// WithTracer installs a loop observer.
func WithTracer(t Tracer) Option {
	return func(i *Interpreter) { i.tracer = t }
}

// WithLogger sets the logger used for instruction tracing.
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithTrace enables per-instruction debug logging.
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

var ErrNilCode = errors.New("nil code object")

// Interpret runs code to completion and returns the value of its outermost
// RETURN.
func Interpret(code Code, opts ...Option) (Value, error) {
	if code == nil {
		return nil, ErrNilCode
	}
	return NewInterpreter(code, opts...).Run()
}

// NewInterpreter prepares a frame for code, which must not be nil.
func NewInterpreter(code Code, opts ...Option) *Interpreter {
	it := &Interpreter{
		numeric:   IntegerArithmetic{},
		stackSize: DefaultStackSize,
	}

	for _, o := range opts {
		o(it)
	}

	if it.logger == nil {
		it.logger = log.Default()
	}

	it.frame = newFrame(code, it.stackSize)
	return it
}

// Frame exposes the execution state for inspection.
func (it *Interpreter) Frame() *Frame {
	return it.frame
}

// Result returns the value of the outermost RETURN once halted.
func (it *Interpreter) Result() Value {
	return it.result
}

// Halted reports whether the outermost activation has returned.
func (it *Interpreter) Halted() bool {
	return it.halted
}

// Steps returns the number of instructions dispatched so far.
func (it *Interpreter) Steps() int {
	return it.steps
}

// Step executes a single instruction, returning (halted, error). A fault is
// sticky: every later call returns it again.
func (it *Interpreter) Step() (halted bool, err error) {
	if it.fault != nil {
		return false, it.fault
	}
	if it.halted {
		return true, nil
	}
	if it.maxSteps > 0 && it.steps >= it.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	defer it.recoverFault(&err)
	it.dispatch()
	it.steps++

	return it.halted, nil
}

// Run executes until the outermost RETURN or a fault.
func (it *Interpreter) Run() (result Value, err error) {
	if it.fault != nil {
		return nil, it.fault
	}

	defer it.recoverFault(&err)
	for !it.halted {
		if it.maxSteps > 0 && it.steps >= it.maxSteps {
			return nil, ErrMaxStepsExceeded
		}
		it.dispatch()
		it.steps++
	}

	return it.result, nil
}

func (it *Interpreter) dispatch() {
	f := it.frame
	if it.tracer != nil {
		it.tracer.MergePoint(f)
	}

	it.opAddr = f.ip
	it.op = Opcode(f.fetch())

	if it.trace {
		it.logger.Debug("dispatch", "code", f.code, "ip", it.opAddr, "op", it.op, "sp", f.sp)
	}

	if !it.op.Valid() {
		raise(ErrDispatch, "NO DISPATCH FOR: %s", it.op)
	}
	handlers[it.op](it)
}

// recoverFault turns a raised fault into an error. Other panics propagate.
func (it *Interpreter) recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}

	fault, ok := r.(*Fault)
	if !ok {
		panic(r)
	}

	fault.Op = it.op
	fault.IP = it.opAddr
	if it.frame.code != nil {
		fault.Code = it.frame.code.String()
	}

	if it.trace {
		it.logger.Error("fault", "kind", fault.Kind, "code", fault.Code, "ip", fault.IP, "op", fault.Op, "sp", it.frame.sp)
	}

	it.fault = fault
	*err = fault
}
