package interpreter

// DefaultStackSize is the value stack capacity when none is configured.
const DefaultStackSize = 1024

// Frame is the whole execution state: one value stack, the instruction
// pointer and the active code object. Caller linkage lives on the stack as
// (code, ip, argc) triples, so there is no separate call stack.
//
// While a callee runs, the stack looks like
//
//	[..., callee, arg1 .. argN, caller_code, caller_ip, argc, <locals>]
//
// where argc = N+1 counts the callee slot.
type Frame struct {
	stack []Value
	sp    int // one past the top
	ip    int

	code   Code
	bc     []int   // code.Bytecode(), kept in step with code
	consts []Value // code.Constants(), kept in step with code

	scratch []Value // tail call arguments in flight
}

func newFrame(code Code, size int) *Frame {
	if size <= 0 {
		size = DefaultStackSize
	}
	f := &Frame{stack: make([]Value, size)}
	f.setCode(code)
	return f
}

// setCode switches the active code object and its cached views together.
func (f *Frame) setCode(code Code) {
	f.code = code
	f.bc = code.Bytecode()
	f.consts = code.Constants()
}

func (f *Frame) fetch() int {
	if f.ip < 0 || f.ip >= len(f.bc) {
		raise(ErrDispatch, "instruction pointer %d outside bytecode of length %d", f.ip, len(f.bc))
	}
	w := f.bc[f.ip]
	f.ip++
	return w
}

func (f *Frame) push(v Value) {
	if f.sp >= len(f.stack) {
		raise(ErrStackOverflow, "capacity %d exhausted", len(f.stack))
	}
	f.stack[f.sp] = v
	f.sp++
}

func (f *Frame) pop() Value {
	if f.sp <= 0 {
		raise(ErrStackUnderflow, "pop from empty stack")
	}
	f.sp--
	v := f.stack[f.sp]
	f.stack[f.sp] = nil
	return v
}

// drop discards n slots.
func (f *Frame) drop(n int) {
	if n < 0 || n > f.sp {
		raise(ErrStackUnderflow, "cannot discard %d of %d slots", n, f.sp)
	}
	clear(f.stack[f.sp-n : f.sp])
	f.sp -= n
}

// nth returns the value delta slots below the top; nth(0) is the top.
func (f *Frame) nth(delta int) Value {
	i := f.sp - delta - 1
	if delta < 0 || i < 0 {
		raise(ErrStackUnderflow, "no value %d below top of %d", delta, f.sp)
	}
	return f.stack[i]
}

func (f *Frame) pushConst(idx int) {
	if idx < 0 || idx >= len(f.consts) {
		raise(ErrDispatch, "constant index %d outside pool of %d", idx, len(f.consts))
	}
	f.push(f.consts[idx])
}

// jumpRel runs after the opcode and its operand were fetched, so the target
// is the opcode address + 1 + delta.
func (f *Frame) jumpRel(delta int) {
	f.ip += delta - 1
}

func (f *Frame) popInteger(what string) int {
	v := f.pop()
	n, ok := v.(Integer)
	if !ok {
		raise(ErrTypeConfusion, "%s slot holds %s, want integer", what, TypeName(v))
	}
	return n.Int()
}

func (f *Frame) popCode(what string) Code {
	v := f.pop()
	c, ok := v.(Code)
	if !ok {
		raise(ErrTypeConfusion, "%s slot holds %s, want code", what, TypeName(v))
	}
	return c
}

// descend enters callee. Its argc-1 arguments and the callee itself are
// already on the stack below the new linkage.
func (f *Frame) descend(callee Code, argc int) {
	f.push(f.code)
	f.push(Integer(f.ip))
	f.push(Integer(argc))

	f.setCode(callee)
	f.ip = 0
}

// ascend returns from the active code object. It reports done when the
// outermost activation returned, in which case ret is the overall result.
func (f *Frame) ascend() (ret Value, done bool) {
	ret = f.pop()
	if f.sp == 0 {
		return ret, true
	}

	argc := f.popInteger("argc")
	ip := f.popInteger("caller ip")
	caller := f.popCode("caller code")

	f.drop(argc - 1) // arguments
	f.drop(1)        // callee

	f.setCode(caller)
	f.push(ret)
	f.ip = ip
	return ret, false
}

// tailCall replaces the running activation with a call to the value argc-1
// below the top, keeping the caller linkage the activation was entered with.
func (f *Frame) tailCall(argc int) {
	if argc < 1 {
		raise(ErrTypeConfusion, "tail call needs a callee, argc=%d", argc)
	}
	if argc > f.sp {
		raise(ErrStackUnderflow, "tail call of %d values with %d on stack", argc, f.sp)
	}

	// Popping reverses; tmp[argc-1] is the deepest value, the callee.
	tmp := f.scratch[:0]
	for range argc {
		tmp = append(tmp, f.pop())
	}
	callee, ok := tmp[argc-1].(Code)
	if !ok {
		raise(ErrTypeConfusion, "tail call target is %s", TypeName(tmp[argc-1]))
	}

	oldArgc := f.popInteger("argc")
	oldIP := f.pop()
	oldCode := f.pop()
	f.drop(oldArgc)

	for i := argc - 1; i >= 0; i-- {
		f.push(tmp[i])
	}
	clear(tmp)
	f.scratch = tmp[:0]

	f.push(oldCode)
	f.push(oldIP)
	f.push(Integer(argc))

	f.setCode(callee)
	f.ip = 0
}

// IP returns the instruction pointer.
func (f *Frame) IP() int { return f.ip }

// SP returns the stack pointer, one past the top value.
func (f *Frame) SP() int { return f.sp }

// Code returns the active code object.
func (f *Frame) Code() Code { return f.code }

// Bytecode returns the active bytecode.
func (f *Frame) Bytecode() []int { return f.bc }

// Cap returns the stack capacity.
func (f *Frame) Cap() int { return len(f.stack) }

// Peek returns the value delta slots below the top without popping it.
func (f *Frame) Peek(delta int) (Value, bool) {
	i := f.sp - delta - 1
	if delta < 0 || i < 0 {
		return nil, false
	}
	return f.stack[i], true
}
