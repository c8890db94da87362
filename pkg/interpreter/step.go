package interpreter

// handlers is indexed by opcode. Each handler runs with ip already past the
// opcode word and fetches its own operand.
var handlers = [NUM_OPS]func(*Interpreter){
	LOAD_CONST:   opLoadConst,
	ADD:          opAdd,
	INVOKE:       opInvoke,
	TAIL_CALL:    opTailCall,
	DUP_NTH:      opDupNth,
	RETURN:       opReturn,
	COND_BR:      opCondBr,
	JMP:          opJmp,
	EQ:           opEq,
	MAKE_CLOSURE: opMakeClosure,
	CLOSED_OVER:  opClosedOver,
	SET_VAR:      opSetVar,
	POP:          opPop,
	DEREF_VAR:    opDerefVar,
}

func opLoadConst(it *Interpreter) {
	f := it.frame
	f.pushConst(f.fetch())
}

func opAdd(it *Interpreter) {
	f := it.frame
	a := f.pop()
	b := f.pop()

	r, err := it.numeric.Add(a, b)
	if err != nil {
		raise(ErrArithmetic, "%v", err)
	}
	f.push(r)
}

func opEq(it *Interpreter) {
	f := it.frame
	a := f.pop()
	b := f.pop()

	r, err := it.numeric.Eq(a, b)
	if err != nil {
		raise(ErrArithmetic, "%v", err)
	}
	f.push(r)
}

func opInvoke(it *Interpreter) {
	f := it.frame
	argc := f.fetch()
	if argc < 1 {
		raise(ErrTypeConfusion, "invoke needs a callee, argc=%d", argc)
	}

	fn := f.nth(argc - 1)
	callee, ok := fn.(Code)
	if !ok {
		raise(ErrTypeConfusion, "cannot invoke %s", TypeName(fn))
	}
	f.descend(callee, argc)
}

func opTailCall(it *Interpreter) {
	f := it.frame
	f.tailCall(f.fetch())

	if it.tracer != nil {
		it.tracer.LoopEntry(f)
	}
}

func opDupNth(it *Interpreter) {
	f := it.frame
	f.push(f.nth(f.fetch()))
}

func opReturn(it *Interpreter) {
	if v, done := it.frame.ascend(); done {
		it.result = v
		it.halted = true
	}
}

func opCondBr(it *Interpreter) {
	f := it.frame
	v := f.pop()
	loc := f.fetch()
	if Truthy(v) {
		return
	}
	f.jumpRel(loc)
}

func opJmp(it *Interpreter) {
	f := it.frame
	f.jumpRel(f.fetch())
}

func opMakeClosure(it *Interpreter) {
	f := it.frame
	argc := f.fetch()
	if argc < 0 {
		raise(ErrTypeConfusion, "negative capture count %d", argc)
	}
	if argc > f.sp-1 {
		raise(ErrStackUnderflow, "closure of %d captures with %d on stack", argc, f.sp)
	}

	// fill from the end so captures keep their push order
	captured := make([]Value, argc)
	for idx := argc - 1; idx >= 0; idx-- {
		captured[idx] = f.pop()
	}

	fn := f.popCode("closure code")
	f.push(NewClosure(fn, captured))
}

func opClosedOver(it *Interpreter) {
	f := it.frame
	c, ok := f.code.(*Closure)
	if !ok {
		raise(ErrTypeConfusion, "CLOSED_OVER in %s, not a closure", TypeName(f.code))
	}

	idx := f.fetch()
	if idx < 0 || idx >= c.Len() {
		raise(ErrDispatch, "capture index %d outside %d captures", idx, c.Len())
	}
	f.push(c.ClosedOver(idx))
}

func opSetVar(it *Interpreter) {
	f := it.frame
	val := f.pop()
	v := f.pop()

	cell, ok := v.(*Var)
	if !ok {
		raise(ErrTypeConfusion, "SET_VAR on %s", TypeName(v))
	}
	cell.SetRoot(val)
	f.push(cell)
}

func opPop(it *Interpreter) {
	it.frame.pop()
}

func opDerefVar(it *Interpreter) {
	f := it.frame
	v := f.pop()

	cell, ok := v.(*Var)
	if !ok {
		raise(ErrTypeConfusion, "DEREF_VAR on %s", TypeName(v))
	}
	f.push(cell.Deref())
}
