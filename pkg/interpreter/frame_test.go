package interpreter

import "testing"

func runUntil(t *testing.T, it *Interpreter, stop func(f *Frame) bool) {
	t.Helper()
	for !stop(it.frame) {
		halted, err := it.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if halted {
			t.Fatal("halted before reaching the stop condition")
		}
	}
}

func TestInvokeReturnStackAccounting(t *testing.T) {
	sum := NewFunction("sum", []int{int(DUP_NTH), 3, int(DUP_NTH), 5, int(ADD), int(RETURN)})
	main := NewFunction("main", []int{
		int(LOAD_CONST), 1, // 0: unrelated value below the call
		int(LOAD_CONST), 0, // 2: callee
		int(LOAD_CONST), 1, // 4
		int(LOAD_CONST), 2, // 6
		int(INVOKE), 3, // 8
		int(RETURN), // 10
	}, sum, Integer(10), Integer(20))

	it := NewInterpreter(main)
	at := func(code Code, ip int) func(*Frame) bool {
		return func(f *Frame) bool { return f.code == code && f.ip == ip }
	}

	runUntil(t, it, at(main, 2))
	before := it.frame.sp

	runUntil(t, it, at(sum, 0))
	// callee, two arguments and the linkage triple
	if it.frame.sp != before+3+3 {
		t.Errorf("sp at callee entry = %d, want %d", it.frame.sp, before+6)
	}
	if it.frame.stack[it.frame.sp-1] != Integer(3) {
		t.Errorf("argc slot = %v, want 3", it.frame.stack[it.frame.sp-1])
	}
	if it.frame.stack[it.frame.sp-2] != Integer(10) {
		t.Errorf("caller ip slot = %v, want 10", it.frame.stack[it.frame.sp-2])
	}
	if it.frame.stack[it.frame.sp-3] != Value(main) {
		t.Errorf("caller code slot = %v, want main", it.frame.stack[it.frame.sp-3])
	}

	runUntil(t, it, at(main, 10))
	if it.frame.sp != before+1 {
		t.Errorf("sp after return = %d, want %d", it.frame.sp, before+1)
	}
	if it.frame.stack[it.frame.sp-1] != Integer(30) {
		t.Errorf("pushed result = %v, want 30", it.frame.stack[it.frame.sp-1])
	}
	for i := it.frame.sp; i < len(it.frame.stack); i++ {
		if it.frame.stack[i] != nil {
			t.Fatalf("slot %d above sp still holds %v", i, it.frame.stack[i])
		}
	}
}

func TestTailCallKeepsCallerLinkage(t *testing.T) {
	// second returns its argument; first tail calls second with 5
	second := NewFunction("second", []int{int(DUP_NTH), 3, int(RETURN)})
	first := NewFunction("first", []int{
		int(LOAD_CONST), 0,
		int(LOAD_CONST), 1,
		int(TAIL_CALL), 2,
	}, second, Integer(5))
	main := NewFunction("main", []int{
		int(LOAD_CONST), 0,
		int(LOAD_CONST), 1,
		int(LOAD_CONST), 1,
		int(INVOKE), 3,
		int(RETURN),
	}, first, Integer(7))

	it := NewInterpreter(main)
	runUntil(t, it, func(f *Frame) bool { return f.code == Code(first) && f.ip == 0 })
	entrySP := it.frame.sp

	runUntil(t, it, func(f *Frame) bool { return f.code == Code(second) })
	f := it.frame
	// first's three slots (callee + 2 args) became second's two
	if f.sp != entrySP-1 {
		t.Errorf("sp after tail call = %d, want %d", f.sp, entrySP-1)
	}
	if f.stack[f.sp-1] != Integer(2) || f.stack[f.sp-2] != Integer(8) || f.stack[f.sp-3] != Value(main) {
		t.Errorf("linkage = [%v %v %v], want [main 8 2]", f.stack[f.sp-3], f.stack[f.sp-2], f.stack[f.sp-1])
	}
	if f.stack[f.sp-4] != Integer(5) || f.stack[f.sp-5] != Value(second) {
		t.Errorf("arguments = [%v %v], want [second 5]", f.stack[f.sp-5], f.stack[f.sp-4])
	}

	got, err := it.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != Integer(5) {
		t.Errorf("result = %v, want 5", got)
	}
}

func TestSetCodeKeepsViewsInStep(t *testing.T) {
	inner := NewFunction("inner", []int{int(RETURN)}, Integer(1))
	c := NewClosure(inner, []Value{Integer(2)})
	f := newFrame(NewFunction("main", nil), 4)

	f.setCode(c)
	if f.code != Code(c) || &f.bc[0] != &inner.Code[0] || &f.consts[0] != &inner.Consts[0] {
		t.Error("frame views out of step with active closure")
	}
}
