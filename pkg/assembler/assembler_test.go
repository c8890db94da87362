package assembler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loki/pkg/assembler"
	"loki/pkg/interpreter"
)

func load(t *testing.T, name string) *assembler.Program {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "..", "examples", name))
	if err != nil {
		t.Fatal(err)
	}
	prog, err := assembler.Assemble(string(src))
	if err != nil {
		t.Fatalf("Assemble %s failed: %v", name, err)
	}
	return prog
}

func TestExamples(t *testing.T) {
	tests := []struct {
		file string
		want interpreter.Value
	}{
		{"countdown.lasm", interpreter.Integer(0)},
		{"adder.lasm", interpreter.Integer(42)},
		{"counter.lasm", interpreter.Integer(42)},
	}

	for _, test := range tests {
		prog := load(t, test.file)
		got, err := interpreter.Interpret(prog.Entry, interpreter.WithStackSize(64))
		if err != nil {
			t.Fatalf("%s: Interpret failed: %v", test.file, err)
		}
		if got != test.want {
			t.Errorf("%s: result = %v, want %v", test.file, got, test.want)
		}
	}
}

func TestJumpEncoding(t *testing.T) {
	prog := load(t, "countdown.lasm")
	cd := prog.Function("countdown")
	if cd == nil {
		t.Fatal("countdown block missing")
	}

	// COND_BR at 5, recur at 10
	if cd.Code[5] != int(interpreter.COND_BR) || cd.Code[6] != 4 {
		t.Errorf("COND_BR encoded as %v", cd.Code[5:7])
	}

	back, err := assembler.Assemble(".code spin\ntop: POP\n JMP top\n.end")
	if err != nil {
		t.Fatal(err)
	}
	// JMP at 1 back to 0
	if got := back.Entry.Code[2]; got != -2 {
		t.Errorf("backward JMP offset = %d, want -2", got)
	}
}

func TestConstants(t *testing.T) {
	prog, err := assembler.Assemble(`
.code first
	LOAD_CONST 1
	LOAD_CONST 1
	LOAD_CONST nil
	LOAD_CONST true
	LOAD_CONST false
	LOAD_CONST $x
	LOAD_CONST @second
	LOAD_CONST @first
.end
.code second
	LOAD_CONST $x
.end`)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	first := prog.Function("first")
	second := prog.Function("second")
	want := []interpreter.Value{
		interpreter.Integer(1), interpreter.Nil, interpreter.True, interpreter.False,
		prog.Var("x"), second, first,
	}
	if len(first.Consts) != len(want) {
		t.Fatalf("constant pool = %v, want %v", first.Consts, want)
	}
	for i := range want {
		if first.Consts[i] != want[i] {
			t.Errorf("constant %d = %v, want %v", i, first.Consts[i], want[i])
		}
	}
	if first.Code[1] != 0 || first.Code[3] != 0 {
		t.Errorf("repeated literal not interned: %v", first.Code)
	}

	if second.Consts[0] != interpreter.Value(prog.Var("x")) {
		t.Error("$x is not shared between blocks")
	}
	if len(prog.Vars) != 1 || prog.Vars[0].Deref() != interpreter.Value(interpreter.Nil) {
		t.Errorf("vars = %v, want one nil-bound var", prog.Vars)
	}
}

func TestEntry(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{".code a RETURN .end .code b RETURN .end", "a"},
		{".code a RETURN .end .code main RETURN .end", "main"},
		{".code outer .code inner RETURN .end RETURN .end", "outer"},
	}

	for _, test := range tests {
		prog, err := assembler.Assemble(test.src)
		if err != nil {
			t.Fatalf("%q: %v", test.src, err)
		}
		if prog.Entry.Name != test.want {
			t.Errorf("%q: entry = %s, want %s", test.src, prog.Entry.Name, test.want)
		}
	}
}

func TestNestedBlocks(t *testing.T) {
	prog := load(t, "adder.lasm")

	makeAdder := prog.Function("make-adder")
	adder := prog.Function("adder")
	if len(makeAdder.Code) != 7 {
		t.Errorf("make-adder code = %v, nested block leaked into it", makeAdder.Code)
	}
	if len(adder.Code) != 6 {
		t.Errorf("adder code = %v", adder.Code)
	}
}

func TestErrors(t *testing.T) {
	src := `.code main
  FROB
  JMP nowhere
  LOAD_CONST @missing
  LOAD_CONST foo
  RETURN
.end
.end
.code main
  INVOKE
.end
.code open`

	_, err := assembler.Assemble(src)
	if err == nil {
		t.Fatal("Assemble succeeded")
	}

	msg := err.Error()
	for _, want := range []string{
		"2:3: unknown instruction FROB",
		"3:7: undefined label nowhere in main",
		"4:14: undefined code block @missing",
		"5:14: expected constant, found `foo`",
		"8:1: unexpected .end outside a code block",
		"9:7: redefinition of code block main",
		"11:1: expected operand for INVOKE, found `.end`",
		"12:1: code block open is missing .end",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("errors missing %q:\n%s", want, msg)
		}
	}
}

func TestEmpty(t *testing.T) {
	if _, err := assembler.Assemble("; nothing here\n"); err == nil || !strings.Contains(err.Error(), "no code blocks") {
		t.Errorf("err = %v, want no code blocks", err)
	}
}
