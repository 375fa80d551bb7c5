package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/moonlet/pkg/bytecode"
)

// compileOK is a test helper that compiles source and fails on error.
func compileOK(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	chunk, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", source, err)
	}
	return chunk
}

func assertCode(t *testing.T, chunk *bytecode.Chunk, want []bytecode.Instruction) {
	t.Helper()
	if len(chunk.Code) != len(want) {
		t.Fatalf("got %d instructions, want %d:\n%s", len(chunk.Code), len(want), chunk.Disassemble())
	}
	for i := range want {
		if chunk.Code[i] != want[i] {
			t.Errorf("code[%d] = %s, want %s", i, chunk.Code[i], want[i])
		}
	}
}

func assertConstants(t *testing.T, chunk *bytecode.Chunk, want []bytecode.Value) {
	t.Helper()
	if len(chunk.Constants) != len(want) {
		t.Fatalf("got %d constants %v, want %d", len(chunk.Constants), chunk.Constants, len(want))
	}
	for i := range want {
		if !chunk.Constants[i].Equal(want[i]) {
			t.Errorf("constants[%d] = %#v, want %#v", i, chunk.Constants[i], want[i])
		}
	}
}

// ============================================================================
// Statements
// ============================================================================

func TestCompileLiteralArguments(t *testing.T) {
	tests := []struct {
		source string
		load   bytecode.Instruction
		consts []bytecode.Value
	}{
		{"print(nil)", bytecode.LoadNil(1), []bytecode.Value{bytecode.String("print")}},
		{"print(true)", bytecode.LoadBool(1, true), []bytecode.Value{bytecode.String("print")}},
		{"print(false)", bytecode.LoadBool(1, false), []bytecode.Value{bytecode.String("print")}},
		{"print(123)", bytecode.LoadInt(1, 123), []bytecode.Value{bytecode.String("print")}},
		{"print(0)", bytecode.LoadInt(1, 0), []bytecode.Value{bytecode.String("print")}},
		{"print(1.5)", bytecode.LoadConst(1, 1), []bytecode.Value{bytecode.String("print"), bytecode.Float(1.5)}},
		{`print("hi")`, bytecode.LoadConst(1, 1), []bytecode.Value{bytecode.String("print"), bytecode.String("hi")}},
		{`print "hi"`, bytecode.LoadConst(1, 1), []bytecode.Value{bytecode.String("print"), bytecode.String("hi")}},
		{`print 'hi'`, bytecode.LoadConst(1, 1), []bytecode.Value{bytecode.String("print"), bytecode.String("hi")}},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			chunk := compileOK(t, tc.source)
			assertCode(t, chunk, []bytecode.Instruction{
				bytecode.GetGlobal(0, 0),
				tc.load,
				bytecode.Call(0, 1),
			})
			assertConstants(t, chunk, tc.consts)
		})
	}
}

func TestCompileProgram(t *testing.T) {
	chunk := compileOK(t, "print(nil) print(false) print(123) print(123456) print(123456.0)")

	assertConstants(t, chunk, []bytecode.Value{
		bytecode.String("print"),
		bytecode.Int(123456),
		bytecode.Float(123456.0),
	})
	assertCode(t, chunk, []bytecode.Instruction{
		bytecode.GetGlobal(0, 0),
		bytecode.LoadNil(1),
		bytecode.Call(0, 1),
		bytecode.GetGlobal(0, 0),
		bytecode.LoadBool(1, false),
		bytecode.Call(0, 1),
		bytecode.GetGlobal(0, 0),
		bytecode.LoadInt(1, 123),
		bytecode.Call(0, 1),
		bytecode.GetGlobal(0, 0),
		bytecode.LoadConst(1, 1),
		bytecode.Call(0, 1),
		bytecode.GetGlobal(0, 0),
		bytecode.LoadConst(1, 2),
		bytecode.Call(0, 1),
	})
}

func TestCompileImmediateRange(t *testing.T) {
	tests := []struct {
		source string
		load   bytecode.Instruction
		consts int
	}{
		{"print(32767)", bytecode.LoadInt(1, 32767), 1},
		{"print(32768)", bytecode.LoadConst(1, 1), 2},
		{"print(99999999)", bytecode.LoadConst(1, 1), 2},
	}

	for _, tc := range tests {
		chunk := compileOK(t, tc.source)
		if chunk.Code[1] != tc.load {
			t.Errorf("%s: load = %s, want %s", tc.source, chunk.Code[1], tc.load)
		}
		if chunk.ConstantCount() != tc.consts {
			t.Errorf("%s: %d constants, want %d", tc.source, chunk.ConstantCount(), tc.consts)
		}
	}
}

func TestCompileDeduplicatesConstants(t *testing.T) {
	chunk := compileOK(t, `print(100000) print(100000) print "x" print("x") print(2.5) print(2.5)`)

	assertConstants(t, chunk, []bytecode.Value{
		bytecode.String("print"),
		bytecode.Int(100000),
		bytecode.String("x"),
		bytecode.Float(2.5),
	})
	for pc, want := range map[int]bytecode.Instruction{
		1:  bytecode.LoadConst(1, 1),
		4:  bytecode.LoadConst(1, 1),
		7:  bytecode.LoadConst(1, 2),
		10: bytecode.LoadConst(1, 2),
		13: bytecode.LoadConst(1, 3),
		16: bytecode.LoadConst(1, 3),
	} {
		if chunk.Code[pc] != want {
			t.Errorf("code[%d] = %s, want %s", pc, chunk.Code[pc], want)
		}
	}
}

func TestCompileIntAndFloatConstantsAreDistinct(t *testing.T) {
	chunk := compileOK(t, "print(100000) print(100000.0) print(1e5)")
	assertConstants(t, chunk, []bytecode.Value{
		bytecode.String("print"),
		bytecode.Int(100000),
		bytecode.Float(100000),
	})
}

func TestCompileNameEqualToStringArgument(t *testing.T) {
	chunk := compileOK(t, `print "print"`)
	assertConstants(t, chunk, []bytecode.Value{bytecode.String("print")})
	assertCode(t, chunk, []bytecode.Instruction{
		bytecode.GetGlobal(0, 0),
		bytecode.LoadConst(1, 0),
		bytecode.Call(0, 1),
	})
}

func TestCompileSeveralGlobals(t *testing.T) {
	chunk := compileOK(t, "print(1); show(2);; print(3)")
	assertConstants(t, chunk, []bytecode.Value{bytecode.String("print"), bytecode.String("show")})
	if chunk.Code[3] != bytecode.GetGlobal(0, 1) {
		t.Errorf("code[3] = %s, want GET_GLOBAL 0 1", chunk.Code[3])
	}
	if chunk.Code[6] != bytecode.GetGlobal(0, 0) {
		t.Errorf("code[6] = %s, want GET_GLOBAL 0 0", chunk.Code[6])
	}
}

func TestCompileEmpty(t *testing.T) {
	for _, source := range []string{"", "  \n", "-- just a comment", ";;;"} {
		chunk := compileOK(t, source)
		if chunk.CodeLen() != 0 || chunk.ConstantCount() != 0 {
			t.Errorf("Compile(%q) produced %d instructions, %d constants", source, chunk.CodeLen(), chunk.ConstantCount())
		}
	}
}

func TestCompileSourceMap(t *testing.T) {
	chunk := compileOK(t, "print(1)\n  print \"x\"")

	want := []bytecode.SourceLocation{
		{Line: 1, Column: 1},
		{Line: 1, Column: 7},
		{Line: 1, Column: 1},
		{Line: 2, Column: 3},
		{Line: 2, Column: 9},
		{Line: 2, Column: 3},
	}
	for pc, loc := range want {
		if got := chunk.Location(pc); got != loc {
			t.Errorf("Location(%d) = %+v, want %+v", pc, got, loc)
		}
	}
}

// ============================================================================
// Errors
// ============================================================================

func TestCompileParseErrors(t *testing.T) {
	tests := []struct {
		source string
		msg    string
		line   int
		column int
	}{
		{"print(", "invalid argument", 1, 7},
		{"print(1", "expected ')'", 1, 8},
		{"print(1 2)", "expected ')'", 1, 9},
		{"print()", "invalid argument", 1, 7},
		{"print(x)", "invalid argument", 1, 7},
		{"print(-1)", "invalid argument", 1, 7},
		{"print", "expected argument", 1, 6},
		{"print 1", "expected argument", 1, 7},
		{"print = 1", "expected argument", 1, 7},
		{"local(1)", "expected name", 1, 1},
		{"nil(1)", "expected name", 1, 1},
		{"(1)", "expected name", 1, 1},
		{"print(1)\n42", "expected name", 2, 1},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			chunk, err := Compile(tc.source)
			if chunk != nil {
				t.Errorf("expected no chunk on error, got %d instructions", chunk.CodeLen())
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Msg != tc.msg {
				t.Errorf("message = %q, want %q", perr.Msg, tc.msg)
			}
			if perr.Pos.Line != tc.line || perr.Pos.Column != tc.column {
				t.Errorf("position = %s, want %d:%d", perr.Pos, tc.line, tc.column)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Compile("print(")
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := err.Error(), "parse error at 1:7: invalid argument near <eos>"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	_, err = Compile("print(1 'x')")
	if got, want := err.Error(), `parse error at 1:9: expected ')' near '"x"'`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCompileLexErrorPropagates(t *testing.T) {
	chunk, err := Compile(`print("open`)
	if chunk != nil {
		t.Error("expected no chunk")
	}
	var lerr *LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LexError, got %v", err)
	}
	if lerr.Msg != "unterminated string" {
		t.Errorf("message = %q", lerr.Msg)
	}
}

func TestCompileLexErrorAfterSemicolon(t *testing.T) {
	for _, source := range []string{"print(1); @", "print(1);;'open", ";\n;--[[ open"} {
		chunk, err := Compile(source)
		if chunk != nil {
			t.Errorf("Compile(%q) returned a chunk", source)
		}
		var lerr *LexError
		if !errors.As(err, &lerr) {
			t.Errorf("Compile(%q): expected LexError, got %v", source, err)
		}
	}
}

func TestCompileTooManyConstants(t *testing.T) {
	var sb strings.Builder
	// "print" plus 255 strings fills the table.
	for i := 0; i < bytecode.MaxConstIndex; i++ {
		fmt.Fprintf(&sb, "print 's%d'\n", i)
	}
	if _, err := Compile(sb.String()); err != nil {
		t.Fatalf("256 constants should fit: %v", err)
	}

	sb.WriteString("print 'one too many'\n")
	_, err := Compile(sb.String())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(perr.Msg, "too many constants") {
		t.Errorf("message = %q", perr.Msg)
	}
	if perr.Pos.Line != bytecode.MaxConstIndex+1 {
		t.Errorf("error line = %d, want %d", perr.Pos.Line, bytecode.MaxConstIndex+1)
	}
}

func TestCompileLexer(t *testing.T) {
	l := NewLexer("print(7)")
	chunk, err := CompileLexer(l)
	if err != nil {
		t.Fatal(err)
	}
	if chunk.CodeLen() != 3 {
		t.Errorf("got %d instructions", chunk.CodeLen())
	}
	if tok, _ := l.NextToken(); tok.Type != TokenEOS {
		t.Errorf("lexer should be at end, got %v", tok)
	}
}
