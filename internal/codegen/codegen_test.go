package codegen

import (
	"strings"
	"testing"

	"github.com/tangzhangming/elfc/internal/ast"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// ident 创建不带下标的标识符
func ident(a *ast.Arena, name string) ast.NodeID {
	return a.NewIdent(name, ast.Nil)
}

func generate(t *testing.T, a *ast.Arena, root ast.NodeID, opts Options) *Program {
	t.Helper()
	prog, err := New(a, opts).Generate(root)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return prog
}

func expectListing(t *testing.T, r *Routine, expected []string) {
	t.Helper()
	got := r.Listing()
	if len(got) != len(expected) {
		t.Fatalf("%s: expected %d instructions, got %d:\n%s", r.Name, len(expected), len(got), strings.Join(got, "\n"))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("%s[%d]: expected %q, got %q", r.Name, i, expected[i], got[i])
		}
	}
}

// ============================================================================
// 基本语句
// ============================================================================

// TestAssignReturnListing 测试 x = 2; y = x + 3; return y;
func TestAssignReturnListing(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewAssign("x", a.NewNumber(2)),
		a.NewAssign("y", a.NewBinary(token.ADD, ident(a, "x"), a.NewNumber(3))),
		a.NewReturn(ident(a, "y")),
	)

	gen := New(a, Options{})
	prog, err := gen.Generate(root)
	if err != nil {
		t.Fatal(err)
	}

	expectListing(t, prog.Entry(), []string{
		"push 2",
		"pop [global+0]",
		"push [global+0]",
		"push 3",
		"add",
		"pop [global+1]",
		"push [global+1]",
		"pop rax",
		"ret",
	})

	x, _ := gen.Resolver().Global().Lookup("x")
	y, _ := gen.Resolver().Global().Lookup("y")
	if x.Shift != 0 || y.Shift != 1 {
		t.Errorf("expected x@0 y@1, got %v %v", x, y)
	}
	if prog.GlobalSize != 2 || prog.Entry().Name != DefaultEntry {
		t.Errorf("unexpected program: globals %d, entry %s", prog.GlobalSize, prog.Entry().Name)
	}
}

// TestImplicitReturn 测试没有 return 的例程补 return 0
func TestImplicitReturn(t *testing.T) {
	a := ast.NewArena(0)
	prog := generate(t, a, a.NewStmts(a.NewAssign("x", a.NewNumber(1))), Options{})
	expectListing(t, prog.Entry(), []string{
		"push 1",
		"pop [global+0]",
		"push 0",
		"pop rax",
		"ret",
	})

	empty := generate(t, a, ast.Nil, Options{})
	expectListing(t, empty.Entry(), []string{"push 0", "pop rax", "ret"})
}

// TestOperators 测试所有二元运算和 not 都映射到对应指令
func TestOperators(t *testing.T) {
	tests := []struct {
		op       token.Keyword
		expected string
	}{
		{token.ADD, "add"},
		{token.SUB, "sub"},
		{token.MUL, "mul"},
		{token.DIV, "div"},
		{token.POW, "pow"},
		{token.EQ, "eq"},
		{token.NE, "ne"},
		{token.GT, "gt"},
		{token.LT, "lt"},
		{token.GE, "ge"},
		{token.LE, "le"},
		{token.AND, "and"},
		{token.OR, "or"},
	}

	for _, tt := range tests {
		a := ast.NewArena(0)
		root := a.NewStmts(a.NewReturn(a.NewBinary(tt.op, a.NewNumber(7), a.NewNumber(2))))
		prog := generate(t, a, root, Options{})
		expectListing(t, prog.Entry(), []string{"push 7", "push 2", tt.expected, "pop rax", "ret"})
	}

	a := ast.NewArena(0)
	root := a.NewStmts(a.NewReturn(a.NewKeyword(token.NOT, ast.Nil, a.NewNumber(0))))
	prog := generate(t, a, root, Options{})
	expectListing(t, prog.Entry(), []string{"push 0", "not", "pop rax", "ret"})
}

// TestFloatLiteralTruncated 测试数字字面量按整数处理
func TestFloatLiteralTruncated(t *testing.T) {
	a := ast.NewArena(0)
	prog := generate(t, a, a.NewStmts(a.NewReturn(a.NewNumber(3.9))), Options{})
	if got := prog.Entry().Code[0].String(); got != "push 3" {
		t.Errorf("expected push 3, got %s", got)
	}
}

// ============================================================================
// 控制流
// ============================================================================

// TestWhileLabels 测试循环标签与跳转
func TestWhileLabels(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewAssign("i", a.NewNumber(0)),
		a.NewKeyword(token.WHILE,
			a.NewBinary(token.LT, ident(a, "i"), a.NewNumber(3)),
			a.NewStmts(a.NewAssign("i", a.NewBinary(token.ADD, ident(a, "i"), a.NewNumber(1))))),
		a.NewReturn(ident(a, "i")),
	)

	prog := generate(t, a, root, Options{})
	expectListing(t, prog.Entry(), []string{
		"push 0",
		"pop [global+0]",
		".L0:",
		"push [global+0]",
		"push 3",
		"lt",
		"push 0",
		"je .L1",
		"push [global+0]",
		"push 1",
		"add",
		"pop [global+0]",
		"jmp .L0",
		".L1:",
		"push [global+0]",
		"pop rax",
		"ret",
	})
}

// TestIfElse 测试带 else 和不带 else 的条件语句
func TestIfElse(t *testing.T) {
	a := ast.NewArena(0)
	cond := func() ast.NodeID { return a.NewBinary(token.EQ, ident(a, "x"), a.NewNumber(1)) }
	root := a.NewStmts(
		a.NewAssign("x", a.NewNumber(1)),
		a.NewKeyword(token.IF, cond(), a.NewStmts(a.NewAssign("x", a.NewNumber(2)))),
		a.NewKeyword(token.IF, cond(), a.NewKeyword(token.ELSE,
			a.NewStmts(a.NewReturn(a.NewNumber(10))),
			a.NewStmts(a.NewReturn(a.NewNumber(20))))),
	)

	prog := generate(t, a, root, Options{})
	expectListing(t, prog.Entry(), []string{
		"push 1",
		"pop [global+0]",
		// if 不带 else
		"push [global+0]",
		"push 1",
		"eq",
		"push 0",
		"je .L0",
		"push 2",
		"pop [global+0]",
		".L0:",
		// if/else
		"push [global+0]",
		"push 1",
		"eq",
		"push 0",
		"je .L2",
		"push 10",
		"pop rax",
		"ret",
		"jmp .L1",
		".L2:",
		"push 20",
		"pop rax",
		"ret",
		".L1:",
		// 最后一条语句不是 return
		"push 0",
		"pop rax",
		"ret",
	})
	if prog.Labels != 3 {
		t.Errorf("expected 3 labels, got %d", prog.Labels)
	}
}

// ============================================================================
// 函数与调用
// ============================================================================

// TestCallProtocol 测试调用协议与帧大小回填
func TestCallProtocol(t *testing.T) {
	a := ast.NewArena(0)
	// def f(a, b) { t = a + b; return g(t); }
	f := a.NewDefine("f", []string{"a", "b"}, a.NewStmts(
		a.NewAssign("t", a.NewBinary(token.ADD, ident(a, "a"), ident(a, "b"))),
		a.NewReturn(a.NewCall("g", ident(a, "t"))),
	))
	// def g(v) { return v; }
	g := a.NewDefine("g", []string{"v"}, a.NewStmts(a.NewReturn(ident(a, "v"))))
	root := a.NewStmts(f, a.NewAssign("r", a.NewCall("f", a.NewNumber(1), a.NewNumber(2))), g)

	prog := generate(t, a, root, Options{})
	if len(prog.Routines) != 3 {
		t.Fatalf("expected 3 routines, got %d", len(prog.Routines))
	}

	expectListing(t, prog.Entry(), []string{
		"push 1",
		"push 2",
		"pop [local+1]",
		"pop [local+0]",
		"push rlocal",
		"push 0",
		"add",
		"pop rlocal",
		"call f",
		"push rlocal",
		"push 0",
		"sub",
		"pop rlocal",
		"pop [global+0]",
		"push 0",
		"pop rax",
		"ret",
	})

	// f 的帧为 a, b, t 三个字，调用窗口从 local+3 开始
	rf := prog.Routine("f")
	if rf.FrameSize != 3 {
		t.Errorf("expected frame size 3, got %d", rf.FrameSize)
	}
	expectListing(t, rf, []string{
		"push [local+0]",
		"push [local+1]",
		"add",
		"pop [local+2]",
		"push [local+2]",
		"pop [local+3]",
		"push rlocal",
		"push 24",
		"add",
		"pop rlocal",
		"call g",
		"push rlocal",
		"push 24",
		"sub",
		"pop rlocal",
		"pop rax",
		"ret",
	})
}

// TestFrameSizeCountsLaterLocals 测试调用之后才声明的局部变量也计入帧大小
func TestFrameSizeCountsLaterLocals(t *testing.T) {
	a := ast.NewArena(0)
	h := a.NewDefine("h", nil, a.NewStmts(
		a.NewCall("k"),
		a.NewAssign("late", a.NewNumber(1)),
	))
	k := a.NewDefine("k", nil, ast.Nil)
	prog := generate(t, a, a.NewStmts(h, k), Options{})

	rh := prog.Routine("h")
	if rh.FrameSize != 1 {
		t.Fatalf("expected frame size 1, got %d", rh.FrameSize)
	}
	if got := rh.Code[1].String(); got != "push 8" {
		t.Errorf("expected window advance of 8 bytes, got %s", got)
	}
}

// TestForwardReferenceAndRecursion 测试前向引用和递归调用
func TestForwardReferenceAndRecursion(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewReturn(a.NewCall("fact", a.NewNumber(5))),
		a.NewDefine("fact", []string{"n"}, a.NewStmts(
			a.NewKeyword(token.IF, a.NewBinary(token.LE, ident(a, "n"), a.NewNumber(1)),
				a.NewStmts(a.NewReturn(a.NewNumber(1)))),
			a.NewReturn(a.NewBinary(token.MUL, ident(a, "n"),
				a.NewCall("fact", a.NewBinary(token.SUB, ident(a, "n"), a.NewNumber(1))))),
		)),
	)
	prog := generate(t, a, root, Options{})
	if prog.Routine("fact") == nil {
		t.Fatal("missing fact routine")
	}
}

// TestArityMismatchEmitsNothing 测试参数个数不符时调用点不发射指令
func TestArityMismatchEmitsNothing(t *testing.T) {
	a := ast.NewArena(0)
	def := a.NewDefine("f", []string{"a"}, a.NewStmts(a.NewReturn(ident(a, "a"))))
	tests := []struct {
		name string
		call ast.NodeID
	}{
		{"too many", a.NewCall("f", a.NewNumber(1), a.NewNumber(2))},
		{"too few", a.NewCall("f")},
		{"undeclared", a.NewCall("nope", a.NewNumber(1))},
	}

	for _, tt := range tests {
		gen := New(a, Options{})
		if _, err := gen.funcs.Declare(a, def); err != nil {
			t.Fatal(err)
		}
		gen.routine = &Routine{Name: "caller"}

		err := gen.call(tt.call, a.Node(tt.call))
		if !errors.Is(err, errors.ArityMismatch) {
			t.Errorf("%s: expected ArityMismatchError, got %v", tt.name, err)
		}
		if n := len(gen.routine.Code); n != 0 {
			t.Errorf("%s: expected no instructions, got %d", tt.name, n)
		}
	}

	// 通过 Generate 也返回同样的错误
	_, err := New(a, Options{}).Generate(a.NewStmts(def, a.NewCall("f")))
	if !errors.Is(err, errors.ArityMismatch) {
		t.Errorf("expected ArityMismatchError from Generate, got %v", err)
	}
}

// TestCallHints 测试调用错误附带的修复建议
func TestCallHints(t *testing.T) {
	opts := Options{Runtime: []Runtime{{"print", 1}}}
	tests := []struct {
		name string
		call func(a *ast.Arena) ast.NodeID
		hint string
	}{
		{"user signature", func(a *ast.Arena) ast.NodeID { return a.NewCall("add", a.NewNumber(1)) },
			i18n.T(i18n.HintSignature, "add", "add(x, y)")},
		{"runtime signature", func(a *ast.Arena) ast.NodeID { return a.NewCall("print") },
			i18n.T(i18n.HintRuntimeSignature, "print", 1)},
		{"did you mean", func(a *ast.Arena) ast.NodeID { return a.NewCall("prnt", a.NewNumber(1)) },
			i18n.T(i18n.HintDidYouMean, "print")},
		{"nothing close", func(a *ast.Arena) ast.NodeID { return a.NewCall("unrelated") }, ""},
	}

	for _, tt := range tests {
		a := ast.NewArena(0)
		root := a.NewStmts(
			a.NewDefine("add", []string{"x", "y"}, a.NewStmts(a.NewReturn(ident(a, "x")))),
			a.NewCall("print", a.NewNumber(0)),
			tt.call(a),
		)
		_, err := New(a, opts).Generate(root)
		ce, ok := errors.As(err)
		if !ok || !errors.Is(err, errors.ArityMismatch) {
			t.Errorf("%s: expected ArityMismatchError, got %v", tt.name, err)
			continue
		}
		if tt.hint == "" {
			if len(ce.Hints) != 0 {
				t.Errorf("%s: expected no hints, got %v", tt.name, ce.Hints)
			}
			continue
		}
		if len(ce.Hints) != 1 || ce.Hints[0] != tt.hint {
			t.Errorf("%s: expected hint %q, got %v", tt.name, tt.hint, ce.Hints)
		}
	}
}

// TestDuplicateFunction 测试重复定义函数的错误是确定性的
func TestDuplicateFunction(t *testing.T) {
	var messages []string
	for i := 0; i < 2; i++ {
		a := ast.NewArena(0)
		root := a.NewStmts(
			a.NewDefine("f", nil, a.NewStmts(a.NewReturn(a.NewNumber(1)))),
			a.NewDefine("f", []string{"x", "y"}, a.NewStmts(a.NewReturn(ident(a, "y")))),
		)
		_, err := New(a, Options{}).Generate(root)
		if !errors.Is(err, errors.DuplicateDefinition) {
			t.Fatalf("expected DuplicateDefinitionError, got %v", err)
		}
		messages = append(messages, err.Error())
	}
	if messages[0] != messages[1] {
		t.Errorf("error is not deterministic: %q vs %q", messages[0], messages[1])
	}
}

// TestReservedNames 测试与入口例程或运行时例程同名的函数
func TestReservedNames(t *testing.T) {
	opts := Options{Runtime: []Runtime{{Name: "print", Arity: 1}}}
	for _, name := range []string{DefaultEntry, "print"} {
		a := ast.NewArena(0)
		_, err := New(a, opts).Generate(a.NewStmts(a.NewDefine(name, nil, ast.Nil)))
		if !errors.Is(err, errors.DuplicateDefinition) {
			t.Errorf("%s: expected DuplicateDefinitionError, got %v", name, err)
		}
	}

	// 生成的标签使用 .L 前缀，函数名和入口名都不能占用
	a := ast.NewArena(0)
	_, err := New(a, opts).Generate(a.NewStmts(a.NewDefine(".Lexit", nil, ast.Nil)))
	if !errors.Is(err, errors.Syntax) {
		t.Errorf(".Lexit function: expected SyntaxError, got %v", err)
	}
	_, err = New(a, Options{Entry: ".L0"}).Generate(a.NewStmts(a.NewReturn(a.NewNumber(0))))
	if !errors.Is(err, errors.Syntax) {
		t.Errorf(".L0 entry: expected SyntaxError, got %v", err)
	}
}

// ============================================================================
// 变量与作用域
// ============================================================================

// TestUndefinedReference 测试读取未赋值的标识符
func TestUndefinedReference(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(a.NewAssign("x", a.NewBinary(token.ADD, ident(a, "x"), a.NewNumber(1))))
	_, err := New(a, Options{}).Generate(root)
	if !errors.Is(err, errors.UndefinedReference) {
		t.Fatalf("expected UndefinedReferenceError, got %v", err)
	}
	ce, ok := errors.As(err)
	if !ok || !strings.Contains(ce.Node, "'x'") {
		t.Errorf("diagnostic should carry the offending subtree, got %+v", ce)
	}
}

// TestUndefinedReferenceHint 测试拼写相近的变量给出建议
func TestUndefinedReferenceHint(t *testing.T) {
	tests := []struct {
		name    string
		program func(a *ast.Arena) ast.NodeID
		hint    string
	}{
		{"global", func(a *ast.Arena) ast.NodeID {
			return a.NewStmts(a.NewAssign("count", a.NewNumber(1)), a.NewReturn(ident(a, "cuont")))
		}, "count"},
		{"parameter", func(a *ast.Arena) ast.NodeID {
			return a.NewStmts(
				a.NewAssign("count", a.NewNumber(1)),
				a.NewDefine("f", []string{"total"}, a.NewStmts(a.NewReturn(ident(a, "totl")))),
			)
		}, "total"},
	}

	for _, tt := range tests {
		a := ast.NewArena(0)
		_, err := New(a, Options{}).Generate(tt.program(a))
		ce, ok := errors.As(err)
		if !ok || !errors.Is(err, errors.UndefinedReference) {
			t.Errorf("%s: expected UndefinedReferenceError, got %v", tt.name, err)
			continue
		}
		if want := i18n.T(i18n.HintDidYouMean, tt.hint); len(ce.Hints) != 1 || ce.Hints[0] != want {
			t.Errorf("%s: expected hint %q, got %v", tt.name, want, ce.Hints)
		}
	}
}

// TestLocalsDoNotLeak 测试局部变量不会泄漏到下一个函数
func TestLocalsDoNotLeak(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewDefine("f", nil, a.NewStmts(a.NewAssign("t", a.NewNumber(1)))),
		a.NewDefine("g", nil, a.NewStmts(a.NewReturn(ident(a, "t")))),
	)
	gen := New(a, Options{})
	_, err := gen.Generate(root)
	if !errors.Is(err, errors.UndefinedReference) {
		t.Fatalf("expected UndefinedReferenceError, got %v", err)
	}
	if gen.Resolver().Local() != nil {
		t.Error("local scope must be released after a failed function")
	}
}

// TestGlobalsVisibleInFunctions 测试函数体读写全局变量
func TestGlobalsVisibleInFunctions(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewAssign("counter", a.NewNumber(0)),
		a.NewDefine("bump", nil, a.NewStmts(
			a.NewAssign("counter", a.NewBinary(token.ADD, ident(a, "counter"), a.NewNumber(1))),
		)),
	)
	prog := generate(t, a, root, Options{})
	expectListing(t, prog.Routine("bump"), []string{
		"push [global+0]",
		"push 1",
		"add",
		"pop [global+0]",
		"push 0",
		"pop rax",
		"ret",
	})
	if prog.Routine("bump").FrameSize != 0 {
		t.Error("global assignment must not allocate a local slot")
	}
}

// TestArrayAccess 测试数组声明与下标读写
func TestArrayAccess(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(
		a.NewKeyword(token.ARRAY, ident(a, "arr"), a.NewNumber(3)),
		a.NewKeyword(token.ASSIGN, a.NewIdent("arr", a.NewNumber(2)), a.NewNumber(7)),
		a.NewAssign("n", a.NewIdent("arr", a.NewNumber(2))),
	)
	prog := generate(t, a, root, Options{})
	expectListing(t, prog.Entry(), []string{
		"push 7",
		"push 2",
		"pop [global+0+rcx]",
		"push 2",
		"push [global+0+rcx]",
		"pop [global+4]",
		"push 0",
		"pop rax",
		"ret",
	})
	if prog.GlobalSize != 5 {
		t.Errorf("expected 5 global words, got %d", prog.GlobalSize)
	}

	bad := a.NewStmts(a.NewKeyword(token.ARRAY, ident(a, "b"), a.NewNumber(-1)))
	if _, err := New(a, Options{}).Generate(bad); !errors.Is(err, errors.Syntax) {
		t.Errorf("expected SyntaxError for negative size, got %v", err)
	}
}

// ============================================================================
// 外部例程与语法错误
// ============================================================================

// TestExternalCalls 测试外部例程按首次引用顺序记录
func TestExternalCalls(t *testing.T) {
	a := ast.NewArena(0)
	opts := Options{Runtime: []Runtime{{"print", 1}, {"scan", 0}, {"exit", 1}}}
	root := a.NewStmts(
		a.NewCall("exit", a.NewNumber(0)),
		a.NewCall("print", a.NewNumber(5)),
		a.NewCall("exit", a.NewNumber(1)),
	)
	prog := generate(t, a, root, opts)

	if len(prog.Externals) != 2 || prog.Externals[0].Name != "exit" || prog.Externals[1].Name != "print" {
		t.Fatalf("unexpected externals: %v", prog.Externals)
	}
	call := prog.Entry().Code[6]
	if call.Op != OpCall || !call.External || call.Arity != 1 {
		t.Errorf("expected external call of arity 1, got %+v", call)
	}
	if got := prog.Entry().Code[11].String(); got != "pop rax" {
		t.Errorf("call statement should discard its result, got %s", got)
	}
}

// TestSyntaxErrors 测试形状错误的子树
func TestSyntaxErrors(t *testing.T) {
	a := ast.NewArena(0)
	tests := []struct {
		name string
		stmt ast.NodeID
	}{
		{"expression as statement", a.NewBinary(token.ADD, a.NewNumber(1), a.NewNumber(2))},
		{"assign to number", a.NewKeyword(token.ASSIGN, a.NewNumber(1), a.NewNumber(2))},
		{"missing operand", a.NewReturn(a.NewBinary(token.SUB, a.NewNumber(1), ast.Nil))},
		{"return nothing", a.NewReturn(ast.Nil)},
		{"while without condition", a.NewKeyword(token.WHILE, ast.Nil, ast.Nil)},
		{"nested define", a.NewKeyword(token.IF, a.NewNumber(1), a.NewDefine("f", nil, ast.Nil))},
		{"call without name", a.NewKeyword(token.CALL, a.NewNumber(1), ast.Nil)},
		{"stray else", a.NewKeyword(token.ELSE, ast.Nil, ast.Nil)},
	}

	for _, tt := range tests {
		_, err := New(a, Options{}).Generate(a.NewStmts(tt.stmt))
		if !errors.Is(err, errors.Syntax) {
			t.Errorf("%s: expected SyntaxError, got %v", tt.name, err)
			continue
		}
		if ce, ok := errors.As(err); !ok || ce.Node == "" {
			t.Errorf("%s: expected the subtree text in the diagnostic", tt.name)
		}
	}

	if _, err := New(a, Options{}).Generate(a.NewNumber(1)); !errors.Is(err, errors.Syntax) {
		t.Errorf("non-statement root: expected SyntaxError, got %v", err)
	}
}

// TestMalformedLists 测试 stmt/param 链上混入其它节点时报语法错误而不是丢弃
func TestMalformedLists(t *testing.T) {
	tests := []struct {
		name  string
		build func(a *ast.Arena) ast.NodeID
	}{
		{
			// (('x' = 5) ; ('y' = 1))
			"top-level stmt link is an assignment",
			func(a *ast.Arena) ast.NodeID {
				return a.NewKeyword(token.STMT, a.NewAssign("x", a.NewNumber(5)), a.NewAssign("y", a.NewNumber(1)))
			},
		},
		{
			"function body stmt link is a return",
			func(a *ast.Arena) ast.NodeID {
				body := a.NewKeyword(token.STMT, a.NewReturn(a.NewNumber(1)), a.NewReturn(a.NewNumber(2)))
				return a.NewStmts(a.NewDefine("f", nil, body))
			},
		},
		{
			"while body stmt link is a number",
			func(a *ast.Arena) ast.NodeID {
				body := a.NewKeyword(token.STMT, a.NewNumber(3), a.NewAssign("i", a.NewNumber(0)))
				return a.NewStmts(a.NewKeyword(token.WHILE, a.NewNumber(0), body))
			},
		},
		{
			"define param link is an identifier",
			func(a *ast.Arena) ast.NodeID {
				fn := a.NewKeyword(token.FUNC, ident(a, "f"),
					a.NewKeyword(token.PARAM, ident(a, "a"), ident(a, "b")))
				return a.NewStmts(a.NewKeyword(token.DEFINE, fn, a.NewStmts(a.NewReturn(ident(a, "b")))))
			},
		},
	}

	for _, tt := range tests {
		a := ast.NewArena(0)
		prog, err := New(a, Options{}).Generate(tt.build(a))
		if !errors.Is(err, errors.Syntax) {
			t.Errorf("%s: expected SyntaxError, got %v", tt.name, err)
		}
		if prog != nil {
			t.Errorf("%s: no program expected", tt.name)
		}
	}
}

// TestMalformedCallArguments 测试实参链断开时不会绕过参数个数检查
func TestMalformedCallArguments(t *testing.T) {
	a := ast.NewArena(0)
	def := a.NewDefine("f", []string{"a"}, a.NewStmts(a.NewReturn(ident(a, "a"))))
	// call(f, ((1) param (2)))：看起来只有一个实参
	call := a.NewKeyword(token.CALL, ident(a, "f"), a.NewKeyword(token.PARAM, a.NewNumber(1), a.NewNumber(2)))

	gen := New(a, Options{})
	if _, err := gen.funcs.Declare(a, def); err != nil {
		t.Fatal(err)
	}
	gen.routine = &Routine{Name: "caller"}
	err := gen.call(call, a.Node(call))
	if !errors.Is(err, errors.Syntax) {
		t.Errorf("expected SyntaxError, got %v", err)
	}
	if n := len(gen.routine.Code); n != 0 {
		t.Errorf("expected no instructions, got %d", n)
	}

	_, err = New(a, Options{}).Generate(a.NewStmts(def, a.NewReturn(call)))
	if !errors.Is(err, errors.Syntax) {
		t.Errorf("expected SyntaxError from Generate, got %v", err)
	}
}

// TestProgramString 测试清单输出
func TestProgramString(t *testing.T) {
	a := ast.NewArena(0)
	root := a.NewStmts(a.NewDefine("f", nil, ast.Nil), a.NewReturn(a.NewCall("f")))
	prog := generate(t, a, root, Options{Entry: "start"})

	out := prog.String()
	for _, want := range []string{"start:\n", "\tcall f\n", "f:\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if prog.Len() != len(prog.Routine("start").Code)+len(prog.Routine("f").Code) {
		t.Error("Len should count every routine")
	}
}
