package symbol

import (
	"testing"

	"github.com/tangzhangming/elfc/internal/ast"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// ============================================================================
// 作用域测试
// ============================================================================

// TestScopeShiftsAreMonotonic 测试偏移按声明顺序单调分配
func TestScopeShiftsAreMonotonic(t *testing.T) {
	s := NewScope(Global)

	tests := []struct {
		name     string
		elements int
		shift    int
	}{
		{"a", 0, 0},
		{"arr", 3, 1},
		{"b", 0, 5},
		{"c", 0, 6},
	}

	for _, tt := range tests {
		v, err := s.Declare(tt.name, tt.elements)
		if err != nil {
			t.Fatalf("declare %s: %v", tt.name, err)
		}
		if v.Shift != tt.shift {
			t.Errorf("%s: expected shift %d, got %d", tt.name, tt.shift, v.Shift)
		}
	}

	if s.Size() != 7 {
		t.Errorf("expected scope size 7, got %d", s.Size())
	}
	if s.Len() != 4 {
		t.Errorf("expected 4 variables, got %d", s.Len())
	}
}

// TestScopeDuplicate 测试同一作用域重复声明
func TestScopeDuplicate(t *testing.T) {
	s := NewScope(Local)
	if _, err := s.Declare("x", 0); err != nil {
		t.Fatal(err)
	}
	_, err := s.Declare("x", 0)
	if !errors.Is(err, errors.DuplicateDefinition) {
		t.Fatalf("expected DuplicateDefinitionError, got %v", err)
	}
	if s.Size() != 1 {
		t.Errorf("failed declaration must not move the cursor, size %d", s.Size())
	}
}

// ============================================================================
// 解析器测试
// ============================================================================

// TestResolveIdempotent 测试重复解析返回同一变量
func TestResolveIdempotent(t *testing.T) {
	r := NewResolver()
	first, err := r.AssignTarget("x")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		v, err := r.Resolve("x")
		if err != nil {
			t.Fatal(err)
		}
		if v != first || v.Shift != 0 {
			t.Errorf("resolve #%d returned %v, expected %v", i, v, first)
		}
	}

	again, _ := r.AssignTarget("x")
	if again != first {
		t.Error("assigning an existing name must not declare a new variable")
	}
}

// TestResolveUndefined 测试读取未定义变量
func TestResolveUndefined(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("ghost")
	if !errors.Is(err, errors.UndefinedReference) {
		t.Fatalf("expected UndefinedReferenceError, got %v", err)
	}
	if ce, _ := errors.As(err); len(ce.Hints) != 0 {
		t.Errorf("empty scopes should give no hint, got %v", ce.Hints)
	}

	if _, err := r.Global().Declare("host", 0); err != nil {
		t.Fatal(err)
	}
	_, err = r.Resolve("ghost")
	ce, _ := errors.As(err)
	if want := i18n.T(i18n.HintDidYouMean, "host"); ce == nil || len(ce.Hints) != 1 || ce.Hints[0] != want {
		t.Errorf("expected hint %q, got %v", want, err)
	}
}

// TestFunctionScopeLifecycle 测试局部作用域的创建与销毁
func TestFunctionScopeLifecycle(t *testing.T) {
	r := NewResolver()
	g, _ := r.AssignTarget("g")

	local := r.EnterFunction()
	if r.Current() != local {
		t.Fatal("current scope should be the local scope inside a function")
	}

	// 局部赋值声明到局部作用域，偏移从 0 开始
	v, err := r.AssignTarget("t")
	if err != nil {
		t.Fatal(err)
	}
	if v.Scope != Local || v.Shift != 0 {
		t.Errorf("expected local@0, got %v", v)
	}

	// 全局变量在函数体内仍可见
	if got, err := r.Resolve("g"); err != nil || got != g {
		t.Errorf("expected global g, got %v (%v)", got, err)
	}

	// 局部变量遮蔽同名全局变量
	r.Declare("g", 0)
	if got, _ := r.Resolve("g"); got.Scope != Local {
		t.Errorf("local declaration should shadow global, got %v", got)
	}

	r.LeaveFunction()
	if r.Local() != nil {
		t.Fatal("local scope should be gone after LeaveFunction")
	}
	if _, err := r.Resolve("t"); err == nil {
		t.Error("local variable leaked out of its function")
	}

	// 下一个函数得到全新的局部作用域
	r.EnterFunction()
	defer r.LeaveFunction()
	v, _ = r.AssignTarget("u")
	if v.Shift != 0 {
		t.Errorf("new function should start at shift 0, got %d", v.Shift)
	}
}

// ============================================================================
// 函数表测试
// ============================================================================

// TestFunctionTableDeclare 测试从 define 节点声明函数
func TestFunctionTableDeclare(t *testing.T) {
	a := ast.NewArena(0)
	body := a.NewStmts(a.NewReturn(a.NewIdent("a", ast.Nil)))
	def := a.NewDefine("f", []string{"a", "b", "c"}, body)

	ft := NewFunctionTable()
	fn, err := ft.Declare(a, def)
	if err != nil {
		t.Fatal(err)
	}
	if fn.Name != "f" || fn.Arity != 3 {
		t.Errorf("expected f/3, got %s/%d", fn.Name, fn.Arity)
	}
	want := []string{"a", "b", "c"}
	for i, p := range want {
		if fn.Params[i] != p {
			t.Errorf("param %d: expected %s, got %s", i, p, fn.Params[i])
		}
	}
	if fn.Body != body || fn.External {
		t.Error("unexpected function body or external flag")
	}

	if ft.Find("f") != fn {
		t.Error("Find should return the declared function")
	}
	if ft.Find("g") != nil {
		t.Error("Find should return nil for unknown names")
	}
	if got := fn.Signature(); got != "f(a, b, c)" {
		t.Errorf("expected signature f(a, b, c), got %s", got)
	}
}

// TestFunctionTableNoParams 测试无参函数
func TestFunctionTableNoParams(t *testing.T) {
	a := ast.NewArena(0)
	ft := NewFunctionTable()
	fn, err := ft.Declare(a, a.NewDefine("main", nil, ast.Nil))
	if err != nil {
		t.Fatal(err)
	}
	if fn.Arity != 0 || len(fn.Params) != 0 {
		t.Errorf("expected no parameters, got %v", fn.Params)
	}
	if got := fn.Signature(); got != "main()" {
		t.Errorf("expected signature main(), got %s", got)
	}

	if _, err := ft.DeclareExternal("print", 1); err != nil {
		t.Fatal(err)
	}
	if names := ft.Names(); len(names) != 2 || names[0] != "main" || names[1] != "print" {
		t.Errorf("expected names in declaration order, got %v", names)
	}
}

// TestFunctionTableDuplicate 测试重复定义（包括与运行时例程重名）
func TestFunctionTableDuplicate(t *testing.T) {
	a := ast.NewArena(0)
	ft := NewFunctionTable()
	if _, err := ft.DeclareExternal("print", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := ft.Declare(a, a.NewDefine("f", nil, ast.Nil)); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"f", "print"} {
		_, err := ft.Declare(a, a.NewDefine(name, []string{"x"}, ast.Nil))
		if !errors.Is(err, errors.DuplicateDefinition) {
			t.Errorf("%s: expected DuplicateDefinitionError, got %v", name, err)
		}
	}
	if ft.Len() != 2 {
		t.Errorf("expected 2 functions, got %d", ft.Len())
	}
}

// TestFunctionTableMalformed 测试形状错误的 define 节点
func TestFunctionTableMalformed(t *testing.T) {
	a := ast.NewArena(0)
	tests := []struct {
		name string
		id   ast.NodeID
	}{
		{"not a define", a.NewNumber(1)},
		{"missing func", a.NewKeyword(token.DEFINE, a.NewIdent("f", ast.Nil), ast.Nil)},
		{"numeric parameter", a.NewKeyword(token.DEFINE,
			a.NewKeyword(token.FUNC, a.NewIdent("f", ast.Nil), a.NewParams(a.NewNumber(1))), ast.Nil)},
		// ((('a') param ('b')))：第一个参数挂在左子节点上，不是 param 链
		{"broken parameter list", a.NewKeyword(token.DEFINE,
			a.NewKeyword(token.FUNC, a.NewIdent("f", ast.Nil),
				a.NewKeyword(token.PARAM, a.NewIdent("a", ast.Nil), a.NewIdent("b", ast.Nil))), ast.Nil)},
	}

	for _, tt := range tests {
		ft := NewFunctionTable()
		_, err := ft.Declare(a, tt.id)
		if !errors.Is(err, errors.Syntax) {
			t.Errorf("%s: expected SyntaxError, got %v", tt.name, err)
		}
		if ce, ok := errors.As(err); ok && ce.Node == "" {
			t.Errorf("%s: syntax error should carry the offending subtree", tt.name)
		}
		if ft.Len() != 0 {
			t.Errorf("%s: malformed define must not be declared", tt.name)
		}
	}
}

// TestFunctionTableReservedPrefix 测试函数名不能占用编译器生成的标签
func TestFunctionTableReservedPrefix(t *testing.T) {
	a := ast.NewArena(0)
	ft := NewFunctionTable()
	for _, name := range []string{".Lexit", ".L0", ".Lpow3"} {
		_, err := ft.Declare(a, a.NewDefine(name, nil, ast.Nil))
		if !errors.Is(err, errors.Syntax) {
			t.Errorf("%s: expected SyntaxError, got %v", name, err)
		}
		if ce, ok := errors.As(err); ok && ce.Code != errors.E0202 {
			t.Errorf("%s: expected %s, got %s", name, errors.E0202, ce.Code)
		}
		if _, err := ft.DeclareExternal(name, 0); err == nil {
			t.Errorf("%s: runtime routine with a label name should be rejected", name)
		}
	}
	if ft.Len() != 0 {
		t.Errorf("expected empty table, got %d functions", ft.Len())
	}

	// 只有前缀保留，形如 .Lx 之外的点号名称仍可用
	if _, err := ft.Declare(a, a.NewDefine(".helper", nil, ast.Nil)); err != nil {
		t.Errorf(".helper: unexpected error %v", err)
	}
}

// TestDeclareExternalInvalid 测试无效的运行时例程
func TestDeclareExternalInvalid(t *testing.T) {
	ft := NewFunctionTable()
	for _, arity := range []int{-1, MaxExternalArity + 1} {
		if _, err := ft.DeclareExternal("rt", arity); err == nil {
			t.Errorf("arity %d: expected error", arity)
		}
	}
	if _, err := ft.DeclareExternal("", 0); err == nil {
		t.Error("empty name: expected error")
	}
}
