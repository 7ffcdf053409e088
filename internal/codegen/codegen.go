// Package codegen 把 AST 编译为栈机指令序列
//
// 生成分三遍：
//  1. 声明所有顶层 define，使前向调用可以解析
//  2. 编译顶层语句，得到入口例程（赋值目标声明为全局变量）
//  3. 每个函数体在新的局部作用域中编译
//
// 遇到第一个错误立即返回，不做部分恢复。
package codegen

import (
	"fmt"

	"github.com/tangzhangming/elfc/internal/ast"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/symbol"
	"github.com/tangzhangming/elfc/internal/token"
)

// Runtime 外部运行时例程的声明
type Runtime struct {
	Name  string
	Arity int
}

// Options 代码生成选项
type Options struct {
	Entry   string    // 入口例程名
	Runtime []Runtime // 外部运行时例程目录
}

// DefaultEntry 默认入口例程名
const DefaultEntry = "main"

// patch 需要在函数体编译完成后回填帧大小的指令
type patch struct {
	index int  // 指令在当前例程中的下标
	bytes bool // true: 立即数回填为帧字节数；false: 偏移加上帧字数
}

// Generator 代码生成器
type Generator struct {
	arena    *ast.Arena
	opts     Options
	resolver *symbol.Resolver
	funcs    *symbol.FunctionTable

	routine *Routine
	patches []patch
	labels  int

	externals  []*symbol.Function
	referenced map[string]bool
}

// New 创建代码生成器
func New(arena *ast.Arena, opts Options) *Generator {
	if opts.Entry == "" {
		opts.Entry = DefaultEntry
	}
	return &Generator{
		arena:      arena,
		opts:       opts,
		resolver:   symbol.NewResolver(),
		funcs:      symbol.NewFunctionTable(),
		referenced: make(map[string]bool),
	}
}

// Resolver 返回变量解析器
func (g *Generator) Resolver() *symbol.Resolver { return g.resolver }

// Generate 编译整个程序
//
// root 为顶层 stmt 链；空句柄表示空程序。
func (g *Generator) Generate(root ast.NodeID) (*Program, error) {
	if symbol.IsReserved(g.opts.Entry) {
		return nil, errors.New(errors.E0202, g.opts.Entry, symbol.LabelPrefix)
	}
	for _, rt := range g.opts.Runtime {
		if _, err := g.funcs.DeclareExternal(rt.Name, rt.Arity); err != nil {
			return nil, err
		}
	}

	if n := g.arena.Node(root); n != nil && !n.Is(token.STMT) {
		return nil, g.syntaxError(root, i18n.ErrExpectedStatement, describe(n))
	}
	top, err := g.arena.Spine(root, token.STMT)
	if err != nil {
		return nil, err
	}

	// 第一遍：声明函数
	var defines []*symbol.Function
	for _, id := range top {
		if !g.arena.Node(id).Is(token.DEFINE) {
			continue
		}
		fn, err := g.funcs.Declare(g.arena, id)
		if err != nil {
			return nil, err
		}
		if fn.Name == g.opts.Entry {
			return nil, errors.New(errors.E0200, fn.Name).WithNode(ast.Format(g.arena, id))
		}
		defines = append(defines, fn)
	}

	prog := &Program{}

	// 第二遍：入口例程
	var stmts []ast.NodeID
	for _, id := range top {
		if !g.arena.Node(id).Is(token.DEFINE) {
			stmts = append(stmts, id)
		}
	}
	entry, err := g.compileRoutine(g.opts.Entry, nil, stmts)
	if err != nil {
		return nil, err
	}
	entry.Entry = true
	prog.Routines = append(prog.Routines, entry)

	// 第三遍：函数体
	for _, fn := range defines {
		r, err := g.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		prog.Routines = append(prog.Routines, r)
	}

	prog.Globals = g.resolver.Global().Variables()
	prog.GlobalSize = g.resolver.Global().Size()
	prog.Externals = g.externals
	prog.Labels = g.labels
	return prog, nil
}

// compileFunction 在新的局部作用域中编译函数体
func (g *Generator) compileFunction(fn *symbol.Function) (*Routine, error) {
	g.resolver.EnterFunction()
	defer g.resolver.LeaveFunction()

	for _, p := range fn.Params {
		if _, err := g.resolver.Declare(p, 0); err != nil {
			return nil, g.wrap(err, fn.Node)
		}
	}

	var body []ast.NodeID
	if n := g.arena.Node(fn.Body); n != nil {
		if n.Is(token.STMT) {
			var err error
			if body, err = g.arena.Spine(fn.Body, token.STMT); err != nil {
				return nil, err
			}
		} else {
			body = []ast.NodeID{fn.Body}
		}
	}
	return g.compileRoutine(fn.Name, fn, body)
}

// compileRoutine 编译一段语句为例程，并回填调用窗口的帧大小
func (g *Generator) compileRoutine(name string, fn *symbol.Function, stmts []ast.NodeID) (*Routine, error) {
	g.routine = &Routine{Name: name, Function: fn}
	g.patches = g.patches[:0]
	defer func() { g.routine = nil }()

	for _, id := range stmts {
		if err := g.stmt(id); err != nil {
			return nil, err
		}
	}

	// 没有以 return 结尾时补一个 return 0
	if len(stmts) == 0 || !g.arena.Node(stmts[len(stmts)-1]).Is(token.RETURN) {
		g.emit(OpPush, Imm(0))
		g.emit(OpPop, Reg(RegReturn))
		g.emit(OpRet, Operand{})
	}

	r := g.routine
	if local := g.resolver.Local(); local != nil {
		r.FrameSize = local.Size()
	}
	for _, p := range g.patches {
		in := &r.Code[p.index]
		if p.bytes {
			in.Arg.Imm = int64(r.FrameSize * WordSize)
		} else {
			in.Arg.Shift += r.FrameSize
		}
	}
	return r, nil
}

// ============================================================================
// 指令发射
// ============================================================================

func (g *Generator) emit(op Op, arg Operand) int {
	g.routine.Code = append(g.routine.Code, Instruction{Op: op, Arg: arg})
	return len(g.routine.Code) - 1
}

func (g *Generator) emitPatched(op Op, arg Operand, bytes bool) {
	g.patches = append(g.patches, patch{index: g.emit(op, arg), bytes: bytes})
}

// newLabel 分配一个会话内唯一的标签
func (g *Generator) newLabel() string {
	l := fmt.Sprintf("%s%d", symbol.LabelPrefix, g.labels)
	g.labels++
	return l
}

// ============================================================================
// 语句
// ============================================================================

// block 编译语句体：stmt 链、单条语句或空
func (g *Generator) block(id ast.NodeID) error {
	n := g.arena.Node(id)
	if n == nil {
		return nil
	}
	if !n.Is(token.STMT) {
		return g.stmt(id)
	}
	stmts, err := g.arena.Spine(id, token.STMT)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) stmt(id ast.NodeID) error {
	n := g.arena.Node(id)
	switch {
	case n.Is(token.ASSIGN):
		return g.assign(id, n)
	case n.Is(token.CALL):
		if err := g.call(id, n); err != nil {
			return err
		}
		g.emit(OpPop, Reg(RegReturn))
		return nil
	case n.Is(token.RETURN):
		if err := g.expr(n.Right, id); err != nil {
			return err
		}
		g.emit(OpPop, Reg(RegReturn))
		g.emit(OpRet, Operand{})
		return nil
	case n.Is(token.WHILE):
		return g.while(id, n)
	case n.Is(token.IF):
		return g.ifStmt(id, n)
	case n.Is(token.ARRAY):
		return g.array(id, n)
	case n.Is(token.STMT):
		return g.block(id)
	}
	return g.syntaxError(id, i18n.ErrExpectedStatement, describe(n))
}

// assign 编译 target = expr
//
// 先编译右值再解析目标，所以 x = x + 1 在 x 未定义时报错。
func (g *Generator) assign(id ast.NodeID, n *ast.Node) error {
	target := g.arena.Node(n.Left)
	if !target.IsIdent() {
		return g.syntaxError(id, i18n.ErrExpectedIdent, "=")
	}
	if err := g.expr(n.Right, id); err != nil {
		return err
	}

	// 下标赋值要求数组已声明
	if !target.Right.IsNil() {
		v, err := g.resolver.Resolve(target.Name)
		if err != nil {
			return g.wrap(err, id)
		}
		if err := g.expr(target.Right, id); err != nil {
			return err
		}
		mem := Mem(v.Scope, v.Shift)
		mem.Indexed = true
		g.emit(OpPop, mem)
		return nil
	}

	v, err := g.resolver.AssignTarget(target.Name)
	if err != nil {
		return g.wrap(err, id)
	}
	g.emit(OpPop, Mem(v.Scope, v.Shift))
	return nil
}

// while 编译循环：
//
//	start: cond; push 0; je end; body; jmp start; end:
func (g *Generator) while(id ast.NodeID, n *ast.Node) error {
	if n.Left.IsNil() {
		return g.syntaxError(id, i18n.ErrExpectedChild, "while", "condition")
	}
	start, end := g.newLabel(), g.newLabel()

	g.emit(OpLabel, Label(start))
	if err := g.expr(n.Left, id); err != nil {
		return err
	}
	g.emit(OpPush, Imm(0))
	g.emit(OpJe, Label(end))
	if err := g.block(n.Right); err != nil {
		return err
	}
	g.emit(OpJmp, Label(start))
	g.emit(OpLabel, Label(end))
	return nil
}

// ifStmt 编译条件语句，右子节点为 then 体或 else(then, else)
func (g *Generator) ifStmt(id ast.NodeID, n *ast.Node) error {
	if n.Left.IsNil() {
		return g.syntaxError(id, i18n.ErrExpectedChild, "if", "condition")
	}
	then, otherwise := n.Right, ast.Nil
	if body := g.arena.Node(n.Right); body.Is(token.ELSE) {
		then, otherwise = body.Left, body.Right
	}

	if err := g.expr(n.Left, id); err != nil {
		return err
	}
	end := g.newLabel()
	target := end
	if !otherwise.IsNil() {
		target = g.newLabel()
	}
	g.emit(OpPush, Imm(0))
	g.emit(OpJe, Label(target))
	if err := g.block(then); err != nil {
		return err
	}
	if !otherwise.IsNil() {
		g.emit(OpJmp, Label(end))
		g.emit(OpLabel, Label(target))
		if err := g.block(otherwise); err != nil {
			return err
		}
	}
	g.emit(OpLabel, Label(end))
	return nil
}

// array 编译数组声明 array('name', n)：在当前作用域占用 1+n 个字
func (g *Generator) array(id ast.NodeID, n *ast.Node) error {
	name := g.arena.Node(n.Left)
	if !name.IsIdent() || !name.Right.IsNil() {
		return g.syntaxError(id, i18n.ErrExpectedIdent, "array")
	}
	count := g.arena.Node(n.Right)
	if !count.IsNumber() || count.Value < 0 || count.Value != float64(count.Int()) {
		return g.syntaxError(id, i18n.ErrExpectedCount)
	}
	if _, err := g.resolver.Declare(name.Name, int(count.Int())); err != nil {
		return g.wrap(err, id)
	}
	return nil
}

// ============================================================================
// 表达式
// ============================================================================

var binaryOps = map[token.Keyword]Op{
	token.ADD: OpAdd,
	token.SUB: OpSub,
	token.MUL: OpMul,
	token.DIV: OpDiv,
	token.POW: OpPow,
	token.EQ:  OpEq,
	token.NE:  OpNe,
	token.GT:  OpGt,
	token.LT:  OpLt,
	token.GE:  OpGe,
	token.LE:  OpLe,
	token.AND: OpAnd,
	token.OR:  OpOr,
}

// expr 后序遍历编译表达式，结果留在操作数栈顶
//
// parent 是缺少子节点时用于诊断的外层节点。
func (g *Generator) expr(id, parent ast.NodeID) error {
	n := g.arena.Node(id)
	if n == nil {
		return g.syntaxError(parent, i18n.ErrExpectedExpr, "nothing")
	}

	switch n.Kind {
	case ast.KindNumber:
		g.emit(OpPush, Imm(n.Int()))
		return nil
	case ast.KindIdent:
		v, err := g.resolver.Resolve(n.Name)
		if err != nil {
			return g.wrap(err, id)
		}
		mem := Mem(v.Scope, v.Shift)
		if !n.Right.IsNil() {
			if err := g.expr(n.Right, id); err != nil {
				return err
			}
			mem.Indexed = true
		}
		g.emit(OpPush, mem)
		return nil
	}

	if n.Is(token.CALL) {
		return g.call(id, n)
	}
	if n.Is(token.NOT) {
		operand := n.Right
		if operand.IsNil() {
			operand = n.Left
		}
		if err := g.expr(operand, id); err != nil {
			return err
		}
		g.emit(OpNot, Operand{})
		return nil
	}

	op, ok := binaryOps[n.Op]
	if !ok {
		return g.syntaxError(id, i18n.ErrExpectedExpr, describe(n))
	}
	if err := g.expr(n.Left, id); err != nil {
		return err
	}
	if err := g.expr(n.Right, id); err != nil {
		return err
	}
	g.emit(op, Operand{})
	return nil
}

// call 按调用协议编译函数调用
//
//	args...; pop [local+F+n-1] ... pop [local+F+0]
//	push rlocal; push F*8; add; pop rlocal
//	call f
//	push rlocal; push F*8; sub; pop rlocal
//
// F 是调用者的完整帧大小，在函数体编译完成后回填。
// 实参先全部求值再依次弹入窗口，嵌套调用不会覆盖已写入的槽位。
// 被调函数不存在或参数个数不符时不发射任何指令。
func (g *Generator) call(id ast.NodeID, n *ast.Node) error {
	callee := g.arena.Node(n.Left)
	if !callee.IsIdent() || !callee.Right.IsNil() {
		return g.syntaxError(id, i18n.ErrExpectedIdent, "call")
	}
	var args []ast.NodeID
	if !n.Right.IsNil() {
		if !g.arena.Node(n.Right).Is(token.PARAM) {
			return g.syntaxError(id, i18n.ErrExpectedChild, "call", "param")
		}
		var err error
		if args, err = g.arena.Spine(n.Right, token.PARAM); err != nil {
			return err
		}
	}

	fn := g.funcs.Find(callee.Name)
	if fn == nil {
		err := errors.New(errors.E0300, callee.Name).WithNode(ast.Format(g.arena, id)).At(n.Pos)
		if similar := errors.FindSimilar(callee.Name, g.funcs.Names(), errors.MaxSuggestDistance); similar != "" {
			err.WithHint(i18n.T(i18n.HintDidYouMean, similar))
		}
		return err
	}
	if fn.Arity != len(args) {
		err := errors.New(errors.E0301, fn.Name, fn.Arity, len(args)).WithNode(ast.Format(g.arena, id)).At(n.Pos)
		if fn.External {
			return err.WithHint(i18n.T(i18n.HintRuntimeSignature, fn.Name, fn.Arity))
		}
		return err.WithHint(i18n.T(i18n.HintSignature, fn.Name, fn.Signature()))
	}

	for _, arg := range args {
		if err := g.expr(arg, id); err != nil {
			return err
		}
	}
	for i := len(args) - 1; i >= 0; i-- {
		g.emitPatched(OpPop, Mem(symbol.Local, i), false)
	}

	g.emit(OpPush, Reg(RegFrame))
	g.emitPatched(OpPush, Imm(0), true)
	g.emit(OpAdd, Operand{})
	g.emit(OpPop, Reg(RegFrame))

	at := g.emit(OpCall, Label(fn.Name))
	g.routine.Code[at].Arity = fn.Arity
	g.routine.Code[at].External = fn.External

	g.emit(OpPush, Reg(RegFrame))
	g.emitPatched(OpPush, Imm(0), true)
	g.emit(OpSub, Operand{})
	g.emit(OpPop, Reg(RegFrame))

	if fn.External && !g.referenced[fn.Name] {
		g.referenced[fn.Name] = true
		g.externals = append(g.externals, fn)
	}
	return nil
}

// ============================================================================
// 诊断
// ============================================================================

// syntaxError 创建附带子树文本的语法错误
func (g *Generator) syntaxError(id ast.NodeID, msgID string, args ...interface{}) error {
	e := errors.NewMsg(errors.E0001, msgID, args...).WithNode(ast.Format(g.arena, id))
	if n := g.arena.Node(id); n != nil {
		e.At(n.Pos)
	}
	return e
}

// wrap 为解析器返回的错误补充出错子树
func (g *Generator) wrap(err error, id ast.NodeID) error {
	if ce, ok := errors.As(err); ok && ce.Node == "" {
		ce.WithNode(ast.Format(g.arena, id))
		if n := g.arena.Node(id); n != nil {
			ce.At(n.Pos)
		}
	}
	return err
}

func describe(n *ast.Node) string {
	if n == nil {
		return "nothing"
	}
	if n.Kind == ast.KindKeyword {
		return n.Op.String()
	}
	return n.Kind.String()
}
