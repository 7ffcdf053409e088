package symbol

import (
	"strings"

	"github.com/tangzhangming/elfc/internal/ast"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// Function 函数符号
type Function struct {
	Name     string     // 函数名
	Arity    int        // 声明的参数个数
	Params   []string   // 参数名（按声明顺序）
	Node     ast.NodeID // define 节点；运行时例程为 ast.Nil
	Body     ast.NodeID // 函数体语句链
	External bool       // 是否为外部运行时例程
}

// Signature 返回形如 f(a, b) 的声明签名，用于诊断信息
func (f *Function) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// FunctionTable 函数表
//
// 查找按名称的值相等做线性扫描，函数个数很少，不需要索引。
type FunctionTable struct {
	funcs []*Function
}

// NewFunctionTable 创建函数表
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{}
}

// Find 按名称查找函数，找不到返回 nil
func (t *FunctionTable) Find(name string) *Function {
	for _, fn := range t.funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Names 按声明顺序返回全部函数名
func (t *FunctionTable) Names() []string {
	names := make([]string, len(t.funcs))
	for i, fn := range t.funcs {
		names[i] = fn.Name
	}
	return names
}

// Len 返回函数个数
func (t *FunctionTable) Len() int {
	return len(t.funcs)
}

// MaxExternalArity 外部例程最多的参数个数（System V 整数参数寄存器个数）
const MaxExternalArity = 6

// LabelPrefix 编译器生成的标签（跳转目标、收尾代码）使用的前缀，函数名不得使用
const LabelPrefix = ".L"

// IsReserved 判断名称是否落在编译器生成标签的命名空间中
func IsReserved(name string) bool {
	return strings.HasPrefix(name, LabelPrefix)
}

// DeclareExternal 注册外部运行时例程
func (t *FunctionTable) DeclareExternal(name string, arity int) (*Function, error) {
	if name == "" || IsReserved(name) || arity < 0 || arity > MaxExternalArity {
		return nil, errors.New(errors.E0201, name)
	}
	if t.Find(name) != nil {
		return nil, errors.New(errors.E0200, name)
	}
	fn := &Function{Name: name, Arity: arity, External: true}
	t.funcs = append(t.funcs, fn)
	return fn, nil
}

// Declare 根据 define 节点声明函数
//
// 期望形状：(( ('name') func PARAMS ) def BODY)，PARAMS 为左链接的
// param 链，每个参数是不带下标的标识符。同名函数已存在时返回
// DuplicateDefinitionError。
func (t *FunctionTable) Declare(a *ast.Arena, define ast.NodeID) (*Function, error) {
	def := a.Node(define)
	if !def.Is(token.DEFINE) {
		return nil, shapeError(a, define, i18n.ErrExpectedStatement, describe(def))
	}

	head := a.Node(def.Left)
	if !head.Is(token.FUNC) {
		return nil, shapeError(a, define, i18n.ErrExpectedChild, "def", "func")
	}

	name := a.Node(head.Left)
	if !name.IsIdent() || !name.Right.IsNil() {
		return nil, shapeError(a, def.Left, i18n.ErrExpectedIdent, "func")
	}

	var params []string
	if !head.Right.IsNil() {
		if !a.Node(head.Right).Is(token.PARAM) {
			return nil, shapeError(a, def.Left, i18n.ErrExpectedChild, "func", "param")
		}
		items, err := a.Spine(head.Right, token.PARAM)
		if err != nil {
			return nil, err
		}
		for _, p := range items {
			pn := a.Node(p)
			if !pn.IsIdent() || !pn.Right.IsNil() {
				return nil, shapeError(a, head.Right, i18n.ErrExpectedIdent, "param")
			}
			params = append(params, pn.Name)
		}
	}

	if IsReserved(name.Name) {
		return nil, errors.New(errors.E0202, name.Name, LabelPrefix).WithNode(ast.Format(a, define)).At(def.Pos)
	}
	if t.Find(name.Name) != nil {
		return nil, errors.New(errors.E0200, name.Name).WithNode(ast.Format(a, define)).At(def.Pos)
	}

	fn := &Function{
		Name:   name.Name,
		Arity:  len(params),
		Params: params,
		Node:   define,
		Body:   def.Right,
	}
	t.funcs = append(t.funcs, fn)
	return fn, nil
}

// shapeError 创建附带子树文本的语法错误
func shapeError(a *ast.Arena, id ast.NodeID, msgID string, args ...interface{}) error {
	e := errors.NewMsg(errors.E0001, msgID, args...).WithNode(ast.Format(a, id))
	if n := a.Node(id); n != nil {
		e.At(n.Pos)
	}
	return e
}

// describe 返回节点的简短描述
func describe(n *ast.Node) string {
	if n == nil {
		return "nothing"
	}
	if n.Kind == ast.KindKeyword {
		return n.Op.String()
	}
	return n.Kind.String()
}
