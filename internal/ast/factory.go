package ast

import (
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// ============================================================================
// AST 节点工厂函数
// ============================================================================
//
// 工厂函数用于从 Arena 分配 AST 节点：
// - 统一的节点创建方式
// - 减少手动字段初始化的错误
//
// 使用方式：
//   arena := NewArena(0)
//   node := arena.NewNumber(42)
//
// ============================================================================

// NewKeyword 创建关键字节点
func (a *Arena) NewKeyword(op token.Keyword, left, right NodeID) NodeID {
	return a.alloc(Node{Kind: KindKeyword, Op: op, Left: left, Right: right})
}

// NewIdent 创建标识符节点，index 为可选的下标表达式
func (a *Arena) NewIdent(name string, index NodeID) NodeID {
	return a.alloc(Node{Kind: KindIdent, Name: name, Right: index})
}

// NewNumber 创建数字字面量节点
func (a *Arena) NewNumber(value float64) NodeID {
	return a.alloc(Node{Kind: KindNumber, Value: value})
}

// ============================================================================
// 组合工厂（测试和工具代码常用的树形状）
// ============================================================================

// NewBinary 创建二元运算节点
func (a *Arena) NewBinary(op token.Keyword, left, right NodeID) NodeID {
	return a.NewKeyword(op, left, right)
}

// NewAssign 创建赋值语句 name = value
func (a *Arena) NewAssign(name string, value NodeID) NodeID {
	return a.NewKeyword(token.ASSIGN, a.NewIdent(name, Nil), value)
}

// NewReturn 创建 return 语句
func (a *Arena) NewReturn(value NodeID) NodeID {
	return a.NewKeyword(token.RETURN, Nil, value)
}

// NewStmts 把语句列表串成左链接的 stmt 链
func (a *Arena) NewStmts(stmts ...NodeID) NodeID {
	spine := Nil
	for _, s := range stmts {
		spine = a.NewKeyword(token.STMT, spine, s)
	}
	return spine
}

// NewParams 把参数/实参列表串成左链接的 param 链
func (a *Arena) NewParams(items ...NodeID) NodeID {
	spine := Nil
	for _, item := range items {
		spine = a.NewKeyword(token.PARAM, spine, item)
	}
	return spine
}

// NewCall 创建函数调用节点
func (a *Arena) NewCall(name string, args ...NodeID) NodeID {
	return a.NewKeyword(token.CALL, a.NewIdent(name, Nil), a.NewParams(args...))
}

// NewDefine 创建函数定义节点
func (a *Arena) NewDefine(name string, params []string, body NodeID) NodeID {
	ids := make([]NodeID, len(params))
	for i, p := range params {
		ids[i] = a.NewIdent(p, Nil)
	}
	fn := a.NewKeyword(token.FUNC, a.NewIdent(name, Nil), a.NewParams(ids...))
	return a.NewKeyword(token.DEFINE, fn, body)
}

// Spine 按源码顺序展开左链接的 stmt/param 链，返回每个节点的右子节点
//
// 链上每个左子节点必须是同一关键字或为空；否则整条链都不可信，
// 返回附带该子树的 SyntaxError（E0001），不返回部分结果。
func (a *Arena) Spine(id NodeID, op token.Keyword) ([]NodeID, error) {
	var items []NodeID
	cur := id
	for {
		n := a.Node(cur)
		if n == nil {
			break
		}
		if !n.Is(op) {
			return nil, malformedList(a, cur, op)
		}
		items = append(items, n.Right)
		cur = n.Left
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func malformedList(a *Arena, id NodeID, op token.Keyword) error {
	n := a.Node(id)
	found := n.Kind.String()
	if n.Kind == KindKeyword {
		found = n.Op.String()
	}
	return errors.NewMsg(errors.E0001, i18n.ErrMalformedList, op.String(), op.Text(), found).
		WithNode(Format(a, id)).
		At(n.Pos)
}
