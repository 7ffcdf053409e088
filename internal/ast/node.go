// Package ast 定义后端消费的抽象语法树
//
// 每个节点最多两个子节点，携带三种数据之一：
// 关键字操作、标识符名称或数字字面量。
package ast

import (
	"strconv"

	"github.com/tangzhangming/elfc/internal/token"
)

// Kind 节点种类
type Kind uint8

const (
	KindKeyword Kind = iota + 1 // 关键字节点
	KindIdent                   // 标识符节点
	KindNumber                  // 数字字面量节点
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindIdent:
		return "ident"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Node AST 节点
//
// IDENT 节点的 Right 子节点（可选）是数组下标表达式。
type Node struct {
	Kind  Kind          // 节点种类
	Op    token.Keyword // 关键字节点的操作标签
	Name  string        // 标识符名称
	Value float64       // 数字字面量
	Left  NodeID        // 左子节点
	Right NodeID        // 右子节点
	Pos   token.Position
}

// Is 判断是否为指定操作标签的关键字节点
func (n *Node) Is(op token.Keyword) bool {
	return n != nil && n.Kind == KindKeyword && n.Op == op
}

// IsIdent 判断是否为标识符节点
func (n *Node) IsIdent() bool {
	return n != nil && n.Kind == KindIdent
}

// IsNumber 判断是否为数字节点
func (n *Node) IsNumber() bool {
	return n != nil && n.Kind == KindNumber
}

// Int 返回数字字面量按 64 位整数截断后的值
func (n *Node) Int() int64 {
	return int64(n.Value)
}

// Data 返回节点在文本形式中的 DATA 部分
func (n *Node) Data() string {
	switch n.Kind {
	case KindKeyword:
		return n.Op.Text()
	case KindIdent:
		return "'" + n.Name + "'"
	case KindNumber:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	default:
		return "?"
	}
}
