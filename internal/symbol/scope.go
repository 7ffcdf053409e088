// Package symbol 实现变量作用域解析和函数表
package symbol

import (
	"fmt"

	"github.com/tangzhangming/elfc/internal/errors"
)

// ScopeKind 作用域种类
type ScopeKind int

const (
	Global ScopeKind = iota // 全局作用域，整个编译期间存活
	Local                   // 局部作用域，每个函数体一个
)

func (k ScopeKind) String() string {
	if k == Global {
		return "global"
	}
	return "local"
}

// Variable 变量符号
type Variable struct {
	Name     string    // 标识符
	Scope    ScopeKind // 所属作用域
	Shift    int       // 相对帧基址的偏移（机器字）
	Elements int       // 数组元素个数，标量为 0
}

// Words 返回变量占用的机器字数
func (v *Variable) Words() int {
	return 1 + v.Elements
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s %s@%d", v.Scope, v.Name, v.Shift)
}

// Scope 作用域：有序的变量列表加一个偏移游标
//
// 偏移按声明顺序单调分配，作用域存活期间不会复用。
type Scope struct {
	kind   ScopeKind
	vars   []*Variable
	byName map[string]*Variable
	cursor int
}

// NewScope 创建作用域
func NewScope(kind ScopeKind) *Scope {
	return &Scope{
		kind:   kind,
		byName: make(map[string]*Variable),
	}
}

// Size 返回作用域占用的总字数（即下一个可分配的偏移）
func (s *Scope) Size() int { return s.cursor }

// Len 返回变量个数
func (s *Scope) Len() int { return len(s.vars) }

// Variables 按声明顺序返回所有变量
func (s *Scope) Variables() []*Variable { return s.vars }

// Lookup 按名称查找变量
func (s *Scope) Lookup(name string) (*Variable, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Declare 声明变量
//
// 同一作用域内重名返回 DuplicateDefinitionError；
// 否则偏移取当前游标，游标前进 1 + elements。
func (s *Scope) Declare(name string, elements int) (*Variable, error) {
	if _, ok := s.byName[name]; ok {
		return nil, errors.New(errors.E0101, name)
	}
	if elements < 0 {
		elements = 0
	}
	v := &Variable{
		Name:     name,
		Scope:    s.kind,
		Shift:    s.cursor,
		Elements: elements,
	}
	s.cursor += v.Words()
	s.vars = append(s.vars, v)
	s.byName[name] = v
	return v, nil
}
