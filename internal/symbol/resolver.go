package symbol

import (
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
)

// Resolver 变量解析器
//
// 同时持有全局作用域和（编译函数体时的）当前局部作用域。
// 解析时两个作用域都会查询，局部作用域优先。
type Resolver struct {
	global *Scope
	local  *Scope
}

// NewResolver 创建解析器，全局作用域随之创建
func NewResolver() *Resolver {
	return &Resolver{global: NewScope(Global)}
}

// Global 返回全局作用域
func (r *Resolver) Global() *Scope { return r.global }

// Local 返回当前局部作用域，不在函数体内时为 nil
func (r *Resolver) Local() *Scope { return r.local }

// Current 返回赋值自动声明所用的作用域
func (r *Resolver) Current() *Scope {
	if r.local != nil {
		return r.local
	}
	return r.global
}

// EnterFunction 为函数体创建新的局部作用域
//
// 调用方必须配对调用 LeaveFunction（通常用 defer），
// 保证无论成功或失败，变量都不会泄漏到下一个函数。
func (r *Resolver) EnterFunction() *Scope {
	if r.local != nil {
		panic("symbol: nested function scope")
	}
	r.local = NewScope(Local)
	return r.local
}

// LeaveFunction 销毁当前局部作用域
func (r *Resolver) LeaveFunction() {
	r.local = nil
}

// Resolve 解析读取操作的标识符
//
// 两个作用域都找不到时返回 UndefinedReferenceError。
func (r *Resolver) Resolve(name string) (*Variable, error) {
	if r.local != nil {
		if v, ok := r.local.Lookup(name); ok {
			return v, nil
		}
	}
	if v, ok := r.global.Lookup(name); ok {
		return v, nil
	}
	err := errors.New(errors.E0100, name)
	if similar := errors.FindSimilar(name, r.names(), errors.MaxSuggestDistance); similar != "" {
		err.WithHint(i18n.T(i18n.HintDidYouMean, similar))
	}
	return nil, err
}

// names 返回当前可见的变量名，局部在前
func (r *Resolver) names() []string {
	var names []string
	for _, s := range []*Scope{r.local, r.global} {
		if s == nil {
			continue
		}
		for _, v := range s.Variables() {
			names = append(names, v.Name)
		}
	}
	return names
}

// AssignTarget 解析赋值目标
//
// 与 Resolve 的区别：两个作用域都找不到时，在当前作用域
// （函数体内为局部，顶层为全局）隐式声明，而不是报错。
func (r *Resolver) AssignTarget(name string) (*Variable, error) {
	if v, err := r.Resolve(name); err == nil {
		return v, nil
	}
	return r.Current().Declare(name, 0)
}

// Declare 在当前作用域显式声明（数组声明使用）
func (r *Resolver) Declare(name string, elements int) (*Variable, error) {
	return r.Current().Declare(name, elements)
}
