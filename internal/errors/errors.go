package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// ============================================================================
// 编译错误
// ============================================================================

// CompileError 编译错误
//
// 编译过程中遇到的第一个错误会沿调用链原样返回，不做部分恢复。
type CompileError struct {
	Code    string         // 错误码 (E0300)
	Kind    Kind           // 错误类别
	Level   Level          // 错误级别
	Message string         // 主消息
	Node    string         // 出错子树的文本形式
	Pos     token.Position // 文本位置（可选）
	Hints   []string       // 修复建议
	Err     error          // 底层原因（可选）
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Node != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Node)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap 返回错误类别哨兵和底层原因，供 errors.Is / errors.As 使用
func (e *CompileError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New 按错误码创建编译错误，消息取自错误码对应的 i18n 消息
func New(code string, args ...interface{}) *CompileError {
	info, ok := GetErrorInfo(code)
	if !ok {
		return &CompileError{Code: code, Level: LevelError, Message: fmt.Sprint(args...)}
	}
	return &CompileError{
		Code:    code,
		Kind:    info.Kind,
		Level:   info.Level,
		Message: i18n.T(info.MessageID, args...),
	}
}

// NewMsg 按错误码创建编译错误，但使用指定的消息 ID
//
// 同一错误码下有多种具体消息时使用（例如各种语法形状错误）。
func NewMsg(code, msgID string, args ...interface{}) *CompileError {
	e := New(code)
	e.Message = i18n.T(msgID, args...)
	return e
}

// WithNode 附加出错子树的文本形式
func (e *CompileError) WithNode(text string) *CompileError {
	e.Node = text
	return e
}

// At 附加文本位置
func (e *CompileError) At(pos token.Position) *CompileError {
	e.Pos = pos
	return e
}

// Wrap 附加底层原因
func (e *CompileError) Wrap(err error) *CompileError {
	e.Err = err
	return e
}

// WithHint 附加修复建议
func (e *CompileError) WithHint(hint string) *CompileError {
	e.Hints = append(e.Hints, hint)
	return e
}

// As 从错误链中提取 CompileError
func As(err error) (*CompileError, bool) {
	var ce *CompileError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Is 转发标准库 errors.Is，避免调用方同时导入两个 errors 包
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
