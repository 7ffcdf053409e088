// Package errors 提供后端编译器的错误分类与诊断格式化
package errors

import (
	"github.com/tangzhangming/elfc/internal/i18n"
)

// ============================================================================
// 错误级别
// ============================================================================

// Level 错误级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	default:
		return "unknown"
	}
}

// ============================================================================
// 错误类别
// ============================================================================

// Kind 错误类别
//
// Kind 本身实现了 error 接口，可以作为 errors.Is 的哨兵值：
//
//	if errors.Is(err, errors.ArityMismatch) { ... }
type Kind int

const (
	Syntax              Kind = iota + 1 // AST 子树与语法规则不匹配
	DuplicateDefinition                 // 重复定义
	ArityMismatch                       // 参数个数不符或调用未声明的函数
	UndefinedReference                  // 读取从未赋值的标识符
	Resource                            // 资源耗尽（总是致命）
	Emission                            // 目标文件生成失败
)

var kindNames = map[Kind]string{
	Syntax:              "SyntaxError",
	DuplicateDefinition: "DuplicateDefinitionError",
	ArityMismatch:       "ArityMismatchError",
	UndefinedReference:  "UndefinedReferenceError",
	Resource:            "ResourceError",
	Emission:            "EmissionError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Error"
}

// Error 实现 error 接口
func (k Kind) Error() string {
	return k.String()
}

// ============================================================================
// 错误码
// ============================================================================

const (
	// E0001-E0099: 语法错误
	E0001 = "E0001" // AST 形状错误
	E0002 = "E0002" // AST 文本无法解析

	// E0100-E0199: 变量错误
	E0100 = "E0100" // 未定义的变量
	E0101 = "E0101" // 变量重复声明

	// E0200-E0299: 函数定义错误
	E0200 = "E0200" // 函数重复定义
	E0201 = "E0201" // 无效的运行时例程
	E0202 = "E0202" // 函数名使用保留的标签前缀

	// E0300-E0399: 调用错误
	E0300 = "E0300" // 未定义的函数
	E0301 = "E0301" // 参数数量错误

	// E0900-E0999: 资源错误
	E0900 = "E0900" // 节超出上限
	E0901 = "E0901" // 节已定稿

	// E1000-E1099: 目标文件错误
	E1000 = "E1000" // 节范围重叠
	E1001 = "E1001" // 未解析的符号
	E1002 = "E1002" // 未解析的标签
	E1003 = "E1003" // 位移超出范围
	E1004 = "E1004" // 写文件失败
	E1005 = "E1005" // 标签重复定义
)

// ============================================================================
// 错误码信息
// ============================================================================

// ErrorInfo 错误码信息
type ErrorInfo struct {
	Code      string // 错误码
	Level     Level  // 错误级别
	Kind      Kind   // 错误类别
	MessageID string // i18n 消息 ID
}

// codeTable 错误码信息表
var codeTable = map[string]ErrorInfo{
	E0001: {E0001, LevelError, Syntax, i18n.ErrSyntax},
	E0002: {E0002, LevelError, Syntax, i18n.ErrSyntax},

	E0100: {E0100, LevelError, UndefinedReference, i18n.ErrUndefinedVariable},
	E0101: {E0101, LevelError, DuplicateDefinition, i18n.ErrVariableRedeclared},

	E0200: {E0200, LevelError, DuplicateDefinition, i18n.ErrFunctionRedeclared},
	E0201: {E0201, LevelError, Syntax, i18n.ErrInvalidRuntimeEntry},
	E0202: {E0202, LevelError, Syntax, i18n.ErrReservedName},

	E0300: {E0300, LevelError, ArityMismatch, i18n.ErrFunctionNotFound},
	E0301: {E0301, LevelError, ArityMismatch, i18n.ErrArgumentCount},

	E0900: {E0900, LevelError, Resource, i18n.ErrSectionLimit},
	E0901: {E0901, LevelError, Resource, i18n.ErrSectionFrozen},

	E1000: {E1000, LevelError, Emission, i18n.ErrSectionOverlap},
	E1001: {E1001, LevelError, Emission, i18n.ErrUnresolvedSymbol},
	E1002: {E1002, LevelError, Emission, i18n.ErrUnresolvedLabel},
	E1003: {E1003, LevelError, Emission, i18n.ErrDisplacement},
	E1004: {E1004, LevelError, Emission, i18n.ErrWriteObject},
	E1005: {E1005, LevelError, Emission, i18n.ErrDuplicateLabel},
}

// GetErrorInfo 获取错误码信息
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := codeTable[code]
	return info, ok
}
