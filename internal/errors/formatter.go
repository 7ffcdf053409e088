package errors

import (
	"fmt"
	"os"
	"strings"
)

// ============================================================================
// 终端颜色
// ============================================================================

// Color 终端颜色
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorYellow
	ColorBlue
	ColorCyan
	ColorBold
)

// ANSI 颜色代码
var ansiCodes = map[Color]string{
	ColorReset:  "\033[0m",
	ColorRed:    "\033[31m",
	ColorYellow: "\033[33m",
	ColorBlue:   "\033[34m",
	ColorCyan:   "\033[36m",
	ColorBold:   "\033[1m",
}

// DetectColorSupport 检测标准错误输出是否支持颜色
func DetectColorSupport() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if fileInfo, err := os.Stderr.Stat(); err == nil {
		return fileInfo.Mode()&os.ModeCharDevice != 0
	}
	return false
}

// ============================================================================
// 格式化器
// ============================================================================

// Formatter 错误格式化器
type Formatter struct {
	Colors    bool // 是否使用颜色
	ShowHints bool // 是否显示修复建议
	MaxNode   int  // 子树文本的最大显示长度，0 表示不截断
}

// NewFormatter 创建默认格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:    DetectColorSupport(),
		ShowHints: true,
		MaxNode:   240,
	}
}

// Format 格式化任意错误
//
// CompileError 输出完整诊断，其他错误只输出一行。
func (f *Formatter) Format(err error) string {
	if ce, ok := As(err); ok {
		return f.FormatCompileError(ce)
	}
	return fmt.Sprintf("%s: %v\n", f.colorize("error", ColorRed), err)
}

// FormatCompileError 格式化编译错误
func (f *Formatter) FormatCompileError(err *CompileError) string {
	var sb strings.Builder

	// 错误头: error[E0300]: call to undefined function 'f'
	levelStr := f.colorize(err.Level.String(), f.levelColor(err.Level))
	codeStr := f.colorize(fmt.Sprintf("[%s]", err.Code), f.levelColor(err.Level))
	sb.WriteString(fmt.Sprintf("%s%s: %s\n", levelStr, codeStr, f.colorize(err.Message, ColorBold)))

	// 位置: --> file.ast:5:12
	if err.Pos.IsValid() {
		arrow := f.colorize("-->", ColorCyan)
		sb.WriteString(fmt.Sprintf(" %s %s\n", arrow, f.colorize(err.Pos.String(), ColorCyan)))
	}

	// 出错子树
	if err.Node != "" {
		pipe := f.colorize("  |", ColorBlue)
		sb.WriteString(fmt.Sprintf("%s %s\n", pipe, f.truncate(err.Node)))
	}

	// 底层原因
	if err.Err != nil {
		sb.WriteString(fmt.Sprintf("%s %v\n", f.colorize(" = cause:", ColorCyan), err.Err))
	}

	// 修复建议
	if f.ShowHints {
		for _, hint := range err.Hints {
			sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = help:", ColorCyan), hint))
		}
	}

	return sb.String()
}

// truncate 截断过长的子树文本
func (f *Formatter) truncate(s string) string {
	if f.MaxNode <= 0 || len(s) <= f.MaxNode {
		return s
	}
	return s[:f.MaxNode] + " ..."
}

// levelColor 获取错误级别对应的颜色
func (f *Formatter) levelColor(level Level) Color {
	switch level {
	case LevelWarning:
		return ColorYellow
	case LevelNote:
		return ColorCyan
	default:
		return ColorRed
	}
}

// colorize 着色字符串
func (f *Formatter) colorize(s string, color Color) string {
	if !f.Colors {
		return s
	}
	code, ok := ansiCodes[color]
	if !ok {
		return s
	}
	return code + s + ansiCodes[ColorReset]
}
