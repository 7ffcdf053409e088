package token

import "fmt"

// ============================================================================
// Keyword 关键字节点的操作标签
// ============================================================================
//
// AST 中的 KEYWORD 节点携带一个来自固定词表的操作标签。
// 每个标签都有一个规范文本（canonical token text），
// 用于 AST 的文本持久化形式 `(LEFT? DATA RIGHT?)`。
//
// 词表按类别分组：
// 1. 结构（stmt, define, func, param）
// 2. 语句（assign, if, else, while, call, return, array）
// 3. 算术运算（add, sub, mul, div, pow）
// 4. 比较与逻辑运算（eq, ne, gt, lt, ge, le, and, or, not）
//
// ============================================================================

// Keyword 关键字操作标签
type Keyword int

const (
	ILLEGAL Keyword = iota // 非法关键字

	// ----------------------------------------------------------
	// 结构
	// ----------------------------------------------------------
	STMT   // ;      语句链：left = 之前的语句链, right = 本条语句
	DEFINE // def    函数定义：left = func, right = 函数体
	FUNC   // func   函数头：left = 函数名, right = 参数链
	PARAM  // param  参数链：left = 之前的参数, right = 本参数

	// ----------------------------------------------------------
	// 语句
	// ----------------------------------------------------------
	ASSIGN // =
	IF     // if
	ELSE   // else   left = then 分支, right = else 分支
	WHILE  // while
	CALL   // call   left = 被调函数名, right = 实参链
	RETURN // return
	ARRAY  // array  left = 变量名, right = 元素个数

	// ----------------------------------------------------------
	// 算术运算符
	// ----------------------------------------------------------
	arith_beg
	ADD // +
	SUB // -
	MUL // *
	DIV // /
	POW // ^
	arith_end

	// ----------------------------------------------------------
	// 比较与逻辑运算符
	// ----------------------------------------------------------
	compare_beg
	EQ // ==
	NE // !=
	GT // >
	LT // <
	GE // >=
	LE // <=
	compare_end

	AND // &&
	OR  // ||
	NOT // !
)

// keywordText 规范文本表
var keywordText = map[Keyword]string{
	STMT:   ";",
	DEFINE: "def",
	FUNC:   "func",
	PARAM:  "param",
	ASSIGN: "=",
	IF:     "if",
	ELSE:   "else",
	WHILE:  "while",
	CALL:   "call",
	RETURN: "return",
	ARRAY:  "array",
	ADD:    "+",
	SUB:    "-",
	MUL:    "*",
	DIV:    "/",
	POW:    "^",
	EQ:     "==",
	NE:     "!=",
	GT:     ">",
	LT:     "<",
	GE:     ">=",
	LE:     "<=",
	AND:    "&&",
	OR:     "||",
	NOT:    "!",
}

// keywordNames 可读名称（用于诊断信息）
var keywordNames = map[Keyword]string{
	STMT:   "stmt",
	DEFINE: "define",
	FUNC:   "func",
	PARAM:  "param",
	ASSIGN: "assign",
	IF:     "if",
	ELSE:   "else",
	WHILE:  "while",
	CALL:   "call",
	RETURN: "return",
	ARRAY:  "array",
	ADD:    "add",
	SUB:    "sub",
	MUL:    "mul",
	DIV:    "div",
	POW:    "pow",
	EQ:     "eq",
	NE:     "ne",
	GT:     "gt",
	LT:     "lt",
	GE:     "ge",
	LE:     "le",
	AND:    "and",
	OR:     "or",
	NOT:    "not",
}

var textToKeyword map[string]Keyword

func init() {
	textToKeyword = make(map[string]Keyword, len(keywordText))
	for k, text := range keywordText {
		textToKeyword[text] = k
	}
}

// Lookup 根据规范文本查找关键字，找不到时返回 ILLEGAL
func Lookup(text string) Keyword {
	if k, ok := textToKeyword[text]; ok {
		return k
	}
	return ILLEGAL
}

// Text 返回关键字的规范文本
func (k Keyword) Text() string {
	if text, ok := keywordText[k]; ok {
		return text
	}
	return "?"
}

// String 返回关键字的可读名称
func (k Keyword) String() string {
	if name, ok := keywordNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// IsArithmetic 判断是否为算术运算符
func (k Keyword) IsArithmetic() bool {
	return k > arith_beg && k < arith_end
}

// IsComparison 判断是否为比较运算符
func (k Keyword) IsComparison() bool {
	return k > compare_beg && k < compare_end
}

// IsBinaryOperator 判断是否为二元表达式运算符
func (k Keyword) IsBinaryOperator() bool {
	return k.IsArithmetic() || k.IsComparison() || k == AND || k == OR
}

// ============================================================================
// Position - 文本位置
// ============================================================================

// Position 表示 AST 文本中的位置
type Position struct {
	Filename string // 文件名
	Line     int    // 行号 (从1开始)
	Column   int    // 列号 (从1开始)
	Offset   int    // 字节偏移量 (从0开始)
}

// String 返回位置的字符串表示，格式为 "filename:line:column"
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}
