package i18n

var messagesZH = map[string]string{
	// ========== AST 文本 ==========
	ErrUnexpectedChar:   "意外字符 %q",
	ErrUnexpectedEOF:    "输入意外结束",
	ErrUnknownData:      "未知的节点数据 %q",
	ErrUnterminatedName: "未闭合的标识符",
	ErrTrailingInput:    "根节点之后存在多余输入",

	// ========== 语法 ==========
	ErrSyntax:            "语法错误",
	ErrExpectedStatement: "应为语句，实际为 %s",
	ErrExpectedExpr:      "应为表达式，实际为 %s",
	ErrExpectedIdent:     "%s 中应为标识符",
	ErrExpectedChild:     "%s 需要 %s 子节点",
	ErrExpectedCount:     "数组大小必须是非负数字",
	ErrMalformedList:     "%s 链格式错误：应为另一个 %s 节点或为空，实际为 %s",

	// ========== 符号 ==========
	ErrUndefinedVariable:   "未定义的变量 '%s'",
	ErrVariableRedeclared:  "变量 '%s' 已在当前作用域中声明",
	ErrFunctionRedeclared:  "函数 '%s' 重复定义",
	ErrFunctionNotFound:    "调用了未定义的函数 '%s'",
	ErrArgumentCount:       "函数 '%s' 需要 %d 个参数，实际传入 %d 个",
	ErrInvalidRuntimeEntry: "无效的运行时例程 %q",
	ErrReservedName:        "函数名 '%s' 使用了保留的标签前缀 '%s'",

	// ========== 资源与输出 ==========
	ErrSectionLimit:     "节 %s 超出 %d 字节上限",
	ErrSectionFrozen:    "节 %s 已定稿",
	ErrSectionOverlap:   "节 %s [%d, %d) 与 %s 重叠",
	ErrUnresolvedSymbol: ".text+%#x 处的重定位引用了未知符号 '%s'",
	ErrUnresolvedLabel:  "跳转到未定义的标签 '%s'",
	ErrDisplacement:     "位移 %d 超出 32 位范围",
	ErrWriteObject:      "无法写入目标文件 %s",
	ErrDuplicateLabel:   "标签 '%s' 重复定义",

	// ========== 修复建议 ==========
	HintDidYouMean:       "是否想使用 '%s'？",
	HintSignature:        "'%s' 的声明为 %s",
	HintRuntimeSignature: "'%s' 是运行时例程，接受 %d 个参数",
}
