package i18n

// 消息 ID
const (
	// ========== AST 文本形式 ==========
	ErrUnexpectedChar   = "ast.unexpected_char"
	ErrUnexpectedEOF    = "ast.unexpected_eof"
	ErrUnknownData      = "ast.unknown_data"
	ErrUnterminatedName = "ast.unterminated_name"
	ErrTrailingInput    = "ast.trailing_input"

	// ========== 语法形状 ==========
	ErrSyntax            = "error.syntax"
	ErrExpectedStatement = "codegen.expected_statement"
	ErrExpectedExpr      = "codegen.expected_expression"
	ErrExpectedIdent     = "codegen.expected_identifier"
	ErrExpectedChild     = "codegen.expected_child"
	ErrExpectedCount     = "codegen.expected_count"
	ErrMalformedList     = "codegen.malformed_list"

	// ========== 符号 ==========
	ErrUndefinedVariable   = "compiler.undefined_variable"
	ErrVariableRedeclared  = "compiler.variable_redeclared"
	ErrFunctionRedeclared  = "compiler.function_redeclared"
	ErrFunctionNotFound    = "compiler.function_not_found"
	ErrArgumentCount       = "compiler.argument_count"
	ErrInvalidRuntimeEntry = "compiler.invalid_runtime_entry"
	ErrReservedName        = "compiler.reserved_name"

	// ========== 资源与输出 ==========
	ErrSectionLimit     = "resource.section_limit"
	ErrSectionFrozen    = "resource.section_frozen"
	ErrSectionOverlap   = "emit.section_overlap"
	ErrUnresolvedSymbol = "emit.unresolved_symbol"
	ErrUnresolvedLabel  = "emit.unresolved_label"
	ErrDisplacement     = "emit.displacement_range"
	ErrWriteObject      = "emit.write_object"
	ErrDuplicateLabel   = "emit.duplicate_label"

	// ========== 修复建议 ==========
	HintDidYouMean       = "hint.did_you_mean"
	HintSignature        = "hint.signature"
	HintRuntimeSignature = "hint.runtime_signature"
)
