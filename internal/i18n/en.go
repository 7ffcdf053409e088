package i18n

var messagesEN = map[string]string{
	// ========== AST text ==========
	ErrUnexpectedChar:   "unexpected character %q",
	ErrUnexpectedEOF:    "unexpected end of input",
	ErrUnknownData:      "unknown node data %q",
	ErrUnterminatedName: "unterminated identifier",
	ErrTrailingInput:    "unexpected input after the root node",

	// ========== Syntax ==========
	ErrSyntax:            "syntax error",
	ErrExpectedStatement: "expected statement, found %s",
	ErrExpectedExpr:      "expected expression, found %s",
	ErrExpectedIdent:     "expected identifier in %s",
	ErrExpectedChild:     "%s requires a %s child",
	ErrExpectedCount:     "array size must be a non-negative number",
	ErrMalformedList:     "malformed %s list: expected another %s link or nothing, found %s",

	// ========== Symbols ==========
	ErrUndefinedVariable:   "undefined variable '%s'",
	ErrVariableRedeclared:  "variable '%s' is already declared in this scope",
	ErrFunctionRedeclared:  "function '%s' is already defined",
	ErrFunctionNotFound:    "call to undefined function '%s'",
	ErrArgumentCount:       "function '%s' expects %d argument(s), got %d",
	ErrInvalidRuntimeEntry: "invalid runtime routine %q",
	ErrReservedName:        "function name '%s' uses the reserved label prefix '%s'",

	// ========== Resources & output ==========
	ErrSectionLimit:     "section %s exceeds the %d byte limit",
	ErrSectionFrozen:    "section %s is finalized",
	ErrSectionOverlap:   "section %s [%d, %d) overlaps %s",
	ErrUnresolvedSymbol: "relocation at .text+%#x refers to unknown symbol '%s'",
	ErrUnresolvedLabel:  "jump to undefined label '%s'",
	ErrDisplacement:     "displacement %d does not fit in 32 bits",
	ErrWriteObject:      "cannot write object file %s",
	ErrDuplicateLabel:   "label '%s' is defined twice",

	// ========== Hints ==========
	HintDidYouMean:       "did you mean '%s'?",
	HintSignature:        "'%s' is declared as %s",
	HintRuntimeSignature: "'%s' is a runtime routine taking %d argument(s)",
}
