// Package i18n 提供诊断信息的多语言支持
package i18n

import (
	"fmt"
	"strings"

	"go.uber.org/atomic"
)

// Language 语言类型
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// 当前语言，诊断格式化可能在多个 goroutine 中进行
var current = atomic.NewString(string(LangEnglish))

// ParseLanguage 把语言名（en、zh-CN、chinese 等）归一化，未知名称视为英文
func ParseLanguage(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "zh", "zh-cn", "zh-tw", "zh-hk", "chinese":
		return LangChinese
	default:
		return LangEnglish
	}
}

// SetLanguage 设置当前语言
func SetLanguage(lang Language) {
	current.Store(string(lang))
}

// SetLanguageFromString 从字符串设置语言
func SetLanguageFromString(lang string) {
	SetLanguage(ParseLanguage(lang))
}

// GetLanguage 获取当前语言
func GetLanguage() Language {
	return Language(current.Load())
}

func catalogue(lang Language) map[string]string {
	if lang == LangChinese {
		return messagesZH
	}
	return messagesEN
}

// T 翻译消息（支持格式化参数）
//
// 当前语言缺少翻译时回退到英文，英文也没有则返回消息 ID 本身。
func T(msgID string, args ...interface{}) string {
	msg, ok := catalogue(GetLanguage())[msgID]
	if !ok {
		if msg, ok = messagesEN[msgID]; !ok {
			return msgID
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
