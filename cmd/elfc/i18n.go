package main

import (
	"os"
	"strings"

	"github.com/tangzhangming/elfc/internal/i18n"
)

// Language 语言类型
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// LangEnv 指定界面语言的环境变量
const LangEnv = "ELFC_LANG"

// Messages 命令行界面消息
type Messages struct {
	VersionTitle string
	VersionDesc  string

	HelpUsage    string
	HelpCommands string
	HelpOptions  string
	HelpExamples string

	CmdBuild   string
	CmdCheck   string
	CmdInit    string
	CmdVersion string
	CmdHelp    string

	OptOutput  string
	OptListing string
	OptConfig  string
	OptVerbose string
	OptLog     string
	OptJSON    string
	OptForce   string
	OptLang    string

	ErrNoInput      string
	ErrUnknownCmd   string
	ErrConfig       string
	ErrLogger       string
	ErrConfigExists string

	SuccessCheckOK       string
	SuccessBuildComplete string
	SuccessInit          string
}

// 英文消息
var messagesEN = Messages{
	VersionTitle: "elfc v%s",
	VersionDesc:  "Compiles stack-machine ASTs into x86-64 ELF relocatable objects",

	HelpUsage:    "Usage:",
	HelpCommands: "Commands:",
	HelpOptions:  "Options:",
	HelpExamples: "Examples:",

	CmdBuild:   "Compile an AST file into an object file",
	CmdCheck:   "Run code generation without writing an object",
	CmdInit:    "Write a default elfc.toml to the current directory",
	CmdVersion: "Show version information",
	CmdHelp:    "Show this help message",

	OptOutput:  "Output object path (default: input name with .o)",
	OptListing: "Print the stack-machine listing",
	OptConfig:  "Config file path (default: search upwards for elfc.toml)",
	OptVerbose: "Verbose output",
	OptLog:     "Also write log output to this file",
	OptJSON:    "Print the check result as JSON (check only)",
	OptForce:   "Overwrite an existing config file",
	OptLang:    "Set language (en/zh)",

	ErrNoInput:      "Error: no input file specified",
	ErrUnknownCmd:   "Unknown command: %s",
	ErrConfig:       "Error loading config: %v",
	ErrLogger:       "Error creating logger: %v",
	ErrConfigExists: "Error: %s already exists (use -force to overwrite)",

	SuccessCheckOK:       "✓ %s: %d routines, %d instructions",
	SuccessBuildComplete: "✓ Built %s (%d bytes)",
	SuccessInit:          "✓ Created %s",
}

// 中文消息
var messagesZH = Messages{
	VersionTitle: "elfc v%s",
	VersionDesc:  "把栈机 AST 编译为 x86-64 ELF 可重定位目标文件",

	HelpUsage:    "用法:",
	HelpCommands: "命令:",
	HelpOptions:  "选项:",
	HelpExamples: "示例:",

	CmdBuild:   "把 AST 文件编译为目标文件",
	CmdCheck:   "只做代码生成，不写目标文件",
	CmdInit:    "在当前目录生成默认的 elfc.toml",
	CmdVersion: "显示版本信息",
	CmdHelp:    "显示帮助信息",

	OptOutput:  "输出目标文件路径（默认：输入文件名改为 .o）",
	OptListing: "打印栈机指令清单",
	OptConfig:  "配置文件路径（默认：向上查找 elfc.toml）",
	OptVerbose: "详细输出",
	OptLog:     "同时把日志写入该文件",
	OptJSON:    "以 JSON 格式输出检查结果（仅 check）",
	OptForce:   "覆盖已存在的配置文件",
	OptLang:    "设置语言 (en/zh)",

	ErrNoInput:      "错误: 未指定输入文件",
	ErrUnknownCmd:   "未知命令: %s",
	ErrConfig:       "加载配置错误: %v",
	ErrLogger:       "创建日志记录器错误: %v",
	ErrConfigExists: "错误: %s 已存在（使用 -force 覆盖）",

	SuccessCheckOK:       "✓ %s: %d 个例程，%d 条指令",
	SuccessBuildComplete: "✓ 编译完成 %s (%d 字节)",
	SuccessInit:          "✓ 已创建 %s",
}

// 当前消息
var msg = messagesEN

// 当前语言
var currentLang = LangEnglish

// InitLanguage 初始化语言设置
// 优先级: 命令行参数 > 环境变量 ELFC_LANG > LANG/LC_ALL > 默认英文
func InitLanguage(langOverride string) {
	if langOverride != "" {
		setLanguage(langOverride)
		return
	}
	if envLang := os.Getenv(LangEnv); envLang != "" {
		setLanguage(envLang)
		return
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.ToLower(os.Getenv(key)); strings.HasPrefix(v, "zh") {
			setLanguage("zh")
			return
		}
	}
	setLanguage("en")
}

// setLanguage 设置语言
func setLanguage(lang string) {
	switch i18n.ParseLanguage(lang) {
	case i18n.LangChinese:
		currentLang = LangChinese
		msg = messagesZH
	default:
		currentLang = LangEnglish
		msg = messagesEN
	}
}

// GetLanguage 获取当前语言
func GetLanguage() Language {
	return currentLang
}

// Msg 获取当前语言的消息
func Msg() *Messages {
	return &msg
}
