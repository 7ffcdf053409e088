// Package config 读取 elfc 的 TOML 配置
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/tangzhangming/elfc/internal/symbol"
)

// 常量定义
const (
	ConfigFileName = "elfc.toml" // 配置文件名

	DefaultAlign           = 16
	DefaultEntry           = "main"
	DefaultMaxSectionBytes = 1 << 30
	DefaultFrameStackBytes = 1 << 20
	DefaultFileSymbol      = "<input>"
)

// Config 编译器配置
type Config struct {
	Layout  LayoutConfig   `toml:"layout"`
	Symbols SymbolsConfig  `toml:"symbols"`
	Limits  LimitsConfig   `toml:"limits"`
	Runtime []RuntimeEntry `toml:"runtime"`
}

// LayoutConfig 目标文件布局
type LayoutConfig struct {
	// Align 节在文件中的对齐（2 的幂）
	Align int `toml:"align"`
}

// SymbolsConfig 符号名
type SymbolsConfig struct {
	// Entry 入口符号名
	Entry string `toml:"entry"`

	// File FILE 符号名，为空时使用输入文件名
	File string `toml:"file"`
}

// LimitsConfig 资源上限
type LimitsConfig struct {
	MaxSectionBytes int `toml:"max_section_bytes"` // 单个节的大小上限
	FrameStackBytes int `toml:"frame_stack_bytes"` // .bss 中局部帧栈的大小
}

// RuntimeEntry 外部运行时例程
type RuntimeEntry struct {
	Name  string `toml:"name"`
	Arity int    `toml:"arity"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Layout:  LayoutConfig{Align: DefaultAlign},
		Symbols: SymbolsConfig{Entry: DefaultEntry},
		Limits: LimitsConfig{
			MaxSectionBytes: DefaultMaxSectionBytes,
			FrameStackBytes: DefaultFrameStackBytes,
		},
		Runtime: []RuntimeEntry{
			{Name: "print", Arity: 1},
			{Name: "scan", Arity: 0},
			{Name: "exit", Arity: 1},
		},
	}
}

// LoadConfig 从文件加载配置，文件中没有的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 TOML 配置内容
//
// 文件中出现 [[runtime]] 时整个目录被替换，否则使用默认目录。
func Parse(data []byte) (*Config, error) {
	config := Default()
	catalogue := config.Runtime
	config.Runtime = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Runtime == nil {
		config.Runtime = catalogue
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Layout.Align < 1 || c.Layout.Align&(c.Layout.Align-1) != 0 {
		return fmt.Errorf("layout.align must be a power of two, got %d", c.Layout.Align)
	}
	if strings.TrimSpace(c.Symbols.Entry) == "" {
		return fmt.Errorf("symbols.entry must not be empty")
	}
	if symbol.IsReserved(c.Symbols.Entry) {
		return fmt.Errorf("symbols.entry %q uses the reserved label prefix %q", c.Symbols.Entry, symbol.LabelPrefix)
	}
	if c.Limits.MaxSectionBytes <= 0 {
		return fmt.Errorf("limits.max_section_bytes must be positive, got %d", c.Limits.MaxSectionBytes)
	}
	if c.Limits.FrameStackBytes < 0 || c.Limits.FrameStackBytes > c.Limits.MaxSectionBytes {
		return fmt.Errorf("limits.frame_stack_bytes must be between 0 and %d, got %d",
			c.Limits.MaxSectionBytes, c.Limits.FrameStackBytes)
	}

	seen := make(map[string]bool)
	for _, rt := range c.Runtime {
		if rt.Name == "" {
			return fmt.Errorf("runtime entry without a name")
		}
		if symbol.IsReserved(rt.Name) {
			return fmt.Errorf("runtime routine %q uses the reserved label prefix %q", rt.Name, symbol.LabelPrefix)
		}
		if rt.Name == c.Symbols.Entry {
			return fmt.Errorf("runtime routine %q clashes with the entry symbol", rt.Name)
		}
		if seen[rt.Name] {
			return fmt.Errorf("runtime routine %q declared twice", rt.Name)
		}
		seen[rt.Name] = true
	}
	return nil
}

// FileSymbol 返回 FILE 符号名：配置为空时取输入文件的基本名
func (c *Config) FileSymbol(input string) string {
	if c.Symbols.File != "" {
		return c.Symbols.File
	}
	if input == "" {
		return DefaultFileSymbol
	}
	return filepath.Base(input)
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	content := generateConfigWithComments(c)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateConfigWithComments 生成带注释的配置文件内容
func generateConfigWithComments(c *Config) string {
	var sb strings.Builder

	sb.WriteString("[layout]\n")
	sb.WriteString("# 节在文件中的对齐（2 的幂）\n")
	sb.WriteString(fmt.Sprintf("align = %d\n\n", c.Layout.Align))

	sb.WriteString("[symbols]\n")
	sb.WriteString("# 入口符号名\n")
	sb.WriteString(fmt.Sprintf("entry = %q\n", c.Symbols.Entry))
	sb.WriteString("# FILE 符号名，留空时使用输入文件名\n")
	sb.WriteString(fmt.Sprintf("file = %q\n\n", c.Symbols.File))

	sb.WriteString("[limits]\n")
	sb.WriteString(fmt.Sprintf("max_section_bytes = %d\n", c.Limits.MaxSectionBytes))
	sb.WriteString(fmt.Sprintf("frame_stack_bytes = %d\n", c.Limits.FrameStackBytes))

	for _, rt := range c.Runtime {
		sb.WriteString("\n[[runtime]]\n")
		sb.WriteString(fmt.Sprintf("name = %q\n", rt.Name))
		sb.WriteString(fmt.Sprintf("arity = %d\n", rt.Arity))
	}

	return sb.String()
}

// FindConfigFile 从指定路径向上查找配置文件
// 返回配置文件的完整路径，如果找不到则返回空字符串
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	dir := startPath
	if !info.IsDir() {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
