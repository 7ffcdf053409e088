// Package compiler 把后端各阶段串成一次编译会话
package compiler

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tangzhangming/elfc/internal/asm"
	"github.com/tangzhangming/elfc/internal/ast"
	"github.com/tangzhangming/elfc/internal/codegen"
	"github.com/tangzhangming/elfc/internal/config"
	"github.com/tangzhangming/elfc/internal/object"
)

// ============================================================================
// 编译会话
// ============================================================================
//
// Session 持有一次编译的全部状态：AST 节点池、配置和日志。
// 会话结束时调用 Close 整体释放，不存在进程级的全局状态。
//
// 使用方式：
//   s := compiler.NewSession(cfg, compiler.WithLogger(log))
//   defer s.Close()
//   root, err := s.ParseFile("prog.ast")
//   res, err := s.Compile(root)
//   err = res.WriteFile("prog.o")
//
// ============================================================================

// Session 编译会话
type Session struct {
	cfg      *config.Config
	log      *zap.Logger
	arena    *ast.Arena
	filename string
}

// Option 会话选项
type Option func(*Session)

// WithLogger 设置日志记录器
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession 创建编译会话，cfg 为 nil 时使用默认配置
func NewSession(cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		cfg:   cfg,
		log:   zap.NewNop(),
		arena: ast.NewArena(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arena 返回会话的节点池
func (s *Session) Arena() *ast.Arena { return s.arena }

// Config 返回会话配置
func (s *Session) Config() *config.Config { return s.cfg }

// Close 释放会话持有的节点
func (s *Session) Close() {
	s.arena.Reset()
}

// ParseFile 读取 AST 文本文件
func (s *Session) ParseFile(path string) (ast.NodeID, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return ast.Nil, fmt.Errorf("failed to read input: %w", err)
	}
	return s.Parse(path, string(src))
}

// Parse 解析 AST 文本形式
func (s *Session) Parse(filename, src string) (ast.NodeID, error) {
	s.filename = filename
	root, err := ast.Parse(s.arena, filename, src)
	if err != nil {
		return ast.Nil, err
	}
	stats := s.arena.Stats()
	s.log.Debug("ast loaded",
		zap.String("file", filename),
		zap.Int("nodes", stats.Nodes),
		zap.Int("keywords", stats.Keywords),
		zap.Int("idents", stats.Idents),
		zap.Int("numbers", stats.Numbers),
	)
	return root, nil
}

// Result 编译结果
type Result struct {
	Program *codegen.Program // 栈机指令
	Object  *object.Object   // 目标文件结构
	Bytes   []byte           // 目标文件内容
	Digest  string           // 内容摘要
}

// WriteFile 把目标文件写入 path
func (r *Result) WriteFile(path string) error {
	return object.WriteFile(path, r.Bytes)
}

// runtime 把配置的运行时目录转换为代码生成选项
func (s *Session) runtime() []codegen.Runtime {
	rt := make([]codegen.Runtime, len(s.cfg.Runtime))
	for i, e := range s.cfg.Runtime {
		rt[i] = codegen.Runtime{Name: e.Name, Arity: e.Arity}
	}
	return rt
}

// Generate 只做代码生成，返回栈机指令（不产生目标文件）
func (s *Session) Generate(root ast.NodeID) (*codegen.Program, error) {
	gen := codegen.New(s.arena, codegen.Options{
		Entry:   s.cfg.Symbols.Entry,
		Runtime: s.runtime(),
	})
	prog, err := gen.Generate(root)
	if err != nil {
		return nil, err
	}
	s.log.Debug("code generated",
		zap.Int("routines", len(prog.Routines)),
		zap.Int("instructions", prog.Len()),
		zap.Int("globals", prog.GlobalSize),
		zap.Int("externals", len(prog.Externals)),
		zap.Int("labels", prog.Labels),
	)
	return prog, nil
}

// Compile 编译整棵树，生成目标文件字节
//
// 遇到第一个错误即返回，不产生任何目标文件内容。
func (s *Session) Compile(root ast.NodeID) (*Result, error) {
	prog, err := s.Generate(root)
	if err != nil {
		return nil, err
	}

	obj := object.New(object.Options{
		Align:      s.cfg.Layout.Align,
		FileSymbol: s.cfg.FileSymbol(s.filename),
		Entry:      s.cfg.Symbols.Entry,
		Limit:      s.cfg.Limits.MaxSectionBytes,
	})

	// 全局区放在 .data（零初始化），局部帧栈放在 .bss
	if _, _, err := obj.Section(object.SecData).Reserve(prog.GlobalSize * codegen.WordSize); err != nil {
		return nil, err
	}
	if _, err := obj.Section(object.SecBss).Grow(s.cfg.Limits.FrameStackBytes); err != nil {
		return nil, err
	}

	lowered, err := asm.Lower(prog, obj.Section(object.SecText), obj.Section(object.SecRodata))
	if err != nil {
		return nil, err
	}
	for _, fn := range prog.Externals {
		obj.AddExternal(fn.Name)
	}
	obj.SetEntry(lowered.Entry, lowered.EntrySize)
	obj.AddRelocs(lowered.Relocs...)

	data, err := obj.Emit()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Program: prog,
		Object:  obj,
		Bytes:   data,
		Digest:  object.Digest(data),
	}
	s.log.Debug("object emitted",
		zap.Int("text", lowered.Size),
		zap.Int("literals", lowered.Literals),
		zap.Int("symbols", len(obj.Symbols())),
		zap.Int("relocations", len(obj.Relocs())),
		zap.Int("size", len(data)),
	)
	return res, nil
}

// CompileFile 读取、编译并写出目标文件
func (s *Session) CompileFile(input, output string) (*Result, error) {
	root, err := s.ParseFile(input)
	if err != nil {
		return nil, err
	}
	res, err := s.Compile(root)
	if err != nil {
		return nil, err
	}
	if err := res.WriteFile(output); err != nil {
		return nil, err
	}
	s.log.Info("object written",
		zap.String("output", output),
		zap.Int("bytes", len(res.Bytes)),
		zap.String("blake2b", res.Digest),
	)
	return res, nil
}
